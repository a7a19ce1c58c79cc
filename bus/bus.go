package bus

import (
	"encoding/json"
	"sync"

	"github.com/NachoToast/NachoMusic/model"
)

// Handler 事件处理函数，data 为该事件在事件目录中约定的负载
type Handler func(data json.RawMessage) error

// ErrorHandler 处理器执行失败时的回调
type ErrorHandler func(err error)

// Subscription 一次订阅的句柄，用于取消订阅
type Subscription struct {
	handler Handler
	once    bool
}

// Bus 按事件名分发的发布订阅注册表。
// 同名事件的多个处理器按注册顺序依次调用；处理器返回的错误不会
// 传播给兄弟处理器或 Emit 的调用方，而是交给错误回调
type Bus struct {
	mu       sync.Mutex
	handlers map[model.EventName][]*Subscription
	onError  ErrorHandler
}

// New 创建事件总线
func New() *Bus {
	return &Bus{
		handlers: make(map[model.EventName][]*Subscription),
	}
}

// SetErrorHandler 设置处理器失败时的错误回调
func (b *Bus) SetErrorHandler(onError ErrorHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onError = onError
}

// On 注册持久订阅
func (b *Bus) On(event model.EventName, handler Handler) *Subscription {
	return b.subscribe(event, handler, false)
}

// Once 注册一次性订阅，触发一次后自动移除
func (b *Bus) Once(event model.EventName, handler Handler) *Subscription {
	return b.subscribe(event, handler, true)
}

func (b *Bus) subscribe(event model.EventName, handler Handler, once bool) *Subscription {
	sub := &Subscription{handler: handler, once: once}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], sub)
	return sub
}

// Off 取消订阅
func (b *Bus) Off(event model.EventName, sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[event]
	for i, s := range subs {
		if s == sub {
			b.handlers[event] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// Emit 按注册顺序调用该事件的所有处理器。
// 某个处理器失败只会上报，不影响后续处理器
func (b *Bus) Emit(event model.EventName, data json.RawMessage) {
	b.mu.Lock()
	subs := b.handlers[event]
	invoked := make([]*Subscription, len(subs))
	copy(invoked, subs)

	// 一次性订阅在调用前移除，处理器内再次 Emit 也不会重复触发
	remaining := subs[:0]
	for _, s := range subs {
		if !s.once {
			remaining = append(remaining, s)
		}
	}
	b.handlers[event] = remaining
	onError := b.onError
	b.mu.Unlock()

	for _, s := range invoked {
		if err := s.handler(data); err != nil && onError != nil {
			onError(err)
		}
	}
}
