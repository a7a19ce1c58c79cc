package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"sync"

	"github.com/NachoToast/NachoMusic/bus"
	"github.com/NachoToast/NachoMusic/config"
	"github.com/NachoToast/NachoMusic/model"
	"github.com/NachoToast/NachoMusic/reporter"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// socketConn 底层连接的最小接口，便于测试替换 gorilla 连接
type socketConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Conn 与主应用之间唯一的 WebSocket 连接，
// 所有 IPC 流量都复用这一条通道
type Conn struct {
	cfg        *config.Config
	bus        *bus.Bus
	conn       socketConn
	writeMutex sync.Mutex
	rep        *reporter.Reporter

	// 进程退出函数，测试中可替换
	exit func(code int)
}

// ServerURL 根据启动参数生成主应用的 WebSocket 地址
func ServerURL(cfg *config.Config) string {
	u := url.URL{
		Scheme:   "ws",
		Host:     fmt.Sprintf("localhost:%d", cfg.Port),
		Path:     "/",
		RawQuery: "extensionId=" + url.QueryEscape(cfg.ExtensionID),
	}
	return u.String()
}

// Dial 建立到主应用的连接。初次连接失败不重试，直接返回错误
func Dial(cfg *config.Config, b *bus.Bus) (*Conn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(ServerURL(cfg), nil)
	if err != nil {
		return nil, fmt.Errorf("连接主应用失败: %w", err)
	}

	return newConn(conn, cfg, b), nil
}

func newConn(conn socketConn, cfg *config.Config, b *bus.Bus) *Conn {
	return &Conn{
		cfg:  cfg,
		bus:  b,
		conn: conn,
		exit: os.Exit,
	}
}

// SetReporter 设置错误上报工具。
// 上报工具本身依赖连接发送事件，因此在连接建立后注入
func (c *Conn) SetReporter(rep *reporter.Reporter) {
	c.rep = rep
}

// Listen 阻塞读取消息直到连接关闭。
// 主应用拥有本进程的生命周期，连接关闭即进程退出，
// 退出码取关闭帧携带的代码
func (c *Conn) Listen() {
	for {
		msgType, payload, err := c.conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				log.Printf("连接已关闭: %v", closeErr)
				c.exit(closeErr.Code)
				return
			}

			c.report(fmt.Errorf("读取消息失败: %w", err))
			c.exit(1)
			return
		}

		c.handleMessage(msgType, payload)
	}
}

// handleMessage 分类并分发一个收到的帧
func (c *Conn) handleMessage(msgType int, payload []byte) {
	// 非文本帧视为传输噪声，直接丢弃
	if msgType != websocket.TextMessage {
		return
	}

	var frame model.IncomingFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		c.report(fmt.Errorf("解析消息失败: %w", err))
		return
	}

	if frame.IsFeedback() {
		// 没有 event 字段 = 此前发送消息的回执，或无法识别的形态
		// TODO: 可以按 id 对照确认消息是否发送成功
		return
	}

	switch *frame.Event {
	case model.WindowClose:
		// 防御性关闭，正常情况下主应用会先终止本进程
		c.conn.Close()
	case model.AppClientConnect:
		// 就绪信号，依赖通道的服务从这里开始工作
		c.bus.Emit(model.Ready, nil)
	default:
		c.bus.Emit(*frame.Event, frame.Data)
	}
}

// Send 构造信封并向主应用广播一个自定义事件。
// 不等待发送回执，调用方无送达保证
func (c *Conn) Send(event model.EventName, data interface{}) error {
	envelope := model.OutgoingEnvelope{
		ID:          uuid.NewString(),
		Method:      model.MethodBroadcast,
		AccessToken: c.cfg.AccessToken,
		Data: model.EnvelopeData{
			Event: event,
			Data:  data,
		},
	}

	raw, err := json.Marshal(envelope)
	if err != nil {
		c.reportSendFailure(event, fmt.Errorf("序列化事件 %s 失败: %w", event, err))
		return err
	}

	c.writeMutex.Lock()
	err = c.conn.WriteMessage(websocket.TextMessage, raw)
	c.writeMutex.Unlock()

	if err != nil {
		c.reportSendFailure(event, fmt.Errorf("发送事件 %s 失败: %w", event, err))
		return err
	}

	return nil
}

// Log 向主应用发送一条或多条日志消息
func (c *Conn) Log(messages ...interface{}) {
	for _, message := range messages {
		c.Send(model.ExtensionLog, model.LogData{ID: c.cfg.ExtensionID, Message: message})
	}
}

func (c *Conn) report(err error) {
	if c.rep == nil {
		log.Printf("错误未上报: %v", err)
		return
	}
	c.rep.Report(err, false)
}

// reportSendFailure 上报一次发送失败。
// 失败的正是错误上报事件本身时抑制上报，防止无限失败循环
func (c *Conn) reportSendFailure(event model.EventName, err error) {
	if c.rep == nil {
		log.Printf("错误未上报: %v", err)
		return
	}
	c.rep.Report(err, event == model.ExtensionError)
}
