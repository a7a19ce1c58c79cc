package bus

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/NachoToast/NachoMusic/model"
)

func TestEmitInRegistrationOrder(t *testing.T) {
	b := New()

	var order []int
	b.On(model.Ready, func(json.RawMessage) error {
		order = append(order, 1)
		return nil
	})
	b.On(model.Ready, func(json.RawMessage) error {
		order = append(order, 2)
		return nil
	})
	b.On(model.Ready, func(json.RawMessage) error {
		order = append(order, 3)
		return nil
	})

	b.Emit(model.Ready, nil)

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("处理器未按注册顺序调用: %v", order)
	}
}

func TestOnceFiresOnce(t *testing.T) {
	b := New()

	count := 0
	b.Once(model.Ready, func(json.RawMessage) error {
		count++
		return nil
	})

	b.Emit(model.Ready, nil)
	b.Emit(model.Ready, nil)

	if count != 1 {
		t.Errorf("一次性订阅触发次数错误: 期望 1, 实际 %d", count)
	}
}

func TestOffRemovesSubscription(t *testing.T) {
	b := New()

	count := 0
	sub := b.On(model.Ready, func(json.RawMessage) error {
		count++
		return nil
	})

	b.Emit(model.Ready, nil)
	b.Off(model.Ready, sub)
	b.Emit(model.Ready, nil)

	if count != 1 {
		t.Errorf("取消订阅后仍被调用: %d", count)
	}
}

func TestHandlerErrorIsolation(t *testing.T) {
	b := New()

	var reported []error
	b.SetErrorHandler(func(err error) {
		reported = append(reported, err)
	})

	secondCalled := false
	b.On(model.Ready, func(json.RawMessage) error {
		return fmt.Errorf("第一个处理器失败")
	})
	b.On(model.Ready, func(json.RawMessage) error {
		secondCalled = true
		return nil
	})

	b.Emit(model.Ready, nil)

	if !secondCalled {
		t.Error("前一个处理器失败不应影响后续处理器")
	}
	if len(reported) != 1 {
		t.Errorf("处理器错误应上报一次: %d", len(reported))
	}
}

func TestEmitPassesPayload(t *testing.T) {
	b := New()

	var got model.SearchRequest
	b.On(model.YoutubeSearchQuery, func(data json.RawMessage) error {
		return json.Unmarshal(data, &got)
	})

	b.Emit(model.YoutubeSearchQuery, json.RawMessage(`{"final":true,"queryString":"test","limit":5}`))

	if !got.Final || got.QueryString != "test" || got.Limit != 5 {
		t.Errorf("负载传递错误: %+v", got)
	}
}
