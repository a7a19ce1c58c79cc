package reporter

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/NachoToast/NachoMusic/model"
)

type fakeSender struct {
	events []model.EventName
	data   []interface{}
}

func (f *fakeSender) Send(event model.EventName, data interface{}) error {
	f.events = append(f.events, event)
	f.data = append(f.data, data)
	return nil
}

func TestReportSendsExtensionError(t *testing.T) {
	sender := &fakeSender{}
	r := New(sender, "nacho-extension")

	r.Report(fmt.Errorf("磁盘写入失败"), false)

	if len(sender.events) != 1 || sender.events[0] != model.ExtensionError {
		t.Fatalf("应发送一次 extensionError 事件: %v", sender.events)
	}

	raw, _ := json.Marshal(sender.data[0])
	var payload model.ErrorData
	json.Unmarshal(raw, &payload)

	if payload.ID != "nacho-extension" {
		t.Errorf("负载扩展标识错误: %s", payload.ID)
	}
	if payload.Message != "磁盘写入失败" {
		t.Errorf("负载错误消息错误: %s", payload.Message)
	}
	if payload.Stack != "Unknown" {
		t.Errorf("负载调用栈应为 Unknown: %s", payload.Stack)
	}
	if payload.Name == "" {
		t.Error("负载错误类型名不应为空")
	}
}

func TestReportSuppressed(t *testing.T) {
	sender := &fakeSender{}
	r := New(sender, "nacho-extension")

	r.Report(fmt.Errorf("发送失败"), true)

	if len(sender.events) != 0 {
		t.Errorf("suppress 为 true 时不应发送任何事件: %v", sender.events)
	}
}
