package reporter

import (
	"fmt"
	"log"

	"github.com/NachoToast/NachoMusic/model"
)

// Sender 向主应用发送事件的最小接口，由 ws 连接实现
type Sender interface {
	Send(event model.EventName, data interface{}) error
}

// Reporter 错误上报工具，组件失败对外可见的唯一途径
type Reporter struct {
	sender      Sender
	extensionID string
}

// New 创建错误上报工具
func New(sender Sender, extensionID string) *Reporter {
	return &Reporter{
		sender:      sender,
		extensionID: extensionID,
	}
}

// Report 向主应用上报错误。
// suppress 为 true 时直接丢弃，仅用于上报错误本身失败的场景，
// 避免无限错误循环
func (r *Reporter) Report(err error, suppress bool) {
	if suppress {
		// 错误来自一次发送尝试，再上报只会产生更多错误，只能静默失败
		return
	}

	data := model.ErrorData{
		ID:      r.extensionID,
		Message: err.Error(),
		Stack:   "Unknown",
		Name:    fmt.Sprintf("%T", err),
	}

	if sendErr := r.sender.Send(model.ExtensionError, data); sendErr != nil {
		log.Printf("发送错误上报消息失败: %v", sendErr)
	}
}
