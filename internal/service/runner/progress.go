package runner

import "time"

// 进度事件类型
const (
	EventStart     = "start"
	EventLoaded    = "loaded"
	EventSheetDone = "sheet_done"
	EventSaved     = "saved"
	EventDone      = "done"
	EventError     = "error"
)

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`    // start/loaded/sheet_done/saved/done/error
	Message   string      `json:"message"` // 事件消息
	Percent   int         `json:"percent"`
	Data      interface{} `json:"data,omitempty"` // 附加数据
	Timestamp time.Time   `json:"timestamp"`
}

func emit(progress func(ProgressEvent), typ string, percent int, msg string, data interface{}) {
	if progress == nil {
		return
	}
	progress(ProgressEvent{
		Type:      typ,
		Message:   msg,
		Percent:   percent,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// sendProgress 发送进度事件
func sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
		// 通道已满，丢弃事件
	}
}
