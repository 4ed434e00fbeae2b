package sse

import (
	"bytes"
	"encoding/json"
)

// 事件类型
const (
	EventMessage = "message"
	EventDone    = "done"
	EventError   = "error"
)

// Event SSE 事件
type Event struct {
	Type string // 事件名
	Data any    // 事件数据, 以 JSON 编码写入 data 行
}

// Encode 编码为 "event: <name>\ndata: <json>\n\n"
func (e Event) Encode() ([]byte, error) {
	var data []byte
	switch v := e.Data.(type) {
	case nil:
		data = []byte("{}")
	case json.RawMessage:
		data = v
	default:
		var err error
		if data, err = json.Marshal(v); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	buf.Grow(len(e.Type) + len(data) + 16)
	buf.WriteString("event: ")
	buf.WriteString(e.Type)
	buf.WriteString("\ndata: ")
	buf.Write(data)
	buf.WriteString("\n\n")
	return buf.Bytes(), nil
}

// FormatSSE 格式化为 SSE 消息格式, 编码失败时返回空串
func (e Event) FormatSSE() string {
	b, err := e.Encode()
	if err != nil {
		return ""
	}
	return string(b)
}
