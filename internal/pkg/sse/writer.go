package sse

import (
	"context"
	"errors"
	"net/http"
	"sync"
)

// ErrClosed 流已关闭(客户端断开或 Close 已调用)
var ErrClosed = errors.New("sse: stream closed")

// Sink 帧输出端
type Sink interface {
	Send(ctx context.Context, e Event) error
}

// SetHeaders 设置 SSE 响应头, 关闭中间层缓冲与缓存
func SetHeaders(h http.Header) {
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
}

// Writer 单个请求的帧写入器
type Writer struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	closed  bool
	frames  int
}

// NewWriter 创建写入器并写出响应头
func NewWriter(w http.ResponseWriter) *Writer {
	SetHeaders(w.Header())
	f, _ := w.(http.Flusher)
	return &Writer{w: w, flusher: f}
}

// Send 写入一帧并立即 flush; ctx 结束后不再写入
func (w *Writer) Send(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		w.Close()
		return ErrClosed
	}

	frame, err := e.Encode()
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if w.frames == 0 {
		w.w.WriteHeader(http.StatusOK)
	}
	if _, err := w.w.Write(frame); err != nil {
		w.closed = true
		return errors.Join(ErrClosed, err)
	}
	w.frames++
	if w.flusher != nil {
		w.flusher.Flush()
	}
	return nil
}

// Frames 已写出的帧数
func (w *Writer) Frames() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frames
}

// Close 标记关闭, 之后的 Send 返回 ErrClosed
func (w *Writer) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
}
