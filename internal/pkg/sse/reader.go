package sse

import (
	"bufio"
	"io"
	"strings"
)

// Frame 解析得到的原始帧
type Frame struct {
	Event string
	Data  []byte
}

// Reader 按 SSE 约定逐帧读取
type Reader struct {
	sc *bufio.Scanner
}

// NewReader 创建读取器
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Reader{sc: sc}
}

// Next 返回下一帧; 流结束时返回 io.EOF
func (r *Reader) Next() (Frame, error) {
	var (
		f    Frame
		data []string
		seen bool
	)
	for r.sc.Scan() {
		line := r.sc.Text()
		if line == "" {
			if seen {
				f.Data = []byte(strings.Join(data, "\n"))
				if f.Event == "" {
					f.Event = EventMessage
				}
				return f, nil
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue // 注释/心跳
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			f.Event = value
			seen = true
		case "data":
			data = append(data, value)
			seen = true
		}
	}
	if err := r.sc.Err(); err != nil {
		return Frame{}, err
	}
	if seen {
		f.Data = []byte(strings.Join(data, "\n"))
		if f.Event == "" {
			f.Event = EventMessage
		}
		return f, nil
	}
	return Frame{}, io.EOF
}

// ReadAll 读取全部帧
func ReadAll(r io.Reader) ([]Frame, error) {
	rd := NewReader(r)
	var frames []Frame
	for {
		f, err := rd.Next()
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		frames = append(frames, f)
	}
}
