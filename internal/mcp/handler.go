package mcp

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lk2023060901/websearch-mcp/internal/pkg/logger"
	"github.com/lk2023060901/websearch-mcp/internal/pkg/sse"
)

// DefaultMaxBodyBytes 请求体默认上限
const DefaultMaxBodyBytes int64 = 1 << 20

// HandlerConfig HTTP 处理器配置
type HandlerConfig struct {
	MaxBodyBytes int64
}

// Handler MCP over HTTP SSE 入口
type Handler struct {
	dispatcher   *Dispatcher
	maxBodyBytes int64
	logger       *logger.Logger
}

// NewHandler 创建 MCP HTTP 处理器
func NewHandler(d *Dispatcher, cfg HandlerConfig, log *logger.Logger) *Handler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Handler{dispatcher: d, maxBodyBytes: cfg.MaxBodyBytes, logger: log.Named("mcp.http")}
}

// RegisterRoutes 注册路由, "/" 与 "/mcp" 等价
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/", h.Stream)
	r.POST("/mcp", h.Stream)
}

// Stream 读取请求体并以 SSE 流返回分发结果
func (h *Handler) Stream(c *gin.Context) {
	ctx := c.Request.Context()

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ErrorFrame(c, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		ErrorFrame(c, http.StatusBadRequest, "failed to read request body: "+err.Error())
		return
	}

	w := sse.NewWriter(c.Writer)
	defer w.Close()

	if err := h.dispatcher.Dispatch(ctx, body, w); err != nil {
		h.logger.WithContext(ctx).Debug("stream ended early",
			zap.Int("frames", w.Frames()),
			zap.Error(err),
		)
	}
}

// ErrorFrame 以单个 error 帧响应, 用于路由之外的 HTTP 错误
func ErrorFrame(c *gin.Context, status int, message string) {
	sse.SetHeaders(c.Writer.Header())
	frame := sse.Event{Type: sse.EventError, Data: errorMessage{Message: message}}.FormatSSE()
	c.Data(status, "text/event-stream", []byte(frame))
	c.Abort()
}
