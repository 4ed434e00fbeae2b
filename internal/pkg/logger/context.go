package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
)

// RequestIDHeader is the header carrying the per-request id
const RequestIDHeader = "X-Request-ID"

// WithContext returns a logger annotated with the request id found in ctx
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	if id := GetRequestID(ctx); id != "" {
		return l.With(zap.String("request_id", id))
	}
	return l
}

// FromContext extracts the logger stored in ctx, falling back to the global one
func FromContext(ctx context.Context) *Logger {
	if ctx == nil {
		return L()
	}
	if l, ok := ctx.Value(loggerKey).(*Logger); ok && l != nil {
		return l.WithContext(ctx)
	}
	return L().WithContext(ctx)
}

// ToContext stores logger in ctx
func ToContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID extracts request ID from context
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
