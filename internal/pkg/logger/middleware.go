package logger

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MiddlewareOptions configures the request logging middleware
type MiddlewareOptions struct {
	// SkipPaths are logged at debug level only, e.g. health probes
	SkipPaths []string
	// SkipPathPrefixes behave like SkipPaths for whole subtrees
	SkipPathPrefixes []string
}

// GinLogger returns a gin middleware for logging HTTP requests
func GinLogger(logger *Logger) gin.HandlerFunc {
	return GinLoggerWithConfig(logger, MiddlewareOptions{})
}

// GinLoggerWithConfig assigns each request an id, stores a request-scoped
// logger in the request context and logs the outcome once the handler returns.
func GinLoggerWithConfig(logger *Logger, opts MiddlewareOptions) gin.HandlerFunc {
	skip := make(map[string]bool, len(opts.SkipPaths))
	for _, p := range opts.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		ctx := WithRequestID(c.Request.Context(), requestID)
		ctx = ToContext(ctx, logger)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("HTTP Request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("HTTP Request", fields...)
		case skipped(path, skip, opts.SkipPathPrefixes):
			logger.Debug("HTTP Request", fields...)
		default:
			logger.Info("HTTP Request", fields...)
		}
	}
}

func skipped(path string, exact map[string]bool, prefixes []string) bool {
	if exact[path] {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// GinRecovery returns a gin middleware for recovering from panics
func GinRecovery(logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered",
					zap.String("request_id", GetRequestID(c.Request.Context())),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("error", err),
					zap.Stack("stacktrace"),
				)
				if !c.Writer.Written() {
					c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
						"code":    http.StatusInternalServerError,
						"message": "internal server error",
					})
					return
				}
				c.Abort()
			}
		}()

		c.Next()
	}
}
