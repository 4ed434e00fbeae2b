package service

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// RequestStats HTTP 请求计数
type RequestStats struct {
	requests atomic.Int64
	errors   atomic.Int64
}

// Middleware 统计请求总数与状态码 >= 400 的请求
func (s *RequestStats) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		s.requests.Add(1)
		if c.Writer.Status() >= http.StatusBadRequest {
			s.errors.Add(1)
		}
	}
}

// Requests 请求总数
func (s *RequestStats) Requests() int64 { return s.requests.Load() }

// Errors 失败请求数
func (s *RequestStats) Errors() int64 { return s.errors.Load() }
