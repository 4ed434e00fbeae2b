package service

import (
	"github.com/lk2023060901/websearch-mcp/internal/websearch/biz"
	"github.com/lk2023060901/websearch-mcp/internal/websearch/cache"
)

// MaxQueryLength 查询最大字符数
const MaxQueryLength = 500

// SearchRequest 搜索请求
type SearchRequest struct {
	Query      string `json:"query" binding:"required"`
	MaxResults *int   `json:"max_results" binding:"omitempty,min=1,max=20"`
}

// SearchResponse 搜索响应
type SearchResponse struct {
	Results   []biz.Record `json:"results"`
	Query     string       `json:"query"`
	Count     int          `json:"count"`
	Cached    bool         `json:"cached"`
	RequestID string       `json:"request_id,omitempty"`
	HTML      string       `json:"html,omitempty"`
}

// HealthResponse 存活检查响应
type HealthResponse struct {
	Status    string  `json:"status"`
	Timestamp float64 `json:"timestamp"`
	Service   string  `json:"service"`
}

// ReadyResponse 就绪检查响应
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Detail string            `json:"detail,omitempty"`
}

// Settings 运行时开关, 由 /metrics 输出
type Settings struct {
	RateLimitEnabled bool   `json:"rate_limit_enabled"`
	CacheEnabled     bool   `json:"cache_enabled"`
	Environment      string `json:"environment"`
	Provider         string `json:"provider"`
}

// MetricsResponse 指标响应
type MetricsResponse struct {
	UptimeSeconds float64      `json:"uptime_seconds"`
	Requests      int64        `json:"requests"`
	Errors        int64        `json:"errors"`
	Search        biz.Counters `json:"search"`
	Cache         cache.Stats  `json:"cache"`
	Settings      Settings     `json:"settings"`
}

// ClearCacheResponse 清空缓存响应
type ClearCacheResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
