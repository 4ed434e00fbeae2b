package client

import (
	"encoding/json"
	"fmt"
)

// Result is one search hit as returned by POST /search.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// SearchResponse is the data of a successful POST /search.
type SearchResponse struct {
	Results   []Result `json:"results"`
	Query     string   `json:"query"`
	Count     int      `json:"count"`
	Cached    bool     `json:"cached"`
	RequestID string   `json:"request_id,omitempty"`
	HTML      string   `json:"html,omitempty"`
}

// Health is the body of GET /health.
type Health struct {
	Status    string  `json:"status"`
	Timestamp float64 `json:"timestamp"`
	Service   string  `json:"service"`
}

// Healthy reports whether the server said it is alive.
func (h *Health) Healthy() bool {
	return h != nil && h.Status == "healthy"
}

// Ready is the body of GET /ready.
type Ready struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Detail string            `json:"detail,omitempty"`
}

// CacheStats mirrors the cache section of /metrics.
type CacheStats struct {
	Enabled    bool   `json:"enabled"`
	Backend    string `json:"backend"`
	Size       int    `json:"size"`
	MaxSize    int    `json:"max_size"`
	TTLSeconds int64  `json:"ttl_seconds"`
}

// Metrics is the data of GET /metrics.
type Metrics struct {
	UptimeSeconds float64          `json:"uptime_seconds"`
	Requests      int64            `json:"requests"`
	Errors        int64            `json:"errors"`
	Search        map[string]int64 `json:"search"`
	Cache         CacheStats       `json:"cache"`
	Settings      map[string]any   `json:"settings"`
}

// Event is one SSE frame of an MCP exchange.
type Event struct {
	Type string
	Data json.RawMessage
}

// ToolResult is the decoded result of a web_search tools/call.
type ToolResult struct {
	Text    string
	Query   string
	Count   int
	Cached  bool
	Results []Result
}

// APIError is returned for non-2xx REST responses.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("api error: status=%d code=%d message=%s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error: status=%d message=%s", e.StatusCode, e.Message)
}

// RPCError is an error reported inside the SSE stream.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	if e.Code == 0 {
		return e.Message
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}
