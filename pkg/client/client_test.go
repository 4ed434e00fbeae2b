package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"))
}

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	opts = append([]Option{
		WithBackoff(time.Millisecond),
		WithHTTPClient(&http.Client{Transport: &http.Transport{DisableKeepAlives: true}}),
	}, opts...)
	return New(srv.URL+"/", opts...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func envelope(data any) map[string]any {
	return map[string]any{"code": 0, "data": data}
}

func TestSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "golang", body["query"])
		assert.EqualValues(t, 3, body["max_results"])

		writeJSON(w, http.StatusOK, envelope(map[string]any{
			"query":   "golang",
			"count":   1,
			"cached":  true,
			"results": []map[string]string{{"title": "Go", "url": "https://go.dev", "snippet": "The Go language"}},
		}))
	})

	resp, err := c.Search(context.Background(), "golang", 3)
	require.NoError(t, err)
	assert.Equal(t, "golang", resp.Query)
	assert.Equal(t, 1, resp.Count)
	assert.True(t, resp.Cached)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "https://go.dev", resp.Results[0].URL)
}

func TestSearch_OmitsDefaultMaxResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, ok := body["max_results"]
		assert.False(t, ok)
		writeJSON(w, http.StatusOK, envelope(map[string]any{"query": "q"}))
	})

	_, err := c.Search(context.Background(), "q", 0)
	require.NoError(t, err)
}

func TestRetriesRetryableStatus(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"query":"retry"}`, string(body))

		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"code": 1008, "message": "busy"})
			return
		}
		writeJSON(w, http.StatusOK, envelope(map[string]any{"query": "retry"}))
	})

	resp, err := c.Search(context.Background(), "retry", 0)
	require.NoError(t, err)
	assert.Equal(t, "retry", resp.Query)
	assert.EqualValues(t, 3, calls.Load())
}

func TestRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusTooManyRequests, map[string]any{"code": 1006, "message": "Too many requests"})
	}, WithMaxRetries(2))

	_, err := c.Search(context.Background(), "q", 0)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, 1006, apiErr.Code)
	assert.Equal(t, "Too many requests", apiErr.Message)
	assert.EqualValues(t, 3, calls.Load())
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusBadRequest, map[string]any{"code": 1001, "message": "Invalid parameters"})
	})

	_, err := c.Search(context.Background(), "", 0)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.EqualValues(t, 1, calls.Load())
}

func TestContextCancelledDuringBackoff(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, WithBackoff(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Health(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHealthAndReady(t *testing.T) {
	var ready atomic.Bool
	ready.Store(true)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "timestamp": 1.5, "service": "websearch-mcp"})
		case "/ready":
			if ready.Load() {
				writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "checks": map[string]string{"provider": "ok"}})
				return
			}
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "not_ready", "checks": map[string]string{"provider": "unreachable"}, "detail": "dial tcp: refused",
			})
		}
	}, WithMaxRetries(0))

	health, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, health.Healthy())
	assert.Equal(t, "websearch-mcp", health.Service)

	r, err := c.Ready(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", r.Checks["provider"])

	ready.Store(false)
	r, err = c.Ready(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "dial tcp: refused", apiErr.Message)
	require.NotNil(t, r)
	assert.Equal(t, "unreachable", r.Checks["provider"])
}

func TestMetricsAndClearCache(t *testing.T) {
	var cleared atomic.Bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/metrics":
			writeJSON(w, http.StatusOK, envelope(map[string]any{
				"uptime_seconds": 12.5,
				"requests":       7,
				"errors":         1,
				"search":         map[string]int{"searches": 3, "cache_hits": 1},
				"cache":          map[string]any{"enabled": true, "backend": "memory", "size": 2, "max_size": 1000, "ttl_seconds": 3600},
				"settings":       map[string]any{"provider": "duckduckgo"},
			}))
		case "/cache/clear":
			assert.Equal(t, http.MethodPost, r.Method)
			cleared.Store(true)
			writeJSON(w, http.StatusOK, envelope(map[string]any{"status": "success"}))
		}
	})

	m, err := c.Metrics(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 7, m.Requests)
	assert.EqualValues(t, 1, m.Search["cache_hits"])
	assert.Equal(t, 2, m.Cache.Size)
	assert.Equal(t, "duckduckgo", m.Settings["provider"])

	require.NoError(t, c.ClearCache(context.Background()))
	assert.True(t, cleared.Load())
}

func TestEnvelopeErrorCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"code": 1008, "message": "Service unavailable"})
	})

	err := c.ClearCache(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 1008, apiErr.Code)
}

func TestSearchContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			writeJSON(w, http.StatusOK, map[string]any{"status": "healthy"})
		case "/search":
			writeJSON(w, http.StatusOK, envelope(map[string]any{
				"query":   "go",
				"count":   1,
				"cached":  true,
				"results": []map[string]string{{"title": "Go", "url": "https://go.dev", "snippet": "Build simple software"}},
			}))
		}
	})

	out, err := c.SearchContext(context.Background(), "go", 3)
	require.NoError(t, err)
	want := "Search Results for: 'go' (from cache)\nTotal Results: 1\n\n" +
		"1. Go\n   URL: https://go.dev\n   Summary: Build simple software\n\n"
	assert.Equal(t, want, out)
}

func sseHandler(t *testing.T, frames ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, mcpPath, r.URL.Path)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		for _, f := range frames {
			_, _ = fmt.Fprint(w, f)
		}
	}
}

func TestCall(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		sseHandler(t,
			"event: message\ndata: {\"jsonrpc\":\"2.0\",\"id\":7,\"result\":{\"tools\":[]}}\n\n",
			"event: done\ndata: {}\n\n",
		)(w, r)
	})

	events, err := c.Call(context.Background(), "tools/list", 7, nil)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "message", events[0].Type)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":7,"result":{"tools":[]}}`, string(events[0].Data))
	assert.Equal(t, "done", events[1].Type)

	assert.Equal(t, "2.0", got["jsonrpc"])
	assert.Equal(t, "tools/list", got["method"])
	assert.EqualValues(t, 7, got["id"])
	_, hasParams := got["params"]
	assert.False(t, hasParams)
}

func TestCall_NotificationOmitsID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var got map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, hasID := got["id"]
		assert.False(t, hasID)
		sseHandler(t, "event: done\ndata: {}\n\n")(w, r)
	})

	events, err := c.Call(context.Background(), "notifications/initialized", nil, nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "done", events[0].Type)
}

func TestSearchTool(t *testing.T) {
	result := `{"jsonrpc":"2.0","id":1,"result":{"content":[{"type":"text","text":"Search results for: go"}],` +
		`"structuredContent":{"query":"go","count":1,"cached":false,"results":[{"title":"Go","url":"https://go.dev","snippet":"s"}]},"isError":false}}`

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var got map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "tools/call", got["method"])
		params := got["params"].(map[string]any)
		assert.Equal(t, "web_search", params["name"])
		assert.Equal(t, "go", params["arguments"].(map[string]any)["query"])

		sseHandler(t, "event: message\ndata: "+result+"\n\n", "event: done\ndata: {}\n\n")(w, r)
	})

	res, err := c.SearchTool(context.Background(), "go", 0)
	require.NoError(t, err)
	assert.Equal(t, "Search results for: go", res.Text)
	assert.Equal(t, "go", res.Query)
	assert.Equal(t, 1, res.Count)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "Go", res.Results[0].Title)
}

func TestSearchTool_Errors(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		code  int
		msg   string
	}{
		{
			name:  "json-rpc error",
			frame: "event: message\ndata: {\"jsonrpc\":\"2.0\",\"id\":1,\"error\":{\"code\":-32603,\"message\":\"Search failed: boom\"}}\n\n",
			code:  -32603,
			msg:   "Search failed: boom",
		},
		{
			name:  "error event",
			frame: "event: error\ndata: {\"message\":\"Error: panic\"}\n\n",
			msg:   "Error: panic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, sseHandler(t, tt.frame, "event: done\ndata: {}\n\n"))

			_, err := c.SearchTool(context.Background(), "go", 3)
			var rpcErr *RPCError
			require.ErrorAs(t, err, &rpcErr)
			assert.Equal(t, tt.code, rpcErr.Code)
			assert.Equal(t, tt.msg, rpcErr.Message)
		})
	}
}

func TestSearchTool_NoResult(t *testing.T) {
	c := newTestClient(t, sseHandler(t, "event: done\ndata: {}\n\n"))

	_, err := c.SearchTool(context.Background(), "go", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without a result")
}
