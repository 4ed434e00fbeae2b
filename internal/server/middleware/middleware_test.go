package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	apperrors "github.com/lk2023060901/websearch-mcp/internal/pkg/errors"
	"github.com/lk2023060901/websearch-mcp/internal/pkg/logger"
	"github.com/lk2023060901/websearch-mcp/internal/pkg/redis"
)

func TestMemoryLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(RateLimiterConfig{MaxRequests: 3, Window: 3 * time.Second})
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 2; i >= 0; i-- {
		d, err := l.Allow(ctx, "a")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, i, d.Remaining)
	}

	d, err := l.Allow(ctx, "a")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.True(t, d.Reset.After(now))

	d, _ = l.Allow(ctx, "b")
	assert.True(t, d.Allowed, "keys are limited independently")

	now = now.Add(time.Second)
	d, _ = l.Allow(ctx, "a")
	assert.True(t, d.Allowed, "one token refills per second")
}

func TestMemoryLimiter_PrunesIdleKeys(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(RateLimiterConfig{MaxRequests: 1, Window: time.Minute})
	l.now = func() time.Time { return now }

	_, _ = l.Allow(context.Background(), "a")
	now = now.Add(2 * time.Minute)
	_, _ = l.Allow(context.Background(), "b")

	assert.Len(t, l.clients, 1)
	assert.Contains(t, l.clients, "b")
}

func newLimitedRouter(l Limiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimiter(l, RateLimiterConfig{MaxRequests: 2, Window: time.Minute}, logger.NewNop()))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestRateLimiter(t *testing.T) {
	r := newLimitedRouter(NewMemoryLimiter(RateLimiterConfig{MaxRequests: 2, Window: time.Minute}))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, int64(apperrors.ErrTooManyRequests), gjson.Get(w.Body.String(), "code").Int())
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (Decision, error) {
	return Decision{}, assert.AnError
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	r := newLimitedRouter(failingLimiter{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRedisLimiter(t *testing.T) {
	cfg := redis.DefaultConfig()
	cfg.DialTimeout = 500 * time.Millisecond
	cfg.MaxRetries = 0
	client, err := redis.New(cfg, logger.NewNop())
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	key := "rate_limit:test:" + t.Name()
	t.Cleanup(func() { _, _ = client.Del(context.Background(), key) })

	l := NewRedisLimiter(client, RateLimiterConfig{MaxRequests: 2, Window: time.Minute})
	ctx := context.Background()

	d, err := l.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)

	d, err = l.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = l.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.True(t, d.Reset.After(time.Now()))
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"https://app.example"}))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "content-type", w.Header().Get("Access-Control-Allow-Headers"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCORS_Wildcard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"*"}))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:1234")
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:1234", w.Header().Get("Access-Control-Allow-Origin"))
}
