package middleware

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	apperrors "github.com/lk2023060901/websearch-mcp/internal/pkg/errors"
	"github.com/lk2023060901/websearch-mcp/internal/pkg/logger"
	"github.com/lk2023060901/websearch-mcp/internal/pkg/redis"
	"github.com/lk2023060901/websearch-mcp/internal/pkg/response"
	"github.com/lk2023060901/websearch-mcp/internal/pkg/validator"
)

// RateLimiterConfig 限流配置
type RateLimiterConfig struct {
	// 时间窗口内允许的最大请求数
	MaxRequests int
	// 时间窗口
	Window time.Duration
}

func (c *RateLimiterConfig) normalize() {
	if c.MaxRequests <= 0 {
		c.MaxRequests = 20
	}
	if c.Window <= 0 {
		c.Window = time.Minute
	}
}

// Decision 单次限流判定结果
type Decision struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

// Limiter 按 key 判定是否放行
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// RateLimiter 按客户端 IP 限流的 gin 中间件
func RateLimiter(l Limiter, cfg RateLimiterConfig, log *logger.Logger) gin.HandlerFunc {
	cfg.normalize()

	return func(c *gin.Context) {
		key := "rate_limit:ip:" + validator.ClientKey(c.ClientIP())
		ctx := c.Request.Context()

		d, err := l.Allow(ctx, key)
		if err != nil {
			log.WithContext(ctx).Error("rate limiter error", zap.Error(err), zap.String("key", key))
			// 限流器故障时，降级允许请求通过
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))

		if !d.Allowed {
			retry := max(1, int(time.Until(d.Reset).Round(time.Second).Seconds()))
			c.Header("Retry-After", strconv.Itoa(retry))
			response.ErrorWithCode(c, apperrors.ErrTooManyRequests,
				fmt.Sprintf("too many requests, please try again in %d seconds", retry))
			return
		}

		c.Next()
	}
}

// MemoryLimiter 进程内令牌桶限流, 每个 key 一个 rate.Limiter
type MemoryLimiter struct {
	mu        sync.Mutex
	cfg       RateLimiterConfig
	clients   map[string]*client
	lastPrune time.Time
	now       func() time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemoryLimiter 创建进程内限流器, 桶容量为 MaxRequests, 每 Window/MaxRequests 补充一个令牌
func NewMemoryLimiter(cfg RateLimiterConfig) *MemoryLimiter {
	cfg.normalize()
	return &MemoryLimiter{
		cfg:     cfg,
		clients: make(map[string]*client),
		now:     time.Now,
	}
}

// Allow 消耗一个令牌
func (m *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.prune(now)

	cl, ok := m.clients[key]
	if !ok {
		every := m.cfg.Window / time.Duration(m.cfg.MaxRequests)
		cl = &client{limiter: rate.NewLimiter(rate.Every(every), m.cfg.MaxRequests)}
		m.clients[key] = cl
	}
	cl.lastSeen = now

	allowed := cl.limiter.AllowN(now, 1)
	tokens := cl.limiter.TokensAt(now)
	d := Decision{Allowed: allowed, Remaining: max(0, int(tokens))}
	if tokens < 1 {
		wait := time.Duration((1 - tokens) / float64(cl.limiter.Limit()) * float64(time.Second))
		d.Reset = now.Add(wait)
	} else {
		d.Reset = now
	}
	return d, nil
}

// prune 丢弃一个窗口以上未活动的 key
func (m *MemoryLimiter) prune(now time.Time) {
	if now.Sub(m.lastPrune) < m.cfg.Window {
		return
	}
	m.lastPrune = now
	for k, cl := range m.clients {
		if now.Sub(cl.lastSeen) > m.cfg.Window {
			delete(m.clients, k)
		}
	}
}

// slidingWindow 滑动窗口: 清理过期记录, 未超限则记录本次请求
var slidingWindow = goredis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
local current = redis.call('ZCARD', key)

if current < limit then
	redis.call('ZADD', key, now, member)
	redis.call('PEXPIRE', key, window)
	return {1, limit - current - 1, now + window}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')[2]
return {0, 0, tonumber(oldest) + window}
`)

// RedisLimiter 基于 Redis 的滑动窗口限流, 多实例共享计数
type RedisLimiter struct {
	client *redis.Client
	cfg    RateLimiterConfig
	seq    atomic.Uint64
}

// NewRedisLimiter 创建 Redis 限流器
func NewRedisLimiter(client *redis.Client, cfg RateLimiterConfig) *RedisLimiter {
	cfg.normalize()
	return &RedisLimiter{client: client, cfg: cfg}
}

// Allow 使用 Lua 脚本原子地检查并记录请求
func (r *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := time.Now().UnixMilli()
	member := fmt.Sprintf("%d-%d", now, r.seq.Add(1))

	res, err := r.client.Run(ctx, slidingWindow, []string{key},
		now, r.cfg.Window.Milliseconds(), r.cfg.MaxRequests, member)
	if err != nil {
		return Decision{}, err
	}

	vals, ok := res.([]any)
	if !ok || len(vals) != 3 {
		return Decision{}, fmt.Errorf("invalid rate limit result: %v", res)
	}
	allowed, _ := vals[0].(int64)
	remaining, _ := vals[1].(int64)
	reset, _ := vals[2].(int64)

	return Decision{
		Allowed:   allowed == 1,
		Remaining: int(remaining),
		Reset:     time.UnixMilli(reset),
	}, nil
}
