package cache

import (
	"context"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lk2023060901/websearch-mcp/internal/pkg/logger"
	"github.com/lk2023060901/websearch-mcp/internal/pkg/redis"
)

// Entries live under "{prefix}:entry:<key>" with a PX expiry, and a sorted
// set "{prefix}:index" scores each key by its write time in milliseconds.
// The hash tag keeps every key in one cluster slot so the scripts stay atomic.

var storeScript = goredis.NewScript(`
local idx = KEYS[1]
local key, data = ARGV[1], ARGV[2]
local now, ttl, max = tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])
local prefix = ARGV[6]

redis.call('ZREMRANGEBYSCORE', idx, '-inf', '(' .. (now - ttl))
if not redis.call('ZSCORE', idx, key) then
	if redis.call('ZCARD', idx) >= max then
		local oldest = redis.call('ZPOPMIN', idx)
		if oldest[1] then
			redis.call('DEL', prefix .. oldest[1])
		end
	end
end
redis.call('SET', prefix .. key, data, 'PX', ttl)
redis.call('ZADD', idx, now, key)
return 1
`)

var lookupScript = goredis.NewScript(`
local v = redis.call('GET', ARGV[2] .. ARGV[1])
if not v then
	redis.call('ZREM', KEYS[1], ARGV[1])
end
return v
`)

var clearScript = goredis.NewScript(`
local members = redis.call('ZRANGE', KEYS[1], 0, -1)
for _, m in ipairs(members) do
	redis.call('DEL', ARGV[1] .. m)
end
redis.call('DEL', KEYS[1])
return #members
`)

// RedisStore shares the cache between processes through redis.
type RedisStore struct {
	cfg    Config
	client *redis.Client
	logger *logger.Logger
	now    func() time.Time
}

// NewRedisStore creates a redis backed store
func NewRedisStore(cfg Config, client *redis.Client, log *logger.Logger) *RedisStore {
	if cfg.Prefix == "" {
		cfg.Prefix = "websearch"
	}
	return &RedisStore{cfg: cfg, client: client, logger: log, now: time.Now}
}

func (s *RedisStore) indexKey() string {
	return "{" + s.cfg.Prefix + "}:index"
}

func (s *RedisStore) entryPrefix() string {
	return "{" + s.cfg.Prefix + "}:entry:"
}

func (s *RedisStore) Lookup(ctx context.Context, query string, count int) ([]byte, bool) {
	if !s.cfg.active() {
		return nil, false
	}

	res, err := s.client.Run(ctx, lookupScript, []string{s.indexKey()}, Key(query, count), s.entryPrefix())
	if err != nil {
		if !redis.IsNil(err) {
			s.logger.Warn("cache lookup failed", zap.Error(err))
		}
		return nil, false
	}
	v, ok := res.(string)
	if !ok {
		return nil, false
	}
	return []byte(v), true
}

func (s *RedisStore) Store(ctx context.Context, query string, count int, data []byte) error {
	if !s.cfg.active() {
		return nil
	}
	_, err := s.client.Run(ctx, storeScript, []string{s.indexKey()},
		Key(query, count),
		data,
		s.now().UnixMilli(),
		s.cfg.TTL.Milliseconds(),
		s.cfg.MaxSize,
		s.entryPrefix(),
	)
	return err
}

func (s *RedisStore) Clear(ctx context.Context) error {
	_, err := s.client.Run(ctx, clearScript, []string{s.indexKey()}, s.entryPrefix())
	return err
}

// Stats counts index members written within the TTL window.
func (s *RedisStore) Stats(ctx context.Context) Stats {
	since := strconv.FormatInt(s.now().Add(-s.cfg.TTL).UnixMilli(), 10)
	n, err := s.client.Universal().ZCount(ctx, s.indexKey(), since, "+inf").Result()
	if err != nil {
		s.logger.Warn("cache stats failed", zap.Error(err))
	}
	return s.cfg.stats(BackendRedis, int(n))
}
