package injector

import (
	"time"

	"github.com/lk2023060901/websearch-mcp/internal/conf"
	"github.com/lk2023060901/websearch-mcp/internal/mcp"
	"github.com/lk2023060901/websearch-mcp/internal/pkg/logger"
	"github.com/lk2023060901/websearch-mcp/internal/pkg/redis"
	"github.com/lk2023060901/websearch-mcp/internal/server/middleware"
	"github.com/lk2023060901/websearch-mcp/internal/websearch/biz"
	"github.com/lk2023060901/websearch-mcp/internal/websearch/cache"
	"github.com/lk2023060901/websearch-mcp/internal/websearch/provider"
	"github.com/lk2023060901/websearch-mcp/internal/websearch/service"
	"github.com/lk2023060901/websearch-mcp/internal/websearch/types"
)

// provideSearchProvider builds the configured upstream provider
func provideSearchProvider(config *conf.Config) (provider.Provider, error) {
	id := types.ProviderID(config.Search.Provider)
	return provider.NewFactory().Create(&types.ProviderConfig{
		ID:         id,
		Name:       string(id),
		APIHost:    config.Search.APIHost,
		APIKey:     config.Search.APIKey,
		Timeout:    int(config.Search.Timeout / time.Second),
		MaxRetries: config.Search.MaxRetries,
	})
}

// provideRedisClient connects only when a component uses the redis backend
func provideRedisClient(config *conf.Config, log *logger.Logger) (*redis.Client, func(), error) {
	if !config.NeedsRedis() {
		return nil, func() {}, nil
	}
	client, err := redis.New(&config.Redis, log)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

func provideCacheStore(config *conf.Config, client *redis.Client, log *logger.Logger) cache.Store {
	cfg := cache.Config{
		Enabled: config.Cache.Enabled,
		TTL:     config.Cache.TTLDuration(),
		MaxSize: config.Cache.MaxSize,
		Prefix:  config.Cache.KeyPrefix,
	}
	if config.Cache.Backend == conf.BackendRedis && client != nil {
		return cache.NewRedisStore(cfg, client, log)
	}
	return cache.NewMemoryStore(cfg)
}

func provideLimiter(config *conf.Config, client *redis.Client) middleware.Limiter {
	if !config.RateLimit.Enabled {
		return nil
	}
	cfg := middleware.RateLimiterConfig{
		MaxRequests: config.RateLimit.Requests,
		Window:      config.RateLimit.Period,
	}
	if config.RateLimit.Backend == conf.BackendRedis && client != nil {
		return middleware.NewRedisLimiter(client, cfg)
	}
	return middleware.NewMemoryLimiter(cfg)
}

func provideRequestStats() *service.RequestStats {
	return &service.RequestStats{}
}

func provideSearchService(
	config *conf.Config,
	uc *biz.SearchUseCase,
	stats *service.RequestStats,
	log *logger.Logger,
) *service.SearchService {
	return service.NewSearchService(uc, stats, service.Settings{
		RateLimitEnabled: config.RateLimit.Enabled,
		CacheEnabled:     config.Cache.Enabled,
		Environment:      config.Server.Environment,
	}, config.Server.Name, log)
}

func provideHandlerConfig(config *conf.Config) mcp.HandlerConfig {
	return mcp.HandlerConfig{MaxBodyBytes: config.Server.MaxBodyBytes}
}

func provideServerInfo(config *conf.Config) mcp.ServerInfo {
	return mcp.ServerInfo{Name: config.Server.Name, Version: config.Server.Version}
}
