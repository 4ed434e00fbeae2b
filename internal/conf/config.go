package conf

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lk2023060901/websearch-mcp/internal/pkg/logger"
	"github.com/lk2023060901/websearch-mcp/internal/pkg/redis"
)

// EnvPrefix prefixes every environment override, e.g. MCP_CACHE_TTL.
const EnvPrefix = "MCP"

// Cache and rate limit backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Search    SearchConfig    `mapstructure:"search"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Redis     redis.Config    `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       logger.Config   `mapstructure:"log"`
}

type ServerConfig struct {
	Name            string        `mapstructure:"name"`
	Version         string        `mapstructure:"version"`
	Environment     string        `mapstructure:"environment"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	GRPCPort        int           `mapstructure:"grpc_port"` // 0 disables the gRPC health server
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"` // cap on MCP request bodies
}

// Addr returns host:port for the HTTP listener
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type SearchConfig struct {
	Provider   string        `mapstructure:"provider"` // duckduckgo, searxng, tavily, exa, bocha, zhipu
	APIHost    string        `mapstructure:"api_host"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

type CacheConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	TTL       int    `mapstructure:"ttl"` // seconds
	MaxSize   int    `mapstructure:"max_size"`
	Backend   string `mapstructure:"backend"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// TTLDuration returns the TTL as a time.Duration
func (c CacheConfig) TTLDuration() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Period   time.Duration `mapstructure:"period"`
	Backend  string        `mapstructure:"backend"`
}

type CORSConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Origins []string `mapstructure:"origins"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "DuckDuckGo Web Search")
	v.SetDefault("server.version", "1.2.1")
	v.SetDefault("server.environment", "production")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.grpc_port", 0)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("search.provider", "duckduckgo")
	v.SetDefault("search.api_host", "")
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.timeout", 30*time.Second)
	v.SetDefault("search.max_retries", 1)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", 3600)
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.backend", BackendMemory)
	v.SetDefault("cache.key_prefix", "websearch")

	rd := redis.DefaultConfig()
	v.SetDefault("redis.mode", string(rd.Mode))
	v.SetDefault("redis.addr", rd.Addr)
	v.SetDefault("redis.sentinel_addrs", []string{})
	v.SetDefault("redis.master_name", "")
	v.SetDefault("redis.cluster_addrs", []string{})
	v.SetDefault("redis.username", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", rd.DB)
	v.SetDefault("redis.pool_size", rd.PoolSize)
	v.SetDefault("redis.min_idle_conns", rd.MinIdleConns)
	v.SetDefault("redis.dial_timeout", rd.DialTimeout)
	v.SetDefault("redis.read_timeout", rd.ReadTimeout)
	v.SetDefault("redis.write_timeout", rd.WriteTimeout)
	v.SetDefault("redis.max_retries", rd.MaxRetries)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 20)
	v.SetDefault("rate_limit.period", time.Minute)
	v.SetDefault("rate_limit.backend", BackendMemory)

	v.SetDefault("cors.enabled", true)
	v.SetDefault("cors.origins", []string{"*"})

	lc := logger.DefaultConfig()
	v.SetDefault("log.level", lc.Level)
	v.SetDefault("log.format", lc.Format)
	v.SetDefault("log.output", lc.Output)
	v.SetDefault("log.enable_caller", lc.EnableCaller)
	v.SetDefault("log.enable_stacktrace", lc.EnableStacktrace)
	v.SetDefault("log.file.filename", lc.File.Filename)
	v.SetDefault("log.file.max_size", lc.File.MaxSize)
	v.SetDefault("log.file.max_age", lc.File.MaxAge)
	v.SetDefault("log.file.max_backups", lc.File.MaxBackups)
	v.SetDefault("log.file.compress", lc.File.Compress)
}

// LoadConfig reads defaults, then the optional file at path, then MCP_*
// environment variables. The result is validated and never reloaded.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New("server.max_body_bytes must be > 0")
	}

	if c.Cache.Enabled && (c.Cache.TTL <= 0 || c.Cache.MaxSize <= 0) {
		return errors.New("cache.ttl and cache.max_size must be > 0 when the cache is enabled")
	}
	if err := checkBackend("cache.backend", c.Cache.Backend); err != nil {
		return err
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.Requests <= 0 || c.RateLimit.Period <= 0 {
			return errors.New("rate_limit.requests and rate_limit.period must be > 0 when rate limiting is enabled")
		}
		if err := checkBackend("rate_limit.backend", c.RateLimit.Backend); err != nil {
			return err
		}
	}

	if c.NeedsRedis() {
		if err := c.Redis.Validate(); err != nil {
			return err
		}
	}

	if c.Search.Provider == "" {
		return errors.New("search.provider is required")
	}
	return c.Log.Validate()
}

// NeedsRedis reports whether any component is configured with the redis backend
func (c *Config) NeedsRedis() bool {
	return (c.Cache.Enabled && c.Cache.Backend == BackendRedis) ||
		(c.RateLimit.Enabled && c.RateLimit.Backend == BackendRedis)
}

func checkBackend(key, v string) error {
	switch v {
	case BackendMemory, BackendRedis:
		return nil
	}
	return fmt.Errorf("%s must be %q or %q, got %q", key, BackendMemory, BackendRedis, v)
}
