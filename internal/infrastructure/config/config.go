package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	CacheStoreMemory = "memory"
	CacheStoreRedis  = "redis"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	CORSOrigins    []string `env:"CORS_ORIGINS,     default=*"`
	UploadMaxBytes int64    `env:"UPLOAD_MAX_BYTES, default=5242880"`
	NotifyWorkers  int      `env:"NOTIFY_WORKERS,   default=4"`

	Session SessionConfig
	Backend BackendConfig
	Cache   CacheConfig
	Redis   RedisConfig
}

type SessionConfig struct {
	TTL         time.Duration `env:"SESSION_TTL,          default=24h"`
	IdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT, default=2h"`
}

type BackendConfig struct {
	URL     string        `env:"BACKEND_URL,     default=http://localhost:3000/api"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=30s"`
}

type CacheConfig struct {
	Store      string        `env:"CACHE_STORE,       default=memory"`
	GCTime     time.Duration `env:"CACHE_GC_TIME,     default=30m"`
	RetryDelay time.Duration `env:"QUERY_RETRY_DELAY, default=1s"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// IsProduction reports whether ENV selects production behaviour (JSON logs,
// mandatory secret).
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads an optional .env file, then the process environment.
func Load(ctx context.Context) (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("JWT_SECRET is required in production")
		}
		c.JWTSecret = "galacash-dev-secret"
	}
	switch c.Cache.Store {
	case CacheStoreMemory, CacheStoreRedis:
	default:
		return fmt.Errorf("CACHE_STORE must be %q or %q, got %q", CacheStoreMemory, CacheStoreRedis, c.Cache.Store)
	}
	if c.UploadMaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}
	return nil
}
