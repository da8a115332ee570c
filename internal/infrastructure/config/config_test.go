package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.Backend.URL != "http://localhost:3000/api" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Backend.Timeout != 30*time.Second {
		t.Errorf("backend timeout: %v", cfg.Backend.Timeout)
	}
	if cfg.Session.TTL != 24*time.Hour || cfg.Session.IdleTimeout != 2*time.Hour {
		t.Errorf("session: %+v", cfg.Session)
	}
	if cfg.Cache.Store != CacheStoreMemory || cfg.Cache.RetryDelay != time.Second {
		t.Errorf("cache: %+v", cfg.Cache)
	}
	if cfg.UploadMaxBytes != 5<<20 {
		t.Errorf("upload max: %d", cfg.UploadMaxBytes)
	}
	if cfg.JWTSecret == "" {
		t.Error("development should fall back to a dev secret")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"BACKEND_URL":  "https://api.galacash.id/api",
		"CACHE_STORE":  "redis",
		"REDIS_DB":     "3",
		"CORS_ORIGINS": "https://galacash.id,https://admin.galacash.id",
		"JWT_SECRET":   "s3cret",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend.URL != "https://api.galacash.id/api" || cfg.Cache.Store != CacheStoreRedis || cfg.Redis.DB != 3 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("cors origins: %v", cfg.CORSOrigins)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"production without secret", map[string]string{"ENV": "production"}},
		{"unknown cache store", map[string]string{"CACHE_STORE": "memcached"}},
		{"zero upload limit", map[string]string{"UPLOAD_MAX_BYTES": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := load(context.Background(), envconfig.MapLookuper(tt.env)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
