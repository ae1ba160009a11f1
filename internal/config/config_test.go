package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("MONGO_DB", "")
	t.Setenv("CACHE_DRIVER", "")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Mongo.Database != "storefront" {
		t.Fatalf("Mongo.Database = %q, want %q", cfg.Mongo.Database, "storefront")
	}
	if cfg.Cache.Driver != CacheDriverMemory {
		t.Fatalf("Cache.Driver = %q, want %q", cfg.Cache.Driver, CacheDriverMemory)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Fatalf("Cache.TTL = %v, want 5m", cfg.Cache.TTL)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing mongo uri", env: map[string]string{"MONGO_URI": ""}},
		{name: "bad cache driver", env: map[string]string{"MONGO_URI": "mongodb://x", "CACHE_DRIVER": "memcached"}},
		{name: "bad ttl", env: map[string]string{"MONGO_URI": "mongodb://x", "CACHE_TTL": "soon"}},
		{name: "negative timeout", env: map[string]string{"MONGO_URI": "mongodb://x", "REQUEST_TIMEOUT": "-1s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("Load() error = nil, want error")
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" http://a.com , ,http://b.com")
	if len(got) != 2 || got[0] != "http://a.com" || got[1] != "http://b.com" {
		t.Fatalf("splitList = %v", got)
	}
}
