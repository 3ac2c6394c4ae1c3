package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/natalchart/pkg/cache"
	apperr "github.com/matzehuels/natalchart/pkg/errors"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvRedisAddr, "")
	t.Setenv(EnvMongoURI, "")
	return dir
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.BaseURL != "https://api.natalcharts.app" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Cache.Backend != cache.BackendFile {
		t.Errorf("Backend = %q", cfg.Cache.Backend)
	}
	if want := filepath.Join(dir, "cache", AppName); cfg.Cache.Dir != want {
		t.Errorf("Cache.Dir = %q, want %q", cfg.Cache.Dir, want)
	}
	if cfg.Store.Collection != "renders" {
		t.Errorf("Collection = %q", cfg.Store.Collection)
	}
}

func TestLoadDefaultPath(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config", AppName, "config.toml"), `
[api]
timeout = "3s"

[render]
compact = true
formats = ["svg", "png"]
`)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", cfg.API.Timeout)
	}
	if !cfg.Render.Compact || len(cfg.Render.Formats) != 2 {
		t.Errorf("Render = %+v", cfg.Render)
	}
	if cfg.API.BaseURL == "" || cfg.Server.Addr != ":8080" {
		t.Error("unset keys lost their defaults")
	}
}

func TestLoadExplicitPath(t *testing.T) {
	dir := isolate(t)

	if _, err := Load(filepath.Join(dir, "missing.toml")); !apperr.Is(err, apperr.ErrCodeInvalidFormat) {
		t.Errorf("Load(missing) = %v, want INVALID_FORMAT", err)
	}

	bad := filepath.Join(dir, "bad.toml")
	writeFile(t, bad, "[api\nbase_url =")
	if _, err := Load(bad); !apperr.Is(err, apperr.ErrCodeInvalidFormat) {
		t.Errorf("Load(bad) = %v, want INVALID_FORMAT", err)
	}

	good := filepath.Join(dir, "good.toml")
	writeFile(t, good, `
[cache]
backend = "none"
dir     = "/tmp/charts"

[server]
addr = "127.0.0.1:9000"
`)
	cfg, err := Load(good)
	if err != nil {
		t.Fatalf("Load(good) error: %v", err)
	}
	if cfg.Cache.Backend != cache.BackendNone || cfg.Cache.Dir != "/tmp/charts" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(EnvAPIURL, "http://localhost:5000")
	t.Setenv(EnvRedisAddr, "redis:6379")
	t.Setenv(EnvMongoURI, "mongodb://mongo:27017")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:5000" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Cache.Backend != cache.BackendRedis || cfg.Cache.RedisAddr != "redis:6379" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Store.MongoURI != "mongodb://mongo:27017" {
		t.Errorf("MongoURI = %q", cfg.Store.MongoURI)
	}
	if opts := cfg.CacheOptions(); opts.Backend != cache.BackendRedis || opts.RedisAddr != "redis:6379" {
		t.Errorf("CacheOptions() = %+v", opts)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad url", func(c *Config) { c.API.BaseURL = "ftp://charts" }},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"redis without addr", func(c *Config) { c.Cache.Backend = cache.BackendRedis }},
		{"zero scale", func(c *Config) { c.Render.Scale = 0 }},
		{"zero attempts", func(c *Config) { c.API.Attempts = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}
