// Package config loads natalchart settings from a TOML file.
//
// The file lives at ~/.config/natalchart/config.toml unless a path is given
// explicitly. Missing files are not an error: Default values apply and a
// few environment variables override the result.
//
//	[api]
//	base_url = "https://api.natalcharts.app"
//	timeout  = "10s"
//
//	[cache]
//	backend    = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/natalchart/pkg/cache"
	apperr "github.com/matzehuels/natalchart/pkg/errors"
)

// AppName names the config and cache directories.
const AppName = "natalchart"

// Environment overrides.
const (
	EnvAPIURL    = "NATALCHART_API_URL"
	EnvRedisAddr = "NATALCHART_REDIS_ADDR"
	EnvMongoURI  = "NATALCHART_MONGO_URI"
)

// Config is the full settings tree.
type Config struct {
	API    API    `toml:"api"`
	Cache  Cache  `toml:"cache"`
	Render Render `toml:"render"`
	Server Server `toml:"server"`
	Store  Store  `toml:"store"`
	Log    Log    `toml:"log"`
}

// API configures the chart service client.
type API struct {
	BaseURL  string        `toml:"base_url"`
	Timeout  time.Duration `toml:"timeout"`
	Attempts int           `toml:"attempts"`
}

// Cache selects the cache backend.
type Cache struct {
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
	RedisDB   int    `toml:"redis_db"`
	Prefix    string `toml:"prefix"`
}

// Render holds default render options.
type Render struct {
	Formats     []string `toml:"formats"`
	Compact     bool     `toml:"compact"`
	Scale       float64  `toml:"scale"`
	IconDir     string   `toml:"icon_dir"`
	StrokeWidth float64  `toml:"stroke_width"`
}

// Server configures the HTTP API.
type Server struct {
	Addr            string        `toml:"addr"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// Store selects where render history goes. An empty MongoURI keeps it in
// memory.
type Store struct {
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Log configures the logger.
type Log struct {
	Level string `toml:"level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		API: API{
			BaseURL:  "https://api.natalcharts.app",
			Timeout:  10 * time.Second,
			Attempts: 3,
		},
		Cache: Cache{
			Backend: cache.BackendFile,
			Prefix:  "natalchart:",
		},
		Render: Render{
			Formats:     []string{"svg"},
			Scale:       1,
			StrokeWidth: 1,
		},
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: Store{
			Database:   AppName,
			Collection: "renders",
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path (or DefaultPath when empty) over Default and applies
// environment overrides. An explicit path that does not exist is an error;
// a missing default file is not.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		_, err := toml.DecodeFile(path, &cfg)
		switch {
		case err == nil:
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return Config{}, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "read config %s", path)
		}
	}
	cfg.applyEnv()
	if cfg.Cache.Dir == "" {
		if dir, err := CacheDir(); err == nil {
			cfg.Cache.Dir = dir
		}
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Cache.RedisAddr = v
		c.Cache.Backend = cache.BackendRedis
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		c.Store.MongoURI = v
	}
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	if err := apperr.ValidateURL(c.API.BaseURL); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case cache.BackendFile, cache.BackendRedis, cache.BackendNone:
	default:
		return apperr.New(apperr.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == cache.BackendRedis && c.Cache.RedisAddr == "" {
		return apperr.New(apperr.ErrCodeInvalidInput, "cache backend redis needs redis_addr")
	}
	if c.Render.Scale <= 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "render scale must be positive, got %g", c.Render.Scale)
	}
	if c.API.Attempts < 1 {
		return apperr.New(apperr.ErrCodeInvalidInput, "api attempts must be at least 1, got %d", c.API.Attempts)
	}
	return nil
}

// CacheOptions converts the cache section for cache.Open.
func (c Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:   c.Cache.Backend,
		Dir:       c.Cache.Dir,
		RedisAddr: c.Cache.RedisAddr,
		RedisDB:   c.Cache.RedisDB,
		Prefix:    c.Cache.Prefix,
	}
}

// DefaultPath returns ~/.config/natalchart/config.toml, honouring
// XDG_CONFIG_HOME.
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the cache directory using XDG standard (~/.cache/natalchart/).
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
