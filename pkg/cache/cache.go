// Package cache stores fetched charts, geocoding results and rendered
// artifacts behind a small byte-oriented interface.
//
// Backends:
//
//   - [FileCache]: one JSON file per entry, sharded by key hash (CLI default)
//   - [RedisCache]: shared cache for the HTTP server
//   - [NullCache]: disables caching
//
// Keys are produced by a [Keyer] so that every caller derives the same key
// from the same request.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Time-to-live of each kind of entry. Charts for a given moment and place
// never change, so they live longest.
const (
	TTLChart    = 30 * 24 * time.Hour
	TTLLocation = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache is a key/value store with per-entry expiry. A ttl of zero means the
// entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend   string
	Dir       string
	RedisAddr string
	RedisDB   int
	Prefix    string
}

// Open creates the backend named by opts.Backend. An empty backend means file.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendFile:
		c, err := NewFileCache(opts.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		redisOpts := []RedisOption{WithRedisDB(opts.RedisDB)}
		if opts.Prefix != "" {
			redisOpts = append(redisOpts, WithRedisPrefix(opts.Prefix))
		}
		c, err := NewRedisCache(ctx, opts.RedisAddr, redisOpts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}
