package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOption configures a RedisCache.
type RedisOption func(*redisConfig)

type redisConfig struct {
	db          int
	prefix      string
	dialTimeout time.Duration
}

// WithRedisDB selects the logical database.
func WithRedisDB(db int) RedisOption { return func(c *redisConfig) { c.db = db } }

// WithRedisPrefix namespaces every key.
func WithRedisPrefix(p string) RedisOption { return func(c *redisConfig) { c.prefix = p } }

// WithRedisDialTimeout bounds connection attempts.
func WithRedisDialTimeout(d time.Duration) RedisOption {
	return func(c *redisConfig) { c.dialTimeout = d }
}

// RedisCache stores entries in Redis with native expiry.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisCache connects to addr and verifies the connection.
func NewRedisCache(ctx context.Context, addr string, opts ...RedisOption) (*RedisCache, error) {
	if addr == "" {
		return nil, errors.New("cache: redis address is required")
	}
	cfg := redisConfig{prefix: "natalchart:", dialTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(&cfg)
	}
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DB:          cfg.db,
		DialTimeout: cfg.dialTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache: connect redis %s: %w", addr, err)
	}
	return &RedisCache{client: client, prefix: cfg.prefix}, nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client redis.UniversalClient, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) key(k string) string { return c.prefix + k }

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.key(key), data, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}

func (c *RedisCache) Close() error { return c.client.Close() }

var _ Cache = (*RedisCache)(nil)
