// Package cache stores serialized comparison results in Redis or in process.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
)

// Cache is a byte cache keyed by string.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// Redis caches values in Redis with a fixed expiration
type Redis struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	logger ectologger.Logger
}

// NewRedis connects to Redis and verifies the connection
func NewRedis(ctx context.Context, cfg RedisConfig, logger ectologger.Logger) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}

	logger.WithContext(ctx).WithField("addr", cfg.Addr).Info("Connected to Redis")
	return NewRedisFromClient(rdb, cfg.TTL, cfg.Prefix, logger), nil
}

// NewRedisFromClient wraps an existing client
func NewRedisFromClient(rdb *redis.Client, ttl time.Duration, prefix string, logger ectologger.Logger) *Redis {
	return &Redis{rdb: rdb, ttl: ttl, prefix: prefix, logger: logger}
}

func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *Redis) Set(ctx context.Context, key string, value []byte) error {
	return c.rdb.Set(ctx, c.prefix+key, value, c.ttl).Err()
}

// Ping checks if Redis is reachable
func (c *Redis) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Redis) Close() error {
	return c.rdb.Close()
}

// Local is a bounded in-process cache
type Local struct {
	entries *lru.Cache[string, []byte]
}

// NewLocal creates a Local cache holding up to size entries
func NewLocal(size int) (*Local, error) {
	entries, err := lru.New[string, []byte](max(1, size))
	if err != nil {
		return nil, err
	}
	return &Local{entries: entries}, nil
}

func (c *Local) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.entries.Get(key)
	return v, ok, nil
}

func (c *Local) Set(_ context.Context, key string, value []byte) error {
	c.entries.Add(key, value)
	return nil
}
