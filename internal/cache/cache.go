// Package cache keeps computed read models (finance summaries, dashboard snapshots) in Redis.
// Keys carry a global version; any write that changes the underlying documents bumps the version
// instead of deleting keys one by one. A nil *Cache is valid and always calls the loader.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const versionKey = "vdg:cache:version"

// Cache wraps Redis based caching with versioning controls
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// New connects to Redis when enabled. It returns a nil cache when caching is disabled.
func New(ctx context.Context, cfg *config.RedisConfig, logger *zap.Logger) (*Cache, error) {
	if !cfg.Enabled {
		logger.Info("Snapshot cache disabled")
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: ping %s: %w", cfg.Addr, err)
	}

	logger.Info("Snapshot cache connected", zap.String("addr", cfg.Addr), zap.Duration("ttl", cfg.TTLDuration()))
	return NewCache(client, cfg.TTLDuration(), logger), nil
}

// NewCache wraps an existing client
func NewCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// Version returns the current cache version, initialising when missing
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, versionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey composes a cache key with the current version
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", joined, ver), nil
}

// FetchJSON loads a cached value into dest or populates it using the loader. Redis failures are
// logged and fall through to the loader.
func FetchJSON[T any](ctx context.Context, c *Cache, dest *T, loader func(context.Context) (T, error), parts ...string) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if c == nil || c.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		*dest = value
		return nil
	}

	key, err := c.BuildKey(ctx, parts...)
	if err != nil {
		c.logger.Warn("Cache version lookup failed", zap.Error(err))
		value, lerr := loader(ctx)
		if lerr != nil {
			return lerr
		}
		*dest = value
		return nil
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		if jerr := json.Unmarshal(payload, dest); jerr == nil {
			return nil
		}
		c.logger.Warn("Discarding undecodable cache entry", zap.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	}

	value, err := loader(ctx)
	if err != nil {
		return err
	}
	*dest = value
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}

// Bump invalidates every cached entry by incrementing the global version
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, versionKey).Err()
}

// Invalidate bumps the version and logs instead of failing the caller's write
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.Bump(ctx); err != nil {
		c.logger.Warn("Cache invalidation failed", zap.Error(err))
	}
}

// Ping checks the Redis connection
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the client
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
