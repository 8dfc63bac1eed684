package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"ett/internal/appconfig/models"
	"ett/internal/platform/metrics"
)

const cacheKeyPrefix = "ett:appconfig:"

// Provider is the lookup the cache sits in front of.
type Provider interface {
	GetAppConfig(ctx context.Context, name models.ConfigName) (*models.AppConfig, error)
}

// RedisCache is a read-through cache of policy values. Redis failures are
// logged and bypassed: the backing provider stays the source of truth, and
// its errors are returned unchanged.
type RedisCache struct {
	next    Provider
	client  *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type CacheOption func(*RedisCache)

func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *RedisCache) {
		c.logger = logger
	}
}

func WithCacheMetrics(m *metrics.Metrics) CacheOption {
	return func(c *RedisCache) {
		c.metrics = m
	}
}

func NewRedisCache(next Provider, client *redis.Client, ttl time.Duration, opts ...CacheOption) *RedisCache {
	c := &RedisCache{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *RedisCache) GetAppConfig(ctx context.Context, name models.ConfigName) (*models.AppConfig, error) {
	key := cacheKeyPrefix + string(name)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cfg models.AppConfig
		if jsonErr := json.Unmarshal(raw, &cfg); jsonErr == nil {
			c.metrics.ObserveCacheLookup("hit")
			return &cfg, nil
		}
		c.logger.WarnContext(ctx, "discarding undecodable cached config", "name", name)
		c.metrics.ObserveCacheLookup("error")
	case errors.Is(err, redis.Nil):
		c.metrics.ObserveCacheLookup("miss")
	default:
		c.logger.WarnContext(ctx, "config cache read failed", "name", name, "error", err.Error())
		c.metrics.ObserveCacheLookup("error")
	}

	cfg, err := c.next.GetAppConfig(ctx, name)
	if err != nil {
		return nil, err
	}

	if encoded, jsonErr := json.Marshal(cfg); jsonErr == nil {
		if setErr := c.client.Set(ctx, key, encoded, c.ttl).Err(); setErr != nil {
			c.logger.WarnContext(ctx, "config cache write failed", "name", name, "error", setErr.Error())
		}
	}
	return cfg, nil
}

// Invalidate drops a cached value so the next lookup reads through.
func (c *RedisCache) Invalidate(ctx context.Context, name models.ConfigName) error {
	return c.client.Del(ctx, cacheKeyPrefix+string(name)).Err()
}
