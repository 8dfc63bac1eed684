//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// RedisContainer is a throwaway Redis used by policy cache suites.
type RedisContainer struct {
	Container testcontainers.Container
	Addr      string
	Client    *redis.Client
}

func startRedis(ctx context.Context, t *testing.T) *RedisContainer {
	t.Helper()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}
	addr, err := container.ConnectionString(ctx)
	abortOn(ctx, t, container, err, "redis connection string")

	opts, err := redis.ParseURL(addr)
	abortOn(ctx, t, container, err, "parse redis url")

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		abortOn(ctx, t, container, err, "ping redis")
	}
	return &RedisContainer{Container: container, Addr: addr, Client: client}
}

// FlushAll drops every cached key so suites start cold.
func (r *RedisContainer) FlushAll(ctx context.Context) error {
	return r.Client.FlushAll(ctx).Err()
}
