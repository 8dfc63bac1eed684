//go:build integration

// Package containers starts Postgres, Redis and Redpanda once per test binary
// and hands the same instances to every integration suite. Ryuk reaps them
// when the binary exits.
package containers

import (
	"context"
	"sync"
	"testing"

	"github.com/testcontainers/testcontainers-go"
)

type Manager struct {
	mu       sync.Mutex
	postgres *PostgresContainer
	redis    *RedisContainer
	redpanda *RedpandaContainer
}

var (
	manager     *Manager
	managerOnce sync.Once
)

func GetManager() *Manager {
	managerOnce.Do(func() {
		manager = &Manager{}
	})
	return manager
}

func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.postgres == nil {
		m.postgres = startPostgres(context.Background(), t)
	}
	return m.postgres
}

func (m *Manager) GetRedis(t *testing.T) *RedisContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.redis == nil {
		m.redis = startRedis(context.Background(), t)
	}
	return m.redis
}

func (m *Manager) GetRedpanda(t *testing.T) *RedpandaContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.redpanda == nil {
		m.redpanda = startRedpanda(context.Background(), t)
	}
	return m.redpanda
}

// abortOn terminates c and fails the test when err is set.
func abortOn(ctx context.Context, t *testing.T, c testcontainers.Container, err error, step string) {
	t.Helper()
	if err == nil {
		return
	}
	_ = c.Terminate(ctx)
	t.Fatalf("%s: %v", step, err)
}
