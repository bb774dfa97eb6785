//go:build integration

// Package containers starts the backing services used by integration tests.
// Containers are shared per test binary; Ryuk reaps them when it exits.
package containers

import (
	"context"
	"sync"
	"testing"
	"time"
)

const startTimeout = 2 * time.Minute

// Manager lazily starts each container once and hands out the same instance.
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

// GetManager returns the process-wide container manager.
func GetManager() *Manager {
	managerOnce.Do(func() { manager = &Manager{} })
	return manager
}

func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.postgres == nil {
		ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
		defer cancel()
		pg, err := startPostgres(ctx)
		if err != nil {
			t.Fatalf("postgres: %v", err)
		}
		m.postgres = pg
	}
	return m.postgres
}

func (m *Manager) GetRedis(t *testing.T) *RedisContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.redis == nil {
		ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
		defer cancel()
		rc, err := startRedis(ctx)
		if err != nil {
			t.Fatalf("redis: %v", err)
		}
		m.redis = rc
	}
	return m.redis
}

func (m *Manager) GetRedpanda(t *testing.T) *RedpandaContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.redpanda == nil {
		ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
		defer cancel()
		rp, err := startRedpanda(ctx)
		if err != nil {
			t.Fatalf("redpanda: %v", err)
		}
		m.redpanda = rp
	}
	return m.redpanda
}
