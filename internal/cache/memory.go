package cache

import (
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time // zero means never
}

// Memory is an in-process cache, used when no redis address is configured
// and in tests. Expired entries are dropped lazily on read.
type Memory[V any] struct {
	mu         sync.Mutex
	items      map[string]entry[V]
	defaultTTL time.Duration
	now        func() time.Time
}

func NewMemory[V any](defaultTTL time.Duration) *Memory[V] {
	return &Memory[V]{
		items:      make(map[string]entry[V]),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok {
		var zero V
		return zero, ErrNotFound
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		delete(m.items, key)
		var zero V
		return zero, ErrNotFound
	}
	return e.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	if ttl == 0 {
		ttl = m.defaultTTL
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.items[key] = entry[V]{value: value, expiresAt: expiresAt}
	m.mu.Unlock()
	return nil
}

// Len counts stored entries, expired ones included until they are read.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}
