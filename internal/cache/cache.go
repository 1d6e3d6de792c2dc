// Package cache memoizes slow, rarely changing lookups (site resolution,
// forum directory). Authorization decisions are never cached here.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

var (
	ErrNotFound  = errors.New("cache: entry not found")
	ErrMarshal   = errors.New("cache: failed to marshal value")
	ErrUnmarshal = errors.New("cache: failed to unmarshal value")
)

// Cache is a key-value store with per-entry TTL. Zero ttl means the default TTL.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

func marshal[V any](v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func unmarshal[V any](data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

// Memoizer wraps a Cache and collapses concurrent misses on the same key
// into a single load.
type Memoizer[V any] struct {
	cache Cache[V]
	ttl   time.Duration
	group singleflight.Group
}

func NewMemoizer[V any](c Cache[V], ttl time.Duration) *Memoizer[V] {
	return &Memoizer[V]{cache: c, ttl: ttl}
}

// GetOrLoad returns the cached value for key or calls load on a miss.
// Load errors are returned and not cached. Cache write errors are ignored.
// The shared load is detached from the caller, so one caller going away does
// not fail the others waiting on the same key.
func (m *Memoizer[V]) GetOrLoad(ctx context.Context, key string, load func(ctx context.Context) (V, error)) (V, error) {
	var zero V
	if v, err := m.cache.Get(ctx, key); err == nil {
		return v, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := m.group.DoChan(key, func() (any, error) {
		val, err := load(shared)
		if err != nil {
			return nil, err
		}
		_ = m.cache.Set(shared, key, val, m.ttl)
		return val, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

func (m *Memoizer[V]) Forget(ctx context.Context, key string) error {
	return m.cache.Delete(ctx, key)
}
