package cache

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL is an in-memory cache whose loads are deduplicated per key.
type TTL[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	flight  singleflight.Group
	now     func() time.Time
}

// NewTTL builds a cache. A non-positive ttl keeps entries until deleted.
func NewTTL[V any](ttl time.Duration) *TTL[V] {
	return &TTL[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *TTL[V]) Get(key string) (V, bool) {
	var zero V
	if key == "" {
		return zero, false
	}

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if c.ttl > 0 && !e.expiresAt.After(c.now()) {
		c.Delete(key)
		return zero, false
	}
	return e.value, true
}

func (c *TTL[V]) Set(key string, value V) {
	if key == "" {
		return
	}
	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expiresAt: expiresAt}
	c.mu.Unlock()
}

func (c *TTL[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// GetOrLoad serves a fresh entry or runs loader once for concurrent callers.
// force skips the cached value but still stores the loaded one.
func (c *TTL[V]) GetOrLoad(ctx context.Context, key string, force bool, loader func(context.Context) (V, error)) (V, error) {
	var zero V
	if loader == nil {
		return zero, errors.New("loader is required")
	}
	if !force {
		if value, ok := c.Get(key); ok {
			return value, nil
		}
	}

	flightKey := key
	if force {
		flightKey = "force:" + key
	}
	loaded, err, _ := c.flight.Do(flightKey, func() (any, error) {
		value, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		c.Set(key, value)
		return value, nil
	})
	if err != nil {
		return zero, err
	}
	return loaded.(V), nil
}
