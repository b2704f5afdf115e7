// Package cache memoises slow lookups by key for the lifetime of the process.
//
// Each key is queried at most once successfully. Concurrent lookups for the
// same key share one in-flight query. Failed queries are not stored, so the
// next lookup retries.
//
// Entries are never evicted: memory grows with the number of distinct keys
// seen. That is acceptable for interactive search terms; bound it with a
// capacity or TTL policy before using it for anything larger.
package cache

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// LookupFunc performs the external query for key.
type LookupFunc[V any] func(ctx context.Context, key string) (V, error)

// Cache is a memoising key/value cache. The zero value is not usable; call New.
type Cache[V any] struct {
	fn LookupFunc[V]

	mu      sync.RWMutex
	entries map[string]V

	group   singleflight.Group
	queries atomic.Int64
}

// New returns an empty cache backed by fn.
func New[V any](fn LookupFunc[V]) *Cache[V] {
	return &Cache[V]{
		fn:      fn,
		entries: make(map[string]V),
	}
}

// Lookup returns the stored value for key, querying fn on first sight.
// Empty results are stored like any other.
//
// The shared query runs without the cancellation of any one caller, so a
// caller that gives up does not fail the others waiting on the same key. fn
// must bound its own duration. Each caller still returns as soon as its own
// ctx is done.
func (c *Cache[V]) Lookup(ctx context.Context, key string) (V, error) {
	var zero V
	if v, ok := c.get(key); ok {
		return v, nil
	}

	flight := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		// A caller that lost the race with the previous flight finds the
		// stored value here.
		if v, ok := c.get(key); ok {
			return v, nil
		}
		c.queries.Add(1)
		v, err := c.fn(flight, key)
		if err != nil {
			return v, err
		}
		c.mu.Lock()
		c.entries[key] = v
		c.mu.Unlock()
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return zero, r.Err
		}
		return r.Val.(V), nil
	}
}

// Len returns the number of stored entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Queries returns how many times the lookup function has been called.
func (c *Cache[V]) Queries() int64 {
	return c.queries.Load()
}

func (c *Cache[V]) get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}
