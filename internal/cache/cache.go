// Package cache provides a generic in-process TTL cache with get-or-fetch
// semantics. Entries live until their TTL expires or the process restarts;
// there is no persistence and no negative caching.
package cache

import (
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// inflight tracks a fetch in progress so concurrent callers for the same key
// share one underlying fetch instead of stampeding the source.
type inflight[V any] struct {
	done  chan struct{}
	value V
	err   error
}

// Cache is a TTL cache keyed by string. The zero value is not usable; create
// instances with New so a test harness can construct fresh caches per test.
type Cache[V any] struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	entries  map[string]entry[V]
	inflight map[string]*inflight[V]
}

// Option customizes cache construction.
type Option[V any] func(*Cache[V])

// WithClock overrides the cache's time source. Used by tests to control
// expiry without sleeping.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *Cache[V]) { c.now = now }
}

// New creates a cache whose entries expire after ttl.
func New[V any](ttl time.Duration, opts ...Option[V]) *Cache[V] {
	c := &Cache[V]{
		ttl:      ttl,
		now:      time.Now,
		entries:  make(map[string]entry[V]),
		inflight: make(map[string]*inflight[V]),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrFetch returns the cached value for key if present and unexpired.
// Otherwise it invokes fetch, stores the result with the cache's TTL, and
// returns it. A fetch failure does not poison the cache: the error propagates
// unchanged and nothing is stored. Concurrent calls for the same key invoke
// fetch exactly once.
func (c *Cache[V]) GetOrFetch(ctx context.Context, key string, fetch func(ctx context.Context) (V, error)) (V, error) {
	for {
		c.mu.Lock()
		if e, ok := c.entries[key]; ok && c.now().Before(e.expiresAt) {
			c.mu.Unlock()
			return e.value, nil
		}
		if fl, ok := c.inflight[key]; ok {
			c.mu.Unlock()
			select {
			case <-fl.done:
			case <-ctx.Done():
				var zero V
				return zero, ctx.Err()
			}
			if fl.err == nil {
				return fl.value, nil
			}
			// The shared fetch failed; retry the loop so this caller can
			// attempt its own fetch rather than inherit a foreign failure
			// context.
			continue
		}

		fl := &inflight[V]{done: make(chan struct{})}
		c.inflight[key] = fl
		c.mu.Unlock()

		value, err := fetch(ctx)

		c.mu.Lock()
		delete(c.inflight, key)
		if err == nil {
			c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
		}
		c.mu.Unlock()

		fl.value = value
		fl.err = err
		close(fl.done)
		return value, err
	}
}

// Invalidate removes the entry for key, if any.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len reports the number of stored entries, including expired ones not yet
// overwritten. Exposed for tests and metrics.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
