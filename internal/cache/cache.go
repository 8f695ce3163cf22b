// Package cache provides a small in-memory TTL cache that keeps at most a fixed
// number of entries and evicts the oldest ones first.
package cache

import (
	"sort"
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	createdAt time.Time
	expiresAt time.Time
}

// Option configures a Cache
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, used by tests to control expiry
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// Cache is safe for concurrent use. A maxEntries of zero or less disables the size bound.
type Cache[V any] struct {
	mu         sync.Mutex
	items      map[string]entry[V]
	maxEntries int
	now        func() time.Time
}

// New creates an empty cache
func New[V any](maxEntries int, opts ...Option) *Cache[V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[V]{
		items:      make(map[string]entry[V]),
		maxEntries: maxEntries,
		now:        o.now,
	}
}

// Get returns the value stored under key if it has not expired.
// Expired entries are dropped on access.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.items, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for ttl, overwriting any previous entry, and
// returns the number of entries evicted to stay within the size bound.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.items[key] = entry[V]{
		value:     value,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
	return c.prune()
}

// prune removes the oldest entries by creation time until maxEntries remain.
// Caller must hold the lock.
func (c *Cache[V]) prune() int {
	if c.maxEntries <= 0 || len(c.items) <= c.maxEntries {
		return 0
	}

	keys := make([]string, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := c.items[keys[i]].createdAt, c.items[keys[j]].createdAt
		if !a.Equal(b) {
			return a.Before(b)
		}
		return keys[i] < keys[j]
	})

	excess := len(c.items) - c.maxEntries
	for _, k := range keys[:excess] {
		delete(c.items, k)
	}
	return excess
}

// Len returns the number of stored entries, expired ones included
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// ClearExpired drops every expired entry and returns how many were removed
func (c *Cache[V]) ClearExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, e := range c.items {
		if !now.Before(e.expiresAt) {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}

// Clear empties the cache and returns how many entries it held
func (c *Cache[V]) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.items)
	c.items = make(map[string]entry[V])
	return n
}
