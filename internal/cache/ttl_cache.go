// Package cache provides a thread-safe, size-bounded cache with per-entry
// expiration.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value   V
	expires time.Time
}

// TTLCache is a thread-safe cache whose entries expire individually, ttl
// after they were stored. It holds at most capacity entries; when full,
// expired entries are swept and then the entry closest to expiry is evicted.
type TTLCache[K comparable, V any] struct {
	mu       sync.RWMutex
	data     map[K]entry[V]
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

// New creates a cache. A capacity of zero or less means unbounded.
func New[K comparable, V any](ttl time.Duration, capacity int) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		data:     make(map[K]entry[V]),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// Get returns the value for key if present and not expired.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()

	if !ok || !c.now().Before(e.expires) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, resetting its expiry.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.data[key]; !exists && c.capacity > 0 && len(c.data) >= c.capacity {
		c.evictLocked(now)
	}
	c.data[key] = entry[V]{value: value, expires: now.Add(c.ttl)}
}

// evictLocked makes room for one entry. MUST be called with the write lock held.
func (c *TTLCache[K, V]) evictLocked(now time.Time) {
	for k, e := range c.data {
		if !now.Before(e.expires) {
			delete(c.data, k)
		}
	}
	if len(c.data) < c.capacity {
		return
	}

	var (
		oldest K
		first  = true
		at     time.Time
	)
	for k, e := range c.data {
		if first || e.expires.Before(at) {
			oldest, at, first = k, e.expires, false
		}
	}
	delete(c.data, oldest)
}

// Len returns the number of stored entries, including expired ones not yet
// swept.
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
