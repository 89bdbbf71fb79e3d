// Package ttlcache provides an in-process TTL cache with lazy expiry.
//
// Entries are logically gone once their TTL elapses but remain in the store
// until overwritten or swept. Correctness never depends on sweeping; Sweep
// exists only to bound memory.
package ttlcache

import (
	"sync"
	"time"
)

// Expiring wraps a value with its insertion time. Read treats a stale value
// as absent, which is how expiry works throughout this package: logical
// deletion first, physical removal whenever convenient.
type Expiring[V any] struct {
	value      V
	insertedAt time.Time
}

// NewExpiring creates an Expiring value stamped with the given insertion time.
func NewExpiring[V any](value V, insertedAt time.Time) Expiring[V] {
	return Expiring[V]{value: value, insertedAt: insertedAt}
}

// Read returns the value if it is still live at now under the given TTL.
// The lower bound is inclusive: a value exactly ttl old is still live.
func (e Expiring[V]) Read(now time.Time, ttl time.Duration) (V, bool) {
	if now.Sub(e.insertedAt) > ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

// InsertedAt returns the insertion timestamp.
func (e Expiring[V]) InsertedAt() time.Time {
	return e.insertedAt
}

// Cache is a TTL memo keyed by string. It is safe for concurrent use.
// State is local to the process; there is no persistence and no cross-process
// coordination.
type Cache[V any] struct {
	ttl        time.Duration
	maxEntries int

	mu      sync.Mutex
	entries map[string]Expiring[V]
}

// Option configures a Cache.
type Option func(*cacheConfig)

type cacheConfig struct {
	maxEntries int
}

// WithMaxEntries bounds the number of stored entries. When a Put would exceed
// the bound, the oldest entry is evicted first. Zero means unbounded.
func WithMaxEntries(n int) Option {
	return func(c *cacheConfig) { c.maxEntries = n }
}

// New creates an empty Cache with the given TTL.
func New[V any](ttl time.Duration, opts ...Option) *Cache[V] {
	cfg := cacheConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Cache[V]{
		ttl:        ttl,
		maxEntries: cfg.maxEntries,
		entries:    make(map[string]Expiring[V]),
	}
}

// Get returns the live value for key at now. Expired entries are treated as
// absent; they are not removed here.
func (c *Cache[V]) Get(key string, now time.Time) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return entry.Read(now, c.ttl)
}

// Put stores value under key with a fresh insertion time, unconditionally
// overwriting any existing entry. Two concurrent computations for the same
// key both complete and the later Put wins.
func (c *Cache[V]) Put(key string, value V, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.entries[key] = NewExpiring(value, now)
}

// Len returns the number of physically stored entries, including any that
// have expired but not yet been swept.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// TTL returns the cache's time-to-live.
func (c *Cache[V]) TTL() time.Duration {
	return c.ttl
}

// Sweep removes entries that are expired at now and returns how many were
// removed.
func (c *Cache[V]) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if _, ok := entry.Read(now, c.ttl); !ok {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// evictOldestLocked drops the entry with the earliest insertion time.
// Callers must hold c.mu.
func (c *Cache[V]) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for key, entry := range c.entries {
		if first || entry.insertedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.insertedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
