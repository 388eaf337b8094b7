// Package cache provides an in-process, concurrency-safe key/value cache with
// a pluggable eviction policy.
package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// Cache maps string keys to values of type V. The zero value is not usable;
// create one with New.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	policy  Policy
	ttl     time.Duration
	now     func() time.Time
	hits    atomic.Int64
	misses  atomic.Int64
}

type entry[V any] struct {
	value     V
	createdAt time.Time
}

// Stats contains cache performance statistics.
type Stats struct {
	Entries int     `json:"entries"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	policy Policy
	ttl    time.Duration
}

// WithPolicy sets the eviction policy. The default is Unbounded.
func WithPolicy(p Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithTTL expires entries older than ttl on read. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.ttl = ttl
	}
}

// New creates an empty cache.
func New[V any](opts ...Option) *Cache[V] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.policy == nil {
		o.policy = Unbounded()
	}
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		policy:  o.policy,
		ttl:     o.ttl,
		now:     time.Now,
	}
}

// Get returns the cached value and whether it was present.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if ok && c.ttl > 0 && c.now().Sub(e.createdAt) > c.ttl {
		delete(c.entries, key)
		c.policy.Removed(key)
		ok = false
	}
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}

	c.policy.Touched(key)
	c.hits.Add(1)
	return e.value, true
}

// Put stores value under key, evicting whatever the policy selects.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = entry[V]{value: value, createdAt: c.now()}
		c.policy.Touched(key)
		return
	}

	c.entries[key] = entry[V]{value: value, createdAt: c.now()}
	for _, victim := range c.policy.Added(key) {
		delete(c.entries, victim)
	}
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Reset drops every entry and zeroes the statistics.
func (c *Cache[V]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry[V])
	c.policy.Reset()
	c.hits.Store(0)
	c.misses.Store(0)
}

// Stats returns cache performance statistics.
func (c *Cache[V]) Stats() Stats {
	entries := c.Len()
	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return Stats{Entries: entries, Hits: hits, Misses: misses, HitRate: hitRate}
}
