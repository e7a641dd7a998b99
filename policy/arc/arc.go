// Package arc implements an Adaptive Replacement Cache.
//
// The cache splits its capacity between a recency half (T1 with ghost B1)
// and a frequency half (T2 with ghost B2). Freshly admitted keys land in
// T1; a key accessed often enough is moved into T2, seeded with the hit
// count it accumulated. Evicted keys leave a key-only ghost behind, and a
// hit on a ghost proves the corresponding half was undersized: the cache
// shifts one entry of capacity toward it. The adaptation step is bounded,
// so the split converges smoothly instead of oscillating with the workload.
//
// The halves always partition the total capacity c: the recency bound is
// the adaptive target p, the frequency bound is c - p, and p starts at c/2.
package arc

import (
	"sync"

	"github.com/IvanBrykalov/policycache/policy"
)

// DefaultTransformThreshold is the number of accesses a T1 resident needs
// before it is moved into the frequency half.
const DefaultTransformThreshold = 2

// Option configures optional cache parameters.
type Option func(*config)

type config struct {
	threshold int
}

// WithTransformThreshold sets the promotion threshold. Values below 1 are
// clamped to 1 (every first access promotes).
func WithTransformThreshold(n int) Option {
	return func(c *config) {
		if n < 1 {
			n = 1
		}
		c.threshold = n
	}
}

// Cache is an ARC cache. All methods are safe for concurrent use; both
// halves are mutated under one mutex so the capacity split stays coherent.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int

	recency   *recencyHalf[K, V]
	frequency *frequencyHalf[K, V]

	hits   uint64
	misses uint64
}

// New constructs an ARC cache holding at most capacity entries across both
// halves. A capacity <= 0 yields a cache that rejects all insertions.
func New[K comparable, V any](capacity int, opts ...Option) *Cache[K, V] {
	if capacity < 0 {
		capacity = 0
	}
	cfg := config{threshold: DefaultTransformThreshold}
	for _, o := range opts {
		o(&cfg)
	}
	p := capacity / 2
	return &Cache[K, V]{
		capacity:  capacity,
		recency:   newRecencyHalf[K, V](p, capacity, cfg.threshold),
		frequency: newFrequencyHalf[K, V](capacity-p, capacity),
	}
}

// Put inserts or updates k→v. A ghost hit first shifts capacity toward the
// half that lost the key; the key itself is (re)admitted through the
// recency half. Keys resident in the frequency half are updated in place.
func (c *Cache[K, V]) Put(k K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capacity == 0 {
		return
	}
	inGhost := c.adaptLocked(k)
	if !inGhost && c.frequency.contains(k) {
		c.frequency.put(k, v, 0)
		return
	}
	c.recency.put(k, v)
}

// Get returns the value for k. Ghost lists are consulted first: the read
// itself proves a ghost was warm, so rebalancing fires even on a miss.
// A recency hit that reaches the promotion threshold moves the entry into
// the frequency half, carrying its accumulated hit count.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.adaptLocked(k)

	if v, promote, ok := c.recency.get(k); ok {
		// Promote only if the frequency half can hold the entry; otherwise
		// it stays in T1 and the signal repeats on the next access.
		if promote && c.frequency.capacity > 0 {
			val, hits, _ := c.recency.take(k)
			c.frequency.put(k, val, hits)
		}
		c.hits++
		return v, true
	}
	if v, ok := c.frequency.get(k); ok {
		c.hits++
		return v, true
	}
	c.misses++
	var zero V
	return zero, false
}

// Remove deletes k from whichever list holds it, ghosts included.
// Returns true if k was resident.
func (c *Cache[K, V]) Remove(k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.recency.checkGhost(k)
	c.frequency.checkGhost(k)
	if c.recency.remove(k) {
		return true
	}
	return c.frequency.remove(k)
}

// Len returns the number of resident entries across both halves.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recency.len() + c.frequency.len()
}

// Purge drops all residents, ghosts, and adaptation state; the capacity
// split returns to its initial even division. Counters are kept.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.capacity / 2
	c.recency.purge(p)
	c.frequency.purge(c.capacity - p)
}

// Stats returns a snapshot of the hit/miss/eviction counters. Ghost
// overflow is not an eviction; only residents leaving count.
func (c *Cache[K, V]) Stats() policy.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return policy.Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.recency.evictions + c.frequency.evictions,
		Entries:   c.recency.len() + c.frequency.len(),
	}
}

// adaptLocked consults both ghost lists for k and shifts one entry of
// capacity toward the half that ghosted it. The shrink is attempted first
// and gates the grow, so the bounds always sum to the total capacity.
func (c *Cache[K, V]) adaptLocked(k K) bool {
	if c.recency.checkGhost(k) {
		if c.frequency.decreaseCapacity() {
			c.recency.increaseCapacity()
		}
		return true
	}
	if c.frequency.checkGhost(k) {
		if c.recency.decreaseCapacity() {
			c.frequency.increaseCapacity()
		}
		return true
	}
	return false
}

var _ policy.Interface[string, int] = (*Cache[string, int])(nil)
