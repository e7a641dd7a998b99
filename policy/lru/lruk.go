package lru

import (
	"sync"

	"github.com/IvanBrykalov/policycache/policy"
)

// DefaultPromotionThreshold is the number of accesses a key must accumulate
// before the admission filter lets it into the main cache.
const DefaultPromotionThreshold = 2

// KCache is an LRU-K admission filter over two LRU cores: a history cache
// recording pre-admission access counts and a main cache holding the values.
// A key enters the main cache only after it was accessed at least K times,
// which keeps one-shot scan traffic from flushing warm entries.
type KCache[K comparable, V any] struct {
	mu        sync.Mutex
	threshold int
	history   *Cache[K, int]
	main      *Cache[K, V]
}

// NewK constructs an LRU-K cache. capacity bounds the main cache,
// historyCapacity bounds the access-count cache, and k is the promotion
// threshold (k <= 0 selects DefaultPromotionThreshold).
func NewK[K comparable, V any](capacity, historyCapacity, k int) *KCache[K, V] {
	if k <= 0 {
		k = DefaultPromotionThreshold
	}
	return &KCache[K, V]{
		threshold: k,
		history:   New[K, int](historyCapacity),
		main:      New[K, V](capacity),
	}
}

// Put records an access for k and inserts it into the main cache once its
// history count reaches the promotion threshold. Keys already resident in
// the main cache are updated in place.
func (c *KCache[K, V]) Put(k K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.main.Contains(k) {
		c.main.Put(k, v)
		return
	}

	n, _ := c.history.Peek(k)
	n++
	if n >= c.threshold {
		c.history.Remove(k)
		c.main.Put(k, v)
		return
	}
	c.history.Put(k, n)
}

// Get records an access for k in the history cache, then queries the main
// cache. Misses still warm the history counter, so a key read k times
// becomes admissible on its next Put.
func (c *KCache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, _ := c.history.Peek(k)
	c.history.Put(k, n+1)
	return c.main.Get(k)
}

// Remove deletes k from both the main and the history cache.
// Returns true if k was resident in the main cache.
func (c *KCache[K, V]) Remove(k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.history.Remove(k)
	return c.main.Remove(k)
}

// Len returns the number of entries resident in the main cache.
func (c *KCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.main.Len()
}

// Purge drops the main cache and all recorded history.
func (c *KCache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history.Purge()
	c.main.Purge()
}

// Stats reports the main cache's counters; the history cache is invisible
// to callers (its lookups are bookkeeping, not cache traffic).
func (c *KCache[K, V]) Stats() policy.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.main.Stats()
}

var _ policy.Interface[string, int] = (*KCache[string, int])(nil)
