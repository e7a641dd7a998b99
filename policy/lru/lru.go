// Package lru implements the Least-Recently-Used eviction policy and an
// LRU-K admission filter layered on top of it.
package lru

import (
	"sync"

	"github.com/IvanBrykalov/policycache/internal/list"
	"github.com/IvanBrykalov/policycache/policy"
)

// entry is the payload stored in the recency list.
type entry[K comparable, V any] struct {
	key K
	val V
}

// Cache is a classic LRU cache: one recency list (front = LRU, back = MRU)
// plus a hash index. All methods are safe for concurrent use; every
// operation runs under a single mutex.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List[entry[K, V]]
	idx      map[K]*list.Element[entry[K, V]]

	hits      uint64
	misses    uint64
	evictions uint64
}

// New constructs an LRU cache holding at most capacity entries.
// A capacity <= 0 yields a cache that rejects all insertions.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity < 0 {
		capacity = 0
	}
	return &Cache[K, V]{
		capacity: capacity,
		ll:       list.New[entry[K, V]](),
		idx:      make(map[K]*list.Element[entry[K, V]], capacity),
	}
}

// Put inserts or updates k→v and marks it most recently used.
// On overflow the least recently used entry is evicted.
func (c *Cache[K, V]) Put(k K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capacity == 0 {
		return
	}
	if el, ok := c.idx[k]; ok {
		el.Value.val = v
		c.ll.MoveToBack(el)
		return
	}
	if c.ll.Len() == c.capacity {
		c.evictLocked()
	}
	c.idx[k] = c.ll.PushBack(entry[K, V]{key: k, val: v})
}

// Get returns the value for k and promotes it to most recently used.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.idx[k]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.ll.MoveToBack(el)
	c.hits++
	return el.Value.val, true
}

// Peek returns the value for k without touching recency or counters.
func (c *Cache[K, V]) Peek(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.idx[k]; ok {
		return el.Value.val, true
	}
	var zero V
	return zero, false
}

// Contains reports whether k is resident, without side effects.
func (c *Cache[K, V]) Contains(k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.idx[k]
	return ok
}

// Remove deletes k if present and returns true on success.
func (c *Cache[K, V]) Remove(k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.idx[k]
	if !ok {
		return false
	}
	c.ll.Remove(el)
	delete(c.idx, k)
	return true
}

// Len returns the number of resident entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Purge drops every resident entry. Counters are kept.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.idx = make(map[K]*list.Element[entry[K, V]], c.capacity)
}

// Stats returns a snapshot of the hit/miss/eviction counters.
func (c *Cache[K, V]) Stats() policy.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return policy.Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Entries:   c.ll.Len(),
	}
}

// evictLocked removes the least recently used entry. mu held.
func (c *Cache[K, V]) evictLocked() {
	el := c.ll.Front()
	if el == nil {
		return
	}
	delete(c.idx, el.Value.key)
	c.ll.Remove(el)
	c.evictions++
}

var _ policy.Interface[string, int] = (*Cache[string, int])(nil)
