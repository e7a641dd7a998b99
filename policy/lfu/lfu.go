// Package lfu implements a Least-Frequently-Used eviction policy with
// frequency aging.
//
// Entries live in per-frequency bucket lists; a minFreq pointer names the
// bucket the next victim comes from. Without intervention a long-lived hot
// key accumulates an unbounded count and newer data can never displace it,
// so once the average frequency exceeds a configurable threshold every
// counter is decremented by half that threshold (floored at 1). The decay
// bounds counter growth and lets the working set turn over.
package lfu

import (
	"slices"
	"sync"

	"github.com/IvanBrykalov/policycache/internal/list"
	"github.com/IvanBrykalov/policycache/policy"
)

// DefaultMaxAverage is the aging trigger used when no option overrides it.
const DefaultMaxAverage = 10

// Option configures optional cache parameters.
type Option func(*config)

type config struct {
	maxAvg int
}

// WithMaxAverage sets the average-frequency threshold that triggers an
// aging pass. Values below 1 are clamped to 1.
func WithMaxAverage(n int) Option {
	return func(c *config) {
		if n < 1 {
			n = 1
		}
		c.maxAvg = n
	}
}

// entry is the payload stored in a frequency bucket.
type entry[K comparable, V any] struct {
	key  K
	val  V
	freq int
}

// Cache is an LFU cache with aging. All methods are safe for concurrent
// use; every operation runs under a single mutex.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	maxAvg   int

	idx     map[K]*list.Element[entry[K, V]]
	buckets map[int]*list.List[entry[K, V]] // freq -> entries with that freq
	minFreq int                             // smallest non-empty bucket; 0 when empty

	// curTotal is the sum of resident frequencies. Divided by the resident
	// count it gives the running average the aging trigger compares against.
	curTotal int

	hits      uint64
	misses    uint64
	evictions uint64
}

// New constructs an LFU cache holding at most capacity entries.
// A capacity <= 0 yields a cache that rejects all insertions.
func New[K comparable, V any](capacity int, opts ...Option) *Cache[K, V] {
	if capacity < 0 {
		capacity = 0
	}
	cfg := config{maxAvg: DefaultMaxAverage}
	for _, o := range opts {
		o(&cfg)
	}
	return &Cache[K, V]{
		capacity: capacity,
		maxAvg:   cfg.maxAvg,
		idx:      make(map[K]*list.Element[entry[K, V]], capacity),
		buckets:  make(map[int]*list.List[entry[K, V]]),
	}
}

// Put inserts or updates k→v. A new entry starts at frequency 1; updating
// an existing entry counts as an access.
func (c *Cache[K, V]) Put(k K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capacity == 0 {
		return
	}
	if el, ok := c.idx[k]; ok {
		el.Value.val = v
		c.touchLocked(el)
		return
	}
	if len(c.idx) == c.capacity {
		c.evictLocked()
	}
	el := c.bucketLocked(1).PushBack(entry[K, V]{key: k, val: v, freq: 1})
	c.idx[k] = el
	c.minFreq = 1
	c.curTotal++
	c.maybeAgeLocked()
}

// Get returns the value for k and bumps its frequency on hit.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.idx[k]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.touchLocked(el)
	c.hits++
	return el.Value.val, true
}

// Remove deletes k if present and returns true on success.
func (c *Cache[K, V]) Remove(k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.idx[k]
	if !ok {
		return false
	}
	c.detachLocked(el)
	delete(c.idx, k)
	c.curTotal -= el.Value.freq
	if _, ok := c.buckets[c.minFreq]; !ok {
		c.recomputeMinFreqLocked()
	}
	return true
}

// Len returns the number of resident entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.idx)
}

// Purge drops every resident entry and all frequency state. Counters are kept.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.idx = make(map[K]*list.Element[entry[K, V]], c.capacity)
	c.buckets = make(map[int]*list.List[entry[K, V]])
	c.minFreq = 0
	c.curTotal = 0
}

// Stats returns a snapshot of the hit/miss/eviction counters.
func (c *Cache[K, V]) Stats() policy.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return policy.Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Entries:   len(c.idx),
	}
}

// -------------------- internals (mu held) --------------------

// bucketLocked returns the list for freq f, creating it if absent.
func (c *Cache[K, V]) bucketLocked(f int) *list.List[entry[K, V]] {
	l, ok := c.buckets[f]
	if !ok {
		l = list.New[entry[K, V]]()
		c.buckets[f] = l
	}
	return l
}

// touchLocked moves el one frequency bucket up and accounts the access.
func (c *Cache[K, V]) touchLocked(el *list.Element[entry[K, V]]) {
	old := el.Value.freq
	c.detachLocked(el)
	el.Value.freq = old + 1
	c.bucketLocked(old + 1).PushBackElement(el)
	// Only the +1 move can empty the min bucket, so the new minimum is old+1.
	if old == c.minFreq {
		if _, ok := c.buckets[old]; !ok {
			c.minFreq = old + 1
		}
	}
	c.curTotal++
	c.maybeAgeLocked()
}

// detachLocked unlinks el from its bucket, dropping the bucket if it empties.
func (c *Cache[K, V]) detachLocked(el *list.Element[entry[K, V]]) {
	f := el.Value.freq
	l := c.buckets[f]
	l.Remove(el)
	if l.Len() == 0 {
		delete(c.buckets, f)
	}
}

// evictLocked removes the head of the minFreq bucket: the least frequent
// entry, oldest first within its bucket.
func (c *Cache[K, V]) evictLocked() {
	l, ok := c.buckets[c.minFreq]
	if !ok {
		return
	}
	el := l.Front()
	c.detachLocked(el)
	delete(c.idx, el.Value.key)
	c.curTotal -= el.Value.freq
	c.evictions++
	if _, ok := c.buckets[c.minFreq]; !ok {
		c.recomputeMinFreqLocked()
	}
}

// maybeAgeLocked runs an aging pass once the average frequency exceeds maxAvg.
func (c *Cache[K, V]) maybeAgeLocked() {
	size := len(c.idx)
	if size == 0 {
		return
	}
	if c.curTotal/size > c.maxAvg {
		c.ageLocked()
	}
}

// ageLocked decrements every resident frequency by maxAvg/2 (floored at 1)
// and rebuckets. Bucket order is walked ascending so entries that collapse
// into the same bucket keep their relative age.
func (c *Cache[K, V]) ageLocked() {
	dec := c.maxAvg / 2
	freqs := make([]int, 0, len(c.buckets))
	for f := range c.buckets {
		freqs = append(freqs, f)
	}
	slices.Sort(freqs)

	old := c.buckets
	c.buckets = make(map[int]*list.List[entry[K, V]], len(old))
	c.curTotal = 0
	c.minFreq = 0

	for _, f := range freqs {
		nf := f - dec
		if nf < 1 {
			nf = 1
		}
		l := old[f]
		for el := l.Front(); el != nil; el = l.Front() {
			l.Remove(el)
			el.Value.freq = nf
			c.bucketLocked(nf).PushBackElement(el)
			c.curTotal += nf
		}
		if c.minFreq == 0 || nf < c.minFreq {
			c.minFreq = nf
		}
	}
}

// recomputeMinFreqLocked scans the bucket map for the smallest key.
func (c *Cache[K, V]) recomputeMinFreqLocked() {
	c.minFreq = 0
	for f := range c.buckets {
		if c.minFreq == 0 || f < c.minFreq {
			c.minFreq = f
		}
	}
}

var _ policy.Interface[string, int] = (*Cache[string, int])(nil)
