// Package sharded provides a hash-partitioned wrapper holding N independent
// instances of any inner eviction policy.
//
// Each key maps to exactly one shard (fnv64a hash, masked), and every
// operation locks only that shard, so different shards run truly in
// parallel. There is no cross-shard coordination: the price is a slightly
// uneven split of the total capacity across the key space.
package sharded

import (
	"context"
	"errors"

	"github.com/IvanBrykalov/policycache/internal/singleflight"
	"github.com/IvanBrykalov/policycache/internal/util"
	"github.com/IvanBrykalov/policycache/policy"
)

// ErrNoLoader is returned by GetOrLoad when no loader was configured.
var ErrNoLoader = errors.New("sharded: no loader configured")

// Option configures optional cache parameters.
type Option[K comparable, V any] func(*options[K, V])

type options[K comparable, V any] struct {
	loader func(ctx context.Context, k K) (V, error)
}

// WithLoader installs a fetch function used by GetOrLoad on cache misses.
// Concurrent loads for the same key are coalesced.
func WithLoader[K comparable, V any](fn func(ctx context.Context, k K) (V, error)) Option[K, V] {
	return func(o *options[K, V]) { o.loader = fn }
}

// Cache partitions a total capacity across independent inner policies.
// All methods are safe for concurrent use.
type Cache[K comparable, V any] struct {
	shards []policy.Interface[K, V]
	hash   func(K) uint64
	loader func(ctx context.Context, k K) (V, error)
	sf     singleflight.Group[K, V]

	// Wrapper-level counters on their own cache lines: under concurrent
	// traffic every shard would otherwise contend on the same line.
	hits   util.PaddedAtomicUint64
	misses util.PaddedAtomicUint64
}

// New constructs a sharded cache. totalCapacity is split evenly across the
// shards (ceil division); shards <= 0 picks a heuristic based on the
// platform's reported parallelism, and any count is rounded up to a power
// of two. inner builds one policy instance per shard from its per-shard
// capacity.
func New[K comparable, V any](totalCapacity, shards int, inner func(capacity int) policy.Interface[K, V], opts ...Option[K, V]) *Cache[K, V] {
	if inner == nil {
		panic("sharded: nil inner policy constructor")
	}
	var o options[K, V]
	for _, fn := range opts {
		fn(&o)
	}

	n := shards
	if n <= 0 {
		n = util.ReasonableShardCount()
	}
	n = int(util.NextPow2(uint64(n)))

	perShard := 0
	if totalCapacity > 0 {
		perShard = (totalCapacity + n - 1) / n
	}

	cs := make([]policy.Interface[K, V], n)
	for i := range cs {
		cs[i] = inner(perShard)
	}
	return &Cache[K, V]{
		shards: cs,
		hash:   util.Fnv64a[K],
		loader: o.loader,
	}
}

// Put inserts or updates k→v in the shard that owns k.
func (c *Cache[K, V]) Put(k K, v V) {
	c.shard(k).Put(k, v)
}

// Get returns the value for k from its shard.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	v, ok := c.shard(k).Get(k)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Remove deletes k from its shard if present.
func (c *Cache[K, V]) Remove(k K) bool {
	return c.shard(k).Remove(k)
}

// Len returns the total number of resident entries across all shards.
func (c *Cache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		total += s.Len()
	}
	return total
}

// Purge drops every entry in every shard.
func (c *Cache[K, V]) Purge() {
	for _, s := range c.shards {
		s.Purge()
	}
}

// Stats aggregates the per-shard eviction and residency counters under the
// wrapper's own hit/miss counts (all traffic enters through the wrapper).
func (c *Cache[K, V]) Stats() policy.Stats {
	var agg policy.Stats
	for _, s := range c.shards {
		agg = agg.Add(s.Stats())
	}
	return policy.Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: agg.Evictions,
		Entries:   agg.Entries,
	}
}

// GetOrLoad returns the value for k, fetching it with the configured loader
// on miss. Concurrent loads for the same key run the loader once; followers
// wait for the shared result. Returns ErrNoLoader if no loader was set.
func (c *Cache[K, V]) GetOrLoad(ctx context.Context, k K) (V, error) {
	if v, ok := c.Get(k); ok {
		return v, nil
	}
	if c.loader == nil {
		var zero V
		return zero, ErrNoLoader
	}
	return c.sf.Do(ctx, k, func() (V, error) {
		// Re-check after joining the flight: the leader may have filled it.
		if v, ok := c.Get(k); ok {
			return v, nil
		}
		v, err := c.loader(ctx, k)
		if err == nil {
			c.Put(k, v)
		}
		return v, err
	})
}

// shard picks the owning shard; len(c.shards) is always a power of two.
func (c *Cache[K, V]) shard(k K) policy.Interface[K, V] {
	return c.shards[util.ShardIndex(c.hash(k), len(c.shards))]
}

var _ policy.Interface[string, int] = (*Cache[string, int])(nil)
