package policy

// Interface is the uniform surface every eviction policy implements.
// All methods are safe for concurrent use; each policy instance serializes
// its operations behind a single mutex (the sharded wrapper serializes per
// shard instead).
//
// Typical complexity for operations is amortized O(1): a map lookup plus
// constant-time list adjustments under the policy lock.
type Interface[K comparable, V any] interface {
	// Put inserts or updates k→v, evicting per policy on overflow.
	// A cache constructed with capacity <= 0 silently discards.
	Put(k K, v V)

	// Get returns the value for k and a presence flag. On hit the entry's
	// policy metadata is touched (recency, frequency, hit counts).
	Get(k K) (V, bool)

	// Remove deletes k if present and returns true on success.
	Remove(k K) bool

	// Len returns the number of resident entries.
	Len() int

	// Purge drops every resident entry and all policy bookkeeping
	// (ghost lists, frequency buckets, adaptation state).
	Purge()

	// Stats returns a snapshot of the hit/miss/eviction counters.
	Stats() Stats
}

// Value returns the stored value for k, or the zero value of V on miss.
// Convenience for call sites that treat the zero value as "absent".
func Value[K comparable, V any](p Interface[K, V], k K) V {
	v, _ := p.Get(k)
	return v
}

// Stats is a point-in-time snapshot of a policy's counters.
// Counters are monotonic for the lifetime of the policy; Purge does not
// reset them.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Entries   int
}

// HitRate returns Hits / (Hits + Misses), or 0 if nothing was looked up.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Add returns the element-wise sum of two snapshots.
// Used by the sharded wrapper to aggregate per-shard counters.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Hits:      s.Hits + o.Hits,
		Misses:    s.Misses + o.Misses,
		Evictions: s.Evictions + o.Evictions,
		Entries:   s.Entries + o.Entries,
	}
}
