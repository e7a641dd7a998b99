// Package policy defines the contract shared by the eviction policies in
// this module and the counter snapshots they expose.
//
// Policies
//
//   - lru: classic Least-Recently-Used with an intrusive recency list and a
//     hash index. Also provides KCache, an LRU-K admission filter that keeps
//     cold keys out of the main cache until they have proven warm.
//
//   - lfu: Least-Frequently-Used with per-frequency bucket lists, a minimum
//     frequency pointer, and periodic aging that lowers every counter by half
//     the threshold (floored at 1) once the average frequency crosses that
//     threshold. Aging keeps long-lived hot keys
//     from pinning the cache forever.
//
//   - arc: Adaptive Replacement Cache composed of a recency half (T1 plus
//     ghost B1) and a frequency half (T2 plus ghost B2). Hits on ghost lists
//     shift capacity between the halves, one entry per hit, so the split
//     tracks the live workload.
//
//   - sharded: hash-partitioned wrapper holding N independent instances of
//     any inner policy. Each operation locks only the shard its key maps to.
//
// Choosing a policy
//
// LRU is the cheapest and the right default for workloads without scans.
// LRU-K and ARC resist scan pollution; LFU favors long-term popularity.
// Wrap any of them in sharded when the cache sees heavy concurrent traffic.
//
// Basic usage
//
//	c := lru.New[string, []byte](10_000)
//	c.Put("a", []byte("1"))
//	if v, ok := c.Get("a"); ok {
//	    _ = v // use value
//	}
//	c.Remove("a")
//
// Sharded form
//
//	c := sharded.New[string, []byte](100_000, 0, func(capacity int) policy.Interface[string, []byte] {
//	    return arc.New[string, []byte](capacity)
//	})
//
// Thread-safety & complexity
//
// All operations are safe for concurrent use and run in amortized O(1):
// one map access plus a constant amount of pointer fixes under the policy
// (or shard) lock. Eviction work is O(1) per removed entry, except the LFU
// aging pass, which touches every resident entry but is amortized across
// the accesses that accumulated the frequency mass.
package policy
