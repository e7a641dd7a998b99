package lru

import (
	"strconv"
	"testing"
)

// Deterministic LRU eviction order: a promoted entry survives, the
// untouched one goes.
func TestLRU_EvictionOrder(t *testing.T) {
	t.Parallel()

	c := New[int, string](3)
	c.Put(1, "a")
	c.Put(2, "b")
	c.Put(3, "c")

	if _, ok := c.Get(1); !ok { // promote 1 -> MRU
		t.Fatal("expect hit for 1")
	}
	c.Put(4, "d") // overflow -> evict LRU (2)

	if _, ok := c.Get(2); ok {
		t.Fatal("2 must be evicted")
	}
	for _, k := range []int{1, 3, 4} {
		if _, ok := c.Get(k); !ok {
			t.Fatalf("%d must survive", k)
		}
	}
}

// Put on an existing key updates the value in place and promotes it.
func TestLRU_UpdateSemantics(t *testing.T) {
	t.Parallel()

	c := New[string, int](2)
	c.Put("a", 1)
	c.Put("a", 11)
	if v, ok := c.Get("a"); !ok || v != 11 {
		t.Fatalf("Get a: want 11, got %v ok=%v", v, ok)
	}
	if c.Len() != 1 {
		t.Fatalf("update must not grow the cache, Len=%d", c.Len())
	}

	c.Put("b", 2)
	c.Put("a", 111) // update promotes "a", so "b" is now LRU
	c.Put("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Fatal("b must be evicted after a's update promoted it")
	}
}

func TestLRU_RemoveAndLen(t *testing.T) {
	t.Parallel()

	c := New[string, int](4)
	c.Put("a", 1)
	c.Put("b", 2)

	if !c.Remove("a") {
		t.Fatal("Remove a must be true")
	}
	if c.Remove("a") {
		t.Fatal("second Remove a must be false")
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("a must be absent after Remove")
	}
	if c.Len() != 1 {
		t.Fatalf("Len: want 1, got %d", c.Len())
	}
}

// A capacity <= 0 cache rejects all insertions and always misses.
func TestLRU_ZeroCapacity(t *testing.T) {
	t.Parallel()

	for _, capacity := range []int{0, -5} {
		c := New[string, int](capacity)
		c.Put("a", 1)
		if _, ok := c.Get("a"); ok {
			t.Fatalf("capacity %d: Get must miss", capacity)
		}
		if c.Len() != 0 {
			t.Fatalf("capacity %d: Len must be 0", capacity)
		}
	}
}

// Peek and Contains must not disturb recency.
func TestLRU_PeekDoesNotPromote(t *testing.T) {
	t.Parallel()

	c := New[int, string](2)
	c.Put(1, "a")
	c.Put(2, "b")

	if v, ok := c.Peek(1); !ok || v != "a" {
		t.Fatalf("Peek 1: want a, got %q ok=%v", v, ok)
	}
	if !c.Contains(1) {
		t.Fatal("Contains 1 must be true")
	}

	c.Put(3, "c") // 1 is still LRU despite the Peek
	if _, ok := c.Get(1); ok {
		t.Fatal("1 must be evicted: Peek must not promote")
	}
}

func TestLRU_PurgeAndStats(t *testing.T) {
	t.Parallel()

	c := New[string, int](2)
	c.Put("a", 1)
	c.Get("a")
	c.Get("zzz")
	c.Put("b", 2)
	c.Put("c", 3) // evicts one

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.Evictions != 1 || s.Entries != 2 {
		t.Fatalf("unexpected stats: %+v", s)
	}

	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("Len after Purge: want 0, got %d", c.Len())
	}
	// Counters survive the purge.
	if s2 := c.Stats(); s2.Hits != 1 || s2.Entries != 0 {
		t.Fatalf("stats after Purge: %+v", s2)
	}

	c.Put("x", 9)
	if v, ok := c.Get("x"); !ok || v != 9 {
		t.Fatal("cache must be usable after Purge")
	}
}

// Churning capacity-many unrelated keys may evict earlier entries but must
// never corrupt lookups for the survivors.
func TestLRU_ChurnKeepsSurvivorsIntact(t *testing.T) {
	t.Parallel()

	const capacity = 32
	c := New[string, int](capacity)
	for i := 0; i < 10*capacity; i++ {
		c.Put("k:"+strconv.Itoa(i), i)
		if c.Len() > capacity {
			t.Fatalf("Len %d exceeds capacity", c.Len())
		}
	}
	// The most recent `capacity` keys must all be present with right values.
	for i := 9 * capacity; i < 10*capacity; i++ {
		k := "k:" + strconv.Itoa(i)
		if v, ok := c.Get(k); !ok || v != i {
			t.Fatalf("survivor %s: want %d, got %v ok=%v", k, i, v, ok)
		}
	}
}
