package sharded

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/policycache/internal/util"
	"github.com/IvanBrykalov/policycache/policy"
	"github.com/IvanBrykalov/policycache/policy/lfu"
	"github.com/IvanBrykalov/policycache/policy/lru"
)

func newLRUShard[K comparable, V any]() func(capacity int) policy.Interface[K, V] {
	return func(capacity int) policy.Interface[K, V] { return lru.New[K, V](capacity) }
}

// keysInShard returns n distinct int keys that all map to the given shard
// of a power-of-two shard count.
func keysInShard(shard, shards, n int) []int {
	keys := make([]int, 0, n)
	for k := 0; len(keys) < n; k++ {
		if util.ShardIndex(util.Fnv64a(k), shards) == shard {
			keys = append(keys, k)
		}
	}
	return keys
}

func TestSharded_BasicPutGetRemove(t *testing.T) {
	t.Parallel()

	c := New(64, 4, newLRUShard[string, int]())
	c.Put("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get a: want 1, got %v ok=%v", v, ok)
	}
	if !c.Remove("a") {
		t.Fatal("Remove a must be true")
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("a must be absent after Remove")
	}
}

// Keys in different shards must not evict one another, even when one
// shard's local budget is saturated.
func TestSharded_ShardIsolation(t *testing.T) {
	t.Parallel()

	const (
		total  = 8
		shards = 4 // per-shard capacity = 2
	)
	c := New(total, shards, newLRUShard[int, string]())

	victimKeys := keysInShard(0, shards, 1)
	otherKeys := keysInShard(1, shards, 8)

	c.Put(victimKeys[0], "survivor")
	// Saturate shard 1 far past its 2-entry budget.
	for _, k := range otherKeys {
		c.Put(k, "filler")
	}

	if v, ok := c.Get(victimKeys[0]); !ok || v != "survivor" {
		t.Fatalf("cross-shard traffic must not evict the survivor, got %v ok=%v", v, ok)
	}
	// The wrapper as a whole stays within its total capacity.
	if c.Len() > total {
		t.Fatalf("Len %d exceeds total capacity", c.Len())
	}
}

// Auto shard count and capacity ceiling: the wrapper must accept shards=0
// and never lose the ability to store at least one entry per shard.
func TestSharded_AutoShards(t *testing.T) {
	t.Parallel()

	c := New(100, 0, newLRUShard[string, string]())
	c.Put("k", "v")
	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Fatalf("auto-sharded cache lost a value, got %q ok=%v", v, ok)
	}
}

func TestSharded_PurgeAndStats(t *testing.T) {
	t.Parallel()

	c := New(16, 2, newLRUShard[string, int]())
	c.Put("a", 1)
	c.Get("a")
	c.Get("b")

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.Entries != 1 {
		t.Fatalf("unexpected stats: %+v", s)
	}

	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("Len after Purge: want 0, got %d", c.Len())
	}
}

// A mixed workload of concurrent Put/Get/Remove on random keys.
// Should pass under -race without detector reports.
func TestSharded_Race(t *testing.T) {
	c := New(8_192, 32, func(capacity int) policy.Interface[string, []byte] {
		return lfu.New[string, []byte](capacity)
	})

	workers := 4 * runtime.GOMAXPROCS(0)
	keyspace := 50_000
	deadline := time.Now().Add(2 * time.Second)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(w)*9973))
			for time.Now().Before(deadline) {
				k := "k:" + strconv.Itoa(r.Intn(keyspace))
				switch r.Intn(100) {
				case 0, 1, 2, 3, 4: // ~5% — Remove
					c.Remove(k)
				case 5, 6, 7, 8, 9: // ~5% — Len/Stats
					c.Len()
					c.Stats()
				case 10, 11, 12, 13, 14, 15, 16, 17, 18, 19: // ~10% — Put
					c.Put(k, []byte("x"))
				default: // ~80% — Get
					c.Get(k)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}

// Concurrent GetOrLoad calls for the same key must trigger the loader at
// most once; subsequent calls are cache hits.
func TestSharded_GetOrLoadSingleflight(t *testing.T) {
	var calls int64

	c := New(1024, 4, newLRUShard[string, string](),
		WithLoader[string, string](func(_ context.Context, k string) (string, error) {
			atomic.AddInt64(&calls, 1)
			time.Sleep(5 * time.Millisecond) // simulate I/O
			return "v:" + k, nil
		}))

	const workers = 64
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			v, err := c.GetOrLoad(ctx, "k")
			if err != nil {
				return err
			}
			if v != "v:k" {
				return fmt.Errorf("got %q", v)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("loader must run exactly once, got %d", got)
	}
	if v, err := c.GetOrLoad(context.Background(), "k"); err != nil || v != "v:k" {
		t.Fatalf("second GetOrLoad failed: v=%q err=%v", v, err)
	}
}

func TestSharded_GetOrLoadNoLoader(t *testing.T) {
	t.Parallel()

	c := New(16, 2, newLRUShard[string, string]())
	if _, err := c.GetOrLoad(context.Background(), "k"); !errors.Is(err, ErrNoLoader) {
		t.Fatalf("want ErrNoLoader, got %v", err)
	}
}

// Loader failures must not poison the cache: the next call retries.
func TestSharded_GetOrLoadErrorNotCached(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var calls int64
	c := New(16, 2, newLRUShard[string, string](),
		WithLoader[string, string](func(_ context.Context, k string) (string, error) {
			if atomic.AddInt64(&calls, 1) == 1 {
				return "", boom
			}
			return "ok", nil
		}))

	if _, err := c.GetOrLoad(context.Background(), "k"); !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	v, err := c.GetOrLoad(context.Background(), "k")
	if err != nil || v != "ok" {
		t.Fatalf("retry must succeed: v=%q err=%v", v, err)
	}
}
