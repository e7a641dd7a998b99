// Command bench runs synthetic workloads against the eviction policies and
// exposes optional pprof/Prometheus endpoints.
//
// Two modes:
//
//	bench            zipf-distributed read/write mix against one sharded policy
//	bench -compare   hit-rate comparison of all policies on hot-spot and scan loops
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/policycache/metrics/prom"
	"github.com/IvanBrykalov/policycache/policy"
	"github.com/IvanBrykalov/policycache/policy/arc"
	"github.com/IvanBrykalov/policycache/policy/lfu"
	"github.com/IvanBrykalov/policycache/policy/lru"
	"github.com/IvanBrykalov/policycache/policy/sharded"
)

func main() {
	var (
		capacity = flag.Int("cap", 100_000, "cache capacity (entries)")
		shards   = flag.Int("shards", 0, "number of shards (0=auto)")
		polName  = flag.String("policy", "lru", "eviction policy: lru | lruk | lfu | arc")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")
		readPct  = flag.Int("reads", 80, "read percentage [0..100]")

		keys    = flag.Int("keys", 1_000_000, "keyspace size")
		zipfS   = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV   = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed    = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		preload = flag.Int("preload", 0, "preload entries (0 = cap/2)")

		compare     = flag.Bool("compare", false, "run the hit-rate comparison across all policies and exit")
		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr")
	)
	flag.Parse()

	if *compare {
		runComparison(*capacity, *seed)
		return
	}

	if *pprofAddr != "" {
		go func() {
			log.Printf("pprof: serving at %s", *pprofAddr)
			log.Println(http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	c := sharded.New(*capacity, *shards, newInner[string, string](*polName))

	// Export wrapper-level counters for scraping during the run.
	prometheus.MustRegister(prom.NewCollector("policycache", "bench", prometheus.Labels{"policy": *polName}, c))
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Printf("metrics: serving at %s", *metricsAddr)
		log.Println(http.ListenAndServe(*metricsAddr, nil))
	}()

	// Preload half the capacity to get a realistic hit-rate.
	pl := *preload
	if pl == 0 {
		pl = *capacity / 2
	}
	for i := 0; i < pl; i++ {
		c.Put("k:"+strconv.Itoa(i), "v"+strconv.Itoa(i))
	}

	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}
	keysMax := uint64(*keys - 1)

	var reads, writes, total uint64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	var g errgroup.Group
	for w := 0; w < workersN; w++ {
		g.Go(func() error {
			// Each worker gets its own RNG + Zipf (rand.Rand is not goroutine-safe).
			localR := rand.New(rand.NewSource(*seed + int64(w)*9973))
			localZipf := rand.NewZipf(localR, *zipfS, *zipfV, keysMax)

			keyByZipf := func() string {
				return "k:" + strconv.FormatUint(localZipf.Uint64(), 10)
			}

			for ctx.Err() == nil {
				atomic.AddUint64(&total, 1)
				if int(localR.Int31n(100)) < *readPct {
					atomic.AddUint64(&reads, 1)
					c.Get(keyByZipf())
				} else {
					atomic.AddUint64(&writes, 1)
					c.Put(keyByZipf(), "v"+strconv.Itoa(localR.Int()))
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	elapsed := time.Since(start)

	s := c.Stats()
	ops := atomic.LoadUint64(&total)
	fmt.Printf("policy=%s cap=%d shards=%d workers=%d keys=%d dur=%v seed=%d\n",
		*polName, *capacity, *shards, workersN, *keys, elapsed, *seed)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d\n",
		ops, float64(ops)/elapsed.Seconds(), atomic.LoadUint64(&reads), atomic.LoadUint64(&writes))
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%  evictions=%d  Len()=%d\n",
		s.Hits, s.Misses, s.HitRate()*100, s.Evictions, c.Len())
}

// newInner maps a policy name to a per-shard constructor.
func newInner[K comparable, V any](name string) func(capacity int) policy.Interface[K, V] {
	switch name {
	case "lru":
		return func(capacity int) policy.Interface[K, V] { return lru.New[K, V](capacity) }
	case "lruk":
		return func(capacity int) policy.Interface[K, V] {
			return lru.NewK[K, V](capacity, capacity, lru.DefaultPromotionThreshold)
		}
	case "lfu":
		return func(capacity int) policy.Interface[K, V] { return lfu.New[K, V](capacity) }
	case "arc":
		return func(capacity int) policy.Interface[K, V] { return arc.New[K, V](capacity) }
	default:
		log.Fatalf("unknown policy: %q (use lru, lruk, lfu or arc)", name)
		return nil
	}
}

// runComparison replays two canonical workloads against every policy with
// the same capacity and seed and prints the hit rates side by side.
func runComparison(capacity int, seed int64) {
	fmt.Printf("capacity=%d seed=%d\n\n", capacity, seed)
	runScenario("hot-spot access (70% hot / 30% cold)", capacity, seed, hotSpotWorkload)
	runScenario("sequential scan with hot loop", capacity, seed, scanWorkload)
}

type workload func(c policy.Interface[int, string], r *rand.Rand)

func runScenario(name string, capacity int, seed int64, w workload) {
	fmt.Printf("=== %s ===\n", name)
	policies := []struct {
		name string
		c    policy.Interface[int, string]
	}{
		{"lru", lru.New[int, string](capacity)},
		{"lruk", lru.NewK[int, string](capacity, capacity*2, lru.DefaultPromotionThreshold)},
		{"lfu", lfu.New[int, string](capacity)},
		{"arc", arc.New[int, string](capacity)},
	}
	for _, p := range policies {
		w(p.c, rand.New(rand.NewSource(seed)))
		s := p.c.Stats()
		fmt.Printf("%-5s hit-rate=%6.2f%%  (hits=%d misses=%d evictions=%d)\n",
			p.name, s.HitRate()*100, s.Hits, s.Misses, s.Evictions)
	}
	fmt.Println()
}

// hotSpotWorkload hammers a small hot set with a long cold tail.
func hotSpotWorkload(c policy.Interface[int, string], r *rand.Rand) {
	const (
		ops      = 500_000
		hotKeys  = 20
		coldKeys = 5_000
	)
	key := func(i int) int {
		if i%100 < 70 {
			return r.Intn(hotKeys)
		}
		return hotKeys + r.Intn(coldKeys)
	}
	for i := 0; i < ops; i++ {
		k := key(i)
		c.Put(k, "value"+strconv.Itoa(k))
	}
	for i := 0; i < ops; i++ {
		c.Get(key(i))
	}
}

// scanWorkload mixes a resident hot loop with one-shot scan traffic, the
// pattern that floods plain LRU.
func scanWorkload(c policy.Interface[int, string], r *rand.Rand) {
	const (
		ops      = 200_000
		loopKeys = 500
		scanKeys = 50_000
	)
	for i := 0; i < loopKeys; i++ {
		c.Put(i, "value"+strconv.Itoa(i))
	}
	for i := 0; i < ops; i++ {
		switch {
		case i%10 < 6: // 60% loop over the hot range
			k := i % loopKeys
			c.Get(k)
			c.Put(k, "value"+strconv.Itoa(k))
		default: // 40% one-shot scan keys
			k := loopKeys + r.Intn(scanKeys)
			c.Put(k, "scan"+strconv.Itoa(k))
			c.Get(k)
		}
	}
}
