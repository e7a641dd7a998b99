// Package prom exports policy counters to Prometheus.
//
// Policies expose monotonic counters through Stats snapshots rather than
// pushing events, so the adapter is a prometheus.Collector that reads one
// snapshot per scrape. One collector serves one cache instance.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/policycache/policy"
)

// StatsSource is anything that can snapshot its counters. Every policy in
// this module satisfies it, including the sharded wrapper.
type StatsSource interface {
	Stats() policy.Stats
}

// Collector exports a cache's hit/miss/eviction counters and resident size.
// Safe for concurrent use; Stats snapshots are internally synchronized.
type Collector struct {
	src StatsSource

	hits    *prometheus.Desc
	misses  *prometheus.Desc
	evicts  *prometheus.Desc
	entries *prometheus.Desc
}

// NewCollector builds a collector for src.
//   - ns, sub:     Prometheus namespace and subsystem
//   - constLabels: static labels applied to all metrics (may be nil)
//
// Register the result with a prometheus.Registerer; nothing is scraped
// until then.
func NewCollector(ns, sub string, constLabels prometheus.Labels, src StatsSource) *Collector {
	return &Collector{
		src: src,
		hits: prometheus.NewDesc(
			prometheus.BuildFQName(ns, sub, "hits_total"),
			"Cache hits", nil, constLabels,
		),
		misses: prometheus.NewDesc(
			prometheus.BuildFQName(ns, sub, "misses_total"),
			"Cache misses", nil, constLabels,
		),
		evicts: prometheus.NewDesc(
			prometheus.BuildFQName(ns, sub, "evictions_total"),
			"Cache evictions", nil, constLabels,
		),
		entries: prometheus.NewDesc(
			prometheus.BuildFQName(ns, sub, "size_entries"),
			"Number of resident entries", nil, constLabels,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.evicts
	ch <- c.entries
}

// Collect implements prometheus.Collector by reading one Stats snapshot.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(c.evicts, prometheus.CounterValue, float64(s.Evictions))
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(s.Entries))
}

var _ prometheus.Collector = (*Collector)(nil)
