// Package metrics holds the prometheus collectors of a session. Each session owns
// its own registry, so that several sessions may coexist in one process.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the collectors which the engine updates while running actions
type Metrics struct {
	registry *prometheus.Registry
	// PartitionsMaterialized counts Partitions computed (rather than served from the cache), by operation kind
	PartitionsMaterialized *prometheus.CounterVec
	// ElementsMaterialized counts elements in computed Partitions
	ElementsMaterialized prometheus.Counter
	// Retries counts failed materialization attempts which were retried
	Retries prometheus.Counter
	// CacheRequests counts cache lookups by result (hit, miss)
	CacheRequests *prometheus.CounterVec
	// CacheEvictions counts cached Partitions removed by expiry or unpersist
	CacheEvictions prometheus.Counter
	// CachedPartitions is the number of Partitions currently held by the cache
	CachedPartitions prometheus.Gauge
	// ActionDuration is the latency of actions, by action and status
	ActionDuration *prometheus.HistogramVec
}

// New produces a set of collectors registered against a fresh registry, labelled with the session ID
func New(sessionID string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	labels := prometheus.Labels{"session": sessionID}
	return &Metrics{
		registry: reg,
		PartitionsMaterialized: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "sparkling_partitions_materialized_total",
			Help:        "Total number of Partitions computed from their parents",
			ConstLabels: labels,
		}, []string{"kind"}),
		ElementsMaterialized: factory.NewCounter(prometheus.CounterOpts{
			Name:        "sparkling_elements_materialized_total",
			Help:        "Total number of elements in computed Partitions",
			ConstLabels: labels,
		}),
		Retries: factory.NewCounter(prometheus.CounterOpts{
			Name:        "sparkling_materialization_retries_total",
			Help:        "Total number of failed materialization attempts which were retried",
			ConstLabels: labels,
		}),
		CacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "sparkling_cache_requests_total",
			Help:        "Total number of partition cache lookups",
			ConstLabels: labels,
		}, []string{"result"}),
		CacheEvictions: factory.NewCounter(prometheus.CounterOpts{
			Name:        "sparkling_cache_evictions_total",
			Help:        "Total number of Partitions evicted from the partition cache",
			ConstLabels: labels,
		}),
		CachedPartitions: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "sparkling_cached_partitions",
			Help:        "Number of Partitions currently held by the partition cache",
			ConstLabels: labels,
		}),
		ActionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "sparkling_action_duration_seconds",
			Help:        "Action latency in seconds",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}, []string{"action", "status"}),
	}
}

// Gatherer returns the registry holding these collectors
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// CacheHit records a successful cache lookup
func (m *Metrics) CacheHit() {
	m.CacheRequests.WithLabelValues("hit").Inc()
}

// CacheMiss records an unsuccessful cache lookup
func (m *Metrics) CacheMiss() {
	m.CacheRequests.WithLabelValues("miss").Inc()
}
