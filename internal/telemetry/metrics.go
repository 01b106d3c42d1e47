// Package telemetry holds the Prometheus collectors for the blog API.
package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for the service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	CacheStores        prometheus.Counter
	CacheInvalidations *prometheus.CounterVec
	PipelineOutcomes   *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blog_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "blog_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "blog_api",
			Name:      "cache_hits_total",
			Help:      "Total response cache hits.",
		}),

		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "blog_api",
			Name:      "cache_misses_total",
			Help:      "Total response cache misses.",
		}),

		CacheStores: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "blog_api",
			Name:      "cache_stores_total",
			Help:      "Total responses written to the cache.",
		}),

		CacheInvalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blog_api",
			Name:      "cache_invalidated_entries_total",
			Help:      "Total cache entries removed by resource invalidation.",
		}, []string{"resource"}),

		PipelineOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blog_api",
			Name:      "pipeline_outcomes_total",
			Help:      "Completed pipeline runs by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.CacheHits,
		m.CacheMisses,
		m.CacheStores,
		m.CacheInvalidations,
		m.PipelineOutcomes,
	)

	return m
}

// CacheLookup records a hit or a miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Inc()
		return
	}
	m.CacheMisses.Inc()
}

// CacheStored records a response written to the cache.
func (m *Metrics) CacheStored() {
	if m == nil {
		return
	}
	m.CacheStores.Inc()
}

// CacheInvalidated records n entries dropped for resource.
func (m *Metrics) CacheInvalidated(resource string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.CacheInvalidations.WithLabelValues(resource).Add(float64(n))
}

// Outcome records the end of a pipeline run.
func (m *Metrics) Outcome(operation, outcome string) {
	if m == nil {
		return
	}
	m.PipelineOutcomes.WithLabelValues(operation, outcome).Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
