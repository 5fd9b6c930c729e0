// Package metrics provides Prometheus metrics for metafield operations
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the metafield writer. A nil
// *Metrics is valid and records nothing, so library consumers opt in.
type Metrics struct {
	// Admin API request metrics
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	APIRetriesTotal    prometheus.Counter

	// Transformation metrics
	TransformsTotal *prometheus.CounterVec

	// Definition cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	// Rate limiter metrics
	RateLimitWaitsTotal  prometheus.Counter
	RateLimitWaitSeconds prometheus.Histogram

	// Write metrics
	WritesTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	m := &Metrics{}

	m.APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metawrite_api_requests_total",
			Help: "Total number of Admin API requests",
		},
		[]string{"operation", "status"},
	)

	m.APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "metawrite_api_request_duration_seconds",
			Help:    "Duration of Admin API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	m.APIRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "metawrite_api_retries_total",
			Help: "Total number of retried Admin API requests",
		},
	)

	m.TransformsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metawrite_transforms_total",
			Help: "Total number of value transformations",
		},
		[]string{"type", "status"},
	)

	m.CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "metawrite_definition_cache_hits_total",
			Help: "Total number of definition cache hits",
		},
	)

	m.CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "metawrite_definition_cache_misses_total",
			Help: "Total number of definition cache misses",
		},
	)

	m.RateLimitWaitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "metawrite_rate_limit_waits_total",
			Help: "Total number of requests delayed by the rate limiter",
		},
	)

	m.RateLimitWaitSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "metawrite_rate_limit_wait_seconds",
			Help:    "Time spent waiting for rate limiter admission in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	m.WritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metawrite_writes_total",
			Help: "Total number of metafield writes",
		},
		[]string{"mode", "status"},
	)

	return m
}

// RecordAPIRequest records an Admin API request with its status
func (m *Metrics) RecordAPIRequest(operation string, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.APIRequestsTotal.WithLabelValues(operation, status).Inc()
	m.APIRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordAPIRetry records a retried Admin API request
func (m *Metrics) RecordAPIRetry() {
	if m == nil {
		return
	}
	m.APIRetriesTotal.Inc()
}

// RecordTransform records a value transformation
func (m *Metrics) RecordTransform(metafieldType string, status string) {
	if m == nil {
		return
	}
	m.TransformsTotal.WithLabelValues(metafieldType, status).Inc()
}

// RecordCacheHit records a definition cache hit
func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

// RecordCacheMiss records a definition cache miss
func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMissesTotal.Inc()
}

// RecordRateLimitWait records time spent waiting for admission
func (m *Metrics) RecordRateLimitWait(wait time.Duration) {
	if m == nil {
		return
	}
	if wait > 0 {
		m.RateLimitWaitsTotal.Inc()
	}
	m.RateLimitWaitSeconds.Observe(wait.Seconds())
}

// RecordWrite records a metafield write outcome
func (m *Metrics) RecordWrite(mode string, status string) {
	if m == nil {
		return
	}
	m.WritesTotal.WithLabelValues(mode, status).Inc()
}
