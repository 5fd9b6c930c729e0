// ABOUTME: Tests for Prometheus metrics construction and nil-safety
// ABOUTME: Verifies recording works both configured and opted out

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsRecordNothing(t *testing.T) {
	// Library consumers that never configure metrics pass nil everywhere;
	// every recorder must be a no-op, not a panic.
	var m *Metrics

	m.RecordAPIRequest("productUpdateMetafields", "ok", time.Second)
	m.RecordAPIRetry()
	m.RecordTransform("number_integer", "ok")
	m.RecordCacheHit()
	m.RecordCacheMiss()
	m.RecordRateLimitWait(time.Millisecond)
	m.RecordWrite("single", "ok")
}

func TestNewMetricsRecords(t *testing.T) {
	// promauto registers globally, so construct once for the whole test.
	m := NewMetrics()

	m.RecordAPIRequest("productUpdateMetafields", "ok", 50*time.Millisecond)
	m.RecordAPIRetry()
	m.RecordTransform("number_integer", "ok")
	m.RecordTransform("number_integer", "error")
	m.RecordCacheHit()
	m.RecordCacheMiss()
	m.RecordRateLimitWait(0)
	m.RecordRateLimitWait(10 * time.Millisecond)
	m.RecordWrite("single", "ok")
	m.RecordWrite("batch", "rejected")

	if got := testutil.ToFloat64(m.APIRequestsTotal.WithLabelValues("productUpdateMetafields", "ok")); got != 1 {
		t.Errorf("Expected 1 API request, got %v", got)
	}
	if got := testutil.ToFloat64(m.APIRetriesTotal); got != 1 {
		t.Errorf("Expected 1 retry, got %v", got)
	}
	if got := testutil.ToFloat64(m.TransformsTotal.WithLabelValues("number_integer", "error")); got != 1 {
		t.Errorf("Expected 1 failed transform, got %v", got)
	}
	if got := testutil.ToFloat64(m.CacheHitsTotal); got != 1 {
		t.Errorf("Expected 1 cache hit, got %v", got)
	}
	// Only the delayed admission counts as a wait.
	if got := testutil.ToFloat64(m.RateLimitWaitsTotal); got != 1 {
		t.Errorf("Expected 1 rate limit wait, got %v", got)
	}
	if got := testutil.ToFloat64(m.WritesTotal.WithLabelValues("batch", "rejected")); got != 1 {
		t.Errorf("Expected 1 rejected batch write, got %v", got)
	}
}
