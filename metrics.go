package bankclient

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// stats is the always-on counter set behind PerformanceStats. All fields are
// manipulated atomically; no lock serializes unrelated requests.
type stats struct {
	totalRequests      atomic.Int64
	successfulRequests atomic.Int64
	failedRequests     atomic.Int64
	totalDurationNs    atomic.Int64
}

// recordStart counts the request and returns the token handed back to
// recordEnd.
func (s *stats) recordStart() time.Time {
	s.totalRequests.Add(1)
	return time.Now()
}

func (s *stats) recordEnd(start time.Time, success bool) {
	elapsed := time.Since(start)
	if success {
		s.successfulRequests.Add(1)
	} else {
		s.failedRequests.Add(1)
	}
	s.totalDurationNs.Add(elapsed.Nanoseconds())
}

// snapshot computes the metrics on demand; there is no background
// aggregation goroutine.
func (s *stats) snapshot() PerformanceMetrics {
	total := s.totalRequests.Load()
	successful := s.successfulRequests.Load()
	failed := s.failedRequests.Load()
	durationNs := s.totalDurationNs.Load()

	var successRate float64
	if total > 0 {
		successRate = float64(successful) / float64(total)
	}

	var avgMs float64
	if completed := successful + failed; completed > 0 {
		avgMs = float64(durationNs) / float64(completed) / float64(time.Millisecond)
	}

	return PerformanceMetrics{
		TotalRequests:         total,
		SuccessfulRequests:    successful,
		FailedRequests:        failed,
		SuccessRate:           successRate,
		AverageResponseTimeMs: avgMs,
	}
}

// MetricsCollector provides Prometheus metrics for the request lifecycle and
// reliability layers. It is safe for concurrent use; all record methods are
// nil-receiver safe so callers never need to guard.
type MetricsCollector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec

	retriesTotal *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec

	tokenCacheHits   *prometheus.CounterVec
	tokenCacheMisses *prometheus.CounterVec
}

// NewMetricsCollector creates a metrics collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using the supplied
// registerer; tests pass a private registry to avoid collisions.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankclient_requests_total",
				Help: "Total number of HTTP requests made",
			},
			[]string{"method", "status_code", "endpoint"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankclient_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status_code", "endpoint"},
		),
		requestsInFlight: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bankclient_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
			[]string{"method", "endpoint"},
		),
		retriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankclient_retries_total",
				Help: "Total number of retry attempts",
			},
			[]string{"method", "endpoint", "attempt"},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankclient_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"code", "method", "endpoint"},
		),
		tokenCacheHits: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankclient_token_cache_hits_total",
				Help: "Total number of token cache hits",
			},
			[]string{"scope"},
		),
		tokenCacheMisses: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankclient_token_cache_misses_total",
				Help: "Total number of token cache misses",
			},
			[]string{"scope"},
		),
	}
}

// RecordRequest records request count and duration.
func (mc *MetricsCollector) RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	if mc == nil {
		return
	}

	statusCodeStr := strconv.Itoa(statusCode)
	mc.requestsTotal.WithLabelValues(method, statusCodeStr, endpoint).Inc()
	mc.requestDuration.WithLabelValues(method, statusCodeStr, endpoint).Observe(duration.Seconds())
}

// RecordRequestStart increments the in-flight gauge.
func (mc *MetricsCollector) RecordRequestStart(method, endpoint string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(method, endpoint).Inc()
}

// RecordRequestEnd decrements the in-flight gauge.
func (mc *MetricsCollector) RecordRequestEnd(method, endpoint string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(method, endpoint).Dec()
}

// RecordRetry increments the retry counter for an attempt.
func (mc *MetricsCollector) RecordRetry(method, endpoint string, attempt int) {
	if mc == nil {
		return
	}

	mc.retriesTotal.WithLabelValues(method, endpoint, strconv.Itoa(attempt)).Inc()
}

// RecordError increments the error counter by code.
func (mc *MetricsCollector) RecordError(code, method, endpoint string) {
	if mc == nil {
		return
	}

	mc.errorsTotal.WithLabelValues(code, method, endpoint).Inc()
}

// RecordTokenCacheHit increments the token cache hit counter.
func (mc *MetricsCollector) RecordTokenCacheHit(scope string) {
	if mc == nil {
		return
	}

	mc.tokenCacheHits.WithLabelValues(scope).Inc()
}

// RecordTokenCacheMiss increments the token cache miss counter.
func (mc *MetricsCollector) RecordTokenCacheMiss(scope string) {
	if mc == nil {
		return
	}

	mc.tokenCacheMisses.WithLabelValues(scope).Inc()
}
