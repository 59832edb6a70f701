package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names exported by the middleware package.
const (
	MetricRateLimitRequests     = "rate_limit_requests_total"
	MetricRateLimitBlocked      = "rate_limit_blocked_total"
	MetricRateLimitRedisErrors  = "rate_limit_redis_errors_total"
	MetricHTTPRequestDuration   = "http_request_duration_seconds"
	MetricHTTPRequestsTotal     = "http_requests_total"
	MetricHTTPRequestSizeBytes  = "http_request_size_bytes"
	MetricHTTPResponseSizeBytes = "http_response_size_bytes"
)

var (
	httpLabelNames      = []string{"method", "path", "status"}
	rateLimitLabelNames = []string{"endpoint", "key_type"}

	// A recommendation waits on several catalog searches, so latency
	// buckets run to 10s.
	httpDurationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

	// 64 B to 64 KiB, the request body cap.
	requestSizeBuckets = prometheus.ExponentialBuckets(64, 4, 6)

	// 100 B to ~400 KB. Ten ranked gifts with subjects stay in the lower half.
	responseSizeBuckets = prometheus.ExponentialBuckets(100, 4, 7)
)

// Metrics holds the collectors shared by the HTTPMetrics and RateLimiter
// middleware. A nil *Metrics records nothing.
type Metrics struct {
	limitChecked *prometheus.CounterVec
	limitBlocked *prometheus.CounterVec
	limitFailed  prometheus.Counter

	reqDuration *prometheus.HistogramVec
	reqTotal    *prometheus.CounterVec
	reqSize     *prometheus.HistogramVec
	respSize    *prometheus.HistogramVec
}

// NewMetrics builds unregistered collectors; call Register to expose them.
func NewMetrics() *Metrics {
	histogram := func(name, help string, buckets []float64) *prometheus.HistogramVec {
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets}, httpLabelNames)
	}

	return &Metrics{
		limitChecked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricRateLimitRequests,
			Help: "Rate limit checks by endpoint and key type",
		}, rateLimitLabelNames),
		limitBlocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricRateLimitBlocked,
			Help: "Requests rejected with 429 by endpoint and key type",
		}, rateLimitLabelNames),
		limitFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricRateLimitRedisErrors,
			Help: "Redis failures during rate limiting; the request was allowed",
		}),

		reqDuration: histogram(MetricHTTPRequestDuration, "HTTP request latency in seconds", httpDurationBuckets),
		reqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricHTTPRequestsTotal,
			Help: "HTTP requests served",
		}, httpLabelNames),
		reqSize:  histogram(MetricHTTPRequestSizeBytes, "HTTP request body size in bytes", requestSizeBuckets),
		respSize: histogram(MetricHTTPResponseSizeBytes, "HTTP response body size in bytes", responseSizeBuckets),
	}
}

// Register adds every collector to reg, stopping at the first failure.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Collectors returns the collectors in registration order.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.limitChecked, m.limitBlocked, m.limitFailed,
		m.reqDuration, m.reqTotal, m.reqSize, m.respSize,
	}
}

func (m *Metrics) IncRateLimitRequests(endpoint, keyType string) {
	if m != nil {
		m.limitChecked.WithLabelValues(endpoint, keyType).Inc()
	}
}

func (m *Metrics) IncRateLimitBlocked(endpoint, keyType string) {
	if m != nil {
		m.limitBlocked.WithLabelValues(endpoint, keyType).Inc()
	}
}

// IncRateLimitRedisErrors counts a fail-open decision.
func (m *Metrics) IncRateLimitRedisErrors() {
	if m != nil {
		m.limitFailed.Inc()
	}
}

// ObserveHTTPRequest records one served request. path must already be
// normalized; duration is in seconds.
func (m *Metrics) ObserveHTTPRequest(method, path, status string, duration float64, requestSize, responseSize int64) {
	if m == nil {
		return
	}
	m.reqTotal.WithLabelValues(method, path, status).Inc()
	m.reqDuration.WithLabelValues(method, path, status).Observe(duration)
	m.reqSize.WithLabelValues(method, path, status).Observe(float64(requestSize))
	m.respSize.WithLabelValues(method, path, status).Observe(float64(responseSize))
}
