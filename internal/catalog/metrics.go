package catalog

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names.
const (
	MetricCatalogRequests        = "catalog_requests_total"
	MetricCatalogRequestDuration = "catalog_request_duration_seconds"
	MetricCatalogCacheEvents     = "catalog_cache_events_total"
	MetricCatalogCircuitState    = "catalog_circuit_state"
	MetricCatalogSkippedDocs     = "catalog_skipped_docs_total"
)

// Metrics contains Prometheus metrics for catalog calls.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests     *prometheus.CounterVec
	duration     prometheus.Histogram
	cacheEvents  *prometheus.CounterVec
	circuitState *prometheus.GaugeVec
	skippedDocs  prometheus.Counter
}

// NewMetrics creates a new Metrics instance. Call Register to expose it.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricCatalogRequests,
				Help: "Total number of catalog search requests by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricCatalogRequestDuration,
				Help:    "Catalog search request duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
		),
		cacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricCatalogCacheEvents,
				Help: "Catalog search cache lookups by result (hit, miss, error)",
			},
			[]string{"result"},
		),
		circuitState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: MetricCatalogCircuitState,
				Help: "Catalog circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
			[]string{"name"},
		),
		skippedDocs: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricCatalogSkippedDocs,
				Help: "Catalog search documents skipped because they could not be decoded",
			},
		),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Collectors returns all Prometheus collectors.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.requests,
		m.duration,
		m.cacheEvents,
		m.circuitState,
		m.skippedDocs,
	}
}

// ObserveRequest records one upstream search.
func (m *Metrics) ObserveRequest(err error, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome(err)).Inc()
	m.duration.Observe(d.Seconds())
}

// IncCache records a cache lookup result.
func (m *Metrics) IncCache(result string) {
	if m == nil {
		return
	}
	m.cacheEvents.WithLabelValues(result).Inc()
}

// SetCircuitState records the breaker state for name.
func (m *Metrics) SetCircuitState(name string, state float64) {
	if m == nil {
		return
	}
	m.circuitState.WithLabelValues(name).Set(state)
}

// AddSkippedDocs counts undecodable documents.
func (m *Metrics) AddSkippedDocs(n int) {
	if m == nil || n == 0 {
		return
	}
	m.skippedDocs.Add(float64(n))
}
