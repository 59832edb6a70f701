// Package jobs runs periodic background work and records Prometheus metrics
// for each run.
package jobs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricBackgroundJobsTotal      = "background_jobs_total"
	MetricBackgroundJobsDuration   = "background_jobs_duration_seconds"
	MetricBackgroundJobErrorsTotal = "background_job_errors_total"
)

// Job types run by the API server.
const (
	JobTypeCacheCleanup     = "catalog_cache_cleanup"
	JobTypeRateLimitCleanup = "rate_limit_cleanup"
)

// Run outcomes for the status label.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics records background job runs. A nil *Metrics records nothing.
type Metrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

// NewMetrics builds unregistered collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricBackgroundJobsTotal,
			Help: "Background job runs by job type and status",
		}, []string{"job_type", "status"}),
		// Sweeps walk in-memory maps; anything near a second is a problem.
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricBackgroundJobsDuration,
			Help:    "Background job run time in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"job_type"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricBackgroundJobErrorsTotal,
			Help: "Failed background job runs by job type and error type",
		}, []string{"job_type", "error_type"}),
	}
}

// Register adds the collectors to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.runs, m.duration, m.errors}
}

// ObserveRun records one run of jobType. An empty errType marks success.
func (m *Metrics) ObserveRun(jobType string, elapsed time.Duration, errType string) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(jobType).Observe(elapsed.Seconds())
	if errType == "" {
		m.runs.WithLabelValues(jobType, StatusSuccess).Inc()
		return
	}
	m.runs.WithLabelValues(jobType, StatusFailure).Inc()
	m.errors.WithLabelValues(jobType, errType).Inc()
}
