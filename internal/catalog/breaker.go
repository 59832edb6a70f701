package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/onnwee/giftbooks/internal/gift"
)

// BreakerConfig tunes when the circuit opens and how long it stays open.
type BreakerConfig struct {
	// MinRequests is the number of calls in a window before the ratio is judged.
	MinRequests uint32
	// FailureRatio opens the circuit when reached or exceeded.
	FailureRatio float64
	// Interval resets the closed-state counts.
	Interval time.Duration
	// OpenTimeout is how long the circuit stays open before probing.
	OpenTimeout time.Duration
	// HalfOpenRequests is how many trial requests are let through while half-open.
	HalfOpenRequests uint32
}

// DefaultBreakerConfig opens after 60% failures over at least 10 calls and
// tries again after 30 seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MinRequests:      10,
		FailureRatio:     0.6,
		Interval:         time.Minute,
		OpenTimeout:      30 * time.Second,
		HalfOpenRequests: 3,
	}
}

// BreakerClient wraps a Searcher with a circuit breaker so a failing catalog
// is not hammered by every recommendation request.
type BreakerClient struct {
	next    Searcher
	cb      *gobreaker.CircuitBreaker[[]gift.CandidateRecord]
	name    string
	metrics *Metrics
}

// NewBreakerClient creates a BreakerClient named name. metrics may be nil.
func NewBreakerClient(name string, next Searcher, cfg BreakerConfig, metrics *Metrics) *BreakerClient {
	metrics.SetCircuitState(name, stateToFloat(gobreaker.StateClosed))

	cb := gobreaker.NewCircuitBreaker[[]gift.CandidateRecord](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("catalog circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
			metrics.SetCircuitState(name, stateToFloat(to))
		},
		// A caller giving up is not the catalog's fault.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &BreakerClient{
		next:    next,
		cb:      cb,
		name:    name,
		metrics: metrics,
	}
}

// Search runs the wrapped search unless the circuit is open.
func (b *BreakerClient) Search(ctx context.Context, query string) ([]gift.CandidateRecord, error) {
	records, err := b.cb.Execute(func() ([]gift.CandidateRecord, error) {
		return b.next.Search(ctx, query)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s: %v", ErrCircuitOpen, b.name, err)
	}
	return records, err
}

// State reports the breaker state ("closed", "half-open" or "open").
func (b *BreakerClient) State() string {
	return b.cb.State().String()
}

// stateToFloat converts circuit breaker state to a gauge value.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
