// Package recommend composes query generation, catalog fetches and ranking
// into a single recommendation call.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/onnwee/giftbooks/internal/catalog"
	"github.com/onnwee/giftbooks/internal/gift"
	"github.com/onnwee/giftbooks/internal/tracing"
)

// DefaultMaxConcurrentFetches bounds parallel catalog calls per request.
const DefaultMaxConcurrentFetches = gift.MaxQueries

// ErrCatalog wraps the catalog error returned when no query could be fetched.
var ErrCatalog = errors.New("no catalog results")

// Result is the outcome of one recommendation.
type Result struct {
	Queries         []string          `json:"queries"`
	Recommendations []gift.RankedGift `json:"recommendations"`
}

// Service produces recommendations for recipient profiles.
type Service struct {
	searcher    catalog.Searcher
	ranker      *gift.Ranker
	concurrency int
}

// Option configures a Service.
type Option func(*Service)

// WithRanker replaces the default-weight ranker.
func WithRanker(r *gift.Ranker) Option {
	return func(s *Service) {
		if r != nil {
			s.ranker = r
		}
	}
}

// WithMaxConcurrentFetches bounds parallel catalog calls. Values below 1 are ignored.
func WithMaxConcurrentFetches(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewService creates a Service backed by searcher.
func NewService(searcher catalog.Searcher, opts ...Option) *Service {
	s := &Service{
		searcher:    searcher,
		ranker:      gift.NewRanker(nil),
		concurrency: DefaultMaxConcurrentFetches,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recommend builds queries for profile, fetches candidates for each, merges
// them and ranks the merged set. Queries that fail are skipped as long as at
// least one succeeds; if every query fails the first failure is returned
// wrapped in ErrCatalog.
func (s *Service) Recommend(ctx context.Context, profile gift.RecipientProfile) (result *Result, err error) {
	ctx, endSpan := tracing.StartSpan(ctx, "recommend")
	defer func() { endSpan(err) }()

	queries := gift.BuildQueries(profile)
	tracing.SetAttributes(ctx,
		attribute.String("profile.age_group", string(profile.AgeGroup)),
		attribute.Int("recommend.query_count", len(queries)),
	)

	batches, err := s.fetchAll(ctx, queries)
	if err != nil {
		return nil, err
	}

	candidates := Merge(batches...)
	tracing.AddEvent(ctx, "candidates_merged", attribute.Int("count", len(candidates)))

	return &Result{
		Queries:         queries,
		Recommendations: s.ranker.Rank(candidates, profile),
	}, nil
}

// fetchAll runs one search per query and returns the batches in query order.
func (s *Service) fetchAll(ctx context.Context, queries []string) ([][]gift.CandidateRecord, error) {
	batches := make([][]gift.CandidateRecord, len(queries))
	errs := make([]error, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, q := range queries {
		if strings.TrimSpace(q) == "" {
			continue
		}
		g.Go(func() error {
			records, err := s.searcher.Search(gctx, q)
			if err != nil {
				errs[i] = err
				slog.WarnContext(ctx, "catalog query failed", "query", q, "error", err)
				return nil
			}
			batches[i] = records
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var firstErr error
	succeeded := 0
	for i := range queries {
		if errs[i] != nil {
			if firstErr == nil {
				firstErr = errs[i]
			}
			continue
		}
		succeeded++
	}
	if succeeded == 0 && firstErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalog, firstErr)
	}
	return batches, nil
}

// Merge concatenates batches in order and drops records whose key was already
// seen. Records without a key are always kept.
func Merge(batches ...[]gift.CandidateRecord) []gift.CandidateRecord {
	total := 0
	for _, b := range batches {
		total += len(b)
	}

	seen := make(map[string]struct{}, total)
	out := make([]gift.CandidateRecord, 0, total)
	for _, b := range batches {
		for _, rec := range b {
			if rec.Key != "" {
				if _, dup := seen[rec.Key]; dup {
					continue
				}
				seen[rec.Key] = struct{}{}
			}
			out = append(out, rec)
		}
	}
	return out
}
