// Package catalog fetches candidate books from the Open Library search API.
//
// The Client speaks HTTP; BreakerClient and CachedSearcher decorate any
// Searcher with circuit breaking and result caching. Failures surface as
// ErrUnavailable, ErrBadStatus (*StatusError), ErrMalformedPayload or
// ErrCircuitOpen.
package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/onnwee/giftbooks/internal/gift"
	"github.com/onnwee/giftbooks/internal/tracing"
)

// Searcher fetches candidate records for one query string.
type Searcher interface {
	Search(ctx context.Context, query string) ([]gift.CandidateRecord, error)
}

// Defaults for Config.
const (
	DefaultBaseURL   = "https://openlibrary.org"
	DefaultLimit     = 20
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "giftbooks/0.1 (+https://github.com/onnwee/giftbooks)"

	// searchFields restricts the response to what ranking consumes.
	searchFields = "key,title,author_name,first_publish_year,subject,cover_i"

	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 8 << 20

	systemName = "openlibrary"
)

// Config configures a Client. Zero values take the defaults above.
type Config struct {
	BaseURL   string
	Limit     int
	Timeout   time.Duration
	UserAgent string

	// HTTPClient overrides the instrumented default client (tests).
	HTTPClient *http.Client
}

// Client queries the Open Library search endpoint.
type Client struct {
	baseURL   string
	limit     int
	userAgent string
	http      *http.Client
	metrics   *Metrics
}

// NewClient creates a Client. metrics may be nil.
func NewClient(cfg Config, metrics *Metrics) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		limit:     cfg.Limit,
		userAgent: cfg.UserAgent,
		http:      httpClient,
		metrics:   metrics,
	}
}

// searchResponse is the subset of /search.json the client reads. Docs are
// decoded one at a time so a single odd record doesn't sink the batch.
type searchResponse struct {
	NumFound int               `json:"numFound"`
	Docs     []json.RawMessage `json:"docs"`
}

type searchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	Subject          []string `json:"subject"`
	CoverI           int64    `json:"cover_i"`
}

func (d searchDoc) record() gift.CandidateRecord {
	return gift.CandidateRecord{
		Key:              d.Key,
		Title:            d.Title,
		AuthorNames:      d.AuthorName,
		FirstPublishYear: d.FirstPublishYear,
		Subjects:         d.Subject,
		CoverID:          d.CoverI,
	}
}

// Search runs one catalog search and returns the decoded candidates.
func (c *Client) Search(ctx context.Context, query string) (records []gift.CandidateRecord, err error) {
	ctx, endSpan := tracing.StartCatalogSpan(ctx, systemName, tracing.CatalogOperationSearch, query)
	defer func() { endSpan(err) }()

	start := time.Now()
	records, err = c.search(ctx, query, c.limit)
	c.metrics.ObserveRequest(err, time.Since(start))
	return records, err
}

// HealthCheck issues a minimal search to confirm the catalog answers.
func (c *Client) HealthCheck(ctx context.Context) (err error) {
	ctx, endSpan := tracing.StartCatalogSpan(ctx, systemName, tracing.CatalogOperationPing, "")
	defer func() { endSpan(err) }()

	_, err = c.search(ctx, "gift", 1)
	return err
}

func (c *Client) search(ctx context.Context, query string, limit int) ([]gift.CandidateRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(query, limit), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	return c.decode(ctx, body)
}

func (c *Client) searchURL(query string, limit int) string {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", searchFields)
	return c.baseURL + "/search.json?" + params.Encode()
}

// decode parses a search response. A body that isn't a search response is
// ErrMalformedPayload; individual docs that fail to decode are skipped.
func (c *Client) decode(ctx context.Context, body []byte) ([]gift.CandidateRecord, error) {
	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	records := make([]gift.CandidateRecord, 0, len(payload.Docs))
	skipped := 0
	for _, raw := range payload.Docs {
		var doc searchDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			skipped++
			continue
		}
		records = append(records, doc.record())
	}

	if skipped > 0 {
		slog.DebugContext(ctx, "skipped undecodable catalog docs", "skipped", skipped, "kept", len(records))
		c.metrics.AddSkippedDocs(skipped)
	}
	return records, nil
}
