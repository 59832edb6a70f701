package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server, metrics *Metrics) *Client {
	return NewClient(Config{
		BaseURL:    srv.URL,
		Limit:      5,
		HTTPClient: srv.Client(),
	}, metrics)
}

// TestClient_Search tests decoding of a well-formed search response.
func TestClient_Search(t *testing.T) {
	var gotQuery, gotLimit, gotFields, gotPath string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		gotLimit = r.URL.Query().Get("limit")
		gotFields = r.URL.Query().Get("fields")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"numFound": 2,
			"docs": [
				{"key": "/works/OL1W", "title": "Space Adventures", "author_name": ["A. Writer", "B. Writer"],
				 "first_publish_year": 2001, "subject": ["Space", "Juvenile fiction"], "cover_i": 12345},
				{"key": "/works/OL2W"}
			]
		}`))
	})

	records, err := newTestClient(srv, nil).Search(context.Background(), "space children kids")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/search.json" {
		t.Errorf("expected path /search.json, got %s", gotPath)
	}
	if gotQuery != "space children kids" {
		t.Errorf("expected q to round-trip, got %q", gotQuery)
	}
	if gotLimit != "5" {
		t.Errorf("expected limit 5, got %s", gotLimit)
	}
	if gotFields != searchFields {
		t.Errorf("expected fields %q, got %q", searchFields, gotFields)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	first := records[0]
	if first.Key != "/works/OL1W" || first.Title != "Space Adventures" {
		t.Errorf("unexpected first record: %+v", first)
	}
	if len(first.AuthorNames) != 2 || first.AuthorNames[0] != "A. Writer" {
		t.Errorf("unexpected authors: %v", first.AuthorNames)
	}
	if first.FirstPublishYear != 2001 || first.CoverID != 12345 {
		t.Errorf("unexpected year/cover: %d/%d", first.FirstPublishYear, first.CoverID)
	}
	if len(first.Subjects) != 2 {
		t.Errorf("unexpected subjects: %v", first.Subjects)
	}

	second := records[1]
	if second.Title != "" || second.AuthorNames != nil || second.CoverID != 0 {
		t.Errorf("expected absent fields to stay absent, got %+v", second)
	}
}

// TestClient_Search_SkipsMalformedDocs tests that one bad doc doesn't fail the batch.
func TestClient_Search_SkipsMalformedDocs(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"docs": [
			{"key": "/a", "title": "Good"},
			{"key": "/b", "title": "Bad", "cover_i": "not-a-number"},
			"just a string",
			{"key": "/c", "title": "Also good"}
		]}`))
	})

	metrics := NewMetrics()
	records, err := newTestClient(srv, metrics).Search(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
	}
	if records[0].Key != "/a" || records[1].Key != "/c" {
		t.Errorf("unexpected records: %+v", records)
	}
}

// TestClient_Search_Errors tests that each failure mode maps to its sentinel.
func TestClient_Search_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantErr: ErrBadStatus,
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			wantErr: ErrBadStatus,
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>oops</html>"))
			},
			wantErr: ErrMalformedPayload,
		},
		{
			name: "wrong top-level shape",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`[1, 2, 3]`))
			},
			wantErr: ErrMalformedPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.handler)
			_, err := newTestClient(srv, nil).Search(context.Background(), "q")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestClient_Search_StatusCode tests that the status is carried on StatusError.
func TestClient_Search_StatusCode(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := newTestClient(srv, nil).Search(context.Background(), "q")

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %T: %v", err, err)
	}
	if statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", statusErr.StatusCode)
	}
}

// TestClient_Search_Unreachable tests transport failures.
func TestClient_Search_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	client := NewClient(Config{BaseURL: base, Timeout: time.Second}, nil)
	_, err := client.Search(context.Background(), "q")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

// TestClient_Search_Canceled tests that a canceled context is reported as such.
func TestClient_Search_Canceled(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"docs": []}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(srv, nil).Search(ctx, "q")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// TestClient_HealthCheck tests the catalog readiness check.
func TestClient_HealthCheck(t *testing.T) {
	var gotLimit string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		_, _ = w.Write([]byte(`{"docs": []}`))
	})

	if err := newTestClient(srv, nil).HealthCheck(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != "1" {
		t.Errorf("expected limit 1 for health check, got %s", gotLimit)
	}
}

// TestClient_Metrics tests that requests are counted by outcome.
func TestClient_Metrics(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"docs": []}`))
	})

	metrics := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	client := newTestClient(srv, metrics)
	_, _ = client.Search(context.Background(), "q")
	fail.Store(false)
	_, _ = client.Search(context.Background(), "q")
	_, _ = client.Search(context.Background(), "q")

	if got := counterValue(t, reg, MetricCatalogRequests, "outcome", "success"); got != 2 {
		t.Errorf("expected 2 successes, got %v", got)
	}
	if got := counterValue(t, reg, MetricCatalogRequests, "outcome", "bad_status"); got != 1 {
		t.Errorf("expected 1 bad_status, got %v", got)
	}
}

// TestNewClient_Defaults tests default configuration.
func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{BaseURL: "https://example.org/"}, nil)
	if c.baseURL != "https://example.org" {
		t.Errorf("expected trailing slash trimmed, got %s", c.baseURL)
	}
	if c.limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, c.limit)
	}
	if c.http.Timeout != DefaultTimeout {
		t.Errorf("expected default timeout %s, got %s", DefaultTimeout, c.http.Timeout)
	}
}
