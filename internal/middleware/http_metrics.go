package middleware

import (
	"net/http"
	"strconv"
	"time"
)

// knownRoutes is the fixed set of paths served by the API. Anything else is
// reported as "other" so scanners can't inflate label cardinality.
var knownRoutes = map[string]bool{
	"/":              true,
	"/api/recommend": true,
	"/api/options":   true,
	"/health":        true,
	"/ready":         true,
	"/metrics":       true,
}

// unknownRoute is the path label used for requests outside knownRoutes.
const unknownRoute = "other"

// normalizePath maps a request path to a bounded metrics label.
// A single trailing slash after a named route is ignored; "//" is not the
// root.
func normalizePath(path string) string {
	if knownRoutes[path] {
		return path
	}
	if len(path) > 2 && path[len(path)-1] == '/' {
		if trimmed := path[:len(path)-1]; knownRoutes[trimmed] {
			return trimmed
		}
	}
	return unknownRoute
}

// metricsResponseWriter wraps http.ResponseWriter to capture status code and response size.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	size        int64
	wroteHeader bool
}

// WriteHeader captures the status code before writing it.
func (mrw *metricsResponseWriter) WriteHeader(code int) {
	if mrw.wroteHeader {
		return
	}
	mrw.statusCode = code
	mrw.wroteHeader = true
	mrw.ResponseWriter.WriteHeader(code)
}

// Write captures the response size and writes the data.
func (mrw *metricsResponseWriter) Write(b []byte) (int, error) {
	n, err := mrw.ResponseWriter.Write(b)
	mrw.size += int64(n)
	return n, err
}

// Unwrap exposes the underlying writer.
func (mrw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return mrw.ResponseWriter
}

// newMetricsResponseWriter creates a new metricsResponseWriter with default 200 status.
func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// HTTPMetrics is a middleware that records HTTP request metrics.
// It captures duration, request/response sizes, and request counts.
// Health and scrape endpoints (/health, /ready, /metrics) are excluded.
func HTTPMetrics(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/health", "/ready", "/metrics":
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			mrw := newMetricsResponseWriter(w)

			requestSize := r.ContentLength
			if requestSize < 0 {
				requestSize = 0
			}

			next.ServeHTTP(mrw, r)

			metrics.ObserveHTTPRequest(
				r.Method,
				normalizePath(r.URL.Path),
				strconv.Itoa(mrw.statusCode),
				time.Since(start).Seconds(),
				requestSize,
				mrw.size,
			)
		})
	}
}
