// Package middleware provides HTTP middleware components for the API server.
package middleware

import (
	"log/slog"
	"net/http"
	"os"
	"time"
)

// accessWriter records what the handler sent so it can be logged after the
// fact.
type accessWriter struct {
	http.ResponseWriter
	status    int
	bytes     int
	committed bool
	errorCode string
}

func newAccessWriter(w http.ResponseWriter) *accessWriter {
	return &accessWriter{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader forwards only the first status, as net/http does.
func (aw *accessWriter) WriteHeader(code int) {
	if aw.committed {
		return
	}
	aw.committed = true
	aw.status = code
	aw.ResponseWriter.WriteHeader(code)
}

func (aw *accessWriter) Write(b []byte) (int, error) {
	aw.committed = true
	n, err := aw.ResponseWriter.Write(b)
	aw.bytes += n
	return n, err
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (aw *accessWriter) Unwrap() http.ResponseWriter {
	return aw.ResponseWriter
}

func (aw *accessWriter) recordErrorCode(code string) {
	aw.errorCode = code
}

// NewLogger returns a JSON logger at info level for production and a text
// logger at debug level for every other environment. Both write to stdout.
func NewLogger(env string) *slog.Logger {
	if env == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Logging writes one "request completed" record per request. Server errors
// log at error level and client errors at warn.
//
// A panicking handler produces no record; recovery has to sit outside this
// middleware to be logged.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			aw := newAccessWriter(w)
			next.ServeHTTP(aw, r)

			logger.LogAttrs(r.Context(), levelForStatus(aw.status), "request completed",
				accessAttrs(r, aw, time.Since(start))...)
		})
	}
}

func accessAttrs(r *http.Request, aw *accessWriter, elapsed time.Duration) []slog.Attr {
	attrs := make([]slog.Attr, 0, 8)
	attrs = append(attrs,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", aw.status),
		slog.Int64("latency_ms", elapsed.Milliseconds()),
		slog.Int("size", aw.bytes),
	)
	if id := GetRequestID(r.Context()); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	if traceID := GetTraceID(r); traceID != "" {
		attrs = append(attrs, slog.String("trace_id", traceID), slog.String("span_id", GetSpanID(r)))
	}
	if aw.status >= http.StatusBadRequest {
		code := aw.errorCode
		if code == "" {
			code = GetErrorCode(r.Context())
		}
		if code != "" {
			attrs = append(attrs, slog.String("error_code", code))
		}
	}
	return attrs
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
