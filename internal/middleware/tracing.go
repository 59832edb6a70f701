package middleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request, continuing any W3C traceparent
// sent by the caller. Spans are named after the normalized route, for example
// "POST /api/recommend", and carry the request ID as request.id when RequestID
// runs earlier in the chain.
func Tracing(serviceName string) func(http.Handler) http.Handler {
	spanName := otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
		return r.Method + " " + normalizePath(r.URL.Path)
	})
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(tagRequestID(next), serviceName, spanName)
	}
}

func tagRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := GetRequestID(r.Context()); id != "" {
			trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("request.id", id))
		}
		next.ServeHTTP(w, r)
	})
}

// GetTraceID returns the active trace ID of r, or "".
func GetTraceID(r *http.Request) string {
	if sc := trace.SpanContextFromContext(r.Context()); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// GetSpanID returns the active span ID of r, or "".
func GetSpanID(r *http.Request) string {
	if sc := trace.SpanContextFromContext(r.Context()); sc.IsValid() {
		return sc.SpanID().String()
	}
	return ""
}
