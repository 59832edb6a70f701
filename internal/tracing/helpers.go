package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer names used by the helpers.
const (
	tracerName        = "giftbooks"
	catalogTracerName = "giftbooks/catalog"
)

// CatalogOperation names a call made to the external book catalog.
type CatalogOperation string

const (
	// CatalogOperationSearch is a free-text catalog search.
	CatalogOperationSearch CatalogOperation = "search"
	// CatalogOperationPing is a readiness check against the catalog.
	CatalogOperationPing CatalogOperation = "ping"
)

// StartCatalogSpan creates a client span for a catalog call.
// Returns the new context and a function to end the span.
//
// Example usage:
//
//	ctx, endSpan := tracing.StartCatalogSpan(ctx, "openlibrary", tracing.CatalogOperationSearch, q)
//	defer func() { endSpan(err) }()
func StartCatalogSpan(ctx context.Context, system string, operation CatalogOperation, query string) (context.Context, func(error)) {
	tracer := otel.Tracer(catalogTracerName)

	ctx, span := tracer.Start(ctx, "catalog "+string(operation),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("catalog.system", system),
			attribute.String("catalog.operation", string(operation)),
		),
	)

	if query != "" {
		span.SetAttributes(attribute.String("catalog.query", query))
	}

	return ctx, endFunc(span)
}

// StartSpan creates a new span for a general operation.
// Returns the new context and a function to end the span.
//
// Example usage:
//
//	ctx, endSpan := tracing.StartSpan(ctx, "recommend")
//	defer func() { endSpan(err) }()
func StartSpan(ctx context.Context, name string) (context.Context, func(error)) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, name)
	return ctx, endFunc(span)
}

func endFunc(span trace.Span) func(error) {
	return func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// AddEvent adds an event to the current span.
func AddEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

// SetAttributes sets attributes on the current span.
func SetAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}
