package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// SpanPrefix is prepended to every span name started through this package.
const SpanPrefix = "fern."

// Attribute keys recorded on matching spans.
const (
	AttrCatalogSize    = attribute.Key("fern.catalog.size")
	AttrIndexSize      = attribute.Key("fern.index.size")
	AttrCandidatePairs = attribute.Key("fern.candidates.pairs")
	AttrProductA       = attribute.Key("fern.product.a")
	AttrProductB       = attribute.Key("fern.product.b")
	AttrEventCount     = attribute.Key("fern.events.count")
	AttrRequestID      = attribute.Key("fern.request.id")
)

var tracer trace.Tracer

// SetTracer sets the tracer used by StartSpan. A nil tracer disables tracing.
func SetTracer(t trace.Tracer) {
	tracer = t
}

// StartSpan starts a span named SpanPrefix+name carrying attrs. Without a
// tracer the context is returned unchanged along with its current span.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, SpanPrefix+name, trace.WithAttributes(attrs...))
}

// Fail marks span as failed with err. A nil err is ignored.
func Fail(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func activeSpan(ctx context.Context) (trace.Span, bool) {
	if tracer == nil {
		return nil, false
	}
	span := trace.SpanFromContext(ctx)
	return span, span.SpanContext().IsValid()
}

// TraceParent returns the W3C traceparent of the active span, or "".
func TraceParent(ctx context.Context) string {
	if _, ok := activeSpan(ctx); !ok {
		return ""
	}
	carrier := propagation.MapCarrier{}
	propagation.TraceContext{}.Inject(ctx, carrier)
	return carrier.Get("traceparent")
}

// GetTraceID returns the trace ID of the active span, or "".
func GetTraceID(ctx context.Context) string {
	span, ok := activeSpan(ctx)
	if !ok {
		return ""
	}
	return span.SpanContext().TraceID().String()
}
