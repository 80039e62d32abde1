package observe

import (
	"context"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// RouteMeta describes an HTTP request for telemetry purposes.
type RouteMeta struct {
	Method string // HTTP method
	Route  string // Matched mux pattern, e.g. "GET /api/location/{id}" (may be empty)
	Path   string // Request path
}

// RouteName returns the low-cardinality route label.
// Falls back to "unmatched" when no pattern matched.
func (m RouteMeta) RouteName() string {
	if m.Route != "" {
		return m.Route
	}
	return "unmatched"
}

// SpanName returns the deterministic span name for this route.
// Format: "<pattern>" when the pattern carries a method, else "<METHOD> <pattern>".
func (m RouteMeta) SpanName() string {
	if m.Route == "" {
		return m.Method + " unmatched"
	}
	if m.Method == "" || strings.HasPrefix(m.Route, m.Method+" ") {
		return m.Route
	}
	return m.Method + " " + m.Route
}

// Tracer wraps OpenTelemetry tracing with request span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new server span for the request.
	StartSpan(ctx context.Context, meta RouteMeta) (context.Context, trace.Span)

	// EndSpan renames the span to the matched route, records status and ends it.
	EndSpan(span trace.Span, meta RouteMeta, status int)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta RouteMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", meta.Method),
		attribute.String("url.path", meta.Path),
	}
	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, meta RouteMeta, status int) {
	span.SetName(meta.SpanName())
	span.SetAttributes(
		attribute.String("http.route", meta.RouteName()),
		attribute.Int("http.response.status_code", status),
	)
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

// NewNoopTracer returns a Tracer that records nothing.
func NewNoopTracer() Tracer {
	return &noopTracer{noop: tracenoop.NewTracerProvider().Tracer("noop")}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta RouteMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, _ RouteMeta, _ int) {
	span.End()
}
