package observe

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in and out of the server.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// WithRequestID returns a context carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id, or "" if none is set.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Middleware wraps HTTP handlers with tracing, metrics and access logging.
//
// Contract:
//   - Concurrency: Handler() returns a handler safe for concurrent use.
//   - Context: the request context carries the span and request id downstream.
//   - Ownership: response bodies pass through unmodified.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// Handler wraps next. The route label is read from the request after next
// returns, so next is expected to be (or contain) an *http.ServeMux.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		meta := RouteMeta{Method: r.Method, Path: r.URL.Path}
		ctx, span := m.tracer.StartSpan(WithRequestID(r.Context(), id), meta)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		inner := r.WithContext(ctx)
		start := time.Now()

		next.ServeHTTP(rec, inner)

		duration := time.Since(start)
		meta.Route = inner.Pattern

		m.tracer.EndSpan(span, meta, rec.status)
		m.metrics.RecordRequest(ctx, meta, rec.status, duration)

		fields := []Field{
			F("status", rec.status),
			F("bytes", rec.bytes),
			F("duration_ms", float64(duration.Microseconds())/1000),
		}
		logger := m.logger.WithRoute(meta)
		if rec.status >= http.StatusInternalServerError {
			logger.Error(ctx, "request failed", fields...)
		} else {
			logger.Info(ctx, "request completed", fields...)
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
