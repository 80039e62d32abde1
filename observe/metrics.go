package observe

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Cache lookup results recorded by CacheMetrics.
const (
	LookupHit    = "hit"
	LookupMiss   = "miss"
	LookupBypass = "bypass"
)

// Cache eviction reasons recorded by CacheMetrics.
const (
	EvictExpired = "expired" // removed on lookup, older than validity
	EvictSwept   = "swept"   // removed by the sweeper, older than retention
	EvictCleared = "cleared" // removed by an administrative clear
)

// Metrics records HTTP request metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordRequest records a served request with its status and duration.
	RecordRequest(ctx context.Context, meta RouteMeta, status int, duration time.Duration)
}

// CacheMetrics records response cache activity.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type CacheMetrics interface {
	// RecordLookup records a lookup outcome (LookupHit, LookupMiss, LookupBypass).
	RecordLookup(ctx context.Context, route, result string)

	// RecordStore records an entry written to the store.
	RecordStore(ctx context.Context, route string)

	// RecordEviction records n entries removed for reason.
	RecordEviction(ctx context.Context, reason string, n int)
}

type metricsImpl struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates request Metrics backed by meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"http.server.requests",
		metric.WithDescription("Total number of HTTP requests served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"http.server.errors",
		metric.WithDescription("Total number of HTTP requests that ended with a 5xx status"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"http.server.duration_ms",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
	}, nil
}

func (m *metricsImpl) RecordRequest(ctx context.Context, meta RouteMeta, status int, duration time.Duration) {
	opt := metric.WithAttributes(
		attribute.String("http.request.method", meta.Method),
		attribute.String("http.route", meta.RouteName()),
		attribute.String("http.response.status_code", strconv.Itoa(status)),
	)

	m.totalCount.Add(ctx, 1, opt)
	if status >= http.StatusInternalServerError {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

type cacheMetricsImpl struct {
	lookups   metric.Int64Counter
	stores    metric.Int64Counter
	evictions metric.Int64Counter
}

// NewCacheMetrics creates CacheMetrics backed by meter. If entries is not
// nil it is polled on collection to report the current entry count.
func NewCacheMetrics(meter metric.Meter, entries func() int64) (CacheMetrics, error) {
	lookups, err := meter.Int64Counter(
		"cache.lookups",
		metric.WithDescription("Response cache lookups by result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	stores, err := meter.Int64Counter(
		"cache.stores",
		metric.WithDescription("Responses written to the cache"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	evictions, err := meter.Int64Counter(
		"cache.evictions",
		metric.WithDescription("Entries removed from the cache by reason"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	if entries != nil {
		_, err = meter.Int64ObservableGauge(
			"cache.entries",
			metric.WithDescription("Entries currently held by the cache"),
			metric.WithUnit("{entry}"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				o.Observe(entries())
				return nil
			}),
		)
		if err != nil {
			return nil, err
		}
	}

	return &cacheMetricsImpl{
		lookups:   lookups,
		stores:    stores,
		evictions: evictions,
	}, nil
}

func (m *cacheMetricsImpl) RecordLookup(ctx context.Context, route, result string) {
	m.lookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("http.route", route),
		attribute.String("cache.result", result),
	))
}

func (m *cacheMetricsImpl) RecordStore(ctx context.Context, route string) {
	m.stores.Add(ctx, 1, metric.WithAttributes(attribute.String("http.route", route)))
}

func (m *cacheMetricsImpl) RecordEviction(ctx context.Context, reason string, n int) {
	if n <= 0 {
		return
	}
	m.evictions.Add(ctx, int64(n), metric.WithAttributes(attribute.String("cache.reason", reason)))
}

type noopMetrics struct{}

// NewNoopMetrics returns Metrics that records nothing.
func NewNoopMetrics() Metrics { return noopMetrics{} }

func (noopMetrics) RecordRequest(context.Context, RouteMeta, int, time.Duration) {}

type noopCacheMetrics struct{}

// NewNoopCacheMetrics returns CacheMetrics that records nothing.
func NewNoopCacheMetrics() CacheMetrics { return noopCacheMetrics{} }

func (noopCacheMetrics) RecordLookup(context.Context, string, string) {}
func (noopCacheMetrics) RecordStore(context.Context, string)          {}
func (noopCacheMetrics) RecordEviction(context.Context, string, int)  {}
