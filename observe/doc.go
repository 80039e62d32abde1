// Package observe provides observability primitives for the dashboard server.
//
// It wires OpenTelemetry tracing and metrics with a small structured JSON
// logger. HTTP handlers are instrumented by Middleware; the response cache
// reports through CacheMetrics. Exporter setup lives in observe/exporters.
package observe
