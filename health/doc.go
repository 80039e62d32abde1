// Package health provides health checks for the dashboard server.
//
// A Checker reports one component as healthy, degraded or unhealthy. An
// Aggregator runs registered checkers concurrently under a timeout, and
// OverallStatus reduces their results to the worst status.
//
//	agg := health.NewAggregator()
//	agg.Register("memory", health.NewMemoryChecker(health.MemoryCheckerConfig{}))
//	agg.Register("cache", health.NewCacheChecker(store, 10000))
//	health.RegisterHandlers(mux, agg, time.Now())
//
// RegisterHandlers mounts /healthz (liveness), /readyz (readiness) and
// /health (JSON detail with uptime).
package health
