// Package config loads opsdash configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// OPSDASH_* environment variables (a .env file in the working directory is
// read first and never overrides variables already set). ${VAR} references
// inside the YAML file are expanded strictly: a reference to an unset
// variable is an error, and $$ produces a literal dollar sign.
//
// Durations accept Go syntax plus day and week units ("5m", "1d", "1w").
//
// # Environment
//
//	OPSDASH_ADDR                    listen address (PORT is honored too)
//	OPSDASH_CACHE_VALIDITY          freshness window checked on lookup
//	OPSDASH_CACHE_RETENTION         window used by the sweeper
//	OPSDASH_CACHE_SWEEP_INTERVAL    sweeper period
//	OPSDASH_CACHE_COALESCE          share one handler run across concurrent misses
//	OPSDASH_CACHE_SCOPE_BY_IDENTITY key entries by caller
//	OPSDASH_JWT_SECRET              HMAC secret for admin bearer tokens
//	OPSDASH_ADMIN_API_KEY           API key granted the admin role
//	OPSDASH_LOG_LEVEL               debug|info|warn|error
//	OPSDASH_METRICS_EXPORTER        otlp|prometheus|stdout|none
//	OPSDASH_TRACING_EXPORTER        otlp|jaeger|stdout|none
package config
