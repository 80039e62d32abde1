// Package admin is a client for the opsdash cache admin endpoints.
//
// It backs the `opsdash cache` CLI commands and can be used by other
// operational tooling that needs to inspect or purge the response cache of
// a running server.
package admin
