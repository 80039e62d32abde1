package cache

import (
	"context"
	"net/http"
	"time"
)

// Entry is a single cached response.
//
// Entries are values: the store replaces them as a whole and never mutates
// one in place. Payload is shared with readers and must not be modified.
type Entry struct {
	// Key is the derived cache key (path plus query string by default).
	Key string

	// Payload is the encoded response body exactly as sent to the client.
	Payload []byte

	// StoredAt is when the entry was inserted.
	StoredAt time.Time
}

// Age returns how old the entry is relative to now.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.StoredAt)
}

// Request describes an inbound request for cache participation.
type Request struct {
	// Method is the HTTP method (or equivalent verb).
	Method string

	// Path is the request path, without query string.
	Path string

	// RawQuery is the encoded query string without the leading '?'.
	RawQuery string

	// Route is the matched route pattern. It is only used to label
	// telemetry and never participates in the key.
	Route string
}

// Cacheable reports whether the request is a read and may be served from
// or written to the cache. Only GET is eligible.
func (r Request) Cacheable() bool {
	return r.Method == http.MethodGet
}

// URL returns the path plus query string, unmodified.
func (r Request) URL() string {
	if r.RawQuery == "" {
		return r.Path
	}
	return r.Path + "?" + r.RawQuery
}

// HandlerFunc computes a response payload for a request. It must not write
// to the transport; the caller decides when and how to send the result.
type HandlerFunc func(ctx context.Context, req Request) (any, error)

// Outcome describes how a request was served.
type Outcome int

const (
	// OutcomeBypass means the request was not eligible for caching.
	OutcomeBypass Outcome = iota
	// OutcomeMiss means the handler ran and its payload was captured.
	OutcomeMiss
	// OutcomeHit means a stored payload was returned without running the handler.
	OutcomeHit
)

// String returns the value used in the X-Cache response header.
func (o Outcome) String() string {
	switch o {
	case OutcomeHit:
		return "HIT"
	case OutcomeMiss:
		return "MISS"
	default:
		return "BYPASS"
	}
}

// Result is what the interceptor hands back to the transport.
type Result struct {
	// Body is the encoded payload. It is nil when the payload could not be
	// encoded, in which case Value carries the raw payload.
	Body []byte

	// Value is the payload returned by the handler. It is nil on a hit.
	Value any

	// Outcome reports hit, miss or bypass.
	Outcome Outcome

	// Key is the cache key used, empty on bypass.
	Key string
}
