package cache

import (
	"context"

	"github.com/jonwraymond/opsdash/auth"
)

// Keyer derives cache keys from requests.
//
// Contract:
// - Determinism: the same request must always produce the same key.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key returns the cache key for req.
	Key(ctx context.Context, req Request) (string, error)
}

// RequestKeyer keys entries by path plus query string, verbatim.
//
// No normalization is applied: trailing slashes, query parameter order and
// case all produce distinct keys. Method, headers, body and caller identity
// do not participate, so every caller shares the same entries.
type RequestKeyer struct{}

// NewRequestKeyer creates a RequestKeyer.
func NewRequestKeyer() *RequestKeyer {
	return &RequestKeyer{}
}

// Key returns req.URL().
func (k *RequestKeyer) Key(_ context.Context, req Request) (string, error) {
	if req.Path == "" {
		return "", ErrInvalidKey
	}
	return req.URL(), nil
}

// IdentityKeyer scopes keys by the authenticated principal.
//
// Requests without an identity in the context fall back to the wrapped
// keyer's key, so anonymous callers share entries. Keys keep the request URL
// as a suffix, so ClearPattern on a path still matches every principal.
type IdentityKeyer struct {
	base Keyer
}

// NewIdentityKeyer wraps base. If base is nil, a RequestKeyer is used.
func NewIdentityKeyer(base Keyer) *IdentityKeyer {
	if base == nil {
		base = NewRequestKeyer()
	}
	return &IdentityKeyer{base: base}
}

// Key returns "<principal>|<base key>" for authenticated requests.
func (k *IdentityKeyer) Key(ctx context.Context, req Request) (string, error) {
	key, err := k.base.Key(ctx, req)
	if err != nil {
		return "", err
	}
	id := auth.IdentityFromContext(ctx)
	if id == nil || id.IsAnonymous() {
		return key, nil
	}
	return id.Principal + "|" + key, nil
}

var (
	_ Keyer = (*RequestKeyer)(nil)
	_ Keyer = (*IdentityKeyer)(nil)
)
