package cache

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/opsdash/observe"
)

// EncodeFunc turns a handler payload into the bytes sent to the client.
type EncodeFunc func(v any) ([]byte, error)

// Interceptor decides cache participation for every request.
//
// Eligible (GET) requests are served from the store while fresh. Otherwise
// the handler runs, its payload is encoded, stored and returned. Handler
// errors propagate untouched and are never stored. Ineligible requests run
// the handler and never touch the store.
type Interceptor struct {
	store   *Store
	keyer   Keyer
	policy  Policy
	encode  EncodeFunc
	logger  observe.Logger
	metrics observe.CacheMetrics
	group   singleflight.Group
}

// InterceptorOption configures an Interceptor.
type InterceptorOption func(*Interceptor)

// WithKeyer sets the key derivation. Default: RequestKeyer.
func WithKeyer(k Keyer) InterceptorOption {
	return func(i *Interceptor) {
		if k != nil {
			i.keyer = k
		}
	}
}

// WithEncoder sets the payload encoder. Default: json.Marshal.
func WithEncoder(fn EncodeFunc) InterceptorOption {
	return func(i *Interceptor) {
		if fn != nil {
			i.encode = fn
		}
	}
}

// WithLogger sets the logger. Default: no-op.
func WithLogger(l observe.Logger) InterceptorOption {
	return func(i *Interceptor) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithMetrics sets the metrics sink. Default: no-op.
func WithMetrics(m observe.CacheMetrics) InterceptorOption {
	return func(i *Interceptor) {
		if m != nil {
			i.metrics = m
		}
	}
}

// NewInterceptor creates an Interceptor over store. The policy is normalized,
// so a zero Policy gets the default validity.
func NewInterceptor(store *Store, policy Policy, opts ...InterceptorOption) (*Interceptor, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	i := &Interceptor{
		store:   store,
		keyer:   NewRequestKeyer(),
		policy:  policy.Normalize(),
		encode:  json.Marshal,
		logger:  observe.NewNopLogger(),
		metrics: observe.NewNoopCacheMetrics(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Policy returns the normalized policy in effect.
func (i *Interceptor) Policy() Policy {
	return i.policy
}

// Do serves req through the cache, calling next only when needed.
func (i *Interceptor) Do(ctx context.Context, req Request, next HandlerFunc) (Result, error) {
	if !req.Cacheable() {
		i.metrics.RecordLookup(ctx, req.Route, observe.LookupBypass)
		return i.bypass(ctx, req, next)
	}

	key, err := i.keyer.Key(ctx, req)
	if err != nil {
		i.logger.Warn(ctx, "cache key derivation failed", observe.F("path", req.Path), observe.F("error", err.Error()))
		i.metrics.RecordLookup(ctx, req.Route, observe.LookupBypass)
		return i.bypass(ctx, req, next)
	}

	entry, state := i.store.Lookup(key, i.policy.Validity)
	switch state {
	case LookupFresh:
		i.metrics.RecordLookup(ctx, req.Route, observe.LookupHit)
		i.logger.Debug(ctx, "cache hit", observe.F("key", key))
		return Result{Body: entry.Payload, Outcome: OutcomeHit, Key: key}, nil
	case LookupExpired:
		i.metrics.RecordEviction(ctx, observe.EvictExpired, 1)
	}

	i.metrics.RecordLookup(ctx, req.Route, observe.LookupMiss)
	i.logger.Debug(ctx, "cache miss", observe.F("key", key))

	if !i.policy.Coalesce {
		return i.fill(ctx, req, key, next)
	}

	// The shared fill outlives any single caller, so it keeps ctx's values
	// but not its cancellation.
	shared := context.WithoutCancel(ctx)
	v, err, _ := i.group.Do(key, func() (any, error) {
		return i.fill(shared, req, key, next)
	})
	res, _ := v.(Result)
	return res, err
}

func (i *Interceptor) bypass(ctx context.Context, req Request, next HandlerFunc) (Result, error) {
	v, err := next(ctx, req)
	if err != nil {
		return Result{Outcome: OutcomeBypass}, err
	}
	body, err := i.encode(v)
	if err != nil {
		return Result{Value: v, Outcome: OutcomeBypass}, nil
	}
	return Result{Body: body, Value: v, Outcome: OutcomeBypass}, nil
}

// fill runs the handler for a miss and captures its payload.
func (i *Interceptor) fill(ctx context.Context, req Request, key string, next HandlerFunc) (Result, error) {
	v, err := next(ctx, req)
	if err != nil {
		return Result{Outcome: OutcomeMiss, Key: key}, err
	}

	body, err := i.encode(v)
	if err != nil {
		i.logger.Warn(ctx, "payload not cacheable, skipping store",
			observe.F("key", key),
			observe.F("error", err.Error()),
		)
		return Result{Value: v, Outcome: OutcomeMiss, Key: key}, nil
	}

	i.store.Set(key, body)
	i.metrics.RecordStore(ctx, req.Route)

	return Result{Body: body, Value: v, Outcome: OutcomeMiss, Key: key}, nil
}
