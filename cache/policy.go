package cache

import "time"

// Defaults for Policy.
const (
	DefaultValidity      = 5 * time.Minute
	DefaultRetention     = 5 * time.Minute
	DefaultSweepInterval = 10 * time.Minute
)

// Policy configures expiry for the response cache.
//
// Two windows apply to every entry. Validity is checked on lookup: an entry
// at least that old is deleted and the request is recomputed. Retention is
// used only by the background sweeper, which deletes entries older than it
// whether or not anyone reads them. The two are independent; setting
// Retention to zero ties it to Validity so there is a single knob.
type Policy struct {
	// Validity is the freshness window applied on lookup.
	// If zero, DefaultValidity is used.
	Validity time.Duration

	// Retention is the window applied by the sweeper.
	// If zero, Validity is used.
	Retention time.Duration

	// SweepInterval is how often the sweeper runs.
	// If zero, DefaultSweepInterval is used.
	SweepInterval time.Duration

	// Coalesce runs the handler once for concurrent misses on the same key.
	Coalesce bool
}

// DefaultPolicy returns the default policy.
// Validity: 5 minutes, Retention: 5 minutes, SweepInterval: 10 minutes.
func DefaultPolicy() Policy {
	return Policy{
		Validity:      DefaultValidity,
		Retention:     DefaultRetention,
		SweepInterval: DefaultSweepInterval,
	}
}

// UnifiedPolicy returns a policy whose sweeper retention equals validity.
func UnifiedPolicy(validity time.Duration) Policy {
	return Policy{
		Validity:      validity,
		SweepInterval: DefaultSweepInterval,
	}.Normalize()
}

// Normalize fills unset fields with their defaults.
func (p Policy) Normalize() Policy {
	if p.Validity <= 0 {
		p.Validity = DefaultValidity
	}
	if p.Retention <= 0 {
		p.Retention = p.Validity
	}
	if p.SweepInterval <= 0 {
		p.SweepInterval = DefaultSweepInterval
	}
	return p
}

// Unified reports whether lookups and the sweeper use the same window.
func (p Policy) Unified() bool {
	n := p.Normalize()
	return n.Validity == n.Retention
}
