package admin

import (
	"context"
	"math/rand/v2"
	"time"
)

// retryPolicy retries with exponential backoff plus up to 25% jitter.
type retryPolicy struct {
	attempts int
	initial  time.Duration
	max      time.Duration
}

// delay returns the wait before retry number attempt (1-based).
func (p retryPolicy) delay(attempt int) time.Duration {
	d := p.initial << (attempt - 1)
	if d <= 0 || (p.max > 0 && d > p.max) {
		d = p.max
	}
	if j := int64(d / 4); j > 0 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		d += time.Duration(rand.Int64N(j))
	}
	return d
}

// do runs op until it succeeds, reports the failure as final, or the
// attempts are used up. The last error is returned.
func (p retryPolicy) do(ctx context.Context, op func(context.Context) (retry bool, err error)) error {
	var err error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		var retry bool
		retry, err = op(ctx)
		if err == nil || !retry || attempt == p.attempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.delay(attempt)):
		}
	}
	return err
}
