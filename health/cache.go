package health

import (
	"context"
	"fmt"
)

// Sizer reports how many entries a cache holds.
type Sizer interface {
	Len() int
}

// CacheChecker reports the response cache's entry count. It is degraded
// once the count reaches WarnEntries, which usually means the sweeper is
// not keeping up.
type CacheChecker struct {
	cache       Sizer
	warnEntries int
}

// NewCacheChecker creates a CacheChecker. warnEntries <= 0 disables the
// threshold.
func NewCacheChecker(cache Sizer, warnEntries int) *CacheChecker {
	return &CacheChecker{cache: cache, warnEntries: warnEntries}
}

// Name returns "cache".
func (c *CacheChecker) Name() string { return "cache" }

// Check reads the entry count.
func (c *CacheChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}
	if c.cache == nil {
		return Unhealthy("cache not configured", ErrCheckFailed)
	}

	n := c.cache.Len()
	details := map[string]any{"entries": n}
	if c.warnEntries > 0 {
		details["warn_entries"] = c.warnEntries
		if n >= c.warnEntries {
			return Degraded(fmt.Sprintf("cache holds %d entries", n)).WithDetails(details)
		}
	}
	return Healthy(fmt.Sprintf("cache holds %d entries", n)).WithDetails(details)
}

var _ Checker = (*CacheChecker)(nil)
