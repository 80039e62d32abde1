package cache

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jonwraymond/opsdash/observe"
)

// Sweeper periodically removes entries older than the policy's retention
// window, independent of read traffic.
type Sweeper struct {
	store     *Store
	retention time.Duration
	interval  time.Duration
	logger    observe.Logger
	metrics   observe.CacheMetrics

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

// WithSweeperLogger sets the sweeper's logger.
func WithSweeperLogger(l observe.Logger) SweeperOption {
	return func(s *Sweeper) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSweeperMetrics sets the sweeper's metrics sink.
func WithSweeperMetrics(m observe.CacheMetrics) SweeperOption {
	return func(s *Sweeper) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewSweeper creates a stopped Sweeper for store using policy's Retention
// and SweepInterval.
func NewSweeper(store *Store, policy Policy, opts ...SweeperOption) (*Sweeper, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	p := policy.Normalize()
	s := &Sweeper{
		store:     store,
		retention: p.Retention,
		interval:  p.SweepInterval,
		logger:    observe.NewNopLogger(),
		metrics:   observe.NewNoopCacheMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RunOnce performs a single sweep and returns the number of entries removed.
func (s *Sweeper) RunOnce(ctx context.Context) int {
	n := s.store.Sweep(s.retention)
	if n > 0 {
		s.metrics.RecordEviction(ctx, observe.EvictSwept, n)
		s.logger.Info(ctx, "cache sweep removed expired entries",
			observe.F("removed", n),
			observe.F("retention_ms", s.retention.Milliseconds()),
		)
	}
	return n
}

// Start schedules RunOnce every interval. Overlapping runs are skipped.
func (s *Sweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return ErrSweeperRunning
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	s.entryID = c.Schedule(cron.Every(s.interval), cron.FuncJob(func() {
		s.RunOnce(context.Background())
	}))
	c.Start()
	s.cron = c

	s.logger.Info(context.Background(), "cache sweeper started",
		observe.F("interval_ms", s.interval.Milliseconds()),
		observe.F("retention_ms", s.retention.Milliseconds()),
	)
	return nil
}

// Stop unschedules the sweeper and waits for a running sweep to finish or
// ctx to end, whichever comes first.
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return ErrSweeperStopped
	}

	done := c.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports whether the sweeper is scheduled.
func (s *Sweeper) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron != nil
}
