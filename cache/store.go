package cache

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// LookupState is the result of a validity-checked lookup.
type LookupState int

const (
	// LookupMiss means no entry exists for the key.
	LookupMiss LookupState = iota
	// LookupFresh means the entry is younger than the validity window.
	LookupFresh
	// LookupExpired means an entry existed but was too old and has been removed.
	LookupExpired
)

// Store is the process-wide response cache: one entry per key.
//
// Contract:
// - Concurrency: safe for concurrent use; every operation holds a single lock.
// - Ownership: entries are replaced as whole records, never field by field.
// - Errors: operations are in-memory and never fail.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock sets the time source used for StoredAt and age computation.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// Get returns the entry for key without any freshness check.
func (s *Store) Get(key string) (Entry, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	return e, ok
}

// Lookup returns the entry for key if it is younger than validity.
// A stale entry is deleted before Lookup returns, so the caller can treat
// LookupExpired exactly like LookupMiss.
func (s *Store) Lookup(key string, validity time.Duration) (Entry, LookupState) {
	now := s.now()

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return Entry{}, LookupMiss
	}
	if e.Age(now) < validity {
		return e, LookupFresh
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another writer may have replaced it since the read lock was released.
	cur, ok := s.entries[key]
	if !ok {
		return Entry{}, LookupMiss
	}
	if cur.Age(now) < validity {
		return cur, LookupFresh
	}
	delete(s.entries, key)
	return Entry{}, LookupExpired
}

// Set stores payload under key, replacing any existing entry.
func (s *Store) Set(key string, payload []byte) Entry {
	e := Entry{Key: key, Payload: payload, StoredAt: s.now()}

	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()

	return e
}

// Delete removes the entry for key. It reports whether an entry existed.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	_, ok := s.entries[key]
	delete(s.entries, key)
	s.mu.Unlock()
	return ok
}

// Len returns the number of stored entries, fresh or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep deletes every entry older than retention and returns the count.
func (s *Store) Sweep(retention time.Duration) int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.entries {
		if e.Age(now) > retention {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Clear empties the store and returns how many entries it held.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.entries)
	s.entries = make(map[string]Entry)
	return n
}

// ClearPattern deletes every entry whose key contains pattern as a
// substring and returns the count. An empty pattern matches every key.
func (s *Store) ClearPattern(pattern string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.entries {
		if strings.Contains(key, pattern) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// EntryStat describes one entry in a Stats snapshot.
type EntryStat struct {
	Key string
	Age time.Duration
}

// Stats is a point-in-time view of the store.
type Stats struct {
	Size    int
	Entries []EntryStat
}

// Stats returns the entry count and per-entry ages, sorted by key.
func (s *Store) Stats() Stats {
	now := s.now()

	s.mu.RLock()
	entries := make([]EntryStat, 0, len(s.entries))
	for key, e := range s.entries {
		entries = append(entries, EntryStat{Key: key, Age: e.Age(now)})
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})

	return Stats{Size: len(entries), Entries: entries}
}
