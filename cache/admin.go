package cache

import (
	"net/http"

	"github.com/jonwraymond/opsdash/observe"
)

// Admin routes registered by AdminHandler.Register.
const (
	AdminStatsPath = "/admin/cache/stats"
	AdminClearPath = "/admin/cache"
)

// StatsReport is the JSON body of the stats endpoint.
type StatsReport struct {
	Size    int           `json:"size"`
	Entries []EntryReport `json:"entries"`
}

// EntryReport describes one entry. Age is in milliseconds.
type EntryReport struct {
	Key string `json:"key"`
	Age int64  `json:"age"`
}

// ClearReport is the JSON body of the clear endpoint.
type ClearReport struct {
	Cleared int    `json:"cleared"`
	Pattern string `json:"pattern,omitempty"`
}

// NewStatsReport converts a Stats snapshot to its wire form.
func NewStatsReport(s Stats) StatsReport {
	entries := make([]EntryReport, len(s.Entries))
	for i, e := range s.Entries {
		entries[i] = EntryReport{Key: e.Key, Age: e.Age.Milliseconds()}
	}
	return StatsReport{Size: s.Size, Entries: entries}
}

// AdminHandler exposes the store's administrative operations over HTTP.
type AdminHandler struct {
	store   *Store
	logger  observe.Logger
	metrics observe.CacheMetrics
}

// NewAdminHandler creates an AdminHandler. Nil logger or metrics are no-ops.
func NewAdminHandler(store *Store, logger observe.Logger, metrics observe.CacheMetrics) *AdminHandler {
	if logger == nil {
		logger = observe.NewNopLogger()
	}
	if metrics == nil {
		metrics = observe.NewNoopCacheMetrics()
	}
	return &AdminHandler{store: store, logger: logger, metrics: metrics}
}

// Stats writes the current StatsReport.
func (h *AdminHandler) Stats(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, NewStatsReport(h.store.Stats()))
}

// Clear empties the store, or only keys containing the "pattern" query
// parameter when it is set.
func (h *AdminHandler) Clear(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("pattern")

	var n int
	if pattern == "" {
		n = h.store.Clear()
		h.logger.Info(r.Context(), "cache cleared", observe.F("cleared", n))
	} else {
		n = h.store.ClearPattern(pattern)
		h.logger.Info(r.Context(), "cache cleared by pattern",
			observe.F("cleared", n),
			observe.F("pattern", pattern),
		)
	}
	h.metrics.RecordEviction(r.Context(), observe.EvictCleared, n)

	WriteJSON(w, http.StatusOK, ClearReport{Cleared: n, Pattern: pattern})
}

// Register mounts the admin routes on mux. guard, if not nil, wraps every
// route (typically authentication).
func (h *AdminHandler) Register(mux *http.ServeMux, guard func(http.Handler) http.Handler) {
	if guard == nil {
		guard = func(next http.Handler) http.Handler { return next }
	}
	mux.Handle("GET "+AdminStatsPath, guard(http.HandlerFunc(h.Stats)))
	mux.Handle("DELETE "+AdminClearPath, guard(http.HandlerFunc(h.Clear)))
}
