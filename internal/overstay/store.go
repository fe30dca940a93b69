package overstay

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// SettingsAPI is the remote configuration endpoint the store talks to.
type SettingsAPI interface {
	// OverstayLimits returns the raw overstayLimits value for a community,
	// which may be empty or null.
	OverstayLimits(ctx context.Context, communityID string) (json.RawMessage, error)
	// SaveOverstayLimits replaces the community's limits and reports whether
	// the backend acknowledged success.
	SaveOverstayLimits(ctx context.Context, communityID string, limits map[string]int) (bool, error)
}

// Store fetches and persists a community's limits. It never returns errors:
// reads fall back to defaults and writes report false.
type Store struct {
	api SettingsAPI
}

// NewStore creates a limits store backed by the given endpoint.
func NewStore(api SettingsAPI) *Store {
	return &Store{api: api}
}

// Fetch returns the community's limits merged over the defaults, or the
// defaults when the read fails or the response is malformed.
func (s *Store) Fetch(ctx context.Context, communityID string) Limits {
	raw, err := s.api.OverstayLimits(ctx, communityID)
	if err != nil {
		slog.Warn("fetching overstay limits, using defaults", "community", communityID, "error", err)
		return DefaultLimits()
	}

	limits, err := MergeRemote(raw)
	if err != nil {
		slog.Warn("malformed overstay limits, using defaults", "community", communityID, "error", err)
		return DefaultLimits()
	}

	return limits
}

// Save pushes the full mapping. It returns true only when the backend
// explicitly acknowledges success.
func (s *Store) Save(ctx context.Context, communityID string, limits Limits) bool {
	ok, err := s.api.SaveOverstayLimits(ctx, communityID, limits.Wire())
	if err != nil {
		slog.Error("saving overstay limits", "community", communityID, "error", err)
		return false
	}
	if !ok {
		slog.Error("saving overstay limits: backend did not acknowledge", "community", communityID)
	}
	return ok
}

// Loader serves repeated fetches, dropping any response whose request was
// issued before one that has already been applied.
type Loader struct {
	store *Store

	mu      sync.Mutex
	issued  uint64
	applied uint64
	current Limits
}

// NewLoader creates a loader that starts out holding the defaults.
func NewLoader(store *Store) *Loader {
	return &Loader{store: store, current: DefaultLimits()}
}

// Load fetches limits and applies them unless a newer fetch already landed.
// It returns the limits now in effect and whether this call's result was used.
func (l *Loader) Load(ctx context.Context, communityID string) (Limits, bool) {
	l.mu.Lock()
	l.issued++
	seq := l.issued
	l.mu.Unlock()

	limits := l.store.Fetch(ctx, communityID)

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq < l.applied {
		return l.current.Clone(), false
	}
	l.applied = seq
	l.current = limits
	return limits.Clone(), true
}

// Current returns the limits from the most recently applied fetch.
func (l *Loader) Current() Limits {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current.Clone()
}
