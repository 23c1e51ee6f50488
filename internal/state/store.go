package state

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/nerrad567/milight-hub/internal/bulb"
)

// Logger is the logging interface used by the store.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Store owns the state of every known bulb group. It is not safe for
// concurrent use.
type Store struct {
	states map[bulb.Key]*GroupState
	repo   Repository
	logger Logger
}

// NewStore creates an empty store. repo may be nil, in which case Flush and
// Restore do nothing.
func NewStore(repo Repository) *Store {
	return &Store{
		states: make(map[bulb.Key]*GroupState),
		repo:   repo,
	}
}

// SetLogger sets the logger for persistence warnings.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// Get returns the state for key, creating it on first reference.
func (s *Store) Get(key bulb.Key) *GroupState {
	st, ok := s.states[key]
	if !ok {
		st = New()
		s.states[key] = st
	}
	return st
}

// Lookup returns the state for key without creating it.
func (s *Store) Lookup(key bulb.Key) (*GroupState, bool) {
	st, ok := s.states[key]
	return st, ok
}

// Len returns the number of known bulb groups.
func (s *Store) Len() int {
	return len(s.states)
}

// Keys returns every known key in a stable order.
func (s *Store) Keys() []bulb.Key {
	keys := make([]bulb.Key, 0, len(s.states))
	for k := range s.states {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.DeviceType != b.DeviceType {
			return a.DeviceType < b.DeviceType
		}
		if a.DeviceID != b.DeviceID {
			return a.DeviceID < b.DeviceID
		}
		return a.GroupID < b.GroupID
	})
	return keys
}

// Flush persists every dirty state and marks it clean.
//
// A state that fails to save stays dirty and is retried on the next flush.
//
// Returns:
//   - int: Number of states written
//   - error: All save failures joined, or nil
func (s *Store) Flush(ctx context.Context) (int, error) {
	if s.repo == nil {
		return 0, nil
	}

	var (
		written int
		errs    []error
	)
	for _, key := range s.Keys() {
		st := s.states[key]
		if !st.Dirty() {
			continue
		}
		data, err := st.Dump()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		if err := s.repo.Save(ctx, key, data); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		st.ClearDirty()
		written++
	}
	return written, errors.Join(errs...)
}

// Restore loads every persisted state into the store. Restored states are
// clean. Snapshots that fail to decode are skipped with a warning.
func (s *Store) Restore(ctx context.Context) (int, error) {
	if s.repo == nil {
		return 0, nil
	}

	snapshots, err := s.repo.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("restoring state: %w", err)
	}

	restored := 0
	for key, data := range snapshots {
		st := New()
		if err := st.Load(data); err != nil {
			if s.logger != nil {
				s.logger.Warn("skipping unreadable bulb state", "key", key.String(), "error", err)
			}
			continue
		}
		s.states[key] = st
		restored++
	}
	if s.logger != nil {
		s.logger.Debug("restored bulb states", "count", restored)
	}
	return restored, nil
}
