// Package poller implements the continuous monitoring engine: state store,
// point registry, read fan-out, change detection, connection supervision, and
// the scheduling loop that ties them together.
package poller

import (
	"sync"
	"time"

	"git.home.luguber.info/inful/pointwatch/internal/driver"
)

// PointState is the per-point observation record.
//
// HasValue distinguishes "never successfully read" from any real value; once
// set it is never cleared for the lifetime of the entry.
type PointState struct {
	Name              string       `json:"name"`
	LastValue         driver.Value `json:"last_value,omitempty"`
	HasValue          bool         `json:"has_value"`
	LastUpdate        time.Time    `json:"last_update,omitempty"`
	ConsecutiveErrors uint         `json:"consecutive_errors"`
}

// StateStore holds one PointState per registered point. All mutation goes
// through store methods under a single mutex; concurrent read-completions
// from the fan-out are safe.
type StateStore struct {
	mu     sync.RWMutex
	points map[string]*PointState
}

// NewStateStore creates an empty state store.
func NewStateStore() *StateStore {
	return &StateStore{points: make(map[string]*PointState)}
}

// Seed creates a fresh entry for name if none exists.
func (s *StateStore) Seed(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.points[name]; !ok {
		s.points[name] = &PointState{Name: name}
	}
}

// Forget removes the entry for name.
func (s *StateStore) Forget(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.points, name)
}

// Get returns a copy of the entry for name.
func (s *StateStore) Get(name string) (PointState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.points[name]
	if !ok {
		return PointState{}, false
	}
	return *st, true
}

// ApplyChange records a successful read that changed the value. The error
// counter resets on any successful read.
func (s *StateStore) ApplyChange(name string, value driver.Value, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.points[name]
	if !ok {
		// Point removed by reconciliation; the read result is discarded.
		return false
	}
	st.LastValue = value
	st.HasValue = true
	st.LastUpdate = at
	st.ConsecutiveErrors = 0
	return true
}

// ResetErrors records a successful read that did not change the value.
func (s *StateStore) ResetErrors(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.points[name]; ok {
		st.ConsecutiveErrors = 0
	}
}

// RecordFailure increments the consecutive error counter for name and
// returns the new count.
func (s *StateStore) RecordFailure(name string) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.points[name]
	if !ok {
		return 0
	}
	st.ConsecutiveErrors++
	return st.ConsecutiveErrors
}

// Len returns the number of entries.
func (s *StateStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

// Snapshot returns copies of all entries, for the status surface.
func (s *StateStore) Snapshot() []PointState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PointState, 0, len(s.points))
	for _, st := range s.points {
		out = append(out, *st)
	}
	return out
}
