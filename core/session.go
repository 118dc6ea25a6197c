package core

import (
	"sync"
	"time"
)

// Session is the process-local record of one pipeline run: the latest state
// snapshot plus the ordered stage event history. It is safe for concurrent
// access.
//
// Contract:
//   - SetState stores a clone so later mutation of the live record does not leak in
//   - GetEvents returns a defensive copy
//   - Clone performs deep copies for safe divergence
type Session struct {
	ID       string            `json:"id"`
	State    *State            `json:"state,omitempty"`
	Events   []Event           `json:"events"`
	Created  time.Time         `json:"created"`
	Updated  time.Time         `json:"updated"`
	Metadata map[string]string `json:"metadata,omitempty"`
	mu       sync.RWMutex
}

// NewSession creates a new session with the given ID.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{ID: id, Events: []Event{}, Created: now, Updated: now, Metadata: map[string]string{}}
}

// SetState replaces the state snapshot, updating the Updated timestamp.
func (s *Session) SetState(st *State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st != nil {
		st = st.Clone()
	}
	s.State = st
	s.Updated = time.Now()
}

// Snapshot returns a copy of the stored state, or nil.
func (s *Session) Snapshot() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.State == nil {
		return nil
	}
	return s.State.Clone()
}

// AddEvent appends an event to the history updating Updated timestamp.
func (s *Session) AddEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, ev)
	s.Updated = time.Now()
}

// GetEvents returns a defensive copy of the full event slice.
func (s *Session) GetEvents() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]Event, len(s.Events))
	copy(events, s.Events)
	return events
}

// StageEvents returns the events emitted by the named stage, in order.
func (s *Session) StageEvents(stage string) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []Event
	for _, ev := range s.Events {
		if ev.Stage == stage {
			res = append(res, ev)
		}
	}
	return res
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := &Session{
		ID:       s.ID,
		Events:   make([]Event, len(s.Events)),
		Created:  s.Created,
		Updated:  s.Updated,
		Metadata: make(map[string]string, len(s.Metadata)),
	}
	if s.State != nil {
		clone.State = s.State.Clone()
	}
	copy(clone.Events, s.Events)
	for k, v := range s.Metadata {
		clone.Metadata[k] = v
	}
	return clone
}
