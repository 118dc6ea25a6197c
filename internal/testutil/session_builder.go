package testutil

import (
	"github.com/hupe1980/blogmesh/core"
)

// SessionBuilder helps construct sessions with fluent chaining for tests.
// Example:
//
//	sess := NewSessionBuilder("sess-1").State(st).Events(ev1, ev2).Build()
type SessionBuilder struct {
	id     string
	state  *core.State
	events []core.Event
}

// NewSessionBuilder creates a new builder for a session with the given id.
func NewSessionBuilder(id string) *SessionBuilder {
	return &SessionBuilder{id: id}
}

// State sets the snapshot stored on the resulting session (chainable).
func (b *SessionBuilder) State(st *core.State) *SessionBuilder {
	b.state = st
	return b
}

// Event appends a single event to the session history (chainable).
func (b *SessionBuilder) Event(ev core.Event) *SessionBuilder {
	b.events = append(b.events, ev)
	return b
}

// Events appends multiple events to the session history (chainable).
func (b *SessionBuilder) Events(evs ...core.Event) *SessionBuilder {
	b.events = append(b.events, evs...)
	return b
}

// Build returns a *core.Session with the snapshot and events applied.
func (b *SessionBuilder) Build() *core.Session {
	s := core.NewSession(b.id)
	if b.state != nil {
		s.SetState(b.state)
	}
	for _, ev := range b.events {
		ev.SessionID = b.id
		s.AddEvent(ev)
	}
	return s
}
