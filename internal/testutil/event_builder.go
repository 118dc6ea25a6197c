package testutil

import (
	"time"

	"github.com/hupe1980/blogmesh/core"
)

// EventBuilder provides a fluent helper for constructing events in tests.
// Example:
//
//	ev := NewEventBuilder().Stage("critic").Iteration(2).Score(0.7).Build()
//
// Chain only the parts you need; sensible defaults are applied.
type EventBuilder struct {
	id         string
	sessionID  string
	stage      string
	iteration  int
	route      core.Route
	score      float64
	stopReason string
	duration   time.Duration
	err        string
}

// NewEventBuilder creates a builder with default stage "controller" and session "session".
func NewEventBuilder() *EventBuilder {
	return &EventBuilder{stage: "controller", sessionID: "session"}
}

// ID overrides the auto-generated event ID (chainable).
func (b *EventBuilder) ID(id string) *EventBuilder { b.id = id; return b }

// Session sets the session the event belongs to (chainable).
func (b *EventBuilder) Session(id string) *EventBuilder { b.sessionID = id; return b }

// Stage sets the emitting stage name (chainable).
func (b *EventBuilder) Stage(name string) *EventBuilder { b.stage = name; return b }

// Iteration sets the iteration counter observed after the stage (chainable).
func (b *EventBuilder) Iteration(i int) *EventBuilder { b.iteration = i; return b }

// Score sets the critic score (chainable).
func (b *EventBuilder) Score(v float64) *EventBuilder { b.score = v; return b }

// Done marks the event as carrying the terminal route with reason (chainable).
func (b *EventBuilder) Done(reason string) *EventBuilder {
	b.route = core.RouteDone
	b.stopReason = reason
	return b
}

// Continue marks the event as routing to another cycle (chainable).
func (b *EventBuilder) Continue() *EventBuilder { b.route = core.RouteContinue; return b }

// Duration sets the measured stage duration (chainable).
func (b *EventBuilder) Duration(d time.Duration) *EventBuilder { b.duration = d; return b }

// Failed records a stage failure message (chainable).
func (b *EventBuilder) Failed(msg string) *EventBuilder { b.err = msg; return b }

// Build constructs the core.Event value.
func (b *EventBuilder) Build() core.Event {
	ev := core.NewEvent(b.sessionID, b.stage, nil)
	if b.id != "" {
		ev.ID = b.id
	}
	ev.Iteration = b.iteration
	ev.Route = b.route
	ev.Score = b.score
	ev.StopReason = b.stopReason
	ev.Duration = b.duration
	ev.Error = b.err
	return ev
}
