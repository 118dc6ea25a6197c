package core

import (
	"time"

	"github.com/google/uuid"
)

// Event records one completed stage execution. After emission it should be
// treated as immutable. Score is only meaningful for critic events and
// Route only for controller and guard events.
type Event struct {
	ID         string        `json:"id"`
	SessionID  string        `json:"session_id"`
	Stage      string        `json:"stage"`
	Iteration  int           `json:"iteration"`
	Route      Route         `json:"route"`
	Score      float64       `json:"score,omitempty"`
	StopReason string        `json:"stop_reason,omitempty"`
	Duration   time.Duration `json:"duration"`
	Timestamp  time.Time     `json:"timestamp"`
	Error      string        `json:"error,omitempty"`
}

// NewEvent snapshots the relevant record fields after stage ran.
func NewEvent(sessionID, stage string, s *State) Event {
	ev := Event{
		ID:        NewID(),
		SessionID: sessionID,
		Stage:     stage,
		Timestamp: time.Now().UTC(),
	}
	if s != nil {
		ev.Iteration = s.Iteration
		ev.Route = s.Route
		ev.StopReason = s.StopReason
		ev.Score = s.LastScore
	}
	return ev
}

// Failed reports whether the event records a stage failure.
func (e Event) Failed() bool { return e.Error != "" }

// NewID generates a new unique identifier for sessions and events.
func NewID() string { return uuid.NewString() }
