package testutil

import (
	"fmt"

	"github.com/hupe1980/blogmesh/core"
)

// StateBuilder assembles a session record in the shape a finished (or
// partially finished) run would leave it. Scores are applied through
// core.State.RecordCritique so best-draft bookkeeping stays consistent.
//
//	s := NewStateBuilder("Go generics").Scores(0.4, 0.85).Done("Early stop").Build()
type StateBuilder struct {
	state   *core.State
	scores  []float64
	reason  string
	done    bool
	drafter func(iteration int) string
}

// NewStateBuilder starts from core.NewState with default word count and cap.
func NewStateBuilder(topic string) *StateBuilder {
	return &StateBuilder{
		state:   core.NewState(topic, "", "", 0, 0),
		drafter: func(i int) string { return fmt.Sprintf("# Draft %d\n\nBody of draft %d.", i, i) },
	}
}

// Tone sets the requested tone (chainable).
func (b *StateBuilder) Tone(t string) *StateBuilder { b.state.Tone = t; return b }

// Constraints sets the user constraints (chainable).
func (b *StateBuilder) Constraints(c string) *StateBuilder { b.state.Constraints = c; return b }

// WordCount sets the target length (chainable).
func (b *StateBuilder) WordCount(n int) *StateBuilder { b.state.WordCount = n; return b }

// MaxIterations sets the iteration cap (chainable).
func (b *StateBuilder) MaxIterations(n int) *StateBuilder { b.state.MaxIterations = n; return b }

// Queries sets the planner output (chainable).
func (b *StateBuilder) Queries(q ...string) *StateBuilder { b.state.SearchQueries = q; return b }

// Notes sets the research notes (chainable).
func (b *StateBuilder) Notes(n string) *StateBuilder { b.state.ResearchNotes = n; return b }

// Drafts overrides how the draft for a given iteration is produced (chainable).
func (b *StateBuilder) Drafts(fn func(iteration int) string) *StateBuilder { b.drafter = fn; return b }

// Scores records one critic cycle per score, in order (chainable).
func (b *StateBuilder) Scores(scores ...float64) *StateBuilder {
	b.scores = append(b.scores, scores...)
	return b
}

// Done terminates the record with reason (chainable).
func (b *StateBuilder) Done(reason string) *StateBuilder {
	b.done = true
	b.reason = reason
	return b
}

// Build replays the scripted cycles and returns the record.
func (b *StateBuilder) Build() *core.State {
	s := b.state
	for i, score := range b.scores {
		s.Iteration = i + 1
		s.Draft = b.drafter(s.Iteration)
		s.RecordCritique(core.Critique{
			Score:     score,
			Grammar:   7,
			Depth:     6,
			Structure: 7,
			Feedback:  fmt.Sprintf("Cycle %d: tighten the introduction.", s.Iteration),
		})
	}
	if len(b.scores) > 0 {
		s.Iteration = len(b.scores) + 1
	}
	if b.done {
		s.Halt(b.reason)
	}
	return s
}
