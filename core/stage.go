package core

import "context"

// Stage is one step of the pipeline. A stage reads fields from the record,
// optionally calls an external capability and writes derived fields back.
// The runner hands the record to exactly one stage at a time.
type Stage interface {
	Name() string
	Run(ctx context.Context, s *State) error
}

// StageFunc adapts an ordinary function into a Stage.
type StageFunc struct {
	name string
	fn   func(ctx context.Context, s *State) error
}

// NewStageFunc wraps fn as a named Stage.
func NewStageFunc(name string, fn func(ctx context.Context, s *State) error) StageFunc {
	return StageFunc{name: name, fn: fn}
}

// Name implements Stage.
func (f StageFunc) Name() string { return f.name }

// Run implements Stage.
func (f StageFunc) Run(ctx context.Context, s *State) error { return f.fn(ctx, s) }
