package core

import (
	"errors"
	"fmt"
)

// ErrStepLimit is returned when a run exceeds the runner's stage execution bound.
var ErrStepLimit = errors.New("stage execution limit exceeded")

// StageError reports an unrecovered stage failure. It aborts the run; the
// record returned alongside it keeps whatever earlier cycles committed.
type StageError struct {
	Stage     string `json:"stage"`
	Iteration int    `json:"iteration"`
	Err       error  `json:"-"`
}

// NewStageError wraps err with the failing stage and iteration.
func NewStageError(stage string, iteration int, err error) *StageError {
	return &StageError{Stage: stage, Iteration: iteration, Err: err}
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed (iteration %d): %v", e.Stage, e.Iteration, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *StageError) Unwrap() error { return e.Err }
