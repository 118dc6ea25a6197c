package runner

import (
	"context"
	"fmt"

	"github.com/hupe1980/blogmesh/core"
	"github.com/hupe1980/blogmesh/logging"
)

// CallbackType defines the lifecycle points where callbacks run.
//
// Callbacks hook into stage execution without modifying the stages:
//   - BeforeStage/AfterStage: around every stage (controller included)
//   - OnError: after a stage returned an error
//
// Callbacks run synchronously on the run's goroutine. An error returned from
// BeforeStage or AfterStage fails the run as a stage error; OnError results
// are logged only.
type CallbackType string

const (
	// CallbackBeforeStage is triggered before a stage runs.
	CallbackBeforeStage CallbackType = "before_stage"
	// CallbackAfterStage is triggered after a stage returned successfully.
	CallbackAfterStage CallbackType = "after_stage"
	// CallbackOnError is triggered when a stage fails.
	CallbackOnError CallbackType = "on_error"
)

// CallbackContext is handed to every callback.
type CallbackContext struct {
	SessionID string
	Stage     string
	// State is the live record. Callbacks must treat it as read-only.
	State *core.State
	// Event is set for AfterStage and OnError.
	Event *core.Event
	// Err is the stage error for OnError.
	Err          error
	CallbackType CallbackType
}

// Callback is one lifecycle hook.
type Callback interface {
	Type() CallbackType
	Execute(ctx context.Context, cc *CallbackContext) error
}

// FunctionCallback wraps a function as a callback.
//
//	cb := NewFunctionCallback(CallbackAfterStage, func(ctx context.Context, cc *CallbackContext) error {
//	    log.Printf("%s done at iteration %d", cc.Stage, cc.State.Iteration)
//	    return nil
//	})
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(ctx context.Context, cc *CallbackContext) error
}

// NewFunctionCallback creates a function-based callback.
func NewFunctionCallback(t CallbackType, fn func(ctx context.Context, cc *CallbackContext) error) *FunctionCallback {
	return &FunctionCallback{callbackType: t, fn: fn}
}

// Type implements Callback.
func (c *FunctionCallback) Type() CallbackType { return c.callbackType }

// Execute implements Callback.
func (c *FunctionCallback) Execute(ctx context.Context, cc *CallbackContext) error {
	return c.fn(ctx, cc)
}

// CallbackManager routes callbacks by type. Register everything before the
// first run; execution is then safe from any number of runners.
type CallbackManager struct {
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager creates an empty manager.
func NewCallbackManager(cbs ...Callback) *CallbackManager {
	cm := &CallbackManager{callbacks: make(map[CallbackType][]Callback)}
	for _, cb := range cbs {
		cm.RegisterCallback(cb)
	}
	return cm
}

// RegisterCallback appends cb; callbacks of one type run in registration order.
func (cm *CallbackManager) RegisterCallback(cb Callback) {
	cm.callbacks[cb.Type()] = append(cm.callbacks[cb.Type()], cb)
}

// ExecuteCallbacks runs the callbacks registered for t, stopping at the first error.
func (cm *CallbackManager) ExecuteCallbacks(ctx context.Context, t CallbackType, cc *CallbackContext) error {
	if cm == nil {
		return nil
	}
	cc.CallbackType = t
	for _, cb := range cm.callbacks[t] {
		if err := cb.Execute(ctx, cc); err != nil {
			return err
		}
	}
	return nil
}

// LoggingCallback forwards lifecycle points to a logger at debug level.
type LoggingCallback struct {
	callbackType CallbackType
	logger       logging.Logger
}

// NewLoggingCallback creates a logging callback for t.
func NewLoggingCallback(t CallbackType, logger logging.Logger) *LoggingCallback {
	return &LoggingCallback{callbackType: t, logger: logging.OrNoOp(logger)}
}

// Type implements Callback.
func (c *LoggingCallback) Type() CallbackType { return c.callbackType }

// Execute implements Callback.
func (c *LoggingCallback) Execute(_ context.Context, cc *CallbackContext) error {
	args := []any{"session_id", cc.SessionID, "stage", cc.Stage, "iteration", cc.State.Iteration}
	if cc.Err != nil {
		args = append(args, "error", cc.Err)
	}
	c.logger.Debug("runner."+string(c.callbackType), args...)
	return nil
}

// StateValidationCallback checks the record after every successful stage.
// A validation error fails the run.
type StateValidationCallback struct {
	validator func(s *core.State) error
}

// NewStateValidationCallback creates a validation callback.
func NewStateValidationCallback(validator func(s *core.State) error) *StateValidationCallback {
	return &StateValidationCallback{validator: validator}
}

// Type implements Callback (always CallbackAfterStage).
func (c *StateValidationCallback) Type() CallbackType { return CallbackAfterStage }

// Execute implements Callback.
func (c *StateValidationCallback) Execute(_ context.Context, cc *CallbackContext) error {
	if c.validator == nil || cc.State == nil {
		return nil
	}
	return c.validator(cc.State)
}

// CheckScoreLaws verifies the score bookkeeping of a record: the best score
// is the maximum of the history (seeded with 0), every score lies in [0,1]
// and the critic has not run more often than the iteration counter allows.
func CheckScoreLaws(s *core.State) error {
	best := 0.0
	for i, v := range s.ConfidenceScores {
		if v < 0 || v > 1 {
			return fmt.Errorf("score %d out of range: %v", i, v)
		}
		best = max(best, v)
	}
	if s.BestScore != best {
		return fmt.Errorf("best score %v does not match history maximum %v", s.BestScore, best)
	}
	if len(s.ConfidenceScores) > s.Iteration {
		return fmt.Errorf("%d critic visits after %d iterations", len(s.ConfidenceScores), s.Iteration)
	}
	return nil
}
