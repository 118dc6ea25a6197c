// Package runner executes the blog pipeline graph for one session.
//
// The Runner owns the control flow: optional entry stages (guard, planner),
// then the refinement cycle driven by the controller and the flow routing
// table. Execution is strictly sequential; the caller's context is the only
// cancellation lever and no stage is retried.
//
// # Responsibilities (abridged)
//   - Stage sequencing and termination (controller route, guard halt, step bound)
//   - Failure wrapping: every stage error becomes a *core.StageError
//   - Event emission to an optional observer and the session store
//   - Tracing spans per run and per stage, stage metrics
//
// The record passed to Run is mutated in place and also returned, so callers
// keep the partial result when a run aborts.
package runner
