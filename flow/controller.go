package flow

import (
	"context"
	"fmt"

	"github.com/hupe1980/blogmesh/core"
)

// ConfidenceThreshold is the score at or above which the run stops early.
const ConfidenceThreshold = 0.80

// ControllerName is the stage name reported in events.
const ControllerName = "controller"

// Decision is the outcome of one controller visit.
type Decision struct {
	Iteration  int
	Route      core.Route
	StopReason string
}

// Decide applies the refinement rules in order:
//
//  1. the counter advances by one (the first visit yields 1)
//  2. last >= ConfidenceThreshold stops early
//  3. otherwise reaching maxIterations stops
//  4. otherwise the loop continues
//
// The threshold is checked against the most recent score, not the best one.
func Decide(last, best float64, iteration, maxIterations int) Decision {
	next := 1
	if iteration > 0 {
		next = iteration + 1
	}

	if last >= ConfidenceThreshold {
		return Decision{
			Iteration: next,
			Route:     core.RouteDone,
			StopReason: fmt.Sprintf("Early stop: confidence reached %.1f%% (threshold %.0f%%)",
				last*100, ConfidenceThreshold*100),
		}
	}

	if next >= maxIterations {
		return Decision{
			Iteration: next,
			Route:     core.RouteDone,
			StopReason: fmt.Sprintf("Max iterations (%d) reached without hitting threshold %.0f%% (best score %.1f%%)",
				maxIterations, ConfidenceThreshold*100, best*100),
		}
	}

	return Decision{
		Iteration: next,
		Route:     core.RouteContinue,
		StopReason: fmt.Sprintf("Below confidence threshold (%.1f%% < %.0f%%), iterations remaining",
			last*100, ConfidenceThreshold*100),
	}
}

// Apply writes the decision into the record.
func (d Decision) Apply(s *core.State) {
	s.Iteration = d.Iteration
	s.Route = d.Route
	s.StopReason = d.StopReason
}

// Controller is the core.Stage wrapper around Decide.
type Controller struct{}

// NewController returns the refinement controller stage.
func NewController() *Controller { return &Controller{} }

// Name implements core.Stage.
func (*Controller) Name() string { return ControllerName }

// Run implements core.Stage. It never fails.
func (*Controller) Run(_ context.Context, s *core.State) error {
	Decide(s.LastScore, s.BestScore, s.Iteration, s.MaxIterations).Apply(s)
	return nil
}
