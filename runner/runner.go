package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/blogmesh/core"
	"github.com/hupe1980/blogmesh/flow"
	"github.com/hupe1980/blogmesh/logging"
	"github.com/hupe1980/blogmesh/session"
)

const instrumentationName = "github.com/hupe1980/blogmesh/runner"

// DefaultMaxSteps is the smallest derived stage execution bound.
const DefaultMaxSteps = 64

// ErrMissingStage is returned by New when a mandatory stage is nil.
var ErrMissingStage = errors.New("missing stage")

// Stages wires the graph. Researcher, Generator and Critic are mandatory;
// Guard and Planner are optional entry stages; Controller defaults to the
// rule-based flow.Controller.
type Stages struct {
	Guard      core.Stage
	Planner    core.Stage
	Researcher core.Stage
	Generator  core.Stage
	Critic     core.Stage
	Controller core.Stage
}

// Observer receives every stage event as soon as the stage returns.
type Observer func(ev core.Event)

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// MaxSteps bounds stage executions per run; exceeding it fails with
	// core.ErrStepLimit. Zero derives a bound the controller cap always
	// stays under: max(DefaultMaxSteps, 4*MaxIterations+3).
	MaxSteps int
	// SessionStore receives stage events and the final state snapshot.
	SessionStore core.SessionStore
	// Observer is notified of each stage event.
	Observer Observer
	// Callbacks are run around every stage.
	Callbacks *CallbackManager
	// Logging services.
	Logger logging.Logger
	// Tracer creates run and stage spans; defaults to the global provider.
	Tracer trace.Tracer
}

// Runner coordinates stage execution for one session at a time.
type Runner struct {
	stages       Stages
	maxSteps     int
	sessionStore core.SessionStore
	observer     Observer
	callbacks    *CallbackManager
	logger       logging.Logger
	tracer       trace.Tracer
}

// New constructs a Runner with optional overrides.
func New(stages Stages, optFns ...func(o *Options)) (*Runner, error) {
	switch {
	case stages.Researcher == nil:
		return nil, fmt.Errorf("%w: researcher", ErrMissingStage)
	case stages.Generator == nil:
		return nil, fmt.Errorf("%w: generator", ErrMissingStage)
	case stages.Critic == nil:
		return nil, fmt.Errorf("%w: critic", ErrMissingStage)
	}
	if stages.Controller == nil {
		stages.Controller = flow.NewController()
	}

	opts := Options{
		SessionStore: session.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(instrumentationName)
	}

	return &Runner{
		stages:       stages,
		maxSteps:     opts.MaxSteps,
		sessionStore: opts.SessionStore,
		observer:     opts.Observer,
		callbacks:    opts.Callbacks,
		logger:       logging.OrNoOp(opts.Logger),
		tracer:       opts.Tracer,
	}, nil
}

// SessionStore exposes the store that records events and snapshots.
func (r *Runner) SessionStore() core.SessionStore { return r.sessionStore }

// run carries per-invocation bookkeeping.
type run struct {
	*Runner
	sessionID string
	steps     int
	limit     int
}

// stepLimit resolves the stage execution bound for a record.
func (r *Runner) stepLimit(s *core.State) int {
	if r.maxSteps > 0 {
		return r.maxSteps
	}
	// guard + planner + controller per cycle (4 stages) + final controller
	return max(DefaultMaxSteps, 4*s.MaxIterations+3)
}

// Run executes the graph until the controller (or the guard) routes to the
// end. On failure the partially updated record is returned with the error.
func (r *Runner) Run(ctx context.Context, sessionID string, s *core.State) (*core.State, error) {
	if sessionID == "" {
		sessionID = core.NewID()
	}

	ctx, span := r.tracer.Start(ctx, "blogmesh.run", trace.WithAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("blog.topic", s.Topic),
		attribute.Int("blog.max_iterations", s.MaxIterations),
	))
	defer span.End()

	start := time.Now()
	x := &run{Runner: r, sessionID: sessionID, limit: r.stepLimit(s)}
	err := x.loop(ctx, s)

	if saveErr := r.sessionStore.SaveState(sessionID, s); saveErr != nil {
		r.logger.Warn("runner.snapshot_failed", "session_id", sessionID, "error", saveErr)
	}

	span.SetAttributes(
		attribute.Int("blog.iterations", s.Iteration),
		attribute.Int("blog.critic_visits", len(s.ConfidenceScores)),
		attribute.Float64("blog.best_score", s.BestScore),
		attribute.String("blog.stop_reason", s.StopReason),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "run failed")
		r.logger.Error("run.failed", "session_id", sessionID, "steps", x.steps, "error", err)
		return s, err
	}

	r.logger.Info("run.done",
		"session_id", sessionID,
		"iterations", s.Iteration,
		"best_score", s.BestScore,
		"stop_reason", s.StopReason,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return s, nil
}

func (x *run) loop(ctx context.Context, s *core.State) error {
	if x.stages.Guard != nil {
		if err := x.exec(ctx, x.stages.Guard, s); err != nil {
			return err
		}
		if s.Done() {
			return nil
		}
	}
	if x.stages.Planner != nil {
		if err := x.exec(ctx, x.stages.Planner, s); err != nil {
			return err
		}
	}

	for {
		if err := x.exec(ctx, x.stages.Controller, s); err != nil {
			return err
		}

		switch flow.Route(s) {
		case flow.NextEnd:
			return nil
		case flow.NextResearcher:
			if err := x.exec(ctx, x.stages.Researcher, s); err != nil {
				return err
			}
		}

		if err := x.exec(ctx, x.stages.Generator, s); err != nil {
			return err
		}
		if err := x.exec(ctx, x.stages.Critic, s); err != nil {
			return err
		}
	}
}

// exec runs one stage inside its own span and records the resulting event.
func (x *run) exec(ctx context.Context, st core.Stage, s *core.State) error {
	if x.steps >= x.limit {
		return fmt.Errorf("%w: %d stages executed", core.ErrStepLimit, x.steps)
	}
	x.steps++

	name := st.Name()
	if err := ctx.Err(); err != nil {
		return core.NewStageError(name, s.Iteration, err)
	}

	ctx, span := x.tracer.Start(ctx, "blogmesh.stage."+name, trace.WithAttributes(
		attribute.String("stage.name", name),
		attribute.Int("blog.iteration", s.Iteration),
	))
	defer span.End()

	cc := &CallbackContext{SessionID: x.sessionID, Stage: name, State: s}
	if err := x.callbacks.ExecuteCallbacks(ctx, CallbackBeforeStage, cc); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "before_stage callback failed")
		return core.NewStageError(name, s.Iteration, err)
	}

	start := time.Now()
	err := st.Run(ctx, s)
	dur := time.Since(start)

	logging.LogStage(x.logger, name, s.Iteration, dur, err)
	recordStage(ctx, name, dur, err)

	ev := core.NewEvent(x.sessionID, name, s)
	ev.Duration = dur
	if err != nil {
		ev.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, "stage failed")
	} else {
		span.SetAttributes(attribute.String("blog.route", s.Route.String()))
		if len(s.ConfidenceScores) > 0 {
			span.SetAttributes(attribute.Float64("blog.last_score", s.LastScore))
		}
	}
	x.emit(ev)
	cc.Event = &ev

	if err != nil {
		cc.Err = err
		if cbErr := x.callbacks.ExecuteCallbacks(ctx, CallbackOnError, cc); cbErr != nil {
			x.logger.Warn("runner.on_error_callback_failed", "stage", name, "error", cbErr)
		}
		return core.NewStageError(name, s.Iteration, err)
	}
	if err := x.callbacks.ExecuteCallbacks(ctx, CallbackAfterStage, cc); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "after_stage callback failed")
		return core.NewStageError(name, s.Iteration, err)
	}
	return nil
}

func (x *run) emit(ev core.Event) {
	if err := x.sessionStore.AppendEvent(x.sessionID, ev); err != nil {
		x.logger.Warn("runner.append_event_failed", "session_id", x.sessionID, "stage", ev.Stage, "error", err)
	}
	if x.observer != nil {
		x.observer(ev)
	}
}
