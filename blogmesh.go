// Package blogmesh provides a high-level façade over the blog pipeline:
// input guard, query planner, researcher, generator and critic stages driven
// by the rule-based refinement controller, plus an optional SEO pass over the
// best draft. Most applications interact with this package by:
//  1. Creating a Pipeline via New() with a text generation model and a searcher
//  2. Calling Run with the user's Input
//  3. Rendering or exporting the Result (see package console)
//
// The façade delegates orchestration to runner.Runner while keeping setup
// concise. All stores default to in-memory implementations.
package blogmesh

import (
	"context"

	"github.com/hupe1980/blogmesh/agent"
	"github.com/hupe1980/blogmesh/console"
	"github.com/hupe1980/blogmesh/core"
	"github.com/hupe1980/blogmesh/logging"
	"github.com/hupe1980/blogmesh/model"
	"github.com/hupe1980/blogmesh/prompt"
	"github.com/hupe1980/blogmesh/runner"
	"github.com/hupe1980/blogmesh/search"
	"github.com/hupe1980/blogmesh/session"
)

// Input is the user's session configuration.
type Input struct {
	Topic         string
	Tone          string
	Constraints   string
	WordCount     int
	MaxIterations int
}

// Options configures the Pipeline.
type Options struct {
	// Prompts resolves system prompt templates (defaults to the embedded set).
	Prompts prompt.Loader
	// SessionStore receives stage events and the final snapshot.
	SessionStore core.SessionStore
	// Observer is notified of every stage event as it happens.
	Observer runner.Observer
	// Callbacks run around every stage. Nil installs debug logging hooks and
	// a score bookkeeping check.
	Callbacks *runner.CallbackManager
	// MaxSteps overrides the derived stage execution bound.
	MaxSteps int
	// SEO runs the SEO editor once over the best draft after a successful run.
	SEO bool
	// Stream requests incremental model responses.
	Stream bool
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Pipeline wires the stages to a runner.
type Pipeline struct {
	opts   Options
	runner *runner.Runner
	seo    core.Stage
}

// Result is the outcome of one run. Polished is nil unless the SEO pass ran.
type Result struct {
	SessionID string
	State     *core.State
	Polished  *core.State
}

// Report builds the console summary for the result.
func (r *Result) Report() console.Report {
	return console.NewReport(r.SessionID, r.State, r.Polished)
}

// New creates a Pipeline. Every stage shares llm; the researcher queries searcher.
func New(llm model.Model, searcher search.Searcher, optFns ...func(o *Options)) (*Pipeline, error) {
	opts := Options{
		Prompts:      prompt.New(),
		SessionStore: session.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrNoOp(opts.Logger)
	if opts.Callbacks == nil {
		opts.Callbacks = runner.NewCallbackManager(
			runner.NewLoggingCallback(runner.CallbackBeforeStage, opts.Logger),
			runner.NewLoggingCallback(runner.CallbackOnError, opts.Logger),
			runner.NewStateValidationCallback(runner.CheckScoreLaws),
		)
	}

	stageOpts := func(o *agent.Options) {
		o.Prompts = opts.Prompts
		o.Logger = opts.Logger
		o.Stream = opts.Stream
	}

	r, err := runner.New(runner.Stages{
		Guard:      agent.NewGuard(llm, stageOpts),
		Planner:    agent.NewPlanner(llm, stageOpts),
		Researcher: agent.NewResearcher(llm, searcher, stageOpts),
		Generator:  agent.NewGenerator(llm, stageOpts),
		Critic:     agent.NewCritic(llm, stageOpts),
	}, func(o *runner.Options) {
		o.MaxSteps = opts.MaxSteps
		o.SessionStore = opts.SessionStore
		o.Observer = opts.Observer
		o.Callbacks = opts.Callbacks
		o.Logger = opts.Logger
	})
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		opts:   opts,
		runner: r,
		seo:    agent.NewSEOEditor(llm, stageOpts),
	}, nil
}

// SessionStore exposes the store holding run events and snapshots.
func (p *Pipeline) SessionStore() core.SessionStore { return p.runner.SessionStore() }

// Run executes one session. An empty sessionID gets a generated one. On
// failure the returned Result still carries the partial record.
func (p *Pipeline) Run(ctx context.Context, sessionID string, in Input) (*Result, error) {
	if sessionID == "" {
		sessionID = core.NewID()
	}
	s := core.NewState(in.Topic, in.Tone, in.Constraints, in.WordCount, in.MaxIterations)

	final, err := p.runner.Run(ctx, sessionID, s)
	res := &Result{SessionID: sessionID, State: final}
	if err != nil {
		return res, err
	}

	if p.opts.SEO && final.BestDraft != "" {
		polished, err := p.runner.Polish(ctx, sessionID, p.seo, final)
		if err != nil {
			return res, err
		}
		res.Polished = polished
	}
	return res, nil
}
