package agent

import (
	"context"
	"time"

	"github.com/hupe1980/blogmesh/core"
	"github.com/hupe1980/blogmesh/logging"
	"github.com/hupe1980/blogmesh/model"
	"github.com/hupe1980/blogmesh/prompt"
)

// Stage names as reported by Name and used in events.
const (
	GuardName      = "guardrails"
	PlannerName    = "planner"
	ResearcherName = "researcher"
	GeneratorName  = "generator"
	CriticName     = "critic"
	SEOEditorName  = "seo_editor"
)

// Options configure a stage. Zero values fall back to the stage defaults.
type Options struct {
	// Prompts resolves system prompt templates; defaults to the embedded set.
	Prompts prompt.Loader
	Logger  logging.Logger
	// Temperature overrides the stage's sampling temperature.
	Temperature *float64
	// Stream requests incremental responses from the provider.
	Stream bool
}

// base bundles the collaborators shared by every stage.
type base struct {
	name        string
	llm         model.Model
	prompts     prompt.Loader
	logger      logging.Logger
	temperature float64
	stream      bool
}

func newBase(name string, llm model.Model, temperature float64, optFns []func(o *Options)) base {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Prompts == nil {
		opts.Prompts = prompt.New()
	}
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	return base{
		name:        name,
		llm:         llm,
		prompts:     opts.Prompts,
		logger:      logging.OrNoOp(opts.Logger),
		temperature: temperature,
		stream:      opts.Stream,
	}
}

// Name returns the stage name.
func (b *base) Name() string { return b.name }

// Temperature returns the sampling temperature sent with every request.
func (b *base) Temperature() float64 { return b.temperature }

// system loads and renders the stage's system prompt against data.
func (b *base) system(templateName string, data any) (string, error) {
	return prompt.LoadAndRender(b.prompts, templateName, data)
}

func (b *base) request(system, user string) model.Request {
	return model.Request{
		Instructions: system,
		Messages:     []model.Message{model.UserMessage(user)},
		Temperature:  model.Temperature(b.temperature),
		Stream:       b.stream,
	}
}

func (b *base) complete(ctx context.Context, req model.Request) (string, error) {
	start := time.Now()
	text, err := model.GenerateText(ctx, b.llm, req)
	b.logger.Debug("stage.model", "stage", b.name, "duration_ms", time.Since(start).Milliseconds(), "chars", len(text))
	return text, err
}

func (b *base) completeJSON(ctx context.Context, req model.Request, out any) error {
	start := time.Now()
	err := model.GenerateJSON(ctx, b.llm, req, out)
	b.logger.Debug("stage.model", "stage", b.name, "duration_ms", time.Since(start).Milliseconds(), "structured", true)
	return err
}

// view is the template data handed to user-message templates.
type view struct {
	*core.State
	Mistakes      string
	Revision      bool
	SearchResults string
}
