package agent

import (
	"context"
	"strings"

	"github.com/hupe1980/blogmesh/core"
	"github.com/hupe1980/blogmesh/model"
	"github.com/hupe1980/blogmesh/prompt"
)

// mistakeWindow is how many recent critic notes the generator sees.
const mistakeWindow = 3

const noMistakes = "None yet."

const generatorUserTemplate = `You are writing or revising a blog.

Topic: {{.Topic}}
Tone: {{.Tone}}
Target word count: {{.WordCount}}
Additional constraints: {{.Constraints}}
Iteration: {{.Iteration}}

Research notes (source of truth):
{{.ResearchNotes}}

GLOBAL MISTAKE MEMORY (mistakes you must NOT repeat):
{{.Mistakes}}

{{if .Revision -}}
This is a LATER iteration.

You are given the previous draft and critic feedback.
Your job is to REVISE and IMPROVE the blog, not to ignore it.

Previous draft:
---------------------
{{.Draft}}
---------------------

Critic feedback from last iteration:
---------------------
{{.CriticFeedback}}
---------------------

Using BOTH the research notes and the GLOBAL MISTAKE MEMORY above, rewrite or refine the blog so that you DO NOT repeat any prior mistakes. Preserve strengths, fix weaknesses, and keep the requested tone and lengths.
{{- else -}}
This is the FIRST iteration. Write a complete, polished blog from scratch using the research notes. Do not mention that this is a draft or an iteration.
{{- end}}`

// IsRevision reports whether the generator revises instead of drafting from
// scratch: a previous draft and critic feedback must both exist past the
// first iteration.
func IsRevision(s *core.State) bool {
	return s.Iteration > 1 && s.Draft != "" && s.CriticFeedback != ""
}

// MistakeMemoryText renders the recent mistake window for the prompt.
func MistakeMemoryText(s *core.State) string {
	recent := s.RecentMistakes(mistakeWindow)
	if len(recent) == 0 {
		return noMistakes
	}
	return strings.Join(recent, "\n\n")
}

// Generator writes or revises the blog draft.
type Generator struct {
	base
}

// NewGenerator creates the generator (temperature 0.7).
func NewGenerator(llm model.Model, optFns ...func(o *Options)) *Generator {
	return &Generator{base: newBase(GeneratorName, llm, 0.7, optFns)}
}

// Run implements core.Stage. Overwrites Draft.
func (g *Generator) Run(ctx context.Context, s *core.State) error {
	system, err := g.system(prompt.GeneratorSystem, s)
	if err != nil {
		return err
	}
	user, err := prompt.Render("generator_user", generatorUserTemplate, view{
		State:    s,
		Mistakes: MistakeMemoryText(s),
		Revision: IsRevision(s),
	})
	if err != nil {
		return err
	}

	draft, err := g.complete(ctx, g.request(system, user))
	if err != nil {
		return err
	}
	s.Draft = draft
	return nil
}
