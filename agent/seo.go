package agent

import (
	"context"

	"github.com/hupe1980/blogmesh/core"
	"github.com/hupe1980/blogmesh/model"
	"github.com/hupe1980/blogmesh/prompt"
)

const seoUserTemplate = `Here is the current blog draft. Improve it for SEO.

Topic: {{.Topic}}
Tone: {{.Tone}}
Constraints: {{.Constraints}}

Draft:
{{.Draft}}`

// SEOEditor rewrites the draft for search engines. The full response
// becomes both the new draft and the SEO notes.
type SEOEditor struct {
	base
}

// NewSEOEditor creates the SEO editor (temperature 0.4).
func NewSEOEditor(llm model.Model, optFns ...func(o *Options)) *SEOEditor {
	return &SEOEditor{base: newBase(SEOEditorName, llm, 0.4, optFns)}
}

// Run implements core.Stage. Overwrites Draft and SEONotes.
func (e *SEOEditor) Run(ctx context.Context, s *core.State) error {
	system, err := e.system(prompt.SEOSystem, s)
	if err != nil {
		return err
	}
	user, err := prompt.Render("seo_user", seoUserTemplate, s)
	if err != nil {
		return err
	}

	text, err := e.complete(ctx, e.request(system, user))
	if err != nil {
		return err
	}
	s.SEONotes = text
	s.Draft = text
	return nil
}
