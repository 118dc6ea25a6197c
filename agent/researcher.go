package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/blogmesh/core"
	"github.com/hupe1980/blogmesh/model"
	"github.com/hupe1980/blogmesh/prompt"
	"github.com/hupe1980/blogmesh/search"
)

const researcherUserTemplate = `Topic: {{.Topic}}
Tone: {{.Tone}}
Word count target: {{.WordCount}}
Additional constraints: {{.Constraints}}
{{- if .SearchQueries}}

Focus areas (prioritized):
{{- range .SearchQueries}}
- {{.}}
{{- end}}
{{- end}}

Raw web search results:
{{.SearchResults}}`

// ResearchQuery builds the single web search query issued per run.
func ResearchQuery(s *core.State) string {
	return fmt.Sprintf("Research for in-depth blog on: %s. Tone: %s. Constraints: %s. Word count target: %d.",
		s.Topic, s.Tone, s.Constraints, s.WordCount)
}

// Researcher runs one web search and condenses the results into notes.
type Researcher struct {
	base
	searcher search.Searcher
}

// NewResearcher creates the researcher (temperature 0.2).
func NewResearcher(llm model.Model, searcher search.Searcher, optFns ...func(o *Options)) *Researcher {
	return &Researcher{
		base:     newBase(ResearcherName, llm, 0.2, optFns),
		searcher: searcher,
	}
}

// Run implements core.Stage. Writes ResearchNotes.
func (r *Researcher) Run(ctx context.Context, s *core.State) error {
	query := ResearchQuery(s)
	results, err := r.searcher.Search(ctx, query, search.MaxResults)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	r.logger.Debug("researcher.search", "results", len(results))

	system, err := r.system(prompt.ResearcherSystem, s)
	if err != nil {
		return err
	}
	user, err := prompt.Render("researcher_user", researcherUserTemplate, view{
		State:         s,
		SearchResults: search.Format(results),
	})
	if err != nil {
		return err
	}

	notes, err := r.complete(ctx, r.request(system, user))
	if err != nil {
		return err
	}
	s.ResearchNotes = notes
	return nil
}
