package agent

import (
	"context"
	"math"
	"strings"

	"github.com/hupe1980/blogmesh/core"
	"github.com/hupe1980/blogmesh/model"
	"github.com/hupe1980/blogmesh/prompt"
)

const criticUserTemplate = `Evaluate this blog draft.

Topic: {{.Topic}}
Tone: {{.Tone}}
Constraints: {{.Constraints}}
Iteration: {{.Iteration}}

Draft:
{{.Draft}}`

// Sub-scores are decoded as numbers so fractional answers are accepted.
type criticVerdict struct {
	OverallScore      float64 `json:"overall_score" description:"Overall confidence score between 0 and 1."`
	GrammarScore      float64 `json:"grammar_score" description:"Grammar/clarity score between 1 and 10."`
	DepthScore        float64 `json:"depth_score" description:"Depth of topic coverage score between 1 and 10."`
	StructureScore    float64 `json:"structure_score" description:"Blog structure and flow score between 1 and 10."`
	SEOAlignmentScore float64 `json:"seo_alignment_score" description:"SEO alignment score between 1 and 10."`
	ShortFeedback     string  `json:"short_feedback" description:"Short constructive feedback on how to improve the blog."`
}

func (v criticVerdict) critique() core.Critique {
	return core.Critique{
		Score:        clampScore(v.OverallScore),
		Grammar:      clampSubScore(v.GrammarScore),
		Depth:        clampSubScore(v.DepthScore),
		Structure:    clampSubScore(v.StructureScore),
		SEOAlignment: clampSubScore(v.SEOAlignmentScore),
		Feedback:     strings.TrimSpace(v.ShortFeedback),
	}
}

func clampScore(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return math.Min(math.Max(f, 0), 1)
}

func clampSubScore(f float64) int {
	if math.IsNaN(f) {
		return 1
	}
	return int(math.Min(math.Max(math.Round(f), 1), 10))
}

// Critic scores the current draft and records the result.
type Critic struct {
	base
}

// NewCritic creates the critic (temperature 0.0).
func NewCritic(llm model.Model, optFns ...func(o *Options)) *Critic {
	return &Critic{base: newBase(CriticName, llm, 0.0, optFns)}
}

// Run implements core.Stage. Appends to ConfidenceScores and MistakeMemory
// and may replace BestDraft.
func (c *Critic) Run(ctx context.Context, s *core.State) error {
	system, err := c.system(prompt.CriticSystem, s)
	if err != nil {
		return err
	}
	user, err := prompt.Render("critic_user", criticUserTemplate, s)
	if err != nil {
		return err
	}

	var v criticVerdict
	if err := c.completeJSON(ctx, c.request(system, user), &v); err != nil {
		return err
	}

	crit := v.critique()
	s.RecordCritique(crit)
	c.logger.Debug("critic.scored", "score", crit.Score, "best", s.BestScore, "iteration", s.Iteration)
	return nil
}
