package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/blogmesh/core"
	"github.com/hupe1980/blogmesh/model"
	"github.com/hupe1980/blogmesh/prompt"
)

// DefaultCorrectiveAction is reported when the guard rejects input without
// saying what to change.
const DefaultCorrectiveAction = "Please rephrase the topic or constraints."

const guardUserTemplate = `Validate and sanitize the following user inputs. Respond with structured JSON matching the schema.

Topic: {{.Topic}}

Constraints: {{.Constraints}}

Return only JSON.`

type guardVerdict struct {
	Valid            bool     `json:"valid" description:"Whether the inputs pass the guard."`
	Topic            string   `json:"topic" description:"Sanitized, possibly rewritten topic."`
	Constraints      string   `json:"constraints,omitempty" description:"Sanitized, possibly rewritten constraints."`
	Issues           []string `json:"issues,omitempty" description:"Detected issues, if any."`
	CorrectiveAction string   `json:"corrective_action,omitempty" description:"Instruction for the user or a note on what was changed."`
}

// Guard validates and sanitizes topic and constraints before any other stage
// runs. Rejections and guard failures halt the run instead of returning an
// error; only a missing prompt template is reported as a stage failure.
type Guard struct {
	base
}

// NewGuard creates the input guard (temperature 0.0).
func NewGuard(llm model.Model, optFns ...func(o *Options)) *Guard {
	return &Guard{base: newBase(GuardName, llm, 0.0, optFns)}
}

// Run implements core.Stage.
func (g *Guard) Run(ctx context.Context, s *core.State) error {
	text, err := g.prompts.Load(prompt.GuardrailsSystem)
	if err != nil {
		return err
	}

	system, err := prompt.Render(prompt.GuardrailsSystem, text, s)
	if err == nil {
		var user string
		user, err = prompt.Render("guardrails_user", guardUserTemplate, s)
		if err == nil {
			return g.evaluate(ctx, s, g.request(system, user))
		}
	}
	g.reject(s, fmt.Sprintf("prompt formatting failed: %v", err))
	return nil
}

func (g *Guard) evaluate(ctx context.Context, s *core.State, req model.Request) error {
	var v guardVerdict
	if err := g.completeJSON(ctx, req, &v); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		g.reject(s, fmt.Sprintf("guardrails invocation failed: %v", err))
		return nil
	}

	if topic := strings.TrimSpace(v.Topic); topic != "" {
		s.Topic = topic
	}
	s.Constraints = strings.TrimSpace(v.Constraints)
	s.Guard = &core.GuardReport{
		Valid:            v.Valid,
		Issues:           v.Issues,
		CorrectiveAction: v.CorrectiveAction,
	}

	if !v.Valid {
		reason := v.CorrectiveAction
		if reason == "" {
			reason = DefaultCorrectiveAction
		}
		s.Halt(reason)
		g.logger.Warn("guard.rejected", "issues", v.Issues, "reason", reason)
		return nil
	}

	g.logger.Debug("guard.accepted", "topic", s.Topic, "issues", len(v.Issues))
	return nil
}

func (g *Guard) reject(s *core.State, issue string) {
	s.Guard = &core.GuardReport{
		Valid:            false,
		Issues:           []string{issue},
		CorrectiveAction: DefaultCorrectiveAction,
	}
	s.Halt(DefaultCorrectiveAction)
	g.logger.Warn("guard.failed", "issue", issue)
}
