package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/blogmesh/core"
	"github.com/hupe1980/blogmesh/model"
	"github.com/hupe1980/blogmesh/prompt"
)

// MaxQueries caps the planner's output.
const MaxQueries = 8

// minQueryLen is the length a fallback line must exceed to count as a query.
const minQueryLen = 5

const plannerUserTemplate = `You are a planning agent. Given a blog Topic: {{.Topic}}, Tone: {{.Tone}}, Constraints: {{.Constraints}}, and Target word count: {{.WordCount}}, produce a prioritized list of 6-10 concise web search queries that will yield the best material for writing this blog. Return only a JSON array of query strings, ordered by priority.`

// ParseStrategy names the path that produced a QueryParse.
type ParseStrategy int

const (
	// StrategyJSON means the response was a JSON array.
	StrategyJSON ParseStrategy = iota
	// StrategyLines means the line heuristic was used.
	StrategyLines
)

func (p ParseStrategy) String() string {
	if p == StrategyJSON {
		return "json"
	}
	return "lines"
}

// QueryParse is the outcome of parsing a planner response.
type QueryParse struct {
	Queries  []string
	Strategy ParseStrategy
}

// ParseQueries interprets planner output. A JSON array (optionally fenced)
// wins; anything else falls back to one query per line with list bullets
// stripped, keeping lines longer than five characters. At most MaxQueries
// entries are kept. Parsing never fails.
func ParseQueries(text string) QueryParse {
	if qs, ok := ParseQueriesJSON(text); ok {
		return QueryParse{Queries: capQueries(qs), Strategy: StrategyJSON}
	}
	return QueryParse{Queries: capQueries(ParseQueriesLines(text)), Strategy: StrategyLines}
}

// ParseQueriesJSON accepts a JSON array of values and stringifies each one.
func ParseQueriesJSON(text string) ([]string, bool) {
	var items []any
	if err := json.Unmarshal([]byte(model.StripFences(text)), &items); err != nil {
		return nil, false
	}
	queries := make([]string, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		q := strings.TrimSpace(fmt.Sprint(item))
		if q != "" {
			queries = append(queries, q)
		}
	}
	return queries, true
}

// ParseQueriesLines is the line heuristic used when JSON parsing fails.
func ParseQueriesLines(text string) []string {
	var queries []string
	for _, line := range strings.Split(model.StripFences(text), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		q := strings.Trim(line, " -•*\t\r")
		if len([]rune(q)) > minQueryLen {
			queries = append(queries, q)
		}
	}
	return queries
}

func capQueries(qs []string) []string {
	if len(qs) > MaxQueries {
		return qs[:MaxQueries]
	}
	return qs
}

// Planner proposes prioritized web search queries for the topic.
type Planner struct {
	base
}

// NewPlanner creates the planner (temperature 0.2).
func NewPlanner(llm model.Model, optFns ...func(o *Options)) *Planner {
	return &Planner{base: newBase(PlannerName, llm, 0.2, optFns)}
}

// Run implements core.Stage. Writes SearchQueries.
func (p *Planner) Run(ctx context.Context, s *core.State) error {
	system, err := p.system(prompt.PlannerSystem, s)
	if err != nil {
		return err
	}
	user, err := prompt.Render("planner_user", plannerUserTemplate, s)
	if err != nil {
		return err
	}

	text, err := p.complete(ctx, p.request(system, user))
	if err != nil {
		return err
	}

	parsed := ParseQueries(text)
	s.SearchQueries = parsed.Queries
	p.logger.Debug("planner.queries", "count", len(parsed.Queries), "strategy", parsed.Strategy.String())
	return nil
}
