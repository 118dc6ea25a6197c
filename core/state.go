package core

import (
	"slices"
	"strconv"
	"strings"
)

const (
	// DefaultWordCount is used when the requested word count is missing or unparsable.
	DefaultWordCount = 800
	// DefaultMaxIterations is the generation/critique cycle ceiling used when none is configured.
	DefaultMaxIterations = 5
)

// Route is the transient signal written by the controller (and by guard
// halts) and read once by the runner after each controller visit.
type Route int

const (
	// RouteUnset is the zero value before any controller visit.
	RouteUnset Route = iota
	// RouteContinue asks the runner for another refinement cycle.
	RouteContinue
	// RouteDone terminates the run.
	RouteDone
)

// String returns the lower-case route label.
func (r Route) String() string {
	switch r {
	case RouteContinue:
		return "continue"
	case RouteDone:
		return "done"
	default:
		return "unset"
	}
}

// Critique is the structured verdict produced by one critic invocation.
// Score is normalized to [0,1]; sub-scores are on a 1-10 scale.
type Critique struct {
	Score        float64 `json:"overall_score"`
	Grammar      int     `json:"grammar_score"`
	Depth        int     `json:"depth_score"`
	Structure    int     `json:"structure_score"`
	SEOAlignment int     `json:"seo_alignment_score"`
	Feedback     string  `json:"short_feedback"`
}

// GuardReport captures the input guard's verdict.
type GuardReport struct {
	Valid            bool     `json:"valid"`
	Issues           []string `json:"issues,omitempty"`
	CorrectiveAction string   `json:"corrective_action,omitempty"`
}

// State is the session record. It is created once per run, mutated in place
// by exactly one stage at a time and discarded when the run completes.
//
// Invariants maintained through RecordCritique and the controller:
//   - len(ConfidenceScores) equals the number of completed critic visits
//   - BestScore is the maximum of ConfidenceScores (seeded with 0)
//   - Iteration grows by exactly one per controller visit
type State struct {
	// User inputs. Only the guard rewrites Topic and Constraints.
	Topic         string `json:"topic"`
	Tone          string `json:"tone"`
	Constraints   string `json:"constraints"`
	WordCount     int    `json:"word_count"`
	MaxIterations int    `json:"max_iterations"`

	// Stage artifacts.
	SearchQueries  []string  `json:"search_queries,omitempty"`
	ResearchNotes  string    `json:"research_notes,omitempty"`
	Draft          string    `json:"draft,omitempty"`
	CriticFeedback string    `json:"critic_feedback,omitempty"`
	LastCritique   *Critique `json:"last_critique,omitempty"`
	SEONotes       string    `json:"seo_notes,omitempty"`

	// Append-only history.
	MistakeMemory    []string  `json:"mistake_memory,omitempty"`
	ConfidenceScores []float64 `json:"confidence_scores"`

	// Scoring.
	LastScore float64 `json:"last_score"`
	BestScore float64 `json:"best_score"`
	BestDraft string  `json:"best_draft,omitempty"`

	// Loop control.
	Iteration  int          `json:"iteration"`
	Route      Route        `json:"route"`
	StopReason string       `json:"stop_reason,omitempty"`
	Guard      *GuardReport `json:"guard,omitempty"`
}

// NewState seeds a record with user inputs and zeroed counters. Non-positive
// word counts and iteration caps fall back to the package defaults.
func NewState(topic, tone, constraints string, wordCount, maxIterations int) *State {
	if wordCount <= 0 {
		wordCount = DefaultWordCount
	}
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &State{
		Topic:            topic,
		Tone:             tone,
		Constraints:      constraints,
		WordCount:        wordCount,
		MaxIterations:    maxIterations,
		ConfidenceScores: []float64{},
	}
}

// ParseWordCount converts user input to a word count, returning
// DefaultWordCount when the input is not an integer.
func ParseWordCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return DefaultWordCount
	}
	return n
}

// RecordCritique applies one critic result to the record: the score and
// feedback are appended to their histories and the best draft is replaced
// only when the new score strictly exceeds the current best.
func (s *State) RecordCritique(c Critique) {
	s.LastScore = c.Score
	s.CriticFeedback = c.Feedback
	s.LastCritique = &c
	s.ConfidenceScores = append(s.ConfidenceScores, c.Score)
	s.MistakeMemory = append(s.MistakeMemory, c.Feedback)

	if c.Score > s.BestScore {
		s.BestScore = c.Score
		s.BestDraft = s.Draft
	}
}

// RecentMistakes returns at most the last n mistake-memory entries, oldest first.
func (s *State) RecentMistakes(n int) []string {
	if n <= 0 || len(s.MistakeMemory) == 0 {
		return nil
	}
	start := max(len(s.MistakeMemory)-n, 0)
	return slices.Clone(s.MistakeMemory[start:])
}

// Halt forces termination with the given reason.
func (s *State) Halt(reason string) {
	s.Route = RouteDone
	s.StopReason = reason
}

// Done reports whether the record carries the terminal route.
func (s *State) Done() bool { return s.Route == RouteDone }

// Clone returns a deep copy safe for independent mutation.
func (s *State) Clone() *State {
	c := *s
	c.SearchQueries = slices.Clone(s.SearchQueries)
	c.MistakeMemory = slices.Clone(s.MistakeMemory)
	c.ConfidenceScores = slices.Clone(s.ConfidenceScores)
	if s.LastCritique != nil {
		lc := *s.LastCritique
		c.LastCritique = &lc
	}
	if s.Guard != nil {
		g := *s.Guard
		g.Issues = slices.Clone(s.Guard.Issues)
		c.Guard = &g
	}
	return &c
}
