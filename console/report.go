package console

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/hupe1980/blogmesh/core"
)

// Report summarizes a finished run.
type Report struct {
	SessionID     string            `json:"session_id"`
	Topic         string            `json:"topic"`
	Tone          string            `json:"tone,omitempty"`
	WordCount     int               `json:"word_count"`
	SearchQueries []string          `json:"search_queries,omitempty"`
	BestDraft     string            `json:"best_draft"`
	BestScore     float64           `json:"best_score"`
	Scores        []float64         `json:"confidence_scores"`
	Iterations    int               `json:"iterations"`
	MaxIterations int               `json:"max_iterations"`
	StopReason    string            `json:"stop_reason"`
	LastCritique  *core.Critique    `json:"last_critique,omitempty"`
	Guard         *core.GuardReport `json:"guard,omitempty"`
	SEODraft      string            `json:"seo_draft,omitempty"`
	SEONotes      string            `json:"seo_notes,omitempty"`
}

// NewReport builds a report from the final record. polished is the SEO pass
// output and may be nil.
func NewReport(sessionID string, s *core.State, polished *core.State) Report {
	r := Report{
		SessionID:     sessionID,
		Topic:         s.Topic,
		Tone:          s.Tone,
		WordCount:     s.WordCount,
		SearchQueries: slices.Clone(s.SearchQueries),
		BestDraft:     s.BestDraft,
		BestScore:     s.BestScore,
		Scores:        slices.Clone(s.ConfidenceScores),
		Iterations:    s.Iteration,
		MaxIterations: s.MaxIterations,
		StopReason:    s.StopReason,
		LastCritique:  s.LastCritique,
		Guard:         s.Guard,
	}
	if r.Scores == nil {
		r.Scores = []float64{}
	}
	if r.StopReason == "" {
		r.StopReason = "Completed"
	}
	if polished != nil {
		r.SEODraft = polished.Draft
		r.SEONotes = polished.SEONotes
	}
	return r
}

// Halted reports whether the guard rejected the input.
func (r Report) Halted() bool { return r.Guard != nil && !r.Guard.Valid }

// FinalScore returns the most recent critic score.
func (r Report) FinalScore() (float64, bool) {
	if len(r.Scores) == 0 {
		return 0, false
	}
	return r.Scores[len(r.Scores)-1], true
}

// SavedIterations is how far below the cap the run stopped.
func (r Report) SavedIterations() int {
	return max(r.MaxIterations-r.Iterations, 0)
}

// Progression joins the score history as percentages, oldest first.
func (r Report) Progression() string {
	parts := make([]string, len(r.Scores))
	for i, s := range r.Scores {
		parts[i] = percent(s)
	}
	return strings.Join(parts, " → ")
}

func percent(v float64) string { return fmt.Sprintf("%.1f%%", v*100) }

// Render writes the console summary. Colors are only emitted when w is a terminal.
func (r Report) Render(w io.Writer) error {
	re := lipgloss.NewRenderer(w)
	var (
		bannerGood = re.NewStyle().Bold(true).Foreground(lipgloss.Color("#4CAF50"))
		bannerBad  = re.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
		section    = re.NewStyle().Bold(true).Foreground(lipgloss.Color("#C678DD"))
		dim        = re.NewStyle().Foreground(lipgloss.Color("#999999"))
		good       = re.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	)

	var b strings.Builder
	line := func(format string, args ...any) { fmt.Fprintf(&b, format+"\n", args...) }

	if r.Halted() {
		line("\n%s\n", bannerBad.Render("=== INPUT REJECTED ==="))
		for _, issue := range r.Guard.Issues {
			line("- %s", issue)
		}
		line("Stop reason: %s", r.StopReason)
		_, err := io.WriteString(w, b.String())
		return err
	}

	line("\n%s\n", bannerGood.Render("=== BEST BLOG (HIGHEST CONFIDENCE) ==="))
	line("%s", r.BestDraft)

	line("\n%s", section.Render("=== METRICS ==="))
	if last, ok := r.FinalScore(); ok {
		line("Final confidence: %s", percent(last))
		line("Confidence progression: %s", r.Progression())
	} else {
		line("Final confidence: N/A")
		line("Confidence progression: %s", dim.Render("no scores recorded"))
	}
	line("Best score: %.3f (%s)", r.BestScore, percent(r.BestScore))
	line("Total iterations: %d", r.Iterations)
	line("Stop reason: %s", r.StopReason)
	if r.Iterations < r.MaxIterations {
		line("%s", good.Render(fmt.Sprintf("✓ Stopped early! Saved %d iteration(s)", r.SavedIterations())))
	}

	if len(r.Scores) > 0 {
		line("\n%s", section.Render("Score Progression per Iteration:"))
		line("%s", r.scoreTable(re).Render())
	}

	if r.SEODraft != "" {
		line("\n%s\n", section.Render("=== SEO-OPTIMIZED VERSION ==="))
		line("%s", r.SEODraft)
		if r.SEONotes != "" && r.SEONotes != r.SEODraft {
			line("\n%s", dim.Render(r.SEONotes))
		}
	}

	_, err := io.WriteString(w, b.String()+"\n")
	return err
}

func (r Report) scoreTable(re *lipgloss.Renderer) *table.Table {
	header := re.NewStyle().Bold(true).Foreground(lipgloss.Color("#C678DD")).Align(lipgloss.Center).Padding(0, 1)
	cell := re.NewStyle().Align(lipgloss.Center).Padding(0, 1)
	iteration := cell.Foreground(lipgloss.Color("#56B6C2"))

	rows := make([][]string, len(r.Scores))
	for i, s := range r.Scores {
		rows[i] = []string{fmt.Sprint(i + 1), percent(s)}
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(re.NewStyle().Foreground(lipgloss.Color("#666666"))).
		Headers("Iteration", "Confidence").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case col == 0:
				return iteration
			default:
				return cell
			}
		})
}
