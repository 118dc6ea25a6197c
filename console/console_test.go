package console

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/blogmesh/artifact"
	"github.com/hupe1980/blogmesh/core"
	"github.com/hupe1980/blogmesh/internal/testutil"
)

func TestNewReport(t *testing.T) {
	s := testutil.NewStateBuilder("Go generics").
		MaxIterations(5).
		Queries("go generics tutorial").
		Scores(0.3, 0.5, 0.82).
		Done("Early stop: confidence reached 82.0% (threshold 80%)").
		Build()

	r := NewReport("sess", s, nil)
	assert.Equal(t, "sess", r.SessionID)
	assert.Equal(t, 4, r.Iterations)
	assert.Equal(t, 1, r.SavedIterations())
	assert.Equal(t, "30.0% → 50.0% → 82.0%", r.Progression())
	assert.Equal(t, s.BestDraft, r.BestDraft)
	assert.False(t, r.Halted())

	last, ok := r.FinalScore()
	require.True(t, ok)
	assert.Equal(t, 0.82, last)

	// The report owns its slices.
	s.ConfidenceScores[0] = 0.99
	assert.Equal(t, 0.3, r.Scores[0])
}

func TestNewReport_Defaults(t *testing.T) {
	r := NewReport("sess", core.NewState("t", "", "", 0, 0), nil)
	assert.Equal(t, "Completed", r.StopReason)
	assert.Equal(t, []float64{}, r.Scores)
	assert.Empty(t, r.Progression())
	_, ok := r.FinalScore()
	assert.False(t, ok)
}

func TestRender(t *testing.T) {
	s := testutil.NewStateBuilder("Go generics").
		MaxIterations(5).
		Scores(0.3, 0.5, 0.82).
		Done("Early stop: confidence reached 82.0% (threshold 80%)").
		Build()
	polished := s.Clone()
	polished.Draft = "# SEO draft"
	polished.SEONotes = "Keywords: go generics"

	var buf bytes.Buffer
	require.NoError(t, NewReport("sess", s, polished).Render(&buf))
	out := buf.String()

	for _, want := range []string{
		"=== BEST BLOG (HIGHEST CONFIDENCE) ===",
		s.BestDraft,
		"Final confidence: 82.0%",
		"Confidence progression: 30.0% → 50.0% → 82.0%",
		"Best score: 0.820 (82.0%)",
		"Total iterations: 4",
		"Stop reason: Early stop",
		"✓ Stopped early! Saved 1 iteration(s)",
		"Iteration",
		"Confidence",
		"=== SEO-OPTIMIZED VERSION ===",
		"# SEO draft",
		"Keywords: go generics",
	} {
		assert.Contains(t, out, want)
	}
}

func TestRender_NoScoresAndHardStop(t *testing.T) {
	s := testutil.NewStateBuilder("t").MaxIterations(3).Scores(0.3, 0.4).Done("Max iterations (3) reached").Build()

	var buf bytes.Buffer
	require.NoError(t, NewReport("sess", s, nil).Render(&buf))
	assert.Contains(t, buf.String(), "Total iterations: 3")
	assert.NotContains(t, buf.String(), "Stopped early")
	assert.NotContains(t, buf.String(), "SEO-OPTIMIZED")

	buf.Reset()
	require.NoError(t, NewReport("sess", core.NewState("t", "", "", 0, 0), nil).Render(&buf))
	assert.Contains(t, buf.String(), "Final confidence: N/A")
	assert.Contains(t, buf.String(), "no scores recorded")
}

func TestRender_Halted(t *testing.T) {
	s := core.NewState("t", "", "", 0, 0)
	s.Guard = &core.GuardReport{Valid: false, Issues: []string{"contains personal data"}}
	s.Halt("Please remove personal data.")

	var buf bytes.Buffer
	require.NoError(t, NewReport("sess", s, nil).Render(&buf))
	assert.Contains(t, buf.String(), "INPUT REJECTED")
	assert.Contains(t, buf.String(), "- contains personal data")
	assert.Contains(t, buf.String(), "Stop reason: Please remove personal data.")
	assert.NotContains(t, buf.String(), "BEST BLOG")
}

func TestMarkdownToHTML(t *testing.T) {
	html, err := MarkdownToHTML("Go <generics>", "# Title\n\nSome *text*.")
	require.NoError(t, err)
	out := string(html)
	assert.Contains(t, out, "<title>Go &lt;generics&gt;</title>")
	assert.Contains(t, out, "<h1>Title</h1>")
	assert.Contains(t, out, "<em>text</em>")

	_, err = MarkdownToHTML("t", "  \n")
	assert.ErrorIs(t, err, ErrEmptyDraft)
}

func TestExport(t *testing.T) {
	s := testutil.NewStateBuilder("Go generics").Scores(0.9).Done("Early stop").Build()
	polished := s.Clone()
	polished.Draft = "# SEO"

	store := artifact.NewInMemoryStore()
	written, err := Export(store, NewReport("sess", s, polished))
	require.NoError(t, err)
	assert.Equal(t, []string{BestDraftMarkdown, BestDraftHTML, SEODraftMarkdown, ReportJSON}, written)

	md, err := store.Get("sess", BestDraftMarkdown)
	require.NoError(t, err)
	assert.Equal(t, s.BestDraft, string(md))

	raw, err := store.Get("sess", ReportJSON)
	require.NoError(t, err)
	var decoded Report
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, []float64{0.9}, decoded.Scores)
	assert.Equal(t, "Early stop", decoded.StopReason)
	assert.Equal(t, "# SEO", decoded.SEODraft)
}

func TestExport_HaltedWritesOnlyReport(t *testing.T) {
	s := core.NewState("t", "", "", 0, 0)
	s.Halt("rejected")

	store := artifact.NewDirStore(t.TempDir())
	written, err := Export(store, NewReport("sess", s, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{ReportJSON}, written)

	ids, err := store.List("sess")
	require.NoError(t, err)
	assert.Equal(t, []string{ReportJSON}, ids)
}

func TestExport_InvalidSession(t *testing.T) {
	s := testutil.NewStateBuilder("t").Scores(0.9).Build()
	_, err := Export(artifact.NewInMemoryStore(), NewReport("../escape", s, nil))
	assert.ErrorIs(t, err, artifact.ErrInvalidID)
}
