package core

import (
	"encoding/json"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewState_Defaults(t *testing.T) {
	s := NewState("topic", "casual", "", 0, -1)
	assert.Equal(t, DefaultWordCount, s.WordCount)
	assert.Equal(t, DefaultMaxIterations, s.MaxIterations)
	assert.Equal(t, 0, s.Iteration)
	assert.Equal(t, RouteUnset, s.Route)
	assert.NotNil(t, s.ConfidenceScores)
	assert.Empty(t, s.ConfidenceScores)

	s = NewState("topic", "", "", 1200, 3)
	assert.Equal(t, 1200, s.WordCount)
	assert.Equal(t, 3, s.MaxIterations)
}

func TestParseWordCount(t *testing.T) {
	tests := map[string]int{
		"1200":  1200,
		" 500 ": 500,
		"":      DefaultWordCount,
		"lots":  DefaultWordCount,
		"12.5":  DefaultWordCount,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseWordCount(in), in)
	}
}

func TestRecordCritique_BestDraftLaw(t *testing.T) {
	s := NewState("t", "", "", 0, 0)

	s.Draft = "d1"
	s.RecordCritique(Critique{Score: 0.5, Feedback: "f1"})
	assert.Equal(t, 0.5, s.BestScore)
	assert.Equal(t, "d1", s.BestDraft)

	// Equal score does not replace.
	s.Draft = "d2"
	s.RecordCritique(Critique{Score: 0.5, Feedback: "f2"})
	assert.Equal(t, "d1", s.BestDraft)

	// Lower score does not replace.
	s.Draft = "d3"
	s.RecordCritique(Critique{Score: 0.2, Feedback: "f3"})
	assert.Equal(t, "d1", s.BestDraft)
	assert.Equal(t, 0.2, s.LastScore)

	s.Draft = "d4"
	s.RecordCritique(Critique{Score: 0.7, Feedback: "f4"})
	assert.Equal(t, 0.7, s.BestScore)
	assert.Equal(t, "d4", s.BestDraft)

	assert.Equal(t, []float64{0.5, 0.5, 0.2, 0.7}, s.ConfidenceScores)
	assert.Equal(t, []string{"f1", "f2", "f3", "f4"}, s.MistakeMemory)
	assert.Equal(t, "f4", s.CriticFeedback)
}

func TestRecordCritique_ZeroScoreKeepsEmptyBest(t *testing.T) {
	s := NewState("t", "", "", 0, 0)
	s.Draft = "d1"
	s.RecordCritique(Critique{Score: 0})
	assert.Equal(t, 0.0, s.BestScore)
	assert.Empty(t, s.BestDraft)
}

func TestRecordCritique_Laws(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for run := 0; run < 200; run++ {
		s := NewState("t", "", "", 0, 0)
		n := 1 + rng.Intn(8)
		for i := 0; i < n; i++ {
			s.RecordCritique(Critique{Score: rng.Float64()})
		}
		require.Len(t, s.ConfidenceScores, n)
		require.Equal(t, slices.Max(s.ConfidenceScores), s.BestScore)
		require.Equal(t, s.ConfidenceScores[n-1], s.LastScore)
	}
}

func TestRecentMistakes(t *testing.T) {
	s := &State{}
	assert.Nil(t, s.RecentMistakes(3))

	s.MistakeMemory = []string{"a", "b", "c", "d"}
	assert.Equal(t, []string{"b", "c", "d"}, s.RecentMistakes(3))
	assert.Equal(t, []string{"a", "b", "c", "d"}, s.RecentMistakes(10))
	assert.Nil(t, s.RecentMistakes(0))

	got := s.RecentMistakes(2)
	got[0] = "mutated"
	assert.Equal(t, "c", s.MistakeMemory[2])
}

func TestHaltAndRoute(t *testing.T) {
	s := &State{}
	assert.False(t, s.Done())
	s.Halt("stop")
	assert.True(t, s.Done())
	assert.Equal(t, "stop", s.StopReason)

	assert.Equal(t, "unset", RouteUnset.String())
	assert.Equal(t, "continue", RouteContinue.String())
	assert.Equal(t, "done", RouteDone.String())
}

func TestClone_IsDeep(t *testing.T) {
	s := NewState("t", "", "", 0, 0)
	s.SearchQueries = []string{"q"}
	s.RecordCritique(Critique{Score: 0.3, Feedback: "f"})
	s.Guard = &GuardReport{Valid: true, Issues: []string{"i"}}

	c := s.Clone()
	c.SearchQueries[0] = "x"
	c.ConfidenceScores[0] = 1
	c.MistakeMemory[0] = "x"
	c.LastCritique.Score = 1
	c.Guard.Issues[0] = "x"

	assert.Equal(t, "q", s.SearchQueries[0])
	assert.Equal(t, 0.3, s.ConfidenceScores[0])
	assert.Equal(t, "f", s.MistakeMemory[0])
	assert.Equal(t, 0.3, s.LastCritique.Score)
	assert.Equal(t, "i", s.Guard.Issues[0])
}

func TestState_JSON(t *testing.T) {
	s := NewState("t", "", "", 0, 0)
	s.RecordCritique(Critique{Score: 0.4, Grammar: 7, Feedback: "f"})

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, []any{0.4}, m["confidence_scores"])
	assert.Equal(t, 7.0, m["last_critique"].(map[string]any)["grammar_score"])
}
