package runner

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/blogmesh/core"
	"github.com/hupe1980/blogmesh/session"
)

// script builds fake stages that record the execution order.
type script struct {
	scores []float64
	trace  []string
}

func (sc *script) stage(name string, fn func(s *core.State) error) core.Stage {
	return core.NewStageFunc(name, func(_ context.Context, s *core.State) error {
		sc.trace = append(sc.trace, name)
		if fn == nil {
			return nil
		}
		return fn(s)
	})
}

func (sc *script) stages() Stages {
	return Stages{
		Researcher: sc.stage("researcher", func(s *core.State) error {
			s.ResearchNotes = "notes"
			return nil
		}),
		Generator: sc.stage("generator", func(s *core.State) error {
			s.Draft = fmt.Sprintf("draft-%d", s.Iteration)
			return nil
		}),
		Critic: sc.stage("critic", func(s *core.State) error {
			if len(sc.scores) == 0 {
				return errors.New("no more scores")
			}
			score := sc.scores[0]
			sc.scores = sc.scores[1:]
			s.RecordCritique(core.Critique{Score: score, Feedback: fmt.Sprintf("feedback %.1f", score)})
			return nil
		}),
	}
}

func (sc *script) count(name string) int {
	n := 0
	for _, t := range sc.trace {
		if t == name {
			n++
		}
	}
	return n
}

func TestNew_MissingStages(t *testing.T) {
	sc := &script{}
	full := sc.stages()

	for _, tc := range []struct {
		name  string
		strip func(*Stages)
	}{
		{"researcher", func(s *Stages) { s.Researcher = nil }},
		{"generator", func(s *Stages) { s.Generator = nil }},
		{"critic", func(s *Stages) { s.Critic = nil }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			st := full
			tc.strip(&st)
			_, err := New(st)
			assert.ErrorIs(t, err, ErrMissingStage)
			assert.ErrorContains(t, err, tc.name)
		})
	}
}

func TestRun_EarlyStop(t *testing.T) {
	sc := &script{scores: []float64{0.3, 0.5, 0.82}}
	r, err := New(sc.stages())
	require.NoError(t, err)

	s, err := r.Run(context.Background(), "sess-a", core.NewState("topic", "", "", 0, 5))
	require.NoError(t, err)

	assert.Equal(t, core.RouteDone, s.Route)
	assert.Equal(t, "Early stop: confidence reached 82.0% (threshold 80%)", s.StopReason)
	assert.Equal(t, []float64{0.3, 0.5, 0.82}, s.ConfidenceScores)
	assert.Equal(t, 0.82, s.BestScore)
	assert.Equal(t, "draft-3", s.BestDraft)
	assert.Equal(t, 4, s.Iteration)
	assert.Equal(t, 1, sc.count("researcher"))
	assert.Equal(t, []string{
		"researcher", "generator", "critic",
		"generator", "critic",
		"generator", "critic",
	}, sc.trace)
}

func TestRun_HardStop(t *testing.T) {
	sc := &script{scores: []float64{0.3, 0.4, 0.5}}
	r, err := New(sc.stages())
	require.NoError(t, err)

	s, err := r.Run(context.Background(), "sess-b", core.NewState("topic", "", "", 0, 3))
	require.NoError(t, err)

	assert.Equal(t, 3, s.Iteration)
	assert.Equal(t, core.RouteDone, s.Route)
	assert.Equal(t, "Max iterations (3) reached without hitting threshold 80% (best score 40.0%)", s.StopReason)
	assert.Equal(t, []float64{0.3, 0.4}, s.ConfidenceScores)
	assert.Equal(t, 0.4, s.BestScore)
	assert.Equal(t, "draft-2", s.BestDraft)
	assert.Equal(t, []float64{0.5}, sc.scores, "the cap ends the run before a third cycle")
}

func TestRun_RegressionKeepsBestDraft(t *testing.T) {
	sc := &script{scores: []float64{0.6, 0.2, 0.3, 0.1}}
	r, err := New(sc.stages())
	require.NoError(t, err)

	s, err := r.Run(context.Background(), "", core.NewState("topic", "", "", 0, 5))
	require.NoError(t, err)

	assert.Equal(t, "draft-1", s.BestDraft)
	assert.Equal(t, 0.6, s.BestScore)
	assert.Equal(t, 0.1, s.LastScore)
	assert.Len(t, s.ConfidenceScores, 4)
	assert.Equal(t, 5, s.Iteration)
}

func TestRun_GuardHalts(t *testing.T) {
	sc := &script{scores: []float64{0.9}}
	st := sc.stages()
	st.Guard = sc.stage("guardrails", func(s *core.State) error {
		s.Guard = &core.GuardReport{Valid: false, CorrectiveAction: "Please remove personal data."}
		s.Halt("Please remove personal data.")
		return nil
	})
	st.Planner = sc.stage("planner", nil)

	r, err := New(st)
	require.NoError(t, err)

	s, err := r.Run(context.Background(), "sess-c", core.NewState("topic", "", "", 0, 5))
	require.NoError(t, err)

	assert.Equal(t, []string{"guardrails"}, sc.trace)
	assert.Equal(t, "Please remove personal data.", s.StopReason)
	assert.Equal(t, 0, s.Iteration)
	assert.Empty(t, s.ConfidenceScores)
	assert.Empty(t, s.Draft)
}

func TestRun_EntryStages(t *testing.T) {
	sc := &script{scores: []float64{0.9}}
	st := sc.stages()
	st.Guard = sc.stage("guardrails", nil)
	st.Planner = sc.stage("planner", func(s *core.State) error {
		s.SearchQueries = []string{"q"}
		return nil
	})

	r, err := New(st)
	require.NoError(t, err)

	s, err := r.Run(context.Background(), "sess", core.NewState("topic", "", "", 0, 5))
	require.NoError(t, err)
	assert.Equal(t, []string{"guardrails", "planner", "researcher", "generator", "critic"}, sc.trace)
	assert.Equal(t, []string{"q"}, s.SearchQueries)
}

func TestRun_StageFailureAborts(t *testing.T) {
	sc := &script{scores: []float64{0.5}}
	r, err := New(sc.stages())
	require.NoError(t, err)

	s, err := r.Run(context.Background(), "sess", core.NewState("topic", "", "", 0, 5))
	require.Error(t, err)

	var se *core.StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "critic", se.Stage)
	assert.Equal(t, 2, se.Iteration)
	assert.EqualError(t, se.Err, "no more scores")

	// Partial record keeps the committed best draft.
	require.NotNil(t, s)
	assert.Equal(t, "draft-1", s.BestDraft)
	assert.Equal(t, []float64{0.5}, s.ConfidenceScores)
}

func TestRun_Canceled(t *testing.T) {
	sc := &script{scores: []float64{0.1, 0.1, 0.1}}
	r, err := New(sc.stages())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.Run(ctx, "sess", core.NewState("topic", "", "", 0, 5))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sc.trace)
}

func TestRun_StepLimit(t *testing.T) {
	sc := &script{scores: []float64{0.1, 0.1, 0.1, 0.1}}
	r, err := New(sc.stages(), func(o *Options) { o.MaxSteps = 5 })
	require.NoError(t, err)

	_, err = r.Run(context.Background(), "sess", core.NewState("topic", "", "", 0, 5))
	assert.ErrorIs(t, err, core.ErrStepLimit)
	assert.Equal(t, []string{"researcher", "generator", "critic"}, sc.trace)
}

func TestRun_DerivedStepLimitCoversCap(t *testing.T) {
	scores := make([]float64, 40)
	sc := &script{scores: scores}
	r, err := New(sc.stages())
	require.NoError(t, err)

	s, err := r.Run(context.Background(), "sess", core.NewState("topic", "", "", 0, 30))
	require.NoError(t, err)
	assert.Equal(t, 30, s.Iteration)
	assert.Len(t, s.ConfidenceScores, 29)
}

func TestRun_EventsAndSnapshot(t *testing.T) {
	sc := &script{scores: []float64{0.85}}
	store := session.NewInMemoryStore()

	var observed []core.Event
	r, err := New(sc.stages(), func(o *Options) {
		o.SessionStore = store
		o.Observer = func(ev core.Event) { observed = append(observed, ev) }
	})
	require.NoError(t, err)
	assert.Same(t, store, r.SessionStore())

	_, err = r.Run(context.Background(), "sess-e", core.NewState("topic", "", "", 0, 5))
	require.NoError(t, err)

	stages := make([]string, 0, len(observed))
	for _, ev := range observed {
		stages = append(stages, ev.Stage)
		assert.Equal(t, "sess-e", ev.SessionID)
	}
	assert.Equal(t, []string{"controller", "researcher", "generator", "critic", "controller"}, stages)

	last := observed[len(observed)-1]
	assert.Equal(t, core.RouteDone, last.Route)
	assert.Equal(t, 2, last.Iteration)
	assert.Contains(t, last.StopReason, "Early stop")

	sess, err := store.Lookup("sess-e")
	require.NoError(t, err)
	assert.Len(t, sess.GetEvents(), 5)
	require.NotNil(t, sess.Snapshot())
	assert.Equal(t, 0.85, sess.Snapshot().BestScore)
}

func TestRun_FailedStageEvent(t *testing.T) {
	sc := &script{}
	var observed []core.Event
	r, err := New(sc.stages(), func(o *Options) {
		o.Observer = func(ev core.Event) { observed = append(observed, ev) }
	})
	require.NoError(t, err)

	_, err = r.Run(context.Background(), "sess", core.NewState("topic", "", "", 0, 5))
	require.Error(t, err)

	last := observed[len(observed)-1]
	assert.Equal(t, "critic", last.Stage)
	assert.True(t, last.Failed())
	assert.Equal(t, "no more scores", last.Error)
}

func TestPolish(t *testing.T) {
	sc := &script{scores: []float64{0.6, 0.9}}
	r, err := New(sc.stages())
	require.NoError(t, err)

	s, err := r.Run(context.Background(), "sess", core.NewState("topic", "", "", 0, 5))
	require.NoError(t, err)
	require.Equal(t, "draft-2", s.BestDraft)
	s.Draft = "something else"

	editor := core.NewStageFunc("seo_editor", func(_ context.Context, st *core.State) error {
		st.SEONotes = "notes for " + st.Draft
		st.Draft = "seo " + st.Draft
		return nil
	})

	polished, err := r.Polish(context.Background(), "sess", editor, s)
	require.NoError(t, err)
	assert.Equal(t, "seo draft-2", polished.Draft)
	assert.Equal(t, "notes for draft-2", polished.SEONotes)

	assert.Equal(t, "draft-2", s.BestDraft)
	assert.Equal(t, "something else", s.Draft)
	assert.Empty(t, s.SEONotes)
	assert.Equal(t, []float64{0.6, 0.9}, s.ConfidenceScores)
}

func TestPolish_Errors(t *testing.T) {
	sc := &script{}
	r, err := New(sc.stages())
	require.NoError(t, err)

	editor := core.NewStageFunc("seo_editor", func(context.Context, *core.State) error {
		return errors.New("boom")
	})

	_, err = r.Polish(context.Background(), "sess", editor, &core.State{})
	assert.ErrorIs(t, err, ErrNoDraft)

	_, err = r.Polish(context.Background(), "sess", editor, &core.State{BestDraft: "d"})
	var se *core.StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "seo_editor", se.Stage)
}
