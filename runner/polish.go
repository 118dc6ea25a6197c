package runner

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/blogmesh/core"
)

// ErrNoDraft is returned by Polish when the run produced no best draft.
var ErrNoDraft = errors.New("no best draft to polish")

// Polish runs editor once on a copy of the finished record whose Draft is the
// best draft. The input record is never modified, so BestDraft and the score
// history stay exactly as the run left them.
func (r *Runner) Polish(ctx context.Context, sessionID string, editor core.Stage, s *core.State) (*core.State, error) {
	if s.BestDraft == "" {
		return nil, ErrNoDraft
	}

	ctx, span := r.tracer.Start(ctx, "blogmesh.polish", trace.WithAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("stage.name", editor.Name()),
	))
	defer span.End()

	polished := s.Clone()
	polished.Draft = s.BestDraft

	x := &run{Runner: r, sessionID: sessionID, limit: 1}
	if err := x.exec(ctx, editor, polished); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "polish failed")
		return nil, err
	}
	return polished, nil
}
