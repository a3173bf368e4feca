package mcp

import (
	"context"
	"errors"

	"github.com/claude/repsession/internal/models"
	"github.com/claude/repsession/internal/summary"
	"github.com/claude/repsession/internal/tracker"
)

// SetUpdate is a partial edit of one set. Nil fields are left unchanged.
type SetUpdate struct {
	Weight *string
	Reps   *string
	Done   bool
}

// Session abstracts the live session for MCP tools. LocalSession (in-process
// tracker) and HTTPClient (companion API) both satisfy it.
type Session interface {
	GetState(ctx context.Context) (tracker.State, error)
	LogSet(ctx context.Context, exerciseID models.ID, idx int, u SetUpdate) (tracker.State, error)
	SkipRest(ctx context.Context) (bool, error)
	Finish(ctx context.Context) (summary.Summary, error)
}

// LocalSession drives a tracker in the same process.
type LocalSession struct {
	tr *tracker.Tracker
}

var _ Session = (*LocalSession)(nil)

func NewLocalSession(tr *tracker.Tracker) *LocalSession {
	return &LocalSession{tr: tr}
}

func (l *LocalSession) GetState(context.Context) (tracker.State, error) {
	return l.tr.State(), nil
}

// LogSet applies weight and reps before marking the set done, so a single
// call can record a finished set.
func (l *LocalSession) LogSet(ctx context.Context, exerciseID models.ID, idx int, u SetUpdate) (tracker.State, error) {
	if u.Weight == nil && u.Reps == nil && !u.Done {
		return tracker.State{}, errors.New("nothing to log: set weight, reps or done")
	}
	if u.Weight != nil {
		if err := l.tr.UpdateWeight(ctx, exerciseID, idx, *u.Weight); err != nil {
			return tracker.State{}, err
		}
	}
	if u.Reps != nil {
		if err := l.tr.UpdateReps(ctx, exerciseID, idx, *u.Reps); err != nil {
			return tracker.State{}, err
		}
	}
	if u.Done {
		if err := l.tr.CompleteSet(ctx, exerciseID, idx); err != nil {
			return tracker.State{}, err
		}
	}
	return l.tr.State(), nil
}

func (l *LocalSession) SkipRest(context.Context) (bool, error) {
	return l.tr.SkipRest(), nil
}

func (l *LocalSession) Finish(ctx context.Context) (summary.Summary, error) {
	return l.tr.Finish(ctx)
}
