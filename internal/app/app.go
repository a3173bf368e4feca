// Package app wires bootstrap, the local progress store and the tracker into
// one running session.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/multierr"

	"github.com/claude/repsession/internal/bootstrap"
	"github.com/claude/repsession/internal/metrics"
	"github.com/claude/repsession/internal/models"
	"github.com/claude/repsession/internal/progress"
	"github.com/claude/repsession/internal/timer"
	"github.com/claude/repsession/internal/tracker"
)

// Backend is everything the session needs from the workout backend.
type Backend interface {
	bootstrap.Backend
	tracker.Backend
}

// Store is the local progress store as used by a session.
type Store interface {
	Load(ctx context.Context, sessionID models.ID) (models.Progress, bool, error)
	tracker.Store
}

type Deps struct {
	Backend   Backend
	Store     Store
	Scheduler timer.Scheduler
	Tick      time.Duration
	Log       *slog.Logger
	Metrics   *metrics.Manager
	OnEvent   func(tracker.Event)
}

// Session is a resolved, running workout session.
type Session struct {
	Tracker *tracker.Tracker
	Day     models.WorkoutDay
	Started bool
	Resumed bool

	closers []func() error
}

// Open resolves the current session, restores any saved progress for it
// and starts the tracker. Bootstrap failures are returned as
// *bootstrap.FatalError.
func Open(ctx context.Context, d Deps) (*Session, error) {
	if d.Log == nil {
		d.Log = slog.Default()
	}

	res, err := bootstrap.Resolve(ctx, d.Backend, d.Log)
	if err != nil {
		return nil, err
	}
	log := d.Log.With("session_id", res.Session.ID)

	saved, ok, err := d.Store.Load(ctx, res.Session.ID)
	if err != nil {
		// unreadable progress is treated as none
		log.Warn("loading saved progress", "error", err)
		ok = false
	}
	p, resumed := progress.Reconcile(res.Day.Exercises, saved, ok)
	if resumed {
		log.Info("resuming saved progress", "sets_done", p.DoneCount())
	}
	if err := d.Store.Save(ctx, res.Session.ID, p); err != nil {
		log.Error("saving initial progress", "error", err)
	}

	tr := tracker.New(res.Session, res.Day.Exercises, p, d.Backend, d.Store, tracker.Options{
		Scheduler: d.Scheduler,
		Tick:      d.Tick,
		Log:       d.Log,
		Metrics:   d.Metrics,
		OnEvent:   d.OnEvent,
	})
	tr.Start()

	return &Session{
		Tracker: tr,
		Day:     res.Day,
		Started: res.Started,
		Resumed: resumed,
		closers: []func() error{tr.Close},
	}, nil
}

// OnClose registers fn to run when the session is closed, after the tracker.
func (s *Session) OnClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

// Close stops the tracker and runs registered closers. Saved progress is
// left in place so the session can be resumed.
func (s *Session) Close() error {
	var err error
	for _, c := range s.closers {
		err = multierr.Append(err, c())
	}
	if err != nil {
		return fmt.Errorf("closing session: %w", err)
	}
	return nil
}
