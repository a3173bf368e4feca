// Package tracker is the live workout session state machine. It owns the
// phase (workout, rest, summary), the active-exercise pointer and the set
// logs, writes every set change through to the local progress store, and
// drives the elapsed and rest timers.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/repsession/internal/metrics"
	"github.com/claude/repsession/internal/models"
	"github.com/claude/repsession/internal/summary"
	"github.com/claude/repsession/internal/timer"
	"github.com/prometheus/client_golang/prometheus"
)

// Phase is the tracker's current mode.
type Phase string

const (
	PhaseWorkout Phase = "workout"
	PhaseRest    Phase = "rest"
	PhaseSummary Phase = "summary"
)

// Outcome records how the session ended.
type Outcome string

const (
	OutcomeActive    Outcome = ""
	OutcomeCompleted Outcome = "completed"
	OutcomeAbandoned Outcome = "abandoned"
)

var (
	ErrWrongPhase    = errors.New("not allowed in the current phase")
	ErrNothingLogged = errors.New("no sets logged")
	ErrBusy          = errors.New("another action is in progress")
	ErrClosed        = errors.New("session is closed")
	ErrIndex         = errors.New("exercise index out of range")
)

// ActionError is a failed finish or abandon call. The tracker stays in its
// previous phase and local progress is kept, so the action can be retried.
type ActionError struct {
	Action string
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Action, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// Backend reports session outcomes.
type Backend interface {
	CompleteSession(ctx context.Context, sessionID models.ID) error
	AbandonSession(ctx context.Context, sessionID models.ID, reason string) error
}

// Store persists set logs per session.
type Store interface {
	Save(ctx context.Context, sessionID models.ID, p models.Progress) error
	Clear(ctx context.Context, sessionID models.ID) error
}

// Options configures a Tracker. Zero values get defaults.
type Options struct {
	Scheduler timer.Scheduler
	Tick      time.Duration
	Log       *slog.Logger
	Metrics   *metrics.Manager
	OnEvent   func(Event)
}

// Tracker is safe for concurrent use; timer callbacks arrive on their own goroutines.
type Tracker struct {
	backend Backend
	store   Store
	log     *slog.Logger
	metrics *metrics.Manager
	onEvent func(Event)

	elapsed *timer.Elapsed
	rest    *timer.Countdown

	mu        sync.Mutex
	session   models.Session
	exercises []models.Exercise
	progress  models.Progress
	phase     Phase
	current   int
	restGen   uint64
	busy      bool
	closed    bool
	outcome   Outcome
	summary   *summary.Summary
}

// New creates a tracker in the workout phase. A nil progress is seeded
// from the exercises. Timers do not run until Start.
func New(session models.Session, exercises []models.Exercise, progress models.Progress, backend Backend, store Store, opts Options) *Tracker {
	if opts.Scheduler == nil {
		opts.Scheduler = timer.Ticker{}
	}
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewManager("repsession", "tracker", prometheus.NewRegistry())
	}
	if progress == nil {
		progress = models.Seed(exercises)
	}

	t := &Tracker{
		backend:   backend,
		store:     store,
		log:       opts.Log.With("session_id", session.ID),
		metrics:   opts.Metrics,
		onEvent:   opts.OnEvent,
		session:   session,
		exercises: append([]models.Exercise(nil), exercises...),
		progress:  progress.Clone(),
		phase:     PhaseWorkout,
	}
	t.elapsed = timer.NewElapsed(opts.Scheduler, opts.Tick, t.onElapsedTick)
	t.rest = timer.NewCountdown(opts.Scheduler, opts.Tick, t.onRestTick, t.onRestExpired)
	return t
}

// Start begins the elapsed session timer.
func (t *Tracker) Start() {
	t.elapsed.Start()
}

// Close releases both timers. It does not report anything to the backend;
// local progress stays in the store so the session can be resumed.
func (t *Tracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.releaseTimersLocked()
	t.closed = true
	return nil
}

func (t *Tracker) releaseTimersLocked() {
	t.elapsed.Stop()
	t.rest.Cancel()
	t.metrics.GaugeRestRemaining.Set(0)
}

// State is a point-in-time copy of the tracker.
type State struct {
	Session        models.Session    `json:"session"`
	Phase          Phase             `json:"phase"`
	Outcome        Outcome           `json:"outcome,omitempty"`
	CurrentIndex   int               `json:"current_index"`
	Exercises      []models.Exercise `json:"exercises"`
	Sets           models.Progress   `json:"sets"`
	ElapsedSeconds int               `json:"elapsed_seconds"`
	Elapsed        string            `json:"elapsed"`
	RestRemaining  int               `json:"rest_remaining"`
	RestTotal      int               `json:"rest_total"`
	CanFinish      bool              `json:"can_finish"`
	Busy           bool              `json:"busy"`
	Closed         bool              `json:"closed"`
	Summary        *summary.Summary  `json:"summary,omitempty"`
}

// CurrentExercise returns the exercise under the pointer.
func (s State) CurrentExercise() (models.Exercise, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Exercises) {
		return models.Exercise{}, false
	}
	return s.Exercises[s.CurrentIndex], true
}

// State returns a snapshot safe to read without holding the tracker.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	secs := t.elapsed.Seconds()
	st := State{
		Session:        t.session,
		Phase:          t.phase,
		Outcome:        t.outcome,
		CurrentIndex:   t.current,
		Exercises:      append([]models.Exercise(nil), t.exercises...),
		Sets:           t.progress.Clone(),
		ElapsedSeconds: secs,
		Elapsed:        summary.FormatDuration(secs),
		CanFinish:      t.phase == PhaseWorkout && !t.busy && !t.closed && t.progress.AnyDone(),
		Busy:           t.busy,
		Closed:         t.closed,
	}
	if t.phase == PhaseRest {
		st.RestRemaining = t.rest.Remaining()
		st.RestTotal = t.rest.Total()
	}
	if t.summary != nil {
		s := *t.summary
		st.Summary = &s
	}
	return st
}

// SessionID returns the id of the tracked session.
func (t *Tracker) SessionID() models.ID {
	return t.session.ID
}

// Next moves the pointer forward, stopping at the last exercise.
func (t *Tracker) Next() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireWorkoutLocked(); err != nil {
		return t.current, err
	}
	if t.current < len(t.exercises)-1 {
		t.current++
	}
	return t.current, nil
}

// Prev moves the pointer back, stopping at the first exercise.
func (t *Tracker) Prev() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireWorkoutLocked(); err != nil {
		return t.current, err
	}
	if t.current > 0 {
		t.current--
	}
	return t.current, nil
}

// Jump moves the pointer to exercise i.
func (t *Tracker) Jump(i int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireWorkoutLocked(); err != nil {
		return err
	}
	if i < 0 || i >= len(t.exercises) {
		return fmt.Errorf("%w: %d of %d", ErrIndex, i, len(t.exercises))
	}
	t.current = i
	return nil
}

func (t *Tracker) requireWorkoutLocked() error {
	switch {
	case t.closed:
		return ErrClosed
	case t.busy:
		return ErrBusy
	case t.phase != PhaseWorkout:
		return fmt.Errorf("%w: %s", ErrWrongPhase, t.phase)
	}
	return nil
}

func (t *Tracker) exerciseLocked(id models.ID) (models.Exercise, error) {
	i := models.FindExercise(t.exercises, id)
	if i < 0 {
		return models.Exercise{}, fmt.Errorf("%w: %s", models.ErrUnknownExercise, id)
	}
	return t.exercises[i], nil
}

func (t *Tracker) emit(events []Event) {
	if t.onEvent == nil {
		return
	}
	for _, e := range events {
		t.onEvent(e)
	}
}
