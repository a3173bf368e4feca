// Package bootstrap resolves which workout session is happening now.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/repsession/internal/models"
)

// Backend is the subset of the backend client needed to resolve a session.
type Backend interface {
	NextWorkoutDay(ctx context.Context) (*models.WorkoutDay, error)
	ActiveSession(ctx context.Context) (*models.Session, error)
	StartSession(ctx context.Context, programID models.ID, dayNumber int) (*models.Session, error)
}

// Stages reported in FatalError.
const (
	StageNextDay       = "next_day"
	StageActiveSession = "active_session"
	StageStartSession  = "start_session"
)

// FatalError means the session screen cannot proceed. It is never retried;
// the only recovery is leaving the screen.
type FatalError struct {
	Stage string
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("bootstrap %s: %v", e.Stage, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Result is a fully resolved session and the exercises of its day.
type Result struct {
	Session models.Session
	Day     models.WorkoutDay
	Started bool // true when the session was created by this call
}

// Resolve finds the active session, starting one for the next scheduled day
// when the backend has none.
func Resolve(ctx context.Context, b Backend, log *slog.Logger) (*Result, error) {
	day, err := b.NextWorkoutDay(ctx)
	if err != nil {
		return nil, &FatalError{Stage: StageNextDay, Err: err}
	}

	session, err := b.ActiveSession(ctx)
	if err != nil {
		return nil, &FatalError{Stage: StageActiveSession, Err: err}
	}

	started := false
	if session == nil {
		log.Info("no active session, starting one", "program_id", day.ProgramID, "day", day.DayNumber)
		session, err = b.StartSession(ctx, day.ProgramID, day.DayNumber)
		if err != nil {
			return nil, &FatalError{Stage: StageStartSession, Err: err}
		}
		started = true
	}

	s := *session
	if s.ProgramID == "" {
		s.ProgramID = day.ProgramID
	}
	if s.ProgramName == "" {
		s.ProgramName = day.ProgramName
	}
	if s.DayNumber == 0 {
		s.DayNumber = day.DayNumber
	}
	if s.DayName == "" {
		s.DayName = day.DayName
	}

	log.Info("session resolved",
		"session_id", s.ID,
		"program", s.ProgramName,
		"day", s.DisplayDayName(),
		"exercises", len(day.Exercises),
		"started", started,
	)

	return &Result{Session: s, Day: *day, Started: started}, nil
}
