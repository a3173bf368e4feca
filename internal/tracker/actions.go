package tracker

import (
	"context"
	"strings"

	"github.com/claude/repsession/internal/models"
	"github.com/claude/repsession/internal/summary"
)

// UpdateWeight sets the weight of a pending set.
func (t *Tracker) UpdateWeight(ctx context.Context, exerciseID models.ID, idx int, weight string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireWorkoutLocked(); err != nil {
		return err
	}
	updated, err := t.progress.WithWeight(exerciseID, idx, strings.TrimSpace(weight))
	if err != nil {
		return err
	}
	t.commitLocked(ctx, updated)
	return nil
}

// UpdateReps sets the reps of a pending set.
func (t *Tracker) UpdateReps(ctx context.Context, exerciseID models.ID, idx int, reps string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireWorkoutLocked(); err != nil {
		return err
	}
	updated, err := t.progress.WithReps(exerciseID, idx, strings.TrimSpace(reps))
	if err != nil {
		return err
	}
	t.commitLocked(ctx, updated)
	return nil
}

// AddSet appends an extra pending set to an exercise and returns its index.
func (t *Tracker) AddSet(ctx context.Context, exerciseID models.ID) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireWorkoutLocked(); err != nil {
		return 0, err
	}
	ex, err := t.exerciseLocked(exerciseID)
	if err != nil {
		return 0, err
	}
	updated := t.progress.WithAppendedSet(ex)
	t.commitLocked(ctx, updated)
	t.metrics.CounterSetsAdded.Inc()
	return len(updated[exerciseID]) - 1, nil
}

// CompleteSet marks a set done and starts the exercise's rest countdown.
// Exercises without rest time keep the tracker in the workout phase.
func (t *Tracker) CompleteSet(ctx context.Context, exerciseID models.ID, idx int) error {
	t.mu.Lock()
	if err := t.requireWorkoutLocked(); err != nil {
		t.mu.Unlock()
		return err
	}
	ex, err := t.exerciseLocked(exerciseID)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	updated, err := t.progress.WithDone(exerciseID, idx)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	t.commitLocked(ctx, updated)
	t.metrics.CounterSetsCompleted.Inc()

	var events []Event
	if ex.RestSeconds > 0 {
		t.phase = PhaseRest
		t.restGen = t.rest.Start(ex.RestSeconds)
		t.metrics.GaugeRestRemaining.Set(float64(ex.RestSeconds))
		events = append(events, Event{Kind: EventPhase, Phase: PhaseRest, RestRemaining: ex.RestSeconds})
	}
	t.mu.Unlock()

	t.log.Debug("set completed", "exercise", exerciseID, "set", idx, "rest", ex.RestSeconds)
	t.emit(events)
	return nil
}

// SkipRest ends the rest countdown early. It reports false when there was no
// rest to skip, including when the countdown already ran out.
func (t *Tracker) SkipRest() bool {
	t.mu.Lock()
	if t.closed || t.phase != PhaseRest {
		t.mu.Unlock()
		return false
	}
	t.rest.Cancel()
	t.phase = PhaseWorkout
	t.metrics.CounterRestsSkipped.Inc()
	t.metrics.GaugeRestRemaining.Set(0)
	t.mu.Unlock()

	t.emit([]Event{{Kind: EventPhase, Phase: PhaseWorkout}})
	return true
}

// Finish reports the session as complete. With no set done it returns
// ErrNothingLogged without calling the backend. On backend failure the
// tracker stays in the workout phase and keeps local progress.
func (t *Tracker) Finish(ctx context.Context) (summary.Summary, error) {
	t.mu.Lock()
	if err := t.requireWorkoutLocked(); err != nil {
		t.mu.Unlock()
		return summary.Summary{}, err
	}
	if !t.progress.AnyDone() {
		t.mu.Unlock()
		return summary.Summary{}, ErrNothingLogged
	}
	t.busy = true
	id := t.session.ID
	t.mu.Unlock()

	err := t.backend.CompleteSession(ctx, id)

	t.mu.Lock()
	t.busy = false
	if err != nil {
		t.mu.Unlock()
		t.metrics.CounterActionFailures.WithLabelValues("finish").Inc()
		t.log.Warn("finish failed", "error", err)
		return summary.Summary{}, &ActionError{Action: "finish", Err: err}
	}

	final := t.elapsed.Stop()
	t.rest.Cancel()
	t.clearStoreLocked(context.WithoutCancel(ctx))
	sum := summary.Compute(t.exercises, t.progress, final)
	t.summary = &sum
	t.phase = PhaseSummary
	t.outcome = OutcomeCompleted
	t.mu.Unlock()

	t.metrics.CounterSessionsEnded.WithLabelValues(string(OutcomeCompleted)).Inc()
	t.log.Info("session completed",
		"duration", sum.Duration,
		"exercises", sum.ExercisesRatio(),
		"sets", sum.SetsLogged,
		"volume", sum.TotalVolume,
	)
	t.emit([]Event{{Kind: EventPhase, Phase: PhaseSummary, Elapsed: final}})
	return sum, nil
}

// Abandon reports the session as abandoned. On success local progress is
// cleared and the tracker is closed; on failure nothing changes.
func (t *Tracker) Abandon(ctx context.Context, reason string) error {
	t.mu.Lock()
	if err := t.requireWorkoutLocked(); err != nil {
		t.mu.Unlock()
		return err
	}
	t.busy = true
	id := t.session.ID
	t.mu.Unlock()

	err := t.backend.AbandonSession(ctx, id, reason)

	t.mu.Lock()
	t.busy = false
	if err != nil {
		t.mu.Unlock()
		t.metrics.CounterActionFailures.WithLabelValues("abandon").Inc()
		t.log.Warn("abandon failed", "error", err)
		return &ActionError{Action: "abandon", Err: err}
	}

	t.releaseTimersLocked()
	t.clearStoreLocked(context.WithoutCancel(ctx))
	t.outcome = OutcomeAbandoned
	t.closed = true
	t.mu.Unlock()

	t.metrics.CounterSessionsEnded.WithLabelValues(string(OutcomeAbandoned)).Inc()
	t.log.Info("session abandoned", "reason", reason)
	return nil
}

// commitLocked installs a new mapping and writes it through. A failed
// write is logged and counted; the in-memory change stands.
func (t *Tracker) commitLocked(ctx context.Context, p models.Progress) {
	t.progress = p
	if err := t.store.Save(ctx, t.session.ID, p); err != nil {
		t.metrics.CounterStoreErrors.Inc()
		t.log.Error("saving progress", "error", err)
	}
}

// clearStoreLocked runs after the backend accepted the outcome, so callers
// pass a context that outlives a cancelled request.
func (t *Tracker) clearStoreLocked(ctx context.Context) {
	if err := t.store.Clear(ctx, t.session.ID); err != nil {
		t.metrics.CounterStoreErrors.Inc()
		t.log.Error("clearing progress", "error", err)
	}
}
