package tracker

// EventKind identifies what changed.
type EventKind string

const (
	EventPhase   EventKind = "phase"
	EventElapsed EventKind = "elapsed"
	EventRest    EventKind = "rest"
)

// Event is delivered to Options.OnEvent outside the tracker lock, so
// handlers may call back into the tracker.
type Event struct {
	Kind          EventKind `json:"kind"`
	Phase         Phase     `json:"phase"`
	Elapsed       int       `json:"elapsed,omitempty"`
	RestRemaining int       `json:"rest_remaining,omitempty"`
}

// onElapsedTick drops ticks that race with Finish or Close, so no elapsed
// event follows the summary.
func (t *Tracker) onElapsedTick(seconds int) {
	t.mu.Lock()
	phase := t.phase
	if t.closed || phase == PhaseSummary {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	t.metrics.GaugeElapsedSeconds.Set(float64(seconds))
	t.emit([]Event{{Kind: EventElapsed, Phase: phase, Elapsed: seconds}})
}

func (t *Tracker) onRestTick(gen uint64, remaining int) {
	t.mu.Lock()
	if t.phase != PhaseRest || gen != t.restGen {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	t.metrics.GaugeRestRemaining.Set(float64(remaining))
	if remaining > 0 {
		t.emit([]Event{{Kind: EventRest, Phase: PhaseRest, RestRemaining: remaining}})
	}
}

// onRestExpired returns to the workout phase. A skip that already happened,
// or a newer rest period, turns it into a no-op.
func (t *Tracker) onRestExpired(gen uint64) {
	t.mu.Lock()
	if t.closed || t.phase != PhaseRest || gen != t.restGen {
		t.mu.Unlock()
		return
	}
	t.phase = PhaseWorkout
	t.mu.Unlock()

	t.metrics.CounterRestsExpired.Inc()
	t.emit([]Event{{Kind: EventPhase, Phase: PhaseWorkout}})
}
