package timer

import (
	"sync"
	"time"
)

// Elapsed counts whole ticks since Start. It never pauses; Stop freezes it.
type Elapsed struct {
	sched    Scheduler
	interval time.Duration
	onTick   func(seconds int)

	mu      sync.Mutex
	seconds int
	running bool
	stopped bool
	stop    func()
}

// NewElapsed creates a stopped elapsed timer. onTick may be nil.
func NewElapsed(sched Scheduler, interval time.Duration, onTick func(seconds int)) *Elapsed {
	return &Elapsed{sched: sched, interval: interval, onTick: onTick}
}

// Start begins counting from zero. It has no effect on a running or stopped timer.
func (e *Elapsed) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running || e.stopped {
		return
	}
	e.running = true
	e.stop = e.sched.Every(e.interval, e.tick)
}

func (e *Elapsed) tick() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.seconds++
	n := e.seconds
	e.mu.Unlock()

	if e.onTick != nil {
		e.onTick(n)
	}
}

// Stop releases the tick source and returns the final count. Later calls
// return the same value.
func (e *Elapsed) Stop() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		e.running = false
		e.stop()
		e.stop = nil
	}
	e.stopped = true
	return e.seconds
}

// Seconds returns the current count.
func (e *Elapsed) Seconds() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seconds
}

// Running reports whether the timer is counting.
func (e *Elapsed) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}
