package timer

import (
	"sync"
	"time"
)

// Countdown counts down from a total once per tick and fires onExpire when
// it reaches zero. Each Start opens a new generation; ticks, expiries and
// cancels only ever act on the current one.
type Countdown struct {
	sched    Scheduler
	interval time.Duration
	onTick   func(gen uint64, remaining int)
	onExpire func(gen uint64)

	mu        sync.Mutex
	gen       uint64
	total     int
	remaining int
	active    bool
	stop      func()
}

// NewCountdown creates an idle countdown. onTick may be nil.
func NewCountdown(sched Scheduler, interval time.Duration, onTick func(gen uint64, remaining int), onExpire func(gen uint64)) *Countdown {
	return &Countdown{sched: sched, interval: interval, onTick: onTick, onExpire: onExpire}
}

// Start cancels any running countdown and begins a new one of total ticks.
// It returns the new generation.
func (c *Countdown) Start(total int) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.release()
	c.gen++
	c.total = total
	c.remaining = total
	c.active = true
	gen := c.gen
	c.stop = c.sched.Every(c.interval, func() { c.tick(gen) })
	return gen
}

func (c *Countdown) tick(gen uint64) {
	c.mu.Lock()
	if !c.active || gen != c.gen {
		c.mu.Unlock()
		return
	}
	if c.remaining > 0 {
		c.remaining--
	}
	remaining := c.remaining
	expired := remaining == 0
	if expired {
		c.release()
	}
	c.mu.Unlock()

	if c.onTick != nil {
		c.onTick(gen, remaining)
	}
	if expired && c.onExpire != nil {
		c.onExpire(gen)
	}
}

// Cancel stops the running countdown without firing onExpire. It reports
// whether a countdown was running.
func (c *Countdown) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	wasActive := c.active
	c.release()
	return wasActive
}

// release must be called with mu held.
func (c *Countdown) release() {
	c.active = false
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
}

// Remaining returns the ticks left in the current countdown, zero when idle.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return 0
	}
	return c.remaining
}

// Total returns the length of the most recent countdown.
func (c *Countdown) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Active reports whether a countdown is running.
func (c *Countdown) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Generation returns the generation of the most recent Start.
func (c *Countdown) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}
