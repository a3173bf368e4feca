package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

// TestMain runs goleak after all tests to make sure no ticker goroutine outlives its timer.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestElapsedCounts(t *testing.T) {
	sched := NewManual()
	var ticks []int
	e := NewElapsed(sched, time.Second, func(n int) { ticks = append(ticks, n) })

	sched.Advance(2)
	if e.Seconds() != 0 {
		t.Errorf("counted before Start: %d", e.Seconds())
	}

	e.Start()
	e.Start()
	sched.Advance(5)
	if got := e.Seconds(); got != 5 {
		t.Errorf("seconds = %d, want 5", got)
	}
	if len(ticks) != 5 || ticks[4] != 5 {
		t.Errorf("ticks = %v", ticks)
	}
}

// TestElapsedStop verifies Stop freezes the value and releases the tick source.
func TestElapsedStop(t *testing.T) {
	sched := NewManual()
	e := NewElapsed(sched, time.Second, nil)
	e.Start()
	sched.Advance(3)

	if got := e.Stop(); got != 3 {
		t.Errorf("Stop = %d, want 3", got)
	}
	if sched.Active() != 0 {
		t.Errorf("active schedules = %d, want 0", sched.Active())
	}

	sched.Advance(10)
	if got := e.Seconds(); got != 3 {
		t.Errorf("seconds after stop = %d, want 3", got)
	}
	if got := e.Stop(); got != 3 {
		t.Errorf("second Stop = %d, want 3", got)
	}

	e.Start()
	if e.Running() {
		t.Error("restarted after Stop")
	}
}

func TestCountdownExpires(t *testing.T) {
	sched := NewManual()
	var remaining []int
	var expired []uint64
	c := NewCountdown(sched, time.Second,
		func(_ uint64, r int) { remaining = append(remaining, r) },
		func(gen uint64) { expired = append(expired, gen) },
	)

	gen := c.Start(3)
	if c.Remaining() != 3 || c.Total() != 3 || !c.Active() {
		t.Fatalf("after start: remaining=%d total=%d active=%v", c.Remaining(), c.Total(), c.Active())
	}

	sched.Advance(2)
	if len(expired) != 0 {
		t.Fatal("expired early")
	}
	sched.Advance(1)
	if len(expired) != 1 || expired[0] != gen {
		t.Fatalf("expired = %v, want [%d]", expired, gen)
	}
	if want := []int{2, 1, 0}; len(remaining) != 3 || remaining[0] != want[0] || remaining[2] != want[2] {
		t.Errorf("remaining = %v, want %v", remaining, want)
	}
	if c.Active() {
		t.Error("still active after expiry")
	}
	if sched.Active() != 0 {
		t.Errorf("tick source not released: %d", sched.Active())
	}

	sched.Advance(5)
	if len(expired) != 1 {
		t.Errorf("expired %d times, want 1", len(expired))
	}
}

// TestCountdownCancel verifies no ticks or expiry fire after Cancel.
func TestCountdownCancel(t *testing.T) {
	sched := NewManual()
	var ticks, expiries int
	c := NewCountdown(sched, time.Second,
		func(uint64, int) { ticks++ },
		func(uint64) { expiries++ },
	)

	c.Start(5)
	sched.Advance(2)
	if !c.Cancel() {
		t.Error("Cancel on running countdown = false")
	}
	if c.Cancel() {
		t.Error("second Cancel = true")
	}
	sched.Advance(10)

	if ticks != 2 {
		t.Errorf("ticks = %d, want 2", ticks)
	}
	if expiries != 0 {
		t.Errorf("expiries = %d, want 0", expiries)
	}
	if c.Remaining() != 0 {
		t.Errorf("remaining after cancel = %d", c.Remaining())
	}
}

// TestCountdownRestart verifies a restart replaces the previous run and bumps the generation.
func TestCountdownRestart(t *testing.T) {
	sched := NewManual()
	var expired []uint64
	c := NewCountdown(sched, time.Second, nil, func(gen uint64) { expired = append(expired, gen) })

	first := c.Start(2)
	sched.Advance(1)
	second := c.Start(3)
	if second == first {
		t.Fatal("generation not bumped")
	}
	if sched.Active() != 1 {
		t.Errorf("active schedules = %d, want 1", sched.Active())
	}

	sched.Advance(2)
	if len(expired) != 0 {
		t.Fatalf("old run expired: %v", expired)
	}
	sched.Advance(1)
	if len(expired) != 1 || expired[0] != second {
		t.Errorf("expired = %v, want [%d]", expired, second)
	}
	if c.Generation() != second {
		t.Errorf("Generation = %d, want %d", c.Generation(), second)
	}
}

// TestTickerStop verifies the real scheduler ticks and its goroutine exits on stop.
func TestTickerStop(t *testing.T) {
	var n atomic.Int32
	stop := Ticker{}.Every(5*time.Millisecond, func() { n.Add(1) })

	deadline := time.Now().Add(2 * time.Second)
	for n.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	stop()
	stop()

	if n.Load() < 2 {
		t.Fatalf("ticks = %d, want at least 2", n.Load())
	}
	goleak.VerifyNone(t)
}

// TestTickerStopFromCallback verifies stopping inside the callback does not deadlock.
func TestTickerStopFromCallback(t *testing.T) {
	done := make(chan struct{})
	var stop func()
	var once atomic.Bool
	ready := make(chan struct{})
	stop = Ticker{}.Every(time.Millisecond, func() {
		<-ready
		if once.CompareAndSwap(false, true) {
			stop()
			close(done)
		}
	})
	close(ready)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("callback never ran")
	}
	goleak.VerifyNone(t)
}

// TestElapsedWithTicker verifies a real elapsed timer leaves no goroutine behind.
func TestElapsedWithTicker(t *testing.T) {
	e := NewElapsed(Ticker{}, time.Millisecond, nil)
	e.Start()
	time.Sleep(10 * time.Millisecond)
	e.Stop()
	goleak.VerifyNone(t)
}
