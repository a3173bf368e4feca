// Package timer provides the session's tick sources: an elapsed-time counter
// and a skippable rest countdown. Both are driven by a Scheduler so tests can
// advance time deterministically.
package timer

import (
	"sort"
	"sync"
	"time"
)

// Scheduler calls fn every d until the returned stop function is called.
// stop must be safe to call more than once and from inside fn.
type Scheduler interface {
	Every(d time.Duration, fn func()) (stop func())
}

// Ticker is the production Scheduler: one goroutine and time.Ticker per schedule.
type Ticker struct{}

func (Ticker) Every(d time.Duration, fn func()) func() {
	t := time.NewTicker(d)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }
}

// Manual is a Scheduler that only fires when Advance is called.
type Manual struct {
	mu      sync.Mutex
	nextID  int
	entries map[int]func()
}

// NewManual creates an idle Manual scheduler.
func NewManual() *Manual {
	return &Manual{entries: map[int]func(){}}
}

func (m *Manual) Every(_ time.Duration, fn func()) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.entries[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.entries, id)
		m.mu.Unlock()
	}
}

// Advance fires n ticks. Within a tick, schedules run in registration order;
// a schedule stopped during the tick is not called afterwards.
func (m *Manual) Advance(n int) {
	for range n {
		m.mu.Lock()
		ids := make([]int, 0, len(m.entries))
		for id := range m.entries {
			ids = append(ids, id)
		}
		m.mu.Unlock()
		sort.Ints(ids)

		for _, id := range ids {
			m.mu.Lock()
			fn, ok := m.entries[id]
			m.mu.Unlock()
			if ok {
				fn()
			}
		}
	}
}

// Active returns the number of running schedules.
func (m *Manual) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
