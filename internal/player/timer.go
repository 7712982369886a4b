package player

import (
	"sync"
	"time"
)

// Stopper cancels a scheduled callback
type Stopper interface {
	Stop() bool
}

// Clock schedules callbacks; tests substitute a manual clock
type Clock interface {
	AfterFunc(d time.Duration, f func()) Stopper
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// SystemClock schedules on the runtime timer
var SystemClock Clock = realClock{}

// timerSlot holds at most one pending timer. Starting a timer always stops
// the one before it.
type timerSlot struct {
	mu      sync.Mutex
	clock   Clock
	pending Stopper
	token   uint64
}

func (t *timerSlot) start(token uint64, after time.Duration, fire func(token uint64)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending != nil {
		t.pending.Stop()
	}
	t.token = token
	t.pending = t.clock.AfterFunc(after, func() { fire(token) })
}

func (t *timerSlot) cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	t.token = 0
}

func (t *timerSlot) pendingToken() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.token
}
