package watch

import (
	"sync"
	"time"
)

// State of a Debouncer.
type State int

const (
	// Idle means no trigger is outstanding.
	Idle State = iota
	// Pending means the callback fires at the deadline unless re-triggered.
	Pending
)

func (s State) String() string {
	if s == Pending {
		return "pending"
	}
	return "idle"
}

// Debouncer runs fire once after triggers stop arriving for wait.
//
// idle --Trigger--> pending(now+wait) --Trigger--> pending(now+wait)
// pending --deadline--> fire --> idle
type Debouncer struct {
	wait time.Duration
	fire func()
	now  func() time.Time

	mu       sync.Mutex
	state    State
	deadline time.Time
	timer    *time.Timer
	stopped  bool
}

// NewDebouncer returns an idle Debouncer.
func NewDebouncer(wait time.Duration, fire func()) *Debouncer {
	return &Debouncer{wait: wait, fire: fire, now: time.Now}
}

// Trigger moves the deadline to now+wait, arming the timer from idle.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.deadline = d.now().Add(d.wait)
	if d.state == Pending {
		return
	}
	d.state = Pending
	d.timer = time.AfterFunc(d.wait, d.expire)
}

// State returns the current state.
func (d *Debouncer) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Stop cancels a pending fire. Triggers after Stop are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.state = Idle
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) expire() {
	d.mu.Lock()
	if d.stopped || d.state != Pending {
		d.mu.Unlock()
		return
	}
	if remaining := d.deadline.Sub(d.now()); remaining > 0 {
		d.timer = time.AfterFunc(remaining, d.expire)
		d.mu.Unlock()
		return
	}
	d.state = Idle
	d.timer = nil
	d.mu.Unlock()

	d.fire()
}
