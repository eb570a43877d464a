package clock

import (
	"sync"
	"time"
)

// Epoch is the instant a VirtualScheduler starts at.
var Epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// VirtualScheduler is a Scheduler whose time only moves on AdvanceBy or
// AdvanceTo.
//
// Due callbacks run synchronously in the advancing goroutine, ordered by due
// time and then by registration order. The scheduler's lock is never held
// while a callback runs, so callbacks can cancel subscriptions or register
// new ones; a subscription registered during an advance becomes due relative
// to the virtual instant at which it was registered.
type VirtualScheduler struct {
	mu      sync.Mutex
	now     time.Time
	nextID  uint64
	entries []*virtualEntry
}

type virtualEntry struct {
	id     uint64
	period time.Duration
	due    time.Time
	fn     func()
	owner  *VirtualScheduler
}

// NewVirtualScheduler creates a scheduler positioned at Epoch.
func NewVirtualScheduler() *VirtualScheduler {
	return &VirtualScheduler{now: Epoch}
}

// Now returns the current virtual time.
func (v *VirtualScheduler) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// Elapsed returns the virtual time passed since Epoch.
func (v *VirtualScheduler) Elapsed() time.Duration {
	return v.Now().Sub(Epoch)
}

// Every registers fn to run once per period of virtual time.
// A non-positive period panics, mirroring time.NewTicker.
func (v *VirtualScheduler) Every(period time.Duration, fn func()) Subscription {
	if period <= 0 {
		panic("clock: non-positive period for VirtualScheduler.Every")
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.nextID++
	e := &virtualEntry{
		id:     v.nextID,
		period: period,
		due:    v.now.Add(period),
		fn:     fn,
		owner:  v,
	}
	v.entries = append(v.entries, e)
	return e
}

// Cancel removes the entry from its scheduler.
func (e *virtualEntry) Cancel() {
	v := e.owner
	v.mu.Lock()
	defer v.mu.Unlock()

	for i, cur := range v.entries {
		if cur == e {
			v.entries = append(v.entries[:i], v.entries[i+1:]...)
			return
		}
	}
}

// AdvanceBy moves virtual time forward by d, running every callback that
// falls due on the way, including those due exactly at the end.
func (v *VirtualScheduler) AdvanceBy(d time.Duration) {
	v.AdvanceTo(v.Now().Add(d))
}

// AdvanceTo moves virtual time forward to t. Moving backwards is a no-op.
func (v *VirtualScheduler) AdvanceTo(t time.Time) {
	for {
		v.mu.Lock()
		if t.Before(v.now) {
			v.mu.Unlock()
			return
		}

		next := v.earliestLocked()
		if next == nil || next.due.After(t) {
			v.now = t
			v.mu.Unlock()
			return
		}

		v.now = next.due
		next.due = next.due.Add(next.period)
		fn := next.fn
		v.mu.Unlock()

		fn()
	}
}

// Pending returns the number of live subscriptions.
func (v *VirtualScheduler) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.entries)
}

func (v *VirtualScheduler) earliestLocked() *virtualEntry {
	var best *virtualEntry
	for _, e := range v.entries {
		if best == nil || e.due.Before(best.due) || (e.due.Equal(best.due) && e.id < best.id) {
			best = e
		}
	}
	return best
}
