// Package countdown produces decreasing remaining-time values at a fixed
// tick granularity.
//
// Countdown is the pure sequence: it knows nothing about time sources and can
// be stepped by hand. Producer binds a Countdown to a clock.Scheduler and
// pushes each value to an Observer. Slot owns at most one live Producer at a
// time.
package countdown

import (
	"fmt"
	"time"
)

// Countdown is the value sequence start, start-tick, start-2·tick, ...
// truncated before the first negative value.
//
// In fresh mode the start value itself is emitted on Begin, the same way a
// newly entered interval shows its full length before any time has passed.
// In seeded mode the start value is only the accumulator's seed: it is not
// re-emitted, because the consumer already holds it (a resumed countdown
// continues from the frozen value without repeating it).
type Countdown struct {
	tick      time.Duration
	start     time.Duration
	remaining time.Duration
	seeded    bool
	done      bool
}

// New returns a countdown from start in steps of tick.
func New(tick, start time.Duration, seeded bool) (*Countdown, error) {
	if tick <= 0 {
		return nil, fmt.Errorf("countdown: tick must be positive, got %s", tick)
	}
	if start < 0 {
		return nil, fmt.Errorf("countdown: start must not be negative, got %s", start)
	}
	return &Countdown{
		tick:      tick,
		start:     start,
		remaining: start,
		seeded:    seeded,
	}, nil
}

// Tick returns the step size.
func (c *Countdown) Tick() time.Duration { return c.tick }

// Start returns the value the sequence was created with.
func (c *Countdown) Start() time.Duration { return c.start }

// Seeded reports whether the countdown was created in seeded mode.
func (c *Countdown) Seeded() bool { return c.seeded }

// Remaining returns the last value produced, or the start value if nothing
// has been consumed yet.
func (c *Countdown) Remaining() time.Duration { return c.remaining }

// Done reports whether the sequence has terminated.
func (c *Countdown) Done() bool { return c.done }

// Begin returns the value emitted at subscription time. Only fresh
// countdowns emit one.
func (c *Countdown) Begin() (time.Duration, bool) {
	if c.seeded {
		return 0, false
	}
	return c.start, true
}

// Advance consumes one tick.
//
// It returns the new value and emit=true when that value is still
// non-negative. done is true once no further value can follow: either the
// value just emitted is the last one (the next would be negative), or the
// tick would have taken the countdown below zero.
func (c *Countdown) Advance() (value time.Duration, emit bool, done bool) {
	if c.done {
		return 0, false, true
	}

	next := c.remaining - c.tick
	if next < 0 {
		c.done = true
		return 0, false, true
	}

	c.remaining = next
	if next < c.tick {
		c.done = true
	}
	return next, true, c.done
}

// Values drains the countdown without a time source, including the value
// emitted by Begin. Intended for inspection and tests.
func (c *Countdown) Values() []time.Duration {
	var out []time.Duration
	if v, ok := c.Begin(); ok {
		out = append(out, v)
	}
	for {
		v, emit, done := c.Advance()
		if emit {
			out = append(out, v)
		}
		if done {
			return out
		}
	}
}
