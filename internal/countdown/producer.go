package countdown

import (
	"time"

	"github.com/roach88/pomodoro/internal/clock"
)

// Observer receives the values of a Producer.
type Observer struct {
	// OnNext receives each remaining value.
	OnNext func(remaining time.Duration)

	// OnDone is called once, after the final value.
	OnDone func()
}

// Producer drives a Countdown from a scheduler.
//
// Callbacks run on the scheduler's execution context, except the fresh-mode
// start value which is delivered synchronously from Produce. Producer does
// no locking of its own: the scheduler it is given must serialise deliveries
// with whatever guards the Observer (see clock.Serialized), and Release must
// be called under that same guard.
type Producer struct {
	cd       *Countdown
	obs      Observer
	sub      clock.Subscription
	released bool
	finished bool
}

// Produce starts cd on sched.
func Produce(sched clock.Scheduler, cd *Countdown, obs Observer) *Producer {
	p := &Producer{cd: cd, obs: obs}

	if v, ok := cd.Begin(); ok && obs.OnNext != nil {
		obs.OnNext(v)
	}

	p.sub = sched.Every(cd.Tick(), p.fire)
	return p
}

// Countdown returns the driven sequence.
func (p *Producer) Countdown() *Countdown { return p.cd }

// Finished reports whether the sequence completed naturally.
func (p *Producer) Finished() bool { return p.finished }

// Released reports whether Release has been called.
func (p *Producer) Released() bool { return p.released }

// Release cancels the subscription. No callback runs after Release returns.
// Calling it more than once is harmless.
func (p *Producer) Release() {
	if p.released {
		return
	}
	p.released = true
	if p.sub != nil {
		p.sub.Cancel()
	}
}

func (p *Producer) fire() {
	if p.released || p.finished {
		return
	}

	v, emit, done := p.cd.Advance()
	if emit && p.obs.OnNext != nil {
		p.obs.OnNext(v)
	}
	if !done {
		return
	}

	p.finished = true
	p.sub.Cancel()
	// OnNext may have released us.
	if p.released {
		return
	}
	if p.obs.OnDone != nil {
		p.obs.OnDone()
	}
}
