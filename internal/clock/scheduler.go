package clock

import (
	"sync"
	"time"
)

// Scheduler is a source of periodic callbacks.
type Scheduler interface {
	// Now returns the scheduler's current time.
	Now() time.Time

	// Every runs fn once per elapsed period until the returned
	// Subscription is cancelled. The first call happens one period
	// after registration.
	Every(period time.Duration, fn func()) Subscription
}

// Subscription is a handle to a registered periodic callback.
type Subscription interface {
	// Cancel stops future deliveries. Safe to call more than once and
	// from inside the callback itself.
	Cancel()
}

// RealScheduler fires callbacks on wall-clock time.
//
// Each subscription owns a goroutine and a time.Ticker. A delivery that has
// already left the ticker when Cancel is called may still run, so consumers
// that need a hard cut-off must also check their own state inside fn.
type RealScheduler struct{}

// Now returns time.Now().
func (RealScheduler) Now() time.Time {
	return time.Now()
}

// Every starts a ticker goroutine for fn.
func (RealScheduler) Every(period time.Duration, fn func()) Subscription {
	sub := &realSubscription{stop: make(chan struct{})}
	ticker := time.NewTicker(period)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-sub.stop:
				return
			case <-ticker.C:
				// Cancel may have raced with the tick.
				select {
				case <-sub.stop:
					return
				default:
				}
				fn()
			}
		}
	}()

	return sub
}

type realSubscription struct {
	once sync.Once
	stop chan struct{}
}

func (s *realSubscription) Cancel() {
	s.once.Do(func() { close(s.stop) })
}

// Serialized returns a Scheduler whose callbacks run while holding l.
//
// Callers that already hold l must not wait for a delivery from the
// returned scheduler.
func Serialized(s Scheduler, l sync.Locker) Scheduler {
	return &serialized{inner: s, locker: l}
}

type serialized struct {
	inner  Scheduler
	locker sync.Locker
}

func (s *serialized) Now() time.Time {
	return s.inner.Now()
}

func (s *serialized) Every(period time.Duration, fn func()) Subscription {
	return s.inner.Every(period, func() {
		s.locker.Lock()
		defer s.locker.Unlock()
		fn()
	})
}
