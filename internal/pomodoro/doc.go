// Package pomodoro implements the focus-interval state machine.
//
// A Machine runs one work interval at a time. The interval can be paused and
// resumed without losing progress, interrupted by a short or long break
// (which can itself be paused), stopped, or restarted. When a break runs out
// the machine goes back to Running with a fresh work interval; when a work
// interval runs out it rests in Finished.
//
// # Transitions
//
//	Start       any          -> Running      (clock = work, breaks = 0)
//	ShortBreak  Running|Break -> Break        (breaks++)
//	LongBreak   Running|Break -> Break        (breaks++)
//	Pause       Running      -> NormalPaused
//	Pause       Break        -> BreakPaused
//	Resume      NormalPaused -> Running      (continues from the frozen clock)
//	Resume      BreakPaused  -> Break        (continues from the frozen clock)
//	Stop        any          -> Stopped      (clock = work, breaks = 0)
//	work ends   Running      -> Finished
//	break ends  Break        -> Running      (fresh work interval)
//
// Any other call is a no-op that leaves every attribute untouched.
//
// # Time
//
// Countdowns are driven by a clock.Scheduler. Production code uses the
// wall-clock scheduler; tests inject clock.VirtualScheduler and advance it by
// hand. At most one countdown is live per machine: every transition releases
// the previous one before installing the next.
//
// # Concurrency
//
// Operations may be called from any goroutine. Tick deliveries are
// serialised with operations through the machine's mutex, so a countdown
// released by a transition never writes the clock again.
package pomodoro
