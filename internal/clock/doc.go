// Package clock provides the time sources that drive countdowns.
//
// A Scheduler delivers periodic callbacks. Two implementations exist:
//
//   - RealScheduler fires on wall-clock time, one goroutine per subscription.
//   - VirtualScheduler only moves when the caller advances it, and runs due
//     callbacks synchronously in the caller's goroutine. Tests use it to step
//     through hours of timer activity without sleeping.
//
// Callbacks may cancel their own subscription or register new ones while
// they run. Serialized wraps a scheduler so every callback runs while holding
// a caller-supplied lock, which lets a consumer treat tick delivery exactly
// like a method call made under its own mutex.
package clock
