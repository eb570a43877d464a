package pomodoro

import (
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/pomodoro/internal/clock"
	"github.com/roach88/pomodoro/internal/countdown"
)

// Sink receives the name of every state the machine enters.
//
// Info is called with the machine's lock held: it must not call back into
// the Machine. A panicking sink is recovered and logged; it never affects
// the transition that triggered it.
type Sink interface {
	Info(msg string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(msg string)

// Info calls f(msg).
func (f SinkFunc) Info(msg string) { f(msg) }

type discardSink struct{}

func (discardSink) Info(string) {}

// Option configures a Machine.
type Option func(*Machine)

// WithScheduler sets the time source. Default: clock.RealScheduler.
func WithScheduler(s clock.Scheduler) Option {
	return func(m *Machine) {
		m.base = s
	}
}

// WithSink sets the state-change sink. Default: discard.
func WithSink(s Sink) Option {
	return func(m *Machine) {
		m.sink = s
	}
}

// WithLogger sets the logger used for the machine's own diagnostics.
// Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = l
	}
}

// Machine is the interval state machine.
type Machine struct {
	mu     sync.Mutex
	cfg    Config
	base   clock.Scheduler
	sched  clock.Scheduler
	sink   Sink
	logger *slog.Logger

	state  State
	clock  time.Duration
	breaks int
	timer  countdown.Slot
}

// Snapshot is a consistent view of a Machine's observable attributes.
type Snapshot struct {
	State    State         `json:"state"`
	Clock    time.Duration `json:"clock"`
	Breaks   int           `json:"breaks"`
	Duration time.Duration `json:"duration"`
}

// New creates a stopped machine. It fails with a *ConfigError if any
// duration is not positive.
func New(cfg Config, opts ...Option) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Machine{
		cfg:    cfg.withDefaults(),
		base:   clock.RealScheduler{},
		sink:   discardSink{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.base == nil {
		m.base = clock.RealScheduler{}
	}
	if m.sink == nil {
		m.sink = discardSink{}
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	m.sched = clock.Serialized(m.base, &m.mu)

	m.mu.Lock()
	m.resetLocked()
	m.mu.Unlock()

	return m, nil
}

// Duration returns the work interval length.
func (m *Machine) Duration() time.Duration { return m.cfg.Work }

// ShortBreakDuration returns the short break length.
func (m *Machine) ShortBreakDuration() time.Duration { return m.cfg.ShortBreak }

// LongBreakDuration returns the long break length.
func (m *Machine) LongBreakDuration() time.Duration { return m.cfg.LongBreak }

// Config returns the machine's durations.
func (m *Machine) Config() Config { return m.cfg }

// Clock returns the time left in the current countdown.
func (m *Machine) Clock() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clock
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Breaks returns the number of breaks taken since the last Start or Stop.
func (m *Machine) Breaks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.breaks
}

// Snapshot returns state, clock and breaks read under one lock.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		State:    m.state,
		Clock:    m.clock,
		Breaks:   m.breaks,
		Duration: m.cfg.Work,
	}
}

// Ticking reports whether a countdown is live.
func (m *Machine) Ticking() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timer.Active()
}

// Start resets the machine and begins a work interval. Valid from any state.
func (m *Machine) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.timer.Release()
	m.clock = m.cfg.Work
	m.breaks = 0
	m.startNormalLocked()
}

// ShortBreak interrupts the active interval with a short break.
func (m *Machine) ShortBreak() {
	m.breakFor(m.cfg.ShortBreak)
}

// LongBreak interrupts the active interval with a long break.
func (m *Machine) LongBreak() {
	m.breakFor(m.cfg.LongBreak)
}

// Pause freezes the clock of a running interval or break.
func (m *Machine) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.IsActive() {
		return
	}

	m.timer.Release()
	if m.state == Running {
		m.changeStateLocked(NormalPaused)
		return
	}
	m.changeStateLocked(BreakPaused)
}

// Resume continues a paused interval or break from the frozen clock.
func (m *Machine) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.IsPaused() {
		return
	}

	if m.state == NormalPaused {
		m.changeStateLocked(Running)
		m.resumeTimerLocked(Finished)
		return
	}
	m.changeStateLocked(Break)
	m.resumeTimerLocked(Running)
}

// Stop cancels any countdown and resets the machine. Valid from any state.
func (m *Machine) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
}

// Close releases the live countdown without changing state, clock or
// breaks. It always returns nil.
func (m *Machine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timer.Release()
	return nil
}

func (m *Machine) breakFor(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.IsActive() {
		return
	}

	m.breaks++
	m.timer.Release()
	m.changeStateLocked(Break)
	m.startTimerLocked(Running, d)
}

func (m *Machine) startNormalLocked() {
	m.changeStateLocked(Running)
	m.startTimerLocked(Finished, m.cfg.Work)
}

func (m *Machine) startTimerLocked(next State, d time.Duration) {
	m.installLocked(next, d, false)
}

func (m *Machine) resumeTimerLocked(next State) {
	m.installLocked(next, m.clock, true)
}

// installLocked replaces the live countdown with one of length d that moves
// the machine to next when it runs out.
func (m *Machine) installLocked(next State, d time.Duration, seeded bool) {
	m.timer.Release()

	cd, err := countdown.New(m.cfg.Tick, d, seeded)
	if err != nil {
		m.logger.Error("countdown not started", "state", m.state.String(), "error", err)
		return
	}

	var p *countdown.Producer
	p = countdown.Produce(m.sched, cd, countdown.Observer{
		OnNext: func(remaining time.Duration) {
			m.clock = remaining
		},
		OnDone: func() {
			m.completeLocked(p, next)
		},
	})
	m.timer.Replace(p)
}

// completeLocked runs on the scheduler, with m.mu held by clock.Serialized.
func (m *Machine) completeLocked(p *countdown.Producer, next State) {
	if !m.timer.Holds(p) {
		return
	}

	m.timer.Release()
	m.changeStateLocked(next)

	// A finished break hands over to a fresh work interval.
	if next == Running {
		m.startTimerLocked(Finished, m.cfg.Work)
	}
}

func (m *Machine) resetLocked() {
	m.timer.Release()
	m.clock = m.cfg.Work
	m.breaks = 0
	m.changeStateLocked(Stopped)
}

func (m *Machine) changeStateLocked(s State) {
	m.state = s
	m.notify(s.String())
}

func (m *Machine) notify(msg string) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn("state sink failed", "state", msg, "panic", r)
		}
	}()
	m.sink.Info(msg)
}
