package harness

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/pomodoro/internal/clock"
	"github.com/roach88/pomodoro/internal/pomodoro"
)

// Harness executes one scenario on its own virtual clock.
type Harness struct {
	sched   *clock.VirtualScheduler
	machine *pomodoro.Machine
	result  *Result
	logger  *slog.Logger
}

// Option configures a run.
type Option func(*Harness)

// WithLogger sets the logger handed to the machine. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Each run gets a fresh VirtualScheduler positioned at clock.Epoch and a
// fresh machine. A failed expectation does not stop the run; it is
// recorded in Result.Errors and the remaining steps still execute.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg, err := scenario.TimerConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to configure machine: %w", err)
	}

	h := &Harness{
		sched:  clock.NewVirtualScheduler(),
		result: NewResult(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	m, err := pomodoro.New(cfg,
		pomodoro.WithScheduler(h.sched),
		pomodoro.WithSink(pomodoro.SinkFunc(h.recordState)),
		pomodoro.WithLogger(h.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create machine: %w", err)
	}
	defer m.Close()
	h.machine = m

	for i, step := range scenario.Steps {
		if err := h.execute(i, step); err != nil {
			return nil, err
		}
	}

	h.result.Final = m.Snapshot()
	return h.result, nil
}

func (h *Harness) execute(index int, step Step) error {
	switch {
	case step.Do != "":
		op, ok := operations[step.Do]
		if !ok {
			return fmt.Errorf("steps[%d]: unknown operation %q", index, step.Do)
		}
		h.result.add(TraceEvent{Type: EventOp, At: h.sched.Elapsed(), Op: step.Do})
		op(h.machine)

	case step.Advance != "":
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return fmt.Errorf("steps[%d]: advance: %w", index, err)
		}
		h.result.add(TraceEvent{Type: EventAdvance, At: h.sched.Elapsed(), By: d})
		h.sched.AdvanceBy(d)

	case step.Expect != nil:
		errs := checkExpectation(h.machine.Snapshot(), step.Expect)
		h.result.add(TraceEvent{Type: EventExpect, At: h.sched.Elapsed(), Pass: len(errs) == 0})
		for _, e := range errs {
			h.result.AddError(fmt.Sprintf("steps[%d]: %s", index, e.Error()))
		}

	default:
		return fmt.Errorf("steps[%d]: empty step", index)
	}
	return nil
}

// recordState runs under the machine's lock, on the goroutine driving the
// virtual scheduler.
func (h *Harness) recordState(msg string) {
	h.result.add(TraceEvent{Type: EventState, At: h.sched.Elapsed(), State: msg})
}
