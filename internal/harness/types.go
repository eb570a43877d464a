package harness

import (
	"time"

	"github.com/roach88/pomodoro/internal/pomodoro"
)

// Trace event types.
const (
	EventOp      = "op"
	EventAdvance = "advance"
	EventState   = "state"
	EventExpect  = "expect"
)

// TraceEvent is one entry of a scenario trace. At is the virtual time
// elapsed since the run began.
type TraceEvent struct {
	Seq   int64         `json:"seq"`
	Type  string        `json:"type"`
	At    time.Duration `json:"at"`
	Op    string        `json:"op,omitempty"`
	State string        `json:"state,omitempty"`
	By    time.Duration `json:"by,omitempty"`
	Pass  bool          `json:"pass,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation matched.
	Pass bool `json:"pass"`

	// Trace contains operations, advances, state changes and expectation
	// outcomes in the order they happened.
	Trace []TraceEvent `json:"trace"`

	// Errors contains one message per failed expectation.
	Errors []string `json:"errors,omitempty"`

	// Final is the machine's state after the last step.
	Final pomodoro.Snapshot `json:"final"`

	seq int64
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// States returns the state names in the trace, in order.
func (r *Result) States() []string {
	var states []string
	for _, e := range r.Trace {
		if e.Type == EventState {
			states = append(states, e.State)
		}
	}
	return states
}

func (r *Result) add(e TraceEvent) {
	r.seq++
	e.Seq = r.seq
	r.Trace = append(r.Trace, e)
}
