package pomodoro

import (
	"fmt"
	"time"
)

// State is the current mode of a Machine.
type State int

const (
	Running State = iota
	NormalPaused
	Break
	BreakPaused
	Stopped
	Finished
)

var stateNames = [...]string{
	Running:      "Running",
	NormalPaused: "NormalPaused",
	Break:        "Break",
	BreakPaused:  "BreakPaused",
	Stopped:      "Stopped",
	Finished:     "Finished",
}

// States lists every state in declaration order.
func States() []State {
	return []State{Running, NormalPaused, Break, BreakPaused, Stopped, Finished}
}

// String returns the state name as written to the sink.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// In reports whether s is one of states.
func (s State) In(states ...State) bool {
	for _, other := range states {
		if s == other {
			return true
		}
	}
	return false
}

// IsActive reports whether a countdown runs in s and a break or pause may
// be taken from it.
func (s State) IsActive() bool {
	return s.In(Running, Break)
}

// IsPaused reports whether s is one of the paused states.
func (s State) IsPaused() bool {
	return s.In(NormalPaused, BreakPaused)
}

// MarshalText encodes the state name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseState returns the state with the given name.
func ParseState(name string) (State, error) {
	for i, n := range stateNames {
		if n == name {
			return State(i), nil
		}
	}
	return 0, fmt.Errorf("unknown state %q", name)
}

// FormatClock renders d as mm:ss, clamping negatives to zero.
func FormatClock(d time.Duration) string {
	sec := int(d / time.Second)
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%02d:%02d", sec/60, sec%60)
}
