package harness

import (
	"fmt"
	"time"

	"github.com/roach88/pomodoro/internal/pomodoro"
)

// ExpectationError reports one attribute that did not match.
type ExpectationError struct {
	Field    string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *ExpectationError) Error() string {
	return fmt.Sprintf("expected %s %s, got %s", e.Field, e.Expected, e.Actual)
}

// checkExpectation compares the fields set in want against snap.
// Returns one error per mismatching field.
func checkExpectation(snap pomodoro.Snapshot, want *Expectation) []error {
	var errs []error

	if want.State != "" && want.State != snap.State.String() {
		errs = append(errs, &ExpectationError{
			Field:    "state",
			Expected: want.State,
			Actual:   snap.State.String(),
		})
	}

	if want.Clock != "" {
		d, err := time.ParseDuration(want.Clock)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("clock: %w", err))
		case d != snap.Clock:
			errs = append(errs, &ExpectationError{
				Field:    "clock",
				Expected: d.String(),
				Actual:   snap.Clock.String(),
			})
		}
	}

	if want.Breaks != nil && *want.Breaks != snap.Breaks {
		errs = append(errs, &ExpectationError{
			Field:    "breaks",
			Expected: fmt.Sprint(*want.Breaks),
			Actual:   fmt.Sprint(snap.Breaks),
		})
	}

	return errs
}
