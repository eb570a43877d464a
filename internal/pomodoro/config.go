package pomodoro

import (
	"fmt"
	"time"
)

// Default interval lengths.
const (
	DefaultWork       = 25 * time.Minute
	DefaultShortBreak = 5 * time.Minute
	DefaultLongBreak  = 10 * time.Minute
	DefaultTick       = time.Second
)

// Config holds the fixed durations of a Machine.
type Config struct {
	Work       time.Duration `json:"work"`
	ShortBreak time.Duration `json:"short_break"`
	LongBreak  time.Duration `json:"long_break"`

	// Tick is the countdown granularity. Zero means DefaultTick.
	Tick time.Duration `json:"tick,omitempty"`
}

// DefaultConfig returns 25/5/10 minute intervals at one-second ticks.
func DefaultConfig() Config {
	return Config{
		Work:       DefaultWork,
		ShortBreak: DefaultShortBreak,
		LongBreak:  DefaultLongBreak,
		Tick:       DefaultTick,
	}
}

// Validate rejects non-positive durations.
func (c Config) Validate() error {
	checks := []struct {
		field string
		value time.Duration
	}{
		{"work", c.Work},
		{"short_break", c.ShortBreak},
		{"long_break", c.LongBreak},
	}
	for _, chk := range checks {
		if chk.value <= 0 {
			return NewConfigError(chk.field, fmt.Sprintf("must be positive, got %s", chk.value))
		}
	}
	if c.Tick < 0 {
		return NewConfigError("tick", fmt.Sprintf("must not be negative, got %s", c.Tick))
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Tick == 0 {
		c.Tick = DefaultTick
	}
	return c
}
