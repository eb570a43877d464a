package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pomodoro/internal/pomodoro"
)

// Scenario is a scripted sequence of timer operations.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Config overrides the default interval lengths.
	Config *ScenarioConfig `yaml:"config,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`
}

// ScenarioConfig holds Go duration strings ("25m", "90s"). Empty fields
// keep pomodoro.DefaultConfig values.
type ScenarioConfig struct {
	Work       string `yaml:"work,omitempty"`
	ShortBreak string `yaml:"short_break,omitempty"`
	LongBreak  string `yaml:"long_break,omitempty"`
	Tick       string `yaml:"tick,omitempty"`
}

// Step is exactly one of an operation, a time advance or an expectation.
type Step struct {
	// Do names an operation: start, short_break, long_break, pause,
	// resume, stop or close.
	Do string `yaml:"do,omitempty"`

	// Advance is a Go duration to move virtual time forward by.
	Advance string `yaml:"advance,omitempty"`

	// Expect checks the machine's attributes at this point.
	Expect *Expectation `yaml:"expect,omitempty"`
}

// Expectation is a subset match: only fields that are set are checked.
type Expectation struct {
	State  string `yaml:"state,omitempty"`
	Clock  string `yaml:"clock,omitempty"`
	Breaks *int   `yaml:"breaks,omitempty"`
}

// Operation names accepted by Step.Do.
const (
	OpStart      = "start"
	OpShortBreak = "short_break"
	OpLongBreak  = "long_break"
	OpPause      = "pause"
	OpResume     = "resume"
	OpStop       = "stop"
	OpClose      = "close"
)

var operations = map[string]func(*pomodoro.Machine){
	OpStart:      (*pomodoro.Machine).Start,
	OpShortBreak: (*pomodoro.Machine).ShortBreak,
	OpLongBreak:  (*pomodoro.Machine).LongBreak,
	OpPause:      (*pomodoro.Machine).Pause,
	OpResume:     (*pomodoro.Machine).Resume,
	OpStop:       (*pomodoro.Machine).Stop,
	OpClose:      func(m *pomodoro.Machine) { _ = m.Close() },
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or fails validation.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseScenario parses and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if _, err := s.TimerConfig(); err != nil {
		return err
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step Step) error {
	set := 0
	if step.Do != "" {
		set++
	}
	if step.Advance != "" {
		set++
	}
	if step.Expect != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of do, advance or expect is required", index)
	}

	switch {
	case step.Do != "":
		if _, ok := operations[step.Do]; !ok {
			return fmt.Errorf("steps[%d]: unknown operation %q", index, step.Do)
		}
	case step.Advance != "":
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return fmt.Errorf("steps[%d]: advance: %w", index, err)
		}
		if d < 0 {
			return fmt.Errorf("steps[%d]: advance must not be negative", index)
		}
	default:
		return validateExpectation(index, step.Expect)
	}
	return nil
}

func validateExpectation(index int, e *Expectation) error {
	if e.State == "" && e.Clock == "" && e.Breaks == nil {
		return fmt.Errorf("steps[%d].expect: at least one of state, clock or breaks is required", index)
	}
	if e.State != "" {
		if _, err := pomodoro.ParseState(e.State); err != nil {
			return fmt.Errorf("steps[%d].expect: %w", index, err)
		}
	}
	if e.Clock != "" {
		if _, err := time.ParseDuration(e.Clock); err != nil {
			return fmt.Errorf("steps[%d].expect: clock: %w", index, err)
		}
	}
	if e.Breaks != nil && *e.Breaks < 0 {
		return fmt.Errorf("steps[%d].expect: breaks must not be negative", index)
	}
	return nil
}

// TimerConfig returns the machine configuration for s.
func (s *Scenario) TimerConfig() (pomodoro.Config, error) {
	cfg := pomodoro.DefaultConfig()
	if s.Config == nil {
		return cfg, nil
	}

	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"work", s.Config.Work, &cfg.Work},
		{"short_break", s.Config.ShortBreak, &cfg.ShortBreak},
		{"long_break", s.Config.LongBreak, &cfg.LongBreak},
		{"tick", s.Config.Tick, &cfg.Tick},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return pomodoro.Config{}, fmt.Errorf("config.%s: %w", f.name, err)
		}
		*f.dst = d
	}

	if err := cfg.Validate(); err != nil {
		return pomodoro.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
