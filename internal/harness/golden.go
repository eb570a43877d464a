package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/pomodoro/internal/pomodoro"
)

// Canonical converts a result to canonical JSON. Durations are rendered
// with time.Duration.String and the final clock as mm:ss.
func Canonical(name string, r *Result) ([]byte, error) {
	trace := make([]any, len(r.Trace))
	for i, e := range r.Trace {
		m := map[string]any{
			"seq":  e.Seq,
			"type": e.Type,
			"at":   e.At.String(),
		}
		switch e.Type {
		case EventOp:
			m["op"] = e.Op
		case EventState:
			m["state"] = e.State
		case EventAdvance:
			m["by"] = e.By.String()
		case EventExpect:
			m["pass"] = e.Pass
		}
		trace[i] = m
	}

	doc := map[string]any{
		"scenario": name,
		"pass":     r.Pass,
		"trace":    trace,
		"final": map[string]any{
			"state":  r.Final.State.String(),
			"clock":  pomodoro.FormatClock(r.Final.Clock),
			"breaks": r.Final.Breaks,
		},
	}
	if len(r.Errors) > 0 {
		doc["errors"] = r.Errors
	}
	return MarshalCanonical(doc)
}

// RunWithGolden executes a scenario and compares its canonical trace
// against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := Canonical(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
