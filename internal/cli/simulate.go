package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pomodoro/internal/harness"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Trace bool // print the canonical trace of each scenario
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
	Final  *Status  `json:"final,omitempty"`
	Trace  string   `json:"trace,omitempty"`
}

// SimulateResult holds the overall simulation result.
type SimulateResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// String renders one line per scenario followed by a summary.
func (r SimulateResult) String() string {
	var b strings.Builder
	for _, s := range r.Scenarios {
		if s.Pass {
			fmt.Fprintf(&b, "✓ %s", s.Name)
		} else {
			fmt.Fprintf(&b, "✗ %s", s.Name)
		}
		if s.Final != nil {
			fmt.Fprintf(&b, " -> %s", s.Final.String())
		} else {
			b.WriteString("\n")
		}
		for _, e := range s.Errors {
			fmt.Fprintf(&b, "  %s\n", e)
		}
		if s.Trace != "" {
			fmt.Fprintf(&b, "  %s\n", s.Trace)
		}
	}
	fmt.Fprintf(&b, "\n%d passed, %d failed, %d total\n", r.Passed, r.Failed, r.Total)
	return b.String()
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml>...",
		Short: "Run scenarios on virtual time",
		Long: `Run timer scenarios against a virtual clock.

Each scenario file lists operations, time advances and expectations. A
25 minute interval completes instantly and every run is reproducible.

Exit codes:
  0 - All scenarios passed
  1 - One or more expectations failed
  2 - Command error (unreadable or invalid scenario file)

Examples:
  pomodoro simulate scenarios/short-break.yaml
  pomodoro simulate scenarios/*.yaml --format json
  pomodoro simulate scenarios/long-break.yaml --trace`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "include the canonical JSON trace")

	return cmd
}

func runSimulate(opts *SimulateOptions, paths []string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	scenarios := make([]*harness.Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := harness.LoadScenario(path)
		if err != nil {
			_ = out.Error(ErrCodeScenario, "failed to load scenario", err.Error())
			return WrapExitError(ExitCommandError, "failed to load scenario", err)
		}
		scenarios = append(scenarios, s)
	}

	result := SimulateResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarios)),
		Total:     len(scenarios),
	}

	for _, s := range scenarios {
		out.VerboseLog("running scenario %s (%d steps)", s.Name, len(s.Steps))

		sr, err := simulateScenario(s, opts.Trace)
		if err != nil {
			_ = out.Error(ErrCodeScenario, "failed to run scenario", err.Error())
			return WrapExitError(ExitCommandError, "failed to run scenario "+s.Name, err)
		}
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if err := out.Success(result); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total))
	}
	return nil
}

func simulateScenario(s *harness.Scenario, withTrace bool) (ScenarioResult, error) {
	res, err := harness.Run(s)
	if err != nil {
		return ScenarioResult{}, err
	}

	final := newStatus(res.Final)
	sr := ScenarioResult{
		Name:   s.Name,
		Pass:   res.Pass,
		Errors: res.Errors,
		Final:  &final,
	}

	if withTrace {
		data, err := harness.Canonical(s.Name, res)
		if err != nil {
			return ScenarioResult{}, fmt.Errorf("canonical trace: %w", err)
		}
		sr.Trace = string(data)
	}
	return sr, nil
}
