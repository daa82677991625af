package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/routines/internal/harness"
)

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// ScenarioReport holds the overall result.
type ScenarioReport struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

func (r ScenarioReport) WriteText(w io.Writer) {
	for _, s := range r.Scenarios {
		if s.Pass {
			fmt.Fprintf(w, "✓ %s\n", s.Name)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", s.Name)
		for _, e := range s.Errors {
			fmt.Fprintf(w, "    %s\n", e)
		}
	}
	fmt.Fprintf(w, "\n%d passed, %d failed, %d total\n", r.Passed, r.Failed, r.Total)
}

// NewScenarioCommand creates the scenario command.
func NewScenarioCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scenario <file.yaml>...",
		Short: "Run scripted store scenarios",
		Long: `Run scenario files against a fresh temporary storage directory each.
The --storage directory is not touched.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (unreadable or invalid scenario file)

Example:
  routinectl scenario internal/harness/testdata/scenarios/*.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(rootOpts, args, cmd)
		},
	}
}

func runScenarios(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	scenarios := make([]*harness.Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := harness.LoadScenario(path)
		if err != nil {
			return WrapExitError(ExitCommandError, ErrCodeInput, "failed to load "+path, err)
		}
		scenarios = append(scenarios, s)
	}

	report := ScenarioReport{
		Scenarios: make([]ScenarioResult, 0, len(scenarios)),
		Total:     len(scenarios),
	}
	for _, s := range scenarios {
		res, err := runScenario(opts, s)
		if err != nil {
			return err
		}
		report.Scenarios = append(report.Scenarios, res)
		if res.Pass {
			report.Passed++
		} else {
			report.Failed++
		}
	}

	if err := opts.formatter(cmd).Success(report); err != nil {
		return err
	}
	if report.Failed > 0 {
		return NewExitError(ExitFailure, ErrCodeScenario, fmt.Sprintf("%d of %d scenarios failed", report.Failed, report.Total))
	}
	return nil
}

func runScenario(opts *RootOptions, s *harness.Scenario) (ScenarioResult, error) {
	dir, err := os.MkdirTemp("", "routinectl-scenario-")
	if err != nil {
		return ScenarioResult{}, WrapExitError(ExitCommandError, ErrCodeStorage, "failed to create scenario directory", err)
	}
	defer os.RemoveAll(dir)

	result, err := harness.Run(s, dir, harness.WithLogger(opts.Logger))
	if err != nil {
		return ScenarioResult{}, WrapExitError(ExitCommandError, ErrCodeStorage, "failed to run "+s.Name, err)
	}
	return ScenarioResult{Name: s.Name, Pass: result.Pass, Errors: result.Errors}, nil
}
