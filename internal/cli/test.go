package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/formweave/formweave/internal/harness"
)

// ScenarioResult summarizes one scenario run for output.
type ScenarioResult struct {
	Scenario string   `json:"scenario"`
	Pass     bool     `json:"pass"`
	Valid    bool     `json:"valid"`
	Failures []string `json:"failures,omitempty"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "test <scenario.yaml>...",
		Short: "Run form scenario files",
		Long: `Execute scenario YAML files: open the named form configuration, apply
the scripted updates, and check the expectations. Exit code 1 when any
scenario fails.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(rootOpts, args, cmd)
		},
	}
}

func runTest(rootOpts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	var results []ScenarioResult
	failed := 0
	for _, path := range paths {
		scenario, err := harness.LoadScenario(path)
		if err != nil {
			_ = formatter.Error("E001", err.Error(), nil)
			return NewExitError(ExitCommandError, err.Error())
		}

		result, err := harness.Run(scenario)
		if err != nil {
			_ = formatter.Error("E009", fmt.Sprintf("%s: %v", scenario.Name, err), nil)
			return NewExitError(ExitCommandError, err.Error())
		}

		results = append(results, ScenarioResult{
			Scenario: scenario.Name,
			Pass:     result.Pass,
			Valid:    result.Valid,
			Failures: result.Failures,
		})
		if !result.Pass {
			failed++
		}
	}

	if formatter.Format == "json" {
		if err := formatter.JSON(results); err != nil {
			return err
		}
	} else {
		for _, result := range results {
			if result.Pass {
				fmt.Fprintf(formatter.Writer, "✓ %s\n", result.Scenario)
				continue
			}
			fmt.Fprintf(formatter.Writer, "✗ %s\n", result.Scenario)
			for _, failure := range result.Failures {
				fmt.Fprintf(formatter.Writer, "  %s\n", failure)
			}
		}
		fmt.Fprintf(formatter.Writer, "\n%d scenario(s), %d failed\n", len(results), failed)
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", failed))
	}
	return nil
}
