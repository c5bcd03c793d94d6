package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/formweave/formweave/internal/compiler"
)

// ValidationResult holds validation results for one config file.
type ValidationResult struct {
	Config string                     `json:"config"`
	Valid  bool                       `json:"valid"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config>...",
		Short: "Validate form configurations without running them",
		Long: `Compile form configuration files (.cue, .json, or .yaml) and run the
full static checks: path uniqueness, field types and attributes, formula
syntax and dependency declarations, conditional logic references, and
lifecycle policies.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	var results []ValidationResult
	failed := 0
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			_ = formatter.Error("E001", err.Error(), nil)
			return NewExitError(ExitCommandError, err.Error())
		}

		cfg, err := compiler.Compile(path, src)
		if err != nil {
			_ = formatter.Error("E002", fmt.Sprintf("%s: %v", path, err), nil)
			return NewExitError(ExitFailure, err.Error())
		}

		errs := compiler.Validate(cfg)
		formatter.VerboseLog("validated %s: %d field(s), %d error(s)", path, len(cfg.FieldConfigs), len(errs))
		results = append(results, ValidationResult{
			Config: path,
			Valid:  len(errs) == 0,
			Errors: errs,
		})
		if len(errs) > 0 {
			failed++
		}
	}

	if formatter.Format == "json" {
		if err := formatter.JSON(results); err != nil {
			return err
		}
	} else {
		for _, result := range results {
			if result.Valid {
				fmt.Fprintf(formatter.Writer, "✓ %s\n", result.Config)
				continue
			}
			fmt.Fprintf(formatter.Writer, "✗ %s\n", result.Config)
			for _, err := range result.Errors {
				fmt.Fprintf(formatter.Writer, "  %s\n", err.Error())
			}
		}
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d config(s) failed validation", failed))
	}
	return nil
}
