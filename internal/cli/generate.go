package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/formweave/formweave/internal/compiler"
	"github.com/formweave/formweave/internal/generator"
)

// NewGenerateCommand creates the generate command group.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	var model string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate form configuration fragments with a language model",
		Long: `Draft field configs and computed-field formulas from natural-language
descriptions. Requires OPENAI_API_KEY. Generated fragments are validated
against the target form before being printed; nothing is written back.`,
	}
	cmd.PersistentFlags().StringVar(&model, "model", "", "chat model to use")

	cmd.AddCommand(&cobra.Command{
		Use:           "field <config> <description>",
		Short:         "Generate one field config",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateField(rootOpts, model, args[0], args[1], cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "formula <config> <path> <description>",
		Short:         "Generate a computed-field formula",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateFormula(rootOpts, model, args[0], args[1], args[2], cmd)
		},
	})
	return cmd
}

func newGeneratorService(model string) (*generator.Service, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	return generator.New(apiKey, model, nil), nil
}

func runGenerateField(rootOpts *RootOptions, model, configPath, description string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := compiler.Load(configPath)
	if err != nil {
		_ = formatter.Error("E002", err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
	svc, err := newGeneratorService(model)
	if err != nil {
		_ = formatter.Error("E010", err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	field, err := svc.GenerateField(cmd.Context(), cfg, description)
	if err != nil {
		_ = formatter.Error("E011", err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	}

	if formatter.Format == "json" {
		return formatter.JSON(field)
	}
	out, err := json.MarshalIndent(field, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(formatter.Writer, string(out))
	return nil
}

func runGenerateFormula(rootOpts *RootOptions, model, configPath, path, description string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := compiler.Load(configPath)
	if err != nil {
		_ = formatter.Error("E002", err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
	svc, err := newGeneratorService(model)
	if err != nil {
		_ = formatter.Error("E010", err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	computed, err := svc.GenerateFormula(cmd.Context(), cfg, path, description)
	if err != nil {
		_ = formatter.Error("E011", err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	}

	if formatter.Format == "json" {
		return formatter.JSON(computed)
	}
	out, err := json.MarshalIndent(computed, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(formatter.Writer, string(out))
	return nil
}
