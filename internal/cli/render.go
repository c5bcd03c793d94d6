package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/formweave/formweave/internal/behavior"
	"github.com/formweave/formweave/internal/compiler"
	"github.com/formweave/formweave/internal/form"
	"github.com/formweave/formweave/internal/formstate"
)

// FieldView is the resolved runtime presentation of one field.
type FieldView struct {
	Path     string `json:"path"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Visible  bool   `json:"visible"`
	Editable bool   `json:"editable"`
	Required bool   `json:"required"`
	Value    any    `json:"value,omitempty"`
	Computed bool   `json:"computed,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RenderResult is the full session view: resolved fields plus state meta.
type RenderResult struct {
	Form   string         `json:"form"`
	Mode   form.Mode      `json:"mode"`
	Fields []FieldView    `json:"fields"`
	Meta   formstate.Meta `json:"meta"`
	Valid  bool           `json:"valid"`
}

type renderOptions struct {
	mode       string
	docPath    string
	documentID string
	valuesPath string
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render <config>",
		Short: "Resolve a form session and print every field's behavior",
		Long: `Open a form configuration in a mode, optionally hydrate it from a JSON
document and apply a JSON values file, then print each field's resolved
visibility, editability, requiredness, and value.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(rootOpts, opts, args[0], cmd)
		},
	}
	cmd.Flags().StringVar(&opts.mode, "mode", "create", "form mode (create|edit|view|clone|search)")
	cmd.Flags().StringVar(&opts.docPath, "doc", "", "JSON document to hydrate from (edit/view/clone)")
	cmd.Flags().StringVar(&opts.documentID, "id", "", "document id for edit/view sessions")
	cmd.Flags().StringVar(&opts.valuesPath, "values", "", "JSON file of flat path->value updates to apply")
	return cmd
}

func runRender(rootOpts *RootOptions, opts *renderOptions, configPath string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, state, manager, err := openSession(configPath, opts.mode, opts.docPath, opts.documentID)
	if err != nil {
		_ = formatter.Error("E002", err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	if opts.valuesPath != "" {
		updates, err := readFlatValues(opts.valuesPath)
		if err != nil {
			_ = formatter.Error("E001", err.Error(), nil)
			return NewExitError(ExitCommandError, err.Error())
		}
		for path, value := range updates {
			state, err = manager.Update(state, cfg, path, value)
			if err != nil {
				_ = formatter.Error("E003", err.Error(), nil)
				return NewExitError(ExitCommandError, err.Error())
			}
		}
	}

	valid := manager.Validate(state, cfg)
	result := buildRenderResult(cfg, state, valid)

	if formatter.Format == "json" {
		return formatter.JSON(result)
	}
	return renderText(formatter, result)
}

func buildRenderResult(cfg *form.FormConfiguration, state *formstate.FormState, valid bool) *RenderResult {
	result := &RenderResult{
		Form:  cfg.Name,
		Mode:  state.Meta.Mode,
		Meta:  state.Meta,
		Valid: valid,
	}
	for _, field := range cfg.IncludedFields() {
		view := FieldView{
			Path:     field.Path,
			Label:    field.DisplayLabel(),
			Type:     string(field.Type),
			Visible:  behavior.IsFieldVisible(field, state.Meta.Mode) && behavior.ShownByLogic(field.ConditionalLogic, state.Values),
			Editable: formstate.Editable(state, cfg, field.Path),
			Required: behavior.IsFieldRequired(field, state.Meta.Mode),
			Computed: field.Computed != nil,
			Error:    state.Errors[field.Path],
		}
		if field.Computed != nil {
			view.Value = state.Derived[field.Path]
		} else {
			view.Value = state.Values[field.Path]
		}
		result.Fields = append(result.Fields, view)
	}
	return result
}

func renderText(formatter *OutputFormatter, result *RenderResult) error {
	fmt.Fprintf(formatter.Writer, "%s (%s mode)\n\n", result.Form, result.Mode)

	w := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tTYPE\tVISIBLE\tEDITABLE\tREQUIRED\tVALUE")
	for _, f := range result.Fields {
		value := f.Value
		if value == nil {
			value = ""
		}
		fmt.Fprintf(w, "%s\t%s\t%v\t%v\t%v\t%v\n",
			f.Path, f.Type, f.Visible, f.Editable, f.Required, value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if !result.Valid {
		fmt.Fprintln(formatter.Writer, "\nvalidation errors:")
		for _, f := range result.Fields {
			if f.Error != "" {
				fmt.Fprintf(formatter.Writer, "  %s: %s\n", f.Path, f.Error)
			}
		}
	}
	return nil
}

// openSession loads a config and opens a form state in the given mode.
func openSession(configPath, modeStr, docPath, documentID string) (*form.FormConfiguration, *formstate.FormState, *formstate.Manager, error) {
	cfg, err := compiler.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	mode, err := form.ParseMode(modeStr)
	if err != nil {
		return nil, nil, nil, err
	}

	var existing map[string]any
	if docPath != "" {
		data, err := os.ReadFile(docPath)
		if err != nil {
			return nil, nil, nil, err
		}
		existing = make(map[string]any)
		if err := json.Unmarshal(data, &existing); err != nil {
			return nil, nil, nil, fmt.Errorf("parse document %s: %w", docPath, err)
		}
	}

	manager := formstate.NewManager()
	state, err := manager.New(cfg, mode, existing, documentID)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, state, manager, nil
}

// readFlatValues parses a JSON object of flat dotted-path updates.
func readFlatValues(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	values := make(map[string]any)
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse values %s: %w", path, err)
	}
	return values, nil
}
