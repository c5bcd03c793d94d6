package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/formweave/formweave/internal/compiler"
	"github.com/formweave/formweave/internal/docstore"
	"github.com/formweave/formweave/internal/form"
	"github.com/formweave/formweave/internal/formstate"
	"github.com/formweave/formweave/internal/lifecycle"
)

type submitOptions struct {
	mode       string
	docPath    string
	documentID string
	valuesPath string
	dbPath     string
}

// SubmitResult reports a persisted submission.
type SubmitResult struct {
	Collection string `json:"collection"`
	DocumentID string `json:"documentId"`
	Mode       string `json:"mode"`
	Success    string `json:"success,omitempty"`
}

// NewSubmitCommand creates the submit command.
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &submitOptions{}
	cmd := &cobra.Command{
		Use:   "submit <config>",
		Short: "Run a form session to completion and persist the document",
		Long: `Open a form, apply a JSON values file, validate, prepare the document
per the lifecycle submit config, and store it. Validation failures exit
with code 1 and print the per-field errors.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(rootOpts, opts, args[0], cmd)
		},
	}
	cmd.Flags().StringVar(&opts.mode, "mode", "create", "form mode (create|edit|clone)")
	cmd.Flags().StringVar(&opts.docPath, "doc", "", "JSON document to hydrate from (edit/clone)")
	cmd.Flags().StringVar(&opts.documentID, "id", "", "document id for edit sessions")
	cmd.Flags().StringVar(&opts.valuesPath, "values", "", "JSON file of flat path->value updates to apply")
	cmd.Flags().StringVar(&opts.dbPath, "db", "formweave.db", "path to the document database")
	return cmd
}

func runSubmit(rootOpts *RootOptions, opts *submitOptions, configPath string, cmd *cobra.Command) error {
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

	if !manager.Validate(state, cfg) {
		_ = formatter.Error("E004", "validation failed", state.Errors)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(state.Errors)))
	}

	submit := manager.SubmitConfig(state, cfg)
	if submit == nil {
		msg := fmt.Sprintf("mode %q has no submit config", state.Meta.Mode)
		_ = formatter.Error("E005", msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	doc, err := formstate.PrepareDocument(state, cfg, submit)
	if err != nil {
		_ = formatter.Error("E006", err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	store, err := docstore.Open(opts.dbPath, nil)
	if err != nil {
		_ = formatter.Error("E007", err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
	defer store.Close()

	id, err := store.Submit(cmd.Context(), submit, doc, state.Meta.DocumentID)
	if err != nil {
		_ = formatter.Error("E008", err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	result := SubmitResult{
		Collection: submit.Collection,
		DocumentID: id,
		Mode:       string(submit.Mode),
		Success:    submit.Success,
	}
	if formatter.Format == "json" {
		return formatter.JSON(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ %s %s/%s\n", result.Mode, result.Collection, result.DocumentID)
	if result.Success != "" {
		fmt.Fprintln(formatter.Writer, result.Success)
	}
	return nil
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string
	var yes bool
	cmd := &cobra.Command{
		Use:           "delete <config> <document-id>",
		Short:         "Delete a document per the form's edit-mode delete config",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(rootOpts, args[0], args[1], dbPath, yes, cmd)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "formweave.db", "path to the document database")
	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	return cmd
}

func runDelete(rootOpts *RootOptions, configPath, documentID, dbPath string, yes bool, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := compiler.Load(configPath)
	if err != nil {
		_ = formatter.Error("E002", err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	del := lifecycle.DeleteConfigFor(cfg.Lifecycle, form.ModeEdit)
	if del == nil || !del.Enabled {
		msg := "delete is not enabled for this form"
		_ = formatter.Error("E005", msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	submit := lifecycle.SubmitConfigFor(cfg.Lifecycle, form.ModeEdit)
	if submit == nil || submit.Collection == "" {
		msg := "edit lifecycle names no collection to delete from"
		_ = formatter.Error("E005", msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	if !yes && del.Confirm != "" {
		fmt.Fprintf(formatter.Writer, "%s [y/N]: ", del.Confirm)
		var answer string
		fmt.Fscanln(cmd.InOrStdin(), &answer)
		if answer != "y" && answer != "Y" && answer != "yes" {
			fmt.Fprintln(formatter.Writer, "aborted")
			return nil
		}
	}

	store, err := docstore.Open(dbPath, nil)
	if err != nil {
		_ = formatter.Error("E007", err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
	defer store.Close()

	if err := store.Delete(cmd.Context(), del, submit.Collection, documentID); err != nil {
		_ = formatter.Error("E008", err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	if formatter.Format == "json" {
		return formatter.JSON(map[string]string{
			"collection": submit.Collection,
			"documentId": documentID,
		})
	}
	fmt.Fprintf(formatter.Writer, "✓ deleted %s/%s\n", submit.Collection, documentID)
	return nil
}
