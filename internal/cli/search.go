package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/formweave/formweave/internal/compiler"
	"github.com/formweave/formweave/internal/docstore"
	"github.com/formweave/formweave/internal/form"
	"github.com/formweave/formweave/internal/lifecycle"
)

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string
	var filters []string
	cmd := &cobra.Command{
		Use:   "search <config>",
		Short: "Search the form's collection with filter conditions",
		Long: `Query the collection the form's lifecycle targets. Filters use the
form operator set: --filter "path:operator:value", e.g.

  --filter "status:equals:draft"
  --filter "quantity:greaterThan:4"
  --filter "notes:isEmpty"

Multiple filters combine with AND.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(rootOpts, args[0], dbPath, filters, cmd)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "formweave.db", "path to the document database")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "filter condition path:operator[:value] (repeatable)")
	return cmd
}

func runSearch(rootOpts *RootOptions, configPath, dbPath string, filters []string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := compiler.Load(configPath)
	if err != nil {
		_ = formatter.Error("E002", err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	collection := searchCollection(cfg)
	if collection == "" {
		msg := "form lifecycle names no collection to search"
		_ = formatter.Error("E005", msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	conditions, err := parseFilters(filters)
	if err != nil {
		_ = formatter.Error("E001", err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	store, err := docstore.Open(dbPath, nil)
	if err != nil {
		_ = formatter.Error("E007", err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
	defer store.Close()

	docs, err := store.Find(cmd.Context(), collection, conditions)
	if err != nil {
		_ = formatter.Error("E008", err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	if formatter.Format == "json" {
		return formatter.JSON(docs)
	}
	fmt.Fprintf(formatter.Writer, "%d document(s) in %s\n", len(docs), collection)
	for _, doc := range docs {
		body, err := json.Marshal(doc.Body)
		if err != nil {
			return err
		}
		fmt.Fprintf(formatter.Writer, "%s\t%s\n", doc.ID, body)
	}
	return nil
}

// searchCollection picks the collection the lifecycle submits to,
// preferring create over edit over clone.
func searchCollection(cfg *form.FormConfiguration) string {
	for _, mode := range []form.Mode{form.ModeCreate, form.ModeEdit, form.ModeClone} {
		if submit := lifecycle.SubmitConfigFor(cfg.Lifecycle, mode); submit != nil {
			return submit.Collection
		}
	}
	return ""
}

// parseFilters converts path:operator[:value] strings into conditions.
// The value keeps its JSON type when it parses as JSON, so numbers and
// booleans compare numerically.
func parseFilters(filters []string) ([]form.Condition, error) {
	var conditions []form.Condition
	for _, filter := range filters {
		parts := strings.SplitN(filter, ":", 3)
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid filter %q, want path:operator[:value]", filter)
		}
		cond := form.Condition{
			Field:    parts[0],
			Operator: form.Operator(parts[1]),
		}
		if !cond.Operator.Valid() {
			return nil, fmt.Errorf("unknown operator %q in filter %q", parts[1], filter)
		}
		if cond.Operator.NeedsValue() {
			if len(parts) < 3 {
				return nil, fmt.Errorf("operator %q requires a value in filter %q", parts[1], filter)
			}
			var value any
			if err := json.Unmarshal([]byte(parts[2]), &value); err == nil {
				cond.Value = value
			} else {
				cond.Value = parts[2]
			}
		}
		conditions = append(conditions, cond)
	}
	return conditions, nil
}
