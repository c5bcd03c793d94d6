package formstate

import (
	"fmt"
	"reflect"

	"github.com/formweave/formweave/internal/behavior"
	"github.com/formweave/formweave/internal/form"
	"github.com/formweave/formweave/internal/formula"
	"github.com/formweave/formweave/internal/lifecycle"
	"github.com/formweave/formweave/internal/pathmap"
	"github.com/formweave/formweave/internal/validation"
)

// Manager builds and evolves form states for a configuration. It owns the
// formula evaluator, so compiled formula programs are shared across every
// session the manager serves.
type Manager struct {
	eval  *formula.Evaluator
	rules *validation.Engine
}

// NewManager creates a manager with a fresh formula program cache.
func NewManager() *Manager {
	eval := formula.NewEvaluator()
	return &Manager{
		eval:  eval,
		rules: validation.NewEngine(eval),
	}
}

// New builds the initial state for a form session.
//
// Create starts from field defaultValues overlaid with lifecycle
// create.defaults; a lifecycle default never overwrites a field-level one.
// Edit and view hydrate from the existing document with no defaults at
// all: an absent value in a loaded document is information, not a gap to
// fill. Clone hydrates like edit, then clears clone.clearFields and
// re-applies only those fields' defaults. Search starts empty; its values
// are filter criteria, not document content.
func (m *Manager) New(cfg *form.FormConfiguration, mode form.Mode, existing map[string]any, documentID string) (*FormState, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown form mode %q", mode)
	}
	if (mode == form.ModeEdit || mode == form.ModeView || mode == form.ModeClone) && existing == nil {
		return nil, fmt.Errorf("%s mode requires an existing document", mode)
	}

	var values map[string]any
	var err error

	switch mode {
	case form.ModeCreate:
		values = createValues(cfg)
	case form.ModeEdit, form.ModeView:
		values, err = pathmap.Flatten(existing)
		if err != nil {
			return nil, err
		}
	case form.ModeClone:
		values, err = pathmap.Flatten(existing)
		if err != nil {
			return nil, err
		}
		applyCloneClears(cfg, values)
	case form.ModeSearch:
		values = make(map[string]any)
	}

	state := &FormState{
		Values:  values,
		Derived: make(map[string]any),
		Errors:  make(map[string]string),
		Touched: make(map[string]bool),
		Meta: Meta{
			Mode:  mode,
			IsNew: mode.IsNew(),
		},
		initial: cloneFlat(values),
	}
	if mode == form.ModeEdit || mode == form.ModeView {
		state.Meta.DocumentID = documentID
	}

	if err := m.computeDerived(state, cfg.FieldConfigs); err != nil {
		return nil, err
	}
	return state, nil
}

// Update returns a new state with one value changed and every computed
// field recomputed. The input state is not modified. Setting a path to the
// value it already holds is a no-op apart from marking the field touched.
func (m *Manager) Update(state *FormState, cfg *form.FormConfiguration, path string, value any) (*FormState, error) {
	if err := pathmap.Validate(path); err != nil {
		return nil, err
	}

	next := &FormState{
		Values:  cloneFlat(state.Values),
		Derived: make(map[string]any),
		Errors:  cloneErrors(state.Errors),
		Touched: cloneTouched(state.Touched),
		Meta:    state.Meta,
		initial: state.initial,
	}
	next.Values[path] = value
	next.Touched[path] = true

	if err := m.computeDerived(next, cfg.FieldConfigs); err != nil {
		return nil, err
	}
	next.Meta.IsDirty = dirty(next.Values, next.initial)
	return next, nil
}

// Validate recomputes the state's error map in place and reports whether
// the form is submittable. The map is rebuilt from the validation rules
// alone, so a computation notice recorded during New or Update lasts only
// until the next validation pass: an uncomputable field (one whose inputs
// are still blank, say) stays absent from Derived and is omitted from the
// prepared document, but it does not block submission.
func (m *Manager) Validate(state *FormState, cfg *form.FormConfiguration) bool {
	state.Errors = m.rules.Validate(cfg.FieldConfigs, state.Meta.Mode, state.Values, state.Derived)
	return len(state.Errors) == 0
}

// SubmitConfig resolves the submit config for the state's mode.
func (m *Manager) SubmitConfig(state *FormState, cfg *form.FormConfiguration) *form.SubmitConfig {
	return lifecycle.SubmitConfigFor(cfg.Lifecycle, state.Meta.Mode)
}

// DeleteConfig resolves the delete config for the state's mode.
func (m *Manager) DeleteConfig(state *FormState, cfg *form.FormConfiguration) *form.DeleteConfig {
	return lifecycle.DeleteConfigFor(cfg.Lifecycle, state.Meta.Mode)
}

// computeDerived evaluates every computed field in dependency order into
// state.Derived. Earlier outputs are visible to later formulas. A formula
// that fails at runtime leaves its path absent from Derived and records a
// field error; only a dependency cycle aborts.
func (m *Manager) computeDerived(state *FormState, fields []form.FieldConfig) error {
	ordered, err := formula.Order(fields)
	if err != nil {
		return err
	}

	for _, field := range ordered {
		bindings := make(map[string]any, len(state.Values)+len(state.Derived))
		for k, v := range state.Values {
			bindings[k] = v
		}
		for k, v := range state.Derived {
			bindings[k] = v
		}

		out, err := m.eval.Evaluate(field.Computed.Formula, bindings)
		if err != nil {
			state.Errors[field.Path] = fmt.Sprintf("%s could not be computed", field.DisplayLabel())
			continue
		}
		delete(state.Errors, field.Path)
		state.Derived[field.Path] = out
	}
	return nil
}

// createValues builds the create-mode starting values: field-level
// defaultValues first, then lifecycle create.defaults for paths still
// unset.
func createValues(cfg *form.FormConfiguration) map[string]any {
	values := make(map[string]any)
	for _, field := range cfg.FieldConfigs {
		if !field.Included || field.DefaultValue == nil {
			continue
		}
		values[field.Path] = field.DefaultValue
	}
	for path, value := range lifecycle.Defaults(cfg.Lifecycle) {
		if _, ok := values[path]; !ok {
			values[path] = value
		}
	}
	return values
}

// applyCloneClears removes clone.clearFields paths from the hydrated
// values and re-applies the cleared fields' own defaults.
func applyCloneClears(cfg *form.FormConfiguration, values map[string]any) {
	for _, path := range lifecycle.ClearFields(cfg.Lifecycle) {
		delete(values, path)
		if field, ok := cfg.Field(path); ok && field.DefaultValue != nil {
			values[path] = field.DefaultValue
		}
	}
}

// dirty compares values to the initial snapshot key by key. Added and
// removed keys both count as changes.
func dirty(values, initial map[string]any) bool {
	if len(values) != len(initial) {
		return true
	}
	for k, v := range values {
		base, ok := initial[k]
		if !ok || !reflect.DeepEqual(v, base) {
			return true
		}
	}
	return false
}

// Editable reports whether a path accepts input in the state's mode,
// combining the behavior resolver with the lifecycle policy.
func Editable(state *FormState, cfg *form.FormConfiguration, path string) bool {
	field, ok := cfg.Field(path)
	if !ok || !field.Included {
		return false
	}
	return behavior.IsFieldEditable(field, state.Meta.Mode, cfg.Lifecycle)
}

func cloneErrors(errs map[string]string) map[string]string {
	cloned := make(map[string]string, len(errs))
	for k, v := range errs {
		cloned[k] = v
	}
	return cloned
}

func cloneTouched(touched map[string]bool) map[string]bool {
	cloned := make(map[string]bool, len(touched))
	for k, v := range touched {
		cloned[k] = v
	}
	return cloned
}
