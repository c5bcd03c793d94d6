// Package behavior resolves per-field visibility, editability, and
// requiredness from a field's static config, the current mode, and the
// optional lifecycle policy.
//
// The three resolvers are independent pure functions: a field can be
// visible, non-editable, and still required (a frozen computed total shown
// on a review page). Each defaults to the most permissive behavior when no
// override is configured.
package behavior

import "github.com/formweave/formweave/internal/form"

// IsFieldVisible reports whether a field renders at all in the given mode.
// True unless modeConfig.visibleIn is set and excludes the mode.
func IsFieldVisible(field form.FieldConfig, mode form.Mode) bool {
	if field.ModeConfig == nil || field.ModeConfig.VisibleIn == nil {
		return true
	}
	return containsMode(field.ModeConfig.VisibleIn, mode)
}

// IsFieldEditable reports whether a field accepts input in the given mode.
//
// View mode is absolutely non-editable; no configuration re-enables it.
// Computed fields are never independently editable. Otherwise the field is
// editable unless modeConfig.editableIn excludes the mode, or the mode is
// edit and the lifecycle lists the path as immutable.
func IsFieldEditable(field form.FieldConfig, mode form.Mode, lifecycle *form.Lifecycle) bool {
	if mode == form.ModeView {
		return false
	}
	if field.Computed != nil {
		return false
	}
	if spec, ok := form.Spec(field.Type); ok && !spec.Input {
		return false
	}
	if field.ModeConfig != nil && field.ModeConfig.EditableIn != nil {
		if !containsMode(field.ModeConfig.EditableIn, mode) {
			return false
		}
	}
	if mode == form.ModeEdit && lifecycle != nil && lifecycle.Edit != nil {
		for _, path := range lifecycle.Edit.ImmutableFields {
			if path == field.Path {
				return false
			}
		}
	}
	return true
}

// IsFieldRequired reports whether a field must carry a value in the given
// mode. When modeConfig.requiredIn is set it replaces the static required
// flag entirely; it does not OR with it.
func IsFieldRequired(field form.FieldConfig, mode form.Mode) bool {
	if field.ModeConfig != nil && field.ModeConfig.RequiredIn != nil {
		return containsMode(field.ModeConfig.RequiredIn, mode)
	}
	return field.Required
}

func containsMode(modes []form.Mode, mode form.Mode) bool {
	for _, m := range modes {
		if m == mode {
			return true
		}
	}
	return false
}
