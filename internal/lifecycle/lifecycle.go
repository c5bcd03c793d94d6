// Package lifecycle resolves mode-specific policy from a form's lifecycle
// configuration: defaults, immutable and cleared fields, and the
// submit/delete configs handed to the external persistence executor.
//
// Every lookup is strictly mode-gated: view and search have no submit
// semantics under any lifecycle, and delete exists only in edit.
package lifecycle

import "github.com/formweave/formweave/internal/form"

// SubmitConfigFor returns the submit config for a mode, or nil. Only
// create, edit, and clone can submit.
func SubmitConfigFor(lc *form.Lifecycle, mode form.Mode) *form.SubmitConfig {
	if lc == nil || !mode.CanSubmit() {
		return nil
	}
	switch mode {
	case form.ModeCreate:
		if lc.Create != nil {
			return lc.Create.OnSubmit
		}
	case form.ModeEdit:
		if lc.Edit != nil {
			return lc.Edit.OnSubmit
		}
	case form.ModeClone:
		if lc.Clone != nil {
			return lc.Clone.OnSubmit
		}
	}
	return nil
}

// DeleteConfigFor returns the delete config for a mode, or nil. Delete
// only exists in edit mode.
func DeleteConfigFor(lc *form.Lifecycle, mode form.Mode) *form.DeleteConfig {
	if lc == nil || mode != form.ModeEdit || lc.Edit == nil {
		return nil
	}
	return lc.Edit.OnDelete
}

// Defaults returns the create-mode static defaults map, or nil.
func Defaults(lc *form.Lifecycle) map[string]any {
	if lc == nil || lc.Create == nil {
		return nil
	}
	return lc.Create.Defaults
}

// ClearFields returns the clone-mode cleared paths, or nil.
func ClearFields(lc *form.Lifecycle) []string {
	if lc == nil || lc.Clone == nil {
		return nil
	}
	return lc.Clone.ClearFields
}

// ImmutableFields returns the edit-mode frozen paths, or nil.
func ImmutableFields(lc *form.Lifecycle) []string {
	if lc == nil || lc.Edit == nil {
		return nil
	}
	return lc.Edit.ImmutableFields
}

// Default synthesizes the conventional lifecycle every new form starts
// from: create inserts into the collection, edit updates it with delete
// enabled, and clone clears the document identity.
func Default(collection string) *form.Lifecycle {
	return &form.Lifecycle{
		Create: &form.CreatePolicy{
			OnSubmit: &form.SubmitConfig{
				Mode:       form.SubmitInsert,
				Collection: collection,
			},
		},
		Edit: &form.EditPolicy{
			OnSubmit: &form.SubmitConfig{
				Mode:       form.SubmitUpdate,
				Collection: collection,
			},
			OnDelete: &form.DeleteConfig{Enabled: true},
		},
		Clone: &form.ClonePolicy{
			ClearFields: []string{"_id"},
			OnSubmit: &form.SubmitConfig{
				Mode:       form.SubmitInsert,
				Collection: collection,
			},
		},
	}
}
