package form

import "fmt"

// Mode identifies which behavior branch a form session runs under.
// Every visibility, editability, requiredness, and lifecycle decision is
// keyed by the mode.
type Mode string

const (
	// ModeCreate builds a new document from defaults.
	ModeCreate Mode = "create"

	// ModeEdit hydrates an existing document for modification.
	ModeEdit Mode = "edit"

	// ModeView hydrates an existing document read-only. No field is ever
	// editable in view mode, regardless of configuration.
	ModeView Mode = "view"

	// ModeClone copies an existing document into a new one, clearing the
	// fields the lifecycle policy names.
	ModeClone Mode = "clone"

	// ModeSearch builds a filter document. Search has no submit semantics.
	ModeSearch Mode = "search"
)

// Modes lists every valid mode in a stable order.
var Modes = []Mode{ModeCreate, ModeEdit, ModeView, ModeClone, ModeSearch}

// ParseMode converts a string into a Mode, rejecting unknown values.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown form mode %q (valid: create, edit, view, clone, search)", s)
	}
	return m, nil
}

// Valid reports whether m is one of the five known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeCreate, ModeEdit, ModeView, ModeClone, ModeSearch:
		return true
	}
	return false
}

// IsNew reports whether the mode produces a document that does not exist
// yet. Create and clone sessions insert; edit and view hydrate.
func (m Mode) IsNew() bool {
	return m == ModeCreate || m == ModeClone
}

// CanSubmit reports whether the mode has submit semantics at all.
// View and search never submit.
func (m Mode) CanSubmit() bool {
	return m == ModeCreate || m == ModeEdit || m == ModeClone
}
