// Package formstate is the top-level form runtime: it builds the initial
// in-memory state for a form session, applies single-field updates, and
// prepares the final nested document for the external persistence
// executor.
//
// A FormState is never mutated in place. Update returns a wholly new
// state, which keeps the dirty check reliable and makes undo/redo trivial
// for callers. The whole package is synchronous and free of I/O.
package formstate

import "github.com/formweave/formweave/internal/form"

// Meta carries the session-level facts of a form state.
type Meta struct {
	Mode  form.Mode `json:"mode"`
	IsNew bool      `json:"isNew"`

	// DocumentID identifies the hydrated document in edit/view sessions.
	// Empty for new-document modes.
	DocumentID string `json:"documentId,omitempty"`

	// IsSubmitting is toggled by the caller around the external submit
	// call; the engine never sets it.
	IsSubmitting bool `json:"isSubmitting"`

	// IsDirty is true iff values differ from the state's own initial
	// snapshot, compared key-by-key. Returning a changed value to its
	// initial value clears it again.
	IsDirty bool `json:"isDirty"`
}

// FormState is the live runtime object for one form session.
//
// Values is the flat dotted-key map of user-editable values. Derived holds
// computed-field outputs, kept separate so they can never be hand-edited.
type FormState struct {
	Values  map[string]any    `json:"values"`
	Derived map[string]any    `json:"derived"`
	Errors  map[string]string `json:"errors"`
	Touched map[string]bool   `json:"touched"`
	Meta    Meta              `json:"meta"`

	// initial is the snapshot of Values taken at creation time, the
	// baseline for the dirty check.
	initial map[string]any
}

// InitialValue returns the creation-time snapshot value for a path.
func (s *FormState) InitialValue(path string) (any, bool) {
	v, ok := s.initial[path]
	return v, ok
}

// cloneFlat deep-copies a flat value map. Nested maps and slices inside
// values (array fields) are copied too, so a snapshot cannot be changed
// through a caller-held reference.
func cloneFlat(values map[string]any) map[string]any {
	cloned := make(map[string]any, len(values))
	for k, v := range values {
		cloned[k] = cloneValue(v)
	}
	return cloned
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, child := range val {
			m[k] = cloneValue(child)
		}
		return m
	case []any:
		s := make([]any, len(val))
		for i, child := range val {
			s[i] = cloneValue(child)
		}
		return s
	default:
		return v
	}
}
