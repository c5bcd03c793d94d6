package formula

import (
	"fmt"
	"strings"
)

// FormulaError reports a configuration-level problem with a formula:
// a parse failure, an unknown identifier or function, a type mismatch
// during evaluation, or a dependency cycle between computed fields.
//
// Callers treat a FormulaError on a single field as "derived value is
// undefined for this field". Only a dependency cycle, which poisons the
// whole evaluation order, aborts form-state construction.
type FormulaError struct {
	// Formula is the offending source text, when known.
	Formula string

	// Identifier is the unknown identifier or function, when that is the
	// cause.
	Identifier string

	// Position is the 1-based "line:column" of a parse failure.
	Position string

	// Cycle names the computed-field cycle path, when that is the cause.
	Cycle []string

	Message string
	Err     error
}

func (e *FormulaError) Error() string {
	switch {
	case len(e.Cycle) > 0:
		return fmt.Sprintf("formula dependency cycle: %s", strings.Join(e.Cycle, " -> "))
	case e.Identifier != "":
		return fmt.Sprintf("formula %q: %s %q", e.Formula, e.Message, e.Identifier)
	case e.Position != "":
		return fmt.Sprintf("formula %q at %s: %s", e.Formula, e.Position, e.Message)
	default:
		return fmt.Sprintf("formula %q: %s", e.Formula, e.Message)
	}
}

func (e *FormulaError) Unwrap() error {
	return e.Err
}

// IsCycle reports whether the error is a dependency-cycle error.
func (e *FormulaError) IsCycle() bool {
	return len(e.Cycle) > 0
}
