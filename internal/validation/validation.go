// Package validation applies per-field rules to a form's current values
// and returns accumulated per-path error messages.
//
// Validation results are data, not exceptions: the error map is fully
// recomputed on every call so it always reflects the latest state, and an
// empty map means the form may be submitted. Fields hidden in the current
// mode or by conditional logic are never validated, even if statically
// required - a conditionally-hidden field can stay required-by-default
// without blocking submission.
package validation

import (
	"fmt"
	"regexp"

	"github.com/formweave/formweave/internal/behavior"
	"github.com/formweave/formweave/internal/form"
	"github.com/formweave/formweave/internal/formula"
)

// Engine validates form values. Custom validator formulas run through the
// shared formula evaluator.
type Engine struct {
	eval *formula.Evaluator
}

// NewEngine creates a validation engine around a formula evaluator.
func NewEngine(eval *formula.Evaluator) *Engine {
	return &Engine{eval: eval}
}

// Validate recomputes the full error map for the given fields against the
// flat values and derived maps. Keys are field paths; values are
// user-facing messages.
func (e *Engine) Validate(fields []form.FieldConfig, mode form.Mode, values, derived map[string]any) map[string]string {
	bindings := mergeBindings(values, derived)

	errs := make(map[string]string)
	for _, field := range fields {
		if !field.Included {
			continue
		}
		if spec, ok := form.Spec(field.Type); ok && spec.Kind == form.KindNone {
			continue
		}
		if !behavior.IsFieldVisible(field, mode) {
			continue
		}
		if !behavior.ShownByLogic(field.ConditionalLogic, bindings) {
			continue
		}

		value := values[field.Path]
		if field.Computed != nil {
			value = derived[field.Path]
		}

		if msg := e.validateField(field, mode, value, bindings); msg != "" {
			errs[field.Path] = msg
		}
	}
	return errs
}

// validateField returns the first failing message for one field, or "".
// A missing required value short-circuits the remaining checks.
func (e *Engine) validateField(field form.FieldConfig, mode form.Mode, value any, bindings map[string]any) string {
	label := field.DisplayLabel()

	if behavior.IsFieldRequired(field, mode) && behavior.IsEmptyValue(value) {
		return fmt.Sprintf("%s is required", label)
	}
	if behavior.IsEmptyValue(value) {
		return ""
	}

	rules := field.Validation
	if rules == nil {
		return ""
	}

	spec, _ := form.Spec(field.Type)

	if spec.Numeric {
		if msg := validateNumeric(label, value, rules); msg != "" {
			return msg
		}
	}
	if spec.Textual {
		if msg := validateTextual(label, value, rules); msg != "" {
			return msg
		}
	}
	if rules.CustomValidator != "" {
		if msg := e.validateCustom(label, rules, bindings); msg != "" {
			return msg
		}
	}
	return ""
}

func validateNumeric(label string, value any, rules *form.ValidationRules) string {
	n, ok := toFloat(value)
	if !ok {
		return fmt.Sprintf("%s must be a number", label)
	}
	if rules.Min != nil && n < *rules.Min {
		return fmt.Sprintf("%s must be at least %v", label, *rules.Min)
	}
	if rules.Max != nil && n > *rules.Max {
		return fmt.Sprintf("%s must be at most %v", label, *rules.Max)
	}
	return ""
}

func validateTextual(label string, value any, rules *form.ValidationRules) string {
	s, ok := value.(string)
	if !ok {
		return fmt.Sprintf("%s must be text", label)
	}
	if rules.MinLength != nil && len([]rune(s)) < *rules.MinLength {
		return fmt.Sprintf("%s must be at least %d characters", label, *rules.MinLength)
	}
	if rules.MaxLength != nil && len([]rune(s)) > *rules.MaxLength {
		return fmt.Sprintf("%s must be at most %d characters", label, *rules.MaxLength)
	}
	if rules.Pattern != "" {
		re, err := regexp.Compile(rules.Pattern)
		if err != nil {
			// Invalid patterns are a configuration bug caught by the
			// compiler's static checks; at runtime the rule is skipped
			// rather than blocking the end user.
			return ""
		}
		if !re.MatchString(s) {
			if rules.PatternMessage != "" {
				return rules.PatternMessage
			}
			return fmt.Sprintf("%s format is invalid", label)
		}
	}
	return ""
}

// validateCustom evaluates the custom validator formula against the merged
// bindings. A falsy result fails; so does a FormulaError - a broken
// validator degrades to "invalid" for this field, never aborts the form.
func (e *Engine) validateCustom(label string, rules *form.ValidationRules, bindings map[string]any) string {
	message := rules.CustomMessage
	if message == "" {
		message = fmt.Sprintf("%s is invalid", label)
	}

	out, err := e.eval.Evaluate(rules.CustomValidator, bindings)
	if err != nil {
		return message
	}
	if !truthy(out) {
		return message
	}
	return ""
}

// mergeBindings overlays derived values on top of user values; derived
// wins so validators always see fresh computed outputs.
func mergeBindings(values, derived map[string]any) map[string]any {
	merged := make(map[string]any, len(values)+len(derived))
	for k, v := range values {
		merged[k] = v
	}
	for k, v := range derived {
		merged[k] = v
	}
	return merged
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	default:
		if n, ok := toFloat(v); ok {
			return n != 0
		}
		return true
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
