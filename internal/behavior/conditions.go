package behavior

import (
	"fmt"
	"strings"

	"github.com/formweave/formweave/internal/form"
)

// ShownByLogic evaluates a field's conditional logic against the current
// flat values map and reports whether the field is shown. A field without
// conditional logic is always shown.
//
// The condition set is satisfied per logicType (all/any); the action then
// decides the outcome: "show" shows the field when satisfied (hidden
// otherwise), "hide" hides it when satisfied.
func ShownByLogic(logic *form.ConditionalLogic, values map[string]any) bool {
	if logic == nil || len(logic.Conditions) == 0 {
		return true
	}

	metCount := 0
	for _, cond := range logic.Conditions {
		if ConditionMet(cond, values) {
			metCount++
		}
	}

	var satisfied bool
	if logic.LogicType == form.LogicAny {
		satisfied = metCount > 0
	} else {
		// Unset logicType defaults to "all".
		satisfied = metCount == len(logic.Conditions)
	}

	if logic.Action == form.ActionHide {
		return !satisfied
	}
	return satisfied
}

// ConditionMet evaluates one condition against the flat values map.
// Unknown operators never match.
func ConditionMet(cond form.Condition, values map[string]any) bool {
	value := values[cond.Field]

	switch cond.Operator {
	case form.OpEquals:
		return looseEqual(value, cond.Value)
	case form.OpNotEquals:
		return !looseEqual(value, cond.Value)
	case form.OpContains:
		return containsString(value, cond.Value)
	case form.OpNotContains:
		return !containsString(value, cond.Value)
	case form.OpGreaterThan:
		a, b, ok := numericPair(value, cond.Value)
		return ok && a > b
	case form.OpLessThan:
		a, b, ok := numericPair(value, cond.Value)
		return ok && a < b
	case form.OpIsEmpty:
		return IsEmptyValue(value)
	case form.OpIsNotEmpty:
		return !IsEmptyValue(value)
	case form.OpIsTrue:
		b, ok := value.(bool)
		return ok && b
	case form.OpIsFalse:
		b, ok := value.(bool)
		return ok && !b
	default:
		return false
	}
}

// IsEmptyValue reports whether a field value counts as absent: nil, the
// empty string, or an empty slice.
func IsEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []any:
		return len(val) == 0
	}
	return false
}

// looseEqual compares a field value to a configured comparison value.
// Numbers compare numerically across int/float representations, since JSON
// decoding and formula output produce different numeric Go types.
func looseEqual(a, b any) bool {
	if fa, fb, ok := numericPair(a, b); ok {
		return fa == fb
	}
	return a == b
}

// containsString implements substring matching on string renderings.
func containsString(value, needle any) bool {
	if value == nil || needle == nil {
		return false
	}
	return strings.Contains(stringify(value), stringify(needle))
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// numericPair coerces both operands to float64 when both are numeric.
func numericPair(a, b any) (float64, float64, bool) {
	fa, ok := toFloat(a)
	if !ok {
		return 0, 0, false
	}
	fb, ok := toFloat(b)
	if !ok {
		return 0, 0, false
	}
	return fa, fb, true
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
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
