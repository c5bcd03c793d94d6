package form

// Operator is the fixed condition-operator set shared by conditional logic
// and search-mode filters.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "notEquals"
	OpContains    Operator = "contains"
	OpNotContains Operator = "notContains"
	OpGreaterThan Operator = "greaterThan"
	OpLessThan    Operator = "lessThan"
	OpIsEmpty     Operator = "isEmpty"
	OpIsNotEmpty  Operator = "isNotEmpty"
	OpIsTrue      Operator = "isTrue"
	OpIsFalse     Operator = "isFalse"
)

// Operators lists every valid operator in a stable order.
var Operators = []Operator{
	OpEquals, OpNotEquals, OpContains, OpNotContains,
	OpGreaterThan, OpLessThan, OpIsEmpty, OpIsNotEmpty,
	OpIsTrue, OpIsFalse,
}

// Valid reports whether op is a known operator.
func (op Operator) Valid() bool {
	for _, known := range Operators {
		if op == known {
			return true
		}
	}
	return false
}

// NeedsValue reports whether the operator compares against a configured
// value. Presence and boolean operators do not.
func (op Operator) NeedsValue() bool {
	switch op {
	case OpIsEmpty, OpIsNotEmpty, OpIsTrue, OpIsFalse:
		return false
	}
	return true
}

// LogicAction controls what a satisfied condition set does to the field.
type LogicAction string

const (
	ActionShow LogicAction = "show"
	ActionHide LogicAction = "hide"
)

// LogicType controls how multiple conditions combine.
type LogicType string

const (
	LogicAll LogicType = "all"
	LogicAny LogicType = "any"
)

// Condition compares another field's current value against an operator.
type Condition struct {
	Field    string   `json:"field" yaml:"field"`
	Operator Operator `json:"operator" yaml:"operator"`
	Value    any      `json:"value,omitempty" yaml:"value,omitempty"`
}

// ConditionalLogic shows or hides a field based on other field values.
type ConditionalLogic struct {
	Action     LogicAction `json:"action" yaml:"action"`
	LogicType  LogicType   `json:"logicType" yaml:"logicType"`
	Conditions []Condition `json:"conditions" yaml:"conditions"`
}
