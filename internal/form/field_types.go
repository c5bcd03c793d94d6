package form

import "fmt"

// FieldType discriminates the tagged-variant field system. Each type maps
// to a TypeSpec in the registry; engine code stays generic over the
// discriminator instead of branching on a class hierarchy.
type FieldType string

const (
	TypeString        FieldType = "string"
	TypeNumber        FieldType = "number"
	TypeBoolean       FieldType = "boolean"
	TypeDate          FieldType = "date"
	TypeEmail         FieldType = "email"
	TypeSelect        FieldType = "select"
	TypeTextarea      FieldType = "textarea"
	TypeArray         FieldType = "array"
	TypeArrayObject   FieldType = "array-object"
	TypeSectionHeader FieldType = "section-header"
	TypeDivider       FieldType = "divider"
	TypeSpacer        FieldType = "spacer"
)

// ValueKind classifies what kind of value a field type carries.
type ValueKind string

const (
	KindText      ValueKind = "text"
	KindNumber    ValueKind = "number"
	KindBool      ValueKind = "bool"
	KindTimestamp ValueKind = "timestamp"
	KindList      ValueKind = "list"
	KindNone      ValueKind = "none" // layout-only types carry no value
)

// TypeSpec describes the static behavior of one field type: how its values
// are classified and validated, and whether the type participates in the
// persisted document by default.
type TypeSpec struct {
	// Kind is the value classification used by the validation engine.
	Kind ValueKind

	// Input reports whether the type accepts user input at all.
	// Layout types (section-header, divider, spacer) are not inputs.
	Input bool

	// Textual enables minLength/maxLength/pattern validation rules.
	Textual bool

	// Numeric enables min/max validation rules.
	Numeric bool

	// InDocument is the default document-inclusion policy for the type.
	// A field-level IncludeInDocument setting overrides it.
	InDocument bool

	// ValidateAttributes checks the per-type attribute payload.
	// Nil means the type takes no attributes.
	ValidateAttributes func(attrs map[string]any) error
}

// registry maps each discriminator to its TypeSpec.
var registry = map[FieldType]TypeSpec{
	TypeString:   {Kind: KindText, Input: true, Textual: true, InDocument: true},
	TypeTextarea: {Kind: KindText, Input: true, Textual: true, InDocument: true},
	TypeEmail:    {Kind: KindText, Input: true, Textual: true, InDocument: true},
	TypeNumber:   {Kind: KindNumber, Input: true, Numeric: true, InDocument: true},
	TypeBoolean:  {Kind: KindBool, Input: true, InDocument: true},
	TypeDate:     {Kind: KindTimestamp, Input: true, InDocument: true},
	TypeSelect: {
		Kind: KindText, Input: true, Textual: true, InDocument: true,
		ValidateAttributes: validateSelectAttributes,
	},
	TypeArray:       {Kind: KindList, Input: true, InDocument: true},
	TypeArrayObject: {Kind: KindList, Input: true, InDocument: true},

	TypeSectionHeader: {Kind: KindNone},
	TypeDivider:       {Kind: KindNone},
	TypeSpacer:        {Kind: KindNone},
}

// Spec returns the TypeSpec for a field type.
func Spec(t FieldType) (TypeSpec, bool) {
	spec, ok := registry[t]
	return spec, ok
}

// KnownType reports whether t is a registered field type.
func KnownType(t FieldType) bool {
	_, ok := registry[t]
	return ok
}

// validateSelectAttributes requires a non-empty options list where each
// option is a string or a {value, label} object.
func validateSelectAttributes(attrs map[string]any) error {
	raw, ok := attrs["options"]
	if !ok {
		return fmt.Errorf("select fields require an options attribute")
	}
	options, ok := raw.([]any)
	if !ok || len(options) == 0 {
		return fmt.Errorf("select options must be a non-empty list")
	}
	for i, opt := range options {
		switch o := opt.(type) {
		case string:
		case map[string]any:
			if _, ok := o["value"]; !ok {
				return fmt.Errorf("select option %d is missing a value", i)
			}
		default:
			return fmt.Errorf("select option %d must be a string or an object, got %T", i, opt)
		}
	}
	return nil
}
