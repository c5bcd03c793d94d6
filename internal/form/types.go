package form

import "time"

// FieldConfig describes one configured field. Path is the dotted document
// location and the unique key within a FormConfiguration.
type FieldConfig struct {
	Path     string    `json:"path" yaml:"path"`
	Label    string    `json:"label,omitempty" yaml:"label,omitempty"`
	Type     FieldType `json:"type" yaml:"type"`
	Included bool      `json:"included" yaml:"included"`
	Required bool      `json:"required,omitempty" yaml:"required,omitempty"`

	// IncludeInDocument overrides the type's document-inclusion default.
	// Nil means "use the default": input types are persisted, layout types
	// are not, and computed fields are excluded unless this is explicitly
	// true.
	IncludeInDocument *bool `json:"includeInDocument,omitempty" yaml:"includeInDocument,omitempty"`

	DefaultValue any `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`

	Validation       *ValidationRules  `json:"validation,omitempty" yaml:"validation,omitempty"`
	ModeConfig       *ModeConfig       `json:"modeConfig,omitempty" yaml:"modeConfig,omitempty"`
	Computed         *ComputedConfig   `json:"computed,omitempty" yaml:"computed,omitempty"`
	ConditionalLogic *ConditionalLogic `json:"conditionalLogic,omitempty" yaml:"conditionalLogic,omitempty"`

	// Attributes is the per-type payload keyed by the Type discriminator
	// (e.g. select options). Validated by the type's TypeSpec.
	Attributes map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// InDocument resolves whether this field's value belongs in the persisted
// document. Computed fields are visualization-only unless IncludeInDocument
// explicitly re-enables them.
func (f FieldConfig) InDocument() bool {
	if f.IncludeInDocument != nil {
		return *f.IncludeInDocument
	}
	if f.Computed != nil {
		return false
	}
	spec, ok := Spec(f.Type)
	if !ok {
		return false
	}
	return spec.InDocument
}

// DisplayLabel returns the configured label, falling back to a title-cased
// rendering of the path's last segment.
func (f FieldConfig) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return DefaultLabel(f.Path)
}

// ValidationRules holds the per-field validation configuration. Pointer
// fields distinguish "unset" from zero values.
type ValidationRules struct {
	Min             *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max             *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	MinLength       *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength       *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern         string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	PatternMessage  string   `json:"patternMessage,omitempty" yaml:"patternMessage,omitempty"`
	CustomValidator string   `json:"customValidator,omitempty" yaml:"customValidator,omitempty"`
	CustomMessage   string   `json:"customMessage,omitempty" yaml:"customMessage,omitempty"`
}

// ModeConfig restricts a field's behavior to subsets of modes. A nil slice
// means "no restriction configured"; an empty slice means "in no mode".
// RequiredIn, when set, replaces the static Required flag entirely.
type ModeConfig struct {
	VisibleIn  []Mode `json:"visibleIn,omitempty" yaml:"visibleIn,omitempty"`
	EditableIn []Mode `json:"editableIn,omitempty" yaml:"editableIn,omitempty"`
	RequiredIn []Mode `json:"requiredIn,omitempty" yaml:"requiredIn,omitempty"`
}

// ComputedConfig marks a field as derived. Computed fields are never
// directly user-edited; their value is recomputed from the formula whenever
// the form state changes.
type ComputedConfig struct {
	Formula      string    `json:"formula" yaml:"formula"`
	Dependencies []string  `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	OutputType   FieldType `json:"outputType,omitempty" yaml:"outputType,omitempty"`
}

// FormConfiguration is the immutable input to the engine: the field list
// plus an optional lifecycle policy.
type FormConfiguration struct {
	ID           string        `json:"id" yaml:"id"`
	Name         string        `json:"name" yaml:"name"`
	FieldConfigs []FieldConfig `json:"fieldConfigs" yaml:"fieldConfigs"`
	Lifecycle    *Lifecycle    `json:"lifecycle,omitempty" yaml:"lifecycle,omitempty"`
	CreatedAt    time.Time     `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt    time.Time     `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// Field looks up a field config by path.
func (c *FormConfiguration) Field(path string) (FieldConfig, bool) {
	for _, f := range c.FieldConfigs {
		if f.Path == path {
			return f, true
		}
	}
	return FieldConfig{}, false
}

// IncludedFields returns the fields that participate in the form at all.
func (c *FormConfiguration) IncludedFields() []FieldConfig {
	fields := make([]FieldConfig, 0, len(c.FieldConfigs))
	for _, f := range c.FieldConfigs {
		if f.Included {
			fields = append(fields, f)
		}
	}
	return fields
}
