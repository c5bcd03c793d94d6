package form

// Lifecycle is the per-mode policy bundle: defaults, immutable and cleared
// fields, and the submit/delete configuration handed to the external
// persistence executor.
type Lifecycle struct {
	Create *CreatePolicy `json:"create,omitempty" yaml:"create,omitempty"`
	Edit   *EditPolicy   `json:"edit,omitempty" yaml:"edit,omitempty"`
	Clone  *ClonePolicy  `json:"clone,omitempty" yaml:"clone,omitempty"`
}

// CreatePolicy applies only in create mode.
type CreatePolicy struct {
	// Defaults is a static path->value map applied after field-level
	// defaults. Field-level defaults win on conflict.
	Defaults map[string]any `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	OnSubmit *SubmitConfig  `json:"onSubmit,omitempty" yaml:"onSubmit,omitempty"`
}

// EditPolicy applies only in edit mode.
type EditPolicy struct {
	// ImmutableFields lists paths that cannot be edited once the document
	// exists, regardless of the field's own mode config.
	ImmutableFields []string      `json:"immutableFields,omitempty" yaml:"immutableFields,omitempty"`
	OnSubmit        *SubmitConfig `json:"onSubmit,omitempty" yaml:"onSubmit,omitempty"`
	OnDelete        *DeleteConfig `json:"onDelete,omitempty" yaml:"onDelete,omitempty"`
}

// ClonePolicy applies only in clone mode.
type ClonePolicy struct {
	// ClearFields lists paths dropped from the cloned values. Cleared
	// fields fall back to their field-level default, if any.
	ClearFields []string      `json:"clearFields,omitempty" yaml:"clearFields,omitempty"`
	OnSubmit    *SubmitConfig `json:"onSubmit,omitempty" yaml:"onSubmit,omitempty"`
}

// SubmitMode selects how the external executor persists the prepared
// document.
type SubmitMode string

const (
	SubmitInsert SubmitMode = "insert"
	SubmitUpdate SubmitMode = "update"
)

// SubmitConfig tells the persistence executor how to store a prepared
// document. The engine never issues the write itself.
type SubmitConfig struct {
	Mode       SubmitMode  `json:"mode" yaml:"mode"`
	Collection string      `json:"collection" yaml:"collection"`
	Transforms *Transforms `json:"transforms,omitempty" yaml:"transforms,omitempty"`
	Success    string      `json:"success,omitempty" yaml:"success,omitempty"`
}

// Transforms rewrite the prepared document before persistence, applied in
// fixed order: omit, then rename, then add.
type Transforms struct {
	OmitFields   []string          `json:"omitFields,omitempty" yaml:"omitFields,omitempty"`
	RenameFields map[string]string `json:"renameFields,omitempty" yaml:"renameFields,omitempty"`
	AddFields    map[string]any    `json:"addFields,omitempty" yaml:"addFields,omitempty"`
}

// DeleteConfig enables document deletion from edit mode.
type DeleteConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Confirm string `json:"confirm,omitempty" yaml:"confirm,omitempty"`
}
