// Package testutil provides shared fixtures for package tests: a
// representative form configuration exercising every engine concern and
// pointer helpers for optional config fields.
package testutil

import "github.com/formweave/formweave/internal/form"

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Float returns a pointer to f.
func Float(f float64) *float64 { return &f }

// Int returns a pointer to i.
func Int(i int) *int { return &i }

// OrderForm returns a fresh order-form configuration covering the common
// cases: nested paths, a field-level default, a computed field, an excluded
// field, and a full lifecycle. Callers may mutate the returned config.
func OrderForm() *form.FormConfiguration {
	return &form.FormConfiguration{
		ID:   "order-form",
		Name: "Order",
		FieldConfigs: []form.FieldConfig{
			{Path: "user.name", Type: form.TypeString, Included: true, Required: true},
			{Path: "user.email", Type: form.TypeEmail, Included: true},
			{Path: "quantity", Type: form.TypeNumber, Included: true, DefaultValue: float64(1)},
			{Path: "price", Type: form.TypeNumber, Included: true},
			{
				Path: "total", Type: form.TypeNumber, Included: true,
				Computed: &form.ComputedConfig{
					Formula:      "quantity * price",
					Dependencies: []string{"quantity", "price"},
				},
			},
			{Path: "status", Type: form.TypeString, Included: true},
			{Path: "notes", Type: form.TypeTextarea, Included: false},
		},
		Lifecycle: &form.Lifecycle{
			Create: &form.CreatePolicy{
				Defaults: map[string]any{"status": "draft", "quantity": float64(99)},
				OnSubmit: &form.SubmitConfig{Mode: form.SubmitInsert, Collection: "orders"},
			},
			Edit: &form.EditPolicy{
				ImmutableFields: []string{"user.email"},
				OnSubmit:        &form.SubmitConfig{Mode: form.SubmitUpdate, Collection: "orders"},
				OnDelete:        &form.DeleteConfig{Enabled: true, Confirm: "Delete this order?"},
			},
			Clone: &form.ClonePolicy{
				ClearFields: []string{"status"},
				OnSubmit:    &form.SubmitConfig{Mode: form.SubmitInsert, Collection: "orders"},
			},
		},
	}
}
