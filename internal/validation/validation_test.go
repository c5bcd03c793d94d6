package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formweave/formweave/internal/form"
	"github.com/formweave/formweave/internal/formula"
	"github.com/formweave/formweave/internal/testutil"
)

func newEngine() *Engine {
	return NewEngine(formula.NewEvaluator())
}

func TestValidateRequired(t *testing.T) {
	fields := []form.FieldConfig{
		{Path: "user.name", Label: "Customer name", Type: form.TypeString, Included: true, Required: true},
		{Path: "notes", Type: form.TypeTextarea, Included: true},
	}

	errs := newEngine().Validate(fields, form.ModeCreate, map[string]any{}, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, "Customer name is required", errs["user.name"])

	errs = newEngine().Validate(fields, form.ModeCreate, map[string]any{"user.name": "Ada"}, nil)
	assert.Empty(t, errs)
}

func TestValidateNumericBounds(t *testing.T) {
	fields := []form.FieldConfig{
		{
			Path: "quantity", Type: form.TypeNumber, Included: true,
			Validation: &form.ValidationRules{Min: testutil.Float(1), Max: testutil.Float(100)},
		},
	}
	eng := newEngine()

	errs := eng.Validate(fields, form.ModeCreate, map[string]any{"quantity": 0}, nil)
	assert.Equal(t, "Quantity must be at least 1", errs["quantity"])

	errs = eng.Validate(fields, form.ModeCreate, map[string]any{"quantity": 101}, nil)
	assert.Equal(t, "Quantity must be at most 100", errs["quantity"])

	errs = eng.Validate(fields, form.ModeCreate, map[string]any{"quantity": "many"}, nil)
	assert.Equal(t, "Quantity must be a number", errs["quantity"])

	errs = eng.Validate(fields, form.ModeCreate, map[string]any{"quantity": 50}, nil)
	assert.Empty(t, errs)
}

func TestValidateTextualRules(t *testing.T) {
	fields := []form.FieldConfig{
		{
			Path: "code", Type: form.TypeString, Included: true,
			Validation: &form.ValidationRules{MinLength: testutil.Int(3), MaxLength: testutil.Int(5)},
		},
		{
			Path: "user.email", Type: form.TypeEmail, Included: true,
			Validation: &form.ValidationRules{
				Pattern:        "^[^@]+@[^@]+$",
				PatternMessage: "Enter a valid email address",
			},
		},
	}
	eng := newEngine()

	errs := eng.Validate(fields, form.ModeCreate, map[string]any{"code": "ab"}, nil)
	assert.Equal(t, "Code must be at least 3 characters", errs["code"])

	errs = eng.Validate(fields, form.ModeCreate, map[string]any{"code": "abcdef"}, nil)
	assert.Equal(t, "Code must be at most 5 characters", errs["code"])

	errs = eng.Validate(fields, form.ModeCreate, map[string]any{"user.email": "not-an-email"}, nil)
	assert.Equal(t, "Enter a valid email address", errs["user.email"])

	errs = eng.Validate(fields, form.ModeCreate, map[string]any{
		"code":       "abcd",
		"user.email": "ada@example.com",
	}, nil)
	assert.Empty(t, errs)
}

func TestValidatePatternDefaultMessage(t *testing.T) {
	fields := []form.FieldConfig{
		{
			Path: "sku", Type: form.TypeString, Included: true,
			Validation: &form.ValidationRules{Pattern: "^[A-Z]{3}-\\d+$"},
		},
	}
	errs := newEngine().Validate(fields, form.ModeCreate, map[string]any{"sku": "nope"}, nil)
	assert.Equal(t, "Sku format is invalid", errs["sku"])
}

func TestValidateEmptyOptionalSkipsRules(t *testing.T) {
	fields := []form.FieldConfig{
		{
			Path: "code", Type: form.TypeString, Included: true,
			Validation: &form.ValidationRules{MinLength: testutil.Int(3)},
		},
	}
	errs := newEngine().Validate(fields, form.ModeCreate, map[string]any{"code": ""}, nil)
	assert.Empty(t, errs)
}

func TestValidateCustomValidator(t *testing.T) {
	fields := []form.FieldConfig{
		{Path: "price", Type: form.TypeNumber, Included: true},
		{
			Path: "discount", Type: form.TypeNumber, Included: true,
			Validation: &form.ValidationRules{
				CustomValidator: "discount <= price",
				CustomMessage:   "Discount cannot exceed the price",
			},
		},
	}
	eng := newEngine()

	errs := eng.Validate(fields, form.ModeCreate, map[string]any{"price": 10, "discount": 15}, nil)
	assert.Equal(t, "Discount cannot exceed the price", errs["discount"])

	errs = eng.Validate(fields, form.ModeCreate, map[string]any{"price": 10, "discount": 5}, nil)
	assert.Empty(t, errs)
}

func TestValidateCustomValidatorErrorFails(t *testing.T) {
	fields := []form.FieldConfig{
		{
			Path: "x", Type: form.TypeNumber, Included: true,
			Validation: &form.ValidationRules{CustomValidator: "x +"},
		},
	}
	errs := newEngine().Validate(fields, form.ModeCreate, map[string]any{"x": 1}, nil)
	assert.Equal(t, "X is invalid", errs["x"])
}

func TestValidateSkipsHiddenFields(t *testing.T) {
	fields := []form.FieldConfig{
		{
			Path: "internalCode", Type: form.TypeString, Included: true, Required: true,
			ModeConfig: &form.ModeConfig{VisibleIn: []form.Mode{form.ModeEdit}},
		},
		{
			Path: "reason", Type: form.TypeString, Included: true, Required: true,
			ConditionalLogic: &form.ConditionalLogic{
				Action:    form.ActionShow,
				LogicType: form.LogicAll,
				Conditions: []form.Condition{
					{Field: "status", Operator: form.OpEquals, Value: "rejected"},
				},
			},
		},
		{Path: "status", Type: form.TypeString, Included: true},
		{Path: "excluded", Type: form.TypeString, Included: false, Required: true},
		{Path: "rule", Type: form.TypeDivider, Included: true, Required: true},
	}
	eng := newEngine()

	// Mode-hidden, logic-hidden, not-included, and layout fields all skip
	// validation in create mode.
	errs := eng.Validate(fields, form.ModeCreate, map[string]any{"status": "approved"}, nil)
	assert.Empty(t, errs)

	// The conditionally required field surfaces once its condition holds.
	errs = eng.Validate(fields, form.ModeCreate, map[string]any{"status": "rejected"}, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs["reason"], "required")
}

func TestValidateComputedUsesDerived(t *testing.T) {
	fields := []form.FieldConfig{
		{
			Path: "total", Type: form.TypeNumber, Included: true,
			Computed:   &form.ComputedConfig{Formula: "quantity * price"},
			Validation: &form.ValidationRules{Min: testutil.Float(0)},
		},
	}
	eng := newEngine()

	errs := eng.Validate(fields, form.ModeCreate,
		map[string]any{"total": 999}, map[string]any{"total": -5.0})
	assert.Equal(t, "Total must be at least 0", errs["total"])

	errs = eng.Validate(fields, form.ModeCreate,
		map[string]any{}, map[string]any{"total": 5.0})
	assert.Empty(t, errs)
}
