package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	for _, mode := range Modes {
		parsed, err := ParseMode(string(mode))
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}

	_, err := ParseMode("archive")
	assert.Error(t, err)
}

func TestModeClassification(t *testing.T) {
	assert.True(t, ModeCreate.IsNew())
	assert.True(t, ModeClone.IsNew())
	assert.False(t, ModeEdit.IsNew())
	assert.False(t, ModeView.IsNew())
	assert.False(t, ModeSearch.IsNew())

	assert.True(t, ModeCreate.CanSubmit())
	assert.True(t, ModeEdit.CanSubmit())
	assert.True(t, ModeClone.CanSubmit())
	assert.False(t, ModeView.CanSubmit())
	assert.False(t, ModeSearch.CanSubmit())
}

func TestTypeRegistry(t *testing.T) {
	spec, ok := Spec(TypeNumber)
	require.True(t, ok)
	assert.True(t, spec.Numeric)
	assert.False(t, spec.Textual)
	assert.True(t, spec.Input)

	spec, ok = Spec(TypeDivider)
	require.True(t, ok)
	assert.Equal(t, KindNone, spec.Kind)
	assert.False(t, spec.Input)
	assert.False(t, spec.InDocument)

	assert.False(t, KnownType("mystery"))
}

func TestSelectAttributeValidation(t *testing.T) {
	spec, _ := Spec(TypeSelect)
	require.NotNil(t, spec.ValidateAttributes)

	assert.Error(t, spec.ValidateAttributes(nil))
	assert.Error(t, spec.ValidateAttributes(map[string]any{"options": []any{}}))
	assert.Error(t, spec.ValidateAttributes(map[string]any{"options": []any{42}}))
	assert.Error(t, spec.ValidateAttributes(map[string]any{
		"options": []any{map[string]any{"label": "Draft"}},
	}))

	assert.NoError(t, spec.ValidateAttributes(map[string]any{
		"options": []any{"draft", "final"},
	}))
	assert.NoError(t, spec.ValidateAttributes(map[string]any{
		"options": []any{map[string]any{"value": "draft", "label": "Draft"}},
	}))
}

func TestInDocumentResolution(t *testing.T) {
	truePtr := true
	falsePtr := false

	// Input types default in.
	assert.True(t, FieldConfig{Type: TypeString}.InDocument())
	// Layout types default out.
	assert.False(t, FieldConfig{Type: TypeSpacer}.InDocument())
	// Computed fields default out even on an input type.
	assert.False(t, FieldConfig{Type: TypeNumber, Computed: &ComputedConfig{Formula: "1"}}.InDocument())
	// Explicit override wins in both directions.
	assert.True(t, FieldConfig{Type: TypeNumber, Computed: &ComputedConfig{Formula: "1"}, IncludeInDocument: &truePtr}.InDocument())
	assert.False(t, FieldConfig{Type: TypeString, IncludeInDocument: &falsePtr}.InDocument())
}

func TestDisplayLabel(t *testing.T) {
	assert.Equal(t, "Custom", FieldConfig{Path: "x", Label: "Custom"}.DisplayLabel())
	assert.Equal(t, "Name", FieldConfig{Path: "user.name"}.DisplayLabel())
}

func TestDefaultLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"user.firstName", "First Name"},
		{"shipping_address", "Shipping Address"},
		{"order-total", "Order Total"},
		{"email", "Email"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultLabel(tt.path), "path %q", tt.path)
	}
}

func TestOperatorSet(t *testing.T) {
	for _, op := range Operators {
		assert.True(t, op.Valid())
	}
	assert.False(t, Operator("resembles").Valid())

	assert.True(t, OpEquals.NeedsValue())
	assert.True(t, OpGreaterThan.NeedsValue())
	assert.False(t, OpIsEmpty.NeedsValue())
	assert.False(t, OpIsTrue.NeedsValue())
}

func TestConfigurationLookup(t *testing.T) {
	cfg := &FormConfiguration{
		ID: "f",
		FieldConfigs: []FieldConfig{
			{Path: "a", Type: TypeString, Included: true},
			{Path: "b", Type: TypeString, Included: false},
		},
	}

	field, ok := cfg.Field("a")
	require.True(t, ok)
	assert.Equal(t, "a", field.Path)

	_, ok = cfg.Field("ghost")
	assert.False(t, ok)

	included := cfg.IncludedFields()
	require.Len(t, included, 1)
	assert.Equal(t, "a", included[0].Path)
}
