package formstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formweave/formweave/internal/form"
	"github.com/formweave/formweave/internal/testutil"
)

func orderForm() *form.FormConfiguration {
	return testutil.OrderForm()
}

func TestNewCreateAppliesDefaults(t *testing.T) {
	m := NewManager()
	state, err := m.New(orderForm(), form.ModeCreate, nil, "")
	require.NoError(t, err)

	// Field-level default wins over the lifecycle default for the same path.
	assert.Equal(t, float64(1), state.Values["quantity"])
	assert.Equal(t, "draft", state.Values["status"])
	assert.True(t, state.Meta.IsNew)
	assert.False(t, state.Meta.IsDirty)
	assert.Empty(t, state.Meta.DocumentID)
}

func TestNewEditHydratesWithoutDefaults(t *testing.T) {
	m := NewManager()
	existing := map[string]any{
		"user":  map[string]any{"name": "Ada"},
		"price": float64(10),
	}
	state, err := m.New(orderForm(), form.ModeEdit, existing, "doc-1")
	require.NoError(t, err)

	assert.Equal(t, "Ada", state.Values["user.name"])
	// Absent values stay absent in edit mode; no default fills them in.
	_, ok := state.Values["quantity"]
	assert.False(t, ok)
	_, ok = state.Values["status"]
	assert.False(t, ok)
	assert.False(t, state.Meta.IsNew)
	assert.Equal(t, "doc-1", state.Meta.DocumentID)
}

func TestNewEditRequiresExistingDocument(t *testing.T) {
	m := NewManager()
	_, err := m.New(orderForm(), form.ModeEdit, nil, "doc-1")
	assert.Error(t, err)
}

func TestNewRejectsUnknownMode(t *testing.T) {
	m := NewManager()
	_, err := m.New(orderForm(), form.Mode("archive"), nil, "")
	assert.Error(t, err)
}

func TestNewCloneClearsAndReappliesDefaults(t *testing.T) {
	cfg := orderForm()
	cfg.Lifecycle.Clone.ClearFields = []string{"status", "quantity"}

	m := NewManager()
	existing := map[string]any{
		"status":   "shipped",
		"quantity": float64(7),
		"price":    float64(3),
	}
	state, err := m.New(cfg, form.ModeClone, existing, "doc-1")
	require.NoError(t, err)

	// status has no field default, so clearing leaves it absent; quantity
	// falls back to its field default.
	_, ok := state.Values["status"]
	assert.False(t, ok)
	assert.Equal(t, float64(1), state.Values["quantity"])
	assert.Equal(t, float64(3), state.Values["price"])
	assert.True(t, state.Meta.IsNew)
	assert.Empty(t, state.Meta.DocumentID)
}

func TestComputedFieldRecomputesOnUpdate(t *testing.T) {
	m := NewManager()
	cfg := orderForm()
	state, err := m.New(cfg, form.ModeCreate, nil, "")
	require.NoError(t, err)

	state, err = m.Update(state, cfg, "price", float64(10))
	require.NoError(t, err)
	state, err = m.Update(state, cfg, "quantity", float64(5))
	require.NoError(t, err)
	assert.Equal(t, float64(50), state.Derived["total"])

	state, err = m.Update(state, cfg, "quantity", float64(7))
	require.NoError(t, err)
	assert.Equal(t, float64(70), state.Derived["total"])

	// The computed output lives in Derived only, never in Values.
	_, ok := state.Values["total"]
	assert.False(t, ok)
}

func TestComputedChainEvaluatesInDependencyOrder(t *testing.T) {
	cfg := &form.FormConfiguration{
		ID: "chain",
		FieldConfigs: []form.FieldConfig{
			{Path: "base", Type: form.TypeNumber, Included: true},
			{
				Path: "doubled", Type: form.TypeNumber, Included: true,
				Computed: &form.ComputedConfig{Formula: "base * 2", Dependencies: []string{"base"}},
			},
			{
				Path: "final", Type: form.TypeNumber, Included: true,
				Computed: &form.ComputedConfig{Formula: "doubled + 1", Dependencies: []string{"doubled"}},
			},
		},
	}

	m := NewManager()
	state, err := m.New(cfg, form.ModeCreate, nil, "")
	require.NoError(t, err)
	state, err = m.Update(state, cfg, "base", float64(4))
	require.NoError(t, err)

	assert.Equal(t, float64(8), state.Derived["doubled"])
	assert.Equal(t, float64(9), state.Derived["final"])
}

func TestComputedCycleFailsNew(t *testing.T) {
	cfg := &form.FormConfiguration{
		ID: "cycle",
		FieldConfigs: []form.FieldConfig{
			{
				Path: "a", Type: form.TypeNumber, Included: true,
				Computed: &form.ComputedConfig{Formula: "b + 1", Dependencies: []string{"b"}},
			},
			{
				Path: "b", Type: form.TypeNumber, Included: true,
				Computed: &form.ComputedConfig{Formula: "a + 1", Dependencies: []string{"a"}},
			},
		},
	}

	m := NewManager()
	_, err := m.New(cfg, form.ModeCreate, nil, "")
	assert.Error(t, err)
}

func TestFailingFormulaDegradesToFieldError(t *testing.T) {
	cfg := &form.FormConfiguration{
		ID: "broken",
		FieldConfigs: []form.FieldConfig{
			{Path: "price", Type: form.TypeNumber, Included: true},
			{
				Path: "total", Type: form.TypeNumber, Included: true,
				Computed: &form.ComputedConfig{Formula: "price * missing", Dependencies: []string{"price"}},
			},
		},
	}

	m := NewManager()
	state, err := m.New(cfg, form.ModeCreate, nil, "")
	require.NoError(t, err)
	state, err = m.Update(state, cfg, "price", float64(5))
	require.NoError(t, err)

	_, ok := state.Derived["total"]
	assert.False(t, ok)
	assert.NotEmpty(t, state.Errors["total"])
}

func TestValidateClearsComputationNotices(t *testing.T) {
	cfg := &form.FormConfiguration{
		ID: "broken",
		FieldConfigs: []form.FieldConfig{
			{Path: "price", Type: form.TypeNumber, Included: true},
			{
				Path: "total", Type: form.TypeNumber, Included: true,
				Computed: &form.ComputedConfig{Formula: "price * missing", Dependencies: []string{"price"}},
			},
		},
	}

	m := NewManager()
	state, err := m.New(cfg, form.ModeCreate, nil, "")
	require.NoError(t, err)
	state, err = m.Update(state, cfg, "price", float64(5))
	require.NoError(t, err)
	require.NotEmpty(t, state.Errors["total"])

	// A computation notice lives only until the next validation pass: the
	// derived value stays absent, but it does not block submission.
	ok := m.Validate(state, cfg)
	assert.True(t, ok)
	assert.Empty(t, state.Errors)
	_, found := state.Derived["total"]
	assert.False(t, found)
}

func TestUpdateDoesNotMutateInput(t *testing.T) {
	m := NewManager()
	cfg := orderForm()
	before, err := m.New(cfg, form.ModeCreate, nil, "")
	require.NoError(t, err)

	after, err := m.Update(before, cfg, "user.name", "Grace")
	require.NoError(t, err)

	_, ok := before.Values["user.name"]
	assert.False(t, ok)
	assert.False(t, before.Touched["user.name"])
	assert.Equal(t, "Grace", after.Values["user.name"])
	assert.True(t, after.Touched["user.name"])
}

func TestDirtyClearsOnRoundTrip(t *testing.T) {
	m := NewManager()
	cfg := orderForm()
	existing := map[string]any{"price": float64(10), "quantity": float64(2)}
	state, err := m.New(cfg, form.ModeEdit, existing, "doc-1")
	require.NoError(t, err)
	assert.False(t, state.Meta.IsDirty)

	state, err = m.Update(state, cfg, "price", float64(12))
	require.NoError(t, err)
	assert.True(t, state.Meta.IsDirty)

	state, err = m.Update(state, cfg, "price", float64(10))
	require.NoError(t, err)
	assert.False(t, state.Meta.IsDirty)

	// Touched survives the round trip even though the value is back.
	assert.True(t, state.Touched["price"])
}

func TestIdempotentUpdate(t *testing.T) {
	m := NewManager()
	cfg := orderForm()
	state, err := m.New(cfg, form.ModeCreate, nil, "")
	require.NoError(t, err)

	once, err := m.Update(state, cfg, "price", float64(9))
	require.NoError(t, err)
	twice, err := m.Update(once, cfg, "price", float64(9))
	require.NoError(t, err)

	assert.Equal(t, once.Values, twice.Values)
	assert.Equal(t, once.Derived, twice.Derived)
	assert.Equal(t, once.Meta.IsDirty, twice.Meta.IsDirty)
}

func TestValidateFillsErrorMap(t *testing.T) {
	m := NewManager()
	cfg := orderForm()
	state, err := m.New(cfg, form.ModeCreate, nil, "")
	require.NoError(t, err)

	ok := m.Validate(state, cfg)
	assert.False(t, ok)
	assert.Contains(t, state.Errors, "user.name")

	state, err = m.Update(state, cfg, "user.name", "Ada")
	require.NoError(t, err)
	ok = m.Validate(state, cfg)
	assert.True(t, ok)
	assert.Empty(t, state.Errors)
}

func TestSubmitAndDeleteConfigResolution(t *testing.T) {
	m := NewManager()
	cfg := orderForm()

	create, err := m.New(cfg, form.ModeCreate, nil, "")
	require.NoError(t, err)
	submit := m.SubmitConfig(create, cfg)
	require.NotNil(t, submit)
	assert.Equal(t, form.SubmitInsert, submit.Mode)
	assert.Nil(t, m.DeleteConfig(create, cfg))

	existing := map[string]any{"price": float64(1)}
	edit, err := m.New(cfg, form.ModeEdit, existing, "doc-1")
	require.NoError(t, err)
	submit = m.SubmitConfig(edit, cfg)
	require.NotNil(t, submit)
	assert.Equal(t, form.SubmitUpdate, submit.Mode)
	del := m.DeleteConfig(edit, cfg)
	require.NotNil(t, del)
	assert.True(t, del.Enabled)

	view, err := m.New(cfg, form.ModeView, existing, "doc-1")
	require.NoError(t, err)
	assert.Nil(t, m.SubmitConfig(view, cfg))
	assert.Nil(t, m.DeleteConfig(view, cfg))
}

func TestEditableRespectsModeAndLifecycle(t *testing.T) {
	m := NewManager()
	cfg := orderForm()
	existing := map[string]any{"price": float64(1)}

	edit, err := m.New(cfg, form.ModeEdit, existing, "doc-1")
	require.NoError(t, err)
	assert.True(t, Editable(edit, cfg, "user.name"))
	assert.False(t, Editable(edit, cfg, "user.email")) // immutable in edit
	assert.False(t, Editable(edit, cfg, "total"))      // computed
	assert.False(t, Editable(edit, cfg, "notes"))      // not included

	view, err := m.New(cfg, form.ModeView, existing, "doc-1")
	require.NoError(t, err)
	assert.False(t, Editable(view, cfg, "user.name"))
}

func TestSearchModeStartsEmpty(t *testing.T) {
	m := NewManager()
	state, err := m.New(orderForm(), form.ModeSearch, nil, "")
	require.NoError(t, err)
	assert.Empty(t, state.Values)
	assert.False(t, state.Meta.IsNew)
}
