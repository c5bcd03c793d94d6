package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formweave/formweave/internal/form"
)

func orderLifecycle() *form.Lifecycle {
	return &form.Lifecycle{
		Create: &form.CreatePolicy{
			Defaults: map[string]any{"status": "draft"},
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
	}
}

func TestSubmitConfigFor(t *testing.T) {
	lc := orderLifecycle()

	create := SubmitConfigFor(lc, form.ModeCreate)
	require.NotNil(t, create)
	assert.Equal(t, form.SubmitInsert, create.Mode)

	edit := SubmitConfigFor(lc, form.ModeEdit)
	require.NotNil(t, edit)
	assert.Equal(t, form.SubmitUpdate, edit.Mode)

	clone := SubmitConfigFor(lc, form.ModeClone)
	require.NotNil(t, clone)
	assert.Equal(t, form.SubmitInsert, clone.Mode)

	assert.Nil(t, SubmitConfigFor(lc, form.ModeView))
	assert.Nil(t, SubmitConfigFor(lc, form.ModeSearch))
	assert.Nil(t, SubmitConfigFor(nil, form.ModeCreate))
	assert.Nil(t, SubmitConfigFor(&form.Lifecycle{}, form.ModeCreate))
}

func TestDeleteConfigFor(t *testing.T) {
	lc := orderLifecycle()

	del := DeleteConfigFor(lc, form.ModeEdit)
	require.NotNil(t, del)
	assert.True(t, del.Enabled)
	assert.Equal(t, "Delete this order?", del.Confirm)

	for _, mode := range []form.Mode{form.ModeCreate, form.ModeView, form.ModeClone, form.ModeSearch} {
		assert.Nil(t, DeleteConfigFor(lc, mode), "delete config leaked into %s", mode)
	}
	assert.Nil(t, DeleteConfigFor(nil, form.ModeEdit))
	assert.Nil(t, DeleteConfigFor(&form.Lifecycle{}, form.ModeEdit))
}

func TestPolicyAccessors(t *testing.T) {
	lc := orderLifecycle()

	assert.Equal(t, map[string]any{"status": "draft"}, Defaults(lc))
	assert.Equal(t, []string{"status"}, ClearFields(lc))
	assert.Equal(t, []string{"user.email"}, ImmutableFields(lc))

	assert.Nil(t, Defaults(nil))
	assert.Nil(t, ClearFields(&form.Lifecycle{}))
	assert.Nil(t, ImmutableFields(&form.Lifecycle{}))
}

func TestDefault(t *testing.T) {
	lc := Default("invoices")

	create := SubmitConfigFor(lc, form.ModeCreate)
	require.NotNil(t, create)
	assert.Equal(t, form.SubmitInsert, create.Mode)
	assert.Equal(t, "invoices", create.Collection)

	edit := SubmitConfigFor(lc, form.ModeEdit)
	require.NotNil(t, edit)
	assert.Equal(t, form.SubmitUpdate, edit.Mode)

	del := DeleteConfigFor(lc, form.ModeEdit)
	require.NotNil(t, del)
	assert.True(t, del.Enabled)

	// Clones drop the copied document identity.
	assert.Equal(t, []string{"_id"}, ClearFields(lc))
}
