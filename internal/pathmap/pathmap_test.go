package pathmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"simple", "name", false},
		{"nested", "user.address.city", false},
		{"underscore id", "_id", false},
		{"empty", "", true},
		{"leading dot", ".name", true},
		{"trailing dot", "name.", true},
		{"empty segment", "user..name", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.path)
			if tt.wantErr {
				var perr *PathError
				require.ErrorAs(t, err, &perr)
				assert.Equal(t, tt.path, perr.Path)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFlattenNestedDocument(t *testing.T) {
	nested := map[string]any{
		"user": map[string]any{
			"name": "Ada",
			"address": map[string]any{
				"city": "London",
			},
		},
		"tags":     []any{"a", "b"},
		"quantity": 5,
	}

	flat, err := Flatten(nested)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"user.name":         "Ada",
		"user.address.city": "London",
		"tags":              []any{"a", "b"},
		"quantity":          5,
	}, flat)
}

func TestFlattenKeepsArraysAsLeaves(t *testing.T) {
	nested := map[string]any{
		"items": []any{
			map[string]any{"sku": "x"},
		},
	}
	flat, err := Flatten(nested)
	require.NoError(t, err)
	// The array is one leaf; objects inside it are not expanded.
	assert.Len(t, flat, 1)
	assert.Equal(t, nested["items"], flat["items"])
}

func TestFlattenRejectsDottedKeys(t *testing.T) {
	_, err := Flatten(map[string]any{
		"user": map[string]any{"first.name": "Ada"},
	})
	var perr *PathError
	require.ErrorAs(t, err, &perr)
}

func TestUnflattenRoundTrip(t *testing.T) {
	nested := map[string]any{
		"user": map[string]any{
			"name":  "Ada",
			"email": "ada@example.com",
		},
		"quantity": 5,
	}
	flat, err := Flatten(nested)
	require.NoError(t, err)
	back, err := Unflatten(flat)
	require.NoError(t, err)
	assert.Equal(t, nested, back)
}

func TestUnflattenRejectsPrefixCollision(t *testing.T) {
	_, err := Unflatten(map[string]any{
		"user":      "scalar",
		"user.name": "Ada",
	})
	var perr *PathError
	require.ErrorAs(t, err, &perr)

	// Deterministic regardless of which key is seen first.
	_, err2 := Unflatten(map[string]any{
		"user.name": "Ada",
		"user":      "scalar",
	})
	require.Error(t, err2)
	assert.Equal(t, err.Error(), err2.Error())
}

func TestUnflattenRejectsMalformedKey(t *testing.T) {
	_, err := Unflatten(map[string]any{".bad": 1})
	var perr *PathError
	require.ErrorAs(t, err, &perr)
}

func TestGetSetDelete(t *testing.T) {
	doc := map[string]any{}

	Set(doc, "user.name", "Ada")
	Set(doc, "user.email", "ada@example.com")

	v, ok := Get(doc, "user.name")
	require.True(t, ok)
	assert.Equal(t, "Ada", v)

	_, ok = Get(doc, "user.phone")
	assert.False(t, ok)

	require.True(t, Delete(doc, "user.email"))
	assert.False(t, Delete(doc, "user.email"))

	require.True(t, Delete(doc, "user.name"))
	// Intermediate objects left empty are pruned.
	_, ok = doc["user"]
	assert.False(t, ok)
}

func TestSetOverwritesLeafWithObject(t *testing.T) {
	doc := map[string]any{"user": "scalar"}
	Set(doc, "user.name", "Ada")
	v, ok := Get(doc, "user.name")
	require.True(t, ok)
	assert.Equal(t, "Ada", v)
}
