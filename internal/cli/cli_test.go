package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootRejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "validate", "testdata/order.yaml")
	require.Error(t, err)
}

func TestValidateAcceptsGoodConfig(t *testing.T) {
	out, err := execute(t, "validate", "testdata/order.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ testdata/order.yaml")
}

func TestValidateFailsBadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	src := []byte(`{"id": "bad", "fieldConfigs": [{"path": "x", "type": "mystery", "included": true}]}`)
	require.NoError(t, os.WriteFile(path, src, 0o644))

	out, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E210")
}

func TestValidateMissingFileIsCommandError(t *testing.T) {
	_, err := execute(t, "validate", "testdata/nonexistent.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateJSONOutput(t *testing.T) {
	out, err := execute(t, "--format", "json", "validate", "testdata/order.yaml")
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestRenderCreateMode(t *testing.T) {
	out, err := execute(t, "render", "testdata/order.yaml", "--mode", "create")
	require.NoError(t, err)
	assert.Contains(t, out, "user.name")
	assert.Contains(t, out, "total")
}

func TestRenderViewModeNotEditable(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "doc.json")
	require.NoError(t, os.WriteFile(docPath, []byte(`{"user": {"name": "Ada"}, "price": 2, "quantity": 1}`), 0o644))

	out, err := execute(t, "--format", "json", "render", "testdata/order.yaml",
		"--mode", "view", "--doc", docPath, "--id", "doc-1")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   RenderResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotEmpty(t, resp.Data.Fields)
	for _, field := range resp.Data.Fields {
		assert.False(t, field.Editable, "field %s editable in view mode", field.Path)
	}
}

func TestSubmitRoundTrip(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "docs.db")
	valuesPath := filepath.Join(dir, "values.json")
	values := `{"user.name": "Ada", "user.email": "ada@example.com", "price": 10, "quantity": 5}`
	require.NoError(t, os.WriteFile(valuesPath, []byte(values), 0o644))

	out, err := execute(t, "--format", "json", "submit", "testdata/order.yaml",
		"--mode", "create", "--values", valuesPath, "--db", dbPath)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   SubmitResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "orders", resp.Data.Collection)
	require.NotEmpty(t, resp.Data.DocumentID)

	// The stored document is findable through search.
	searchOut, err := execute(t, "--format", "json", "search", "testdata/order.yaml",
		"--db", dbPath, "--filter", "status:equals:draft")
	require.NoError(t, err)
	assert.Contains(t, searchOut, resp.Data.DocumentID)

	// And deletable per the edit lifecycle.
	_, err = execute(t, "delete", "testdata/order.yaml", resp.Data.DocumentID,
		"--db", dbPath, "--yes")
	require.NoError(t, err)
}

func TestSubmitValidationFailure(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "docs.db")
	valuesPath := filepath.Join(dir, "values.json")
	require.NoError(t, os.WriteFile(valuesPath, []byte(`{"price": 3}`), 0o644))

	_, err := execute(t, "submit", "testdata/order.yaml",
		"--mode", "create", "--values", valuesPath, "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestSearchRejectsBadFilter(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "search", "testdata/order.yaml",
		"--db", filepath.Join(dir, "docs.db"), "--filter", "status=draft")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandRunsScenario(t *testing.T) {
	out, err := execute(t, "test", "testdata/create-order.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ create-order")
}

func TestParseFilters(t *testing.T) {
	conditions, err := parseFilters([]string{
		"status:equals:draft",
		"quantity:greaterThan:4",
		"notes:isEmpty",
	})
	require.NoError(t, err)
	require.Len(t, conditions, 3)
	assert.Equal(t, "draft", conditions[0].Value)
	assert.Equal(t, float64(4), conditions[1].Value)
	assert.Nil(t, conditions[2].Value)
}
