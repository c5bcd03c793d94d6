package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/formweave/formweave/internal/form"
	"github.com/formweave/formweave/internal/pathmap"
)

// Find runs search-mode filter conditions against a collection. The
// conditions reuse the form's operator set; each one targets a dotted
// document path via SQLite's JSON functions.
//
// Every query carries a deterministic ORDER BY so repeated searches return
// rows in a stable order. All values are parameterized, never
// interpolated; dotted paths are validated and bound as JSON path
// parameters.
func (s *Store) Find(ctx context.Context, collection string, conditions []form.Condition) ([]Document, error) {
	where, params, err := compileConditions(conditions)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, body FROM documents WHERE collection = ?`
	args := append([]any{collection}, params...)
	if where != "" {
		query += " AND " + where
	}
	query += " ORDER BY id COLLATE BINARY ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc := make(map[string]any)
		if err := json.Unmarshal([]byte(body), &doc); err != nil {
			return nil, fmt.Errorf("unmarshal document %s/%s: %w", collection, id, err)
		}
		docs = append(docs, Document{Collection: collection, ID: id, Body: doc})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}

	s.logger.Debug("search executed",
		"collection", collection, "conditions", len(conditions), "matches", len(docs))
	return docs, nil
}

// compileConditions turns filter conditions into a parameterized WHERE
// fragment joined with AND. Returns ("", nil, nil) for no conditions.
func compileConditions(conditions []form.Condition) (string, []any, error) {
	var parts []string
	var params []any

	for _, cond := range conditions {
		if err := pathmap.Validate(cond.Field); err != nil {
			return "", nil, err
		}
		jsonPath := "$." + cond.Field
		extract := "json_extract(body, ?)"

		switch cond.Operator {
		case form.OpEquals:
			parts = append(parts, extract+" = ?")
			params = append(params, jsonPath, cond.Value)
		case form.OpNotEquals:
			parts = append(parts, "("+extract+" IS NULL OR "+extract+" != ?)")
			params = append(params, jsonPath, jsonPath, cond.Value)
		case form.OpContains:
			parts = append(parts, extract+" LIKE '%' || ? || '%'")
			params = append(params, jsonPath, cond.Value)
		case form.OpNotContains:
			parts = append(parts, "("+extract+" IS NULL OR "+extract+" NOT LIKE '%' || ? || '%')")
			params = append(params, jsonPath, jsonPath, cond.Value)
		case form.OpGreaterThan:
			parts = append(parts, extract+" > ?")
			params = append(params, jsonPath, cond.Value)
		case form.OpLessThan:
			parts = append(parts, extract+" < ?")
			params = append(params, jsonPath, cond.Value)
		case form.OpIsEmpty:
			parts = append(parts, "("+extract+" IS NULL OR "+extract+" = '')")
			params = append(params, jsonPath, jsonPath)
		case form.OpIsNotEmpty:
			parts = append(parts, "("+extract+" IS NOT NULL AND "+extract+" != '')")
			params = append(params, jsonPath, jsonPath)
		case form.OpIsTrue:
			// SQLite's json_extract surfaces JSON booleans as 0/1.
			parts = append(parts, extract+" = 1")
			params = append(params, jsonPath)
		case form.OpIsFalse:
			parts = append(parts, extract+" = 0")
			params = append(params, jsonPath)
		default:
			return "", nil, fmt.Errorf("unsupported search operator %q", cond.Operator)
		}
	}

	return strings.Join(parts, " AND "), params, nil
}
