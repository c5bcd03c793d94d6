package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/formweave/formweave/internal/form"
)

// NotFoundError reports an update, get, or delete against a document that
// does not exist in the collection.
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document %q not found in collection %q", e.ID, e.Collection)
}

// PolicyError reports an operation the lifecycle configuration does not
// permit, like deleting without an enabled delete config.
type PolicyError struct {
	Operation string
	Reason    string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("%s not permitted: %s", e.Operation, e.Reason)
}

// Document is one stored document with its identity.
type Document struct {
	Collection string         `json:"collection"`
	ID         string         `json:"id"`
	Body       map[string]any `json:"body"`
}

// Submit persists a prepared document per the submit config. Insert mode
// assigns a fresh id unless the document already carries one under "_id";
// update mode rewrites the document identified by documentID. Returns the
// id of the stored document.
func (s *Store) Submit(ctx context.Context, submit *form.SubmitConfig, doc map[string]any, documentID string) (string, error) {
	if submit == nil {
		return "", &PolicyError{Operation: "submit", Reason: "no submit config for this mode"}
	}
	if submit.Collection == "" {
		return "", &PolicyError{Operation: "submit", Reason: "submit config has no collection"}
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}

	switch submit.Mode {
	case form.SubmitInsert:
		id := documentID
		if existing, ok := doc["_id"].(string); ok && existing != "" {
			id = existing
		}
		if id == "" {
			id = uuid.NewString()
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO documents (collection, id, body) VALUES (?, ?, ?)`,
			submit.Collection, id, string(body))
		if err != nil {
			return "", fmt.Errorf("insert document: %w", err)
		}
		s.logger.Info("document inserted", "collection", submit.Collection, "id", id)
		return id, nil

	case form.SubmitUpdate:
		if documentID == "" {
			return "", &PolicyError{Operation: "submit", Reason: "update mode requires a document id"}
		}
		res, err := s.db.ExecContext(ctx,
			`UPDATE documents
			 SET body = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
			 WHERE collection = ? AND id = ?`,
			string(body), submit.Collection, documentID)
		if err != nil {
			return "", fmt.Errorf("update document: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return "", fmt.Errorf("update document: %w", err)
		}
		if affected == 0 {
			return "", &NotFoundError{Collection: submit.Collection, ID: documentID}
		}
		s.logger.Info("document updated", "collection", submit.Collection, "id", documentID)
		return documentID, nil

	default:
		return "", &PolicyError{Operation: "submit", Reason: fmt.Sprintf("unknown submit mode %q", submit.Mode)}
	}
}

// Delete removes a document, gated by the lifecycle delete config.
func (s *Store) Delete(ctx context.Context, del *form.DeleteConfig, collection, id string) error {
	if del == nil || !del.Enabled {
		return &PolicyError{Operation: "delete", Reason: "delete is not enabled for this form"}
	}
	if collection == "" || id == "" {
		return &PolicyError{Operation: "delete", Reason: "delete requires a collection and document id"}
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		collection, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if affected == 0 {
		return &NotFoundError{Collection: collection, ID: id}
	}
	s.logger.Info("document deleted", "collection", collection, "id", id)
	return nil
}

// Get loads one document body by id.
func (s *Store) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`,
		collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Collection: collection, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	doc := make(map[string]any)
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document %s/%s: %w", collection, id, err)
	}
	return doc, nil
}
