package store

// #region imports
import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pulseplan/taste-engine/internal/content"
)

// #endregion imports

// #region find-content
// FindContent loads one content item by id.
func (s *Store) FindContent(ctx context.Context, id string) (*content.Item, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM contents WHERE content_id = ?`, id,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("content %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get content %s: %w", id, err)
	}

	var item content.Item
	if err := json.Unmarshal([]byte(doc), &item); err != nil {
		return nil, fmt.Errorf("unmarshal content %s: %w", id, err)
	}
	return &item, nil
}
// #endregion find-content

// #region save-content
// SaveContent upserts the content document, lifting status for queries.
func (s *Store) SaveContent(ctx context.Context, item *content.Item) error {
	doc, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal content %s: %w", item.ID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO contents (content_id, subject_id, status, doc, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(content_id) DO UPDATE SET
		 subject_id = excluded.subject_id, status = excluded.status,
		 doc = excluded.doc, updated_at = excluded.updated_at`,
		item.ID, item.SubjectID, string(item.Status), string(doc),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save content %s: %w", item.ID, err)
	}
	return nil
}
// #endregion save-content

// #region pending-validation
// PendingValidation lists published items that have not been validated
// yet. Drives the outcome-validation sweep.
func (s *Store) PendingValidation(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT content_id FROM contents
		 WHERE status = ? AND json_extract(doc, '$.validation') IS NULL
		 ORDER BY updated_at ASC LIMIT ?`,
		string(content.StatusPublished), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("pending validation: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan content id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
// #endregion pending-validation

// #region approvals
// ApprovalStatus returns the manual-approval record status for an item,
// or "" when no record exists.
func (s *Store) ApprovalStatus(ctx context.Context, contentID string) (string, error) {
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM approvals WHERE content_id = ?`, contentID,
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get approval %s: %w", contentID, err)
	}
	return status, nil
}

// SetApproval upserts the manual-approval record for an item.
func (s *Store) SetApproval(ctx context.Context, contentID, status string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO approvals (content_id, status, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(content_id) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at`,
		contentID, status, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("set approval %s: %w", contentID, err)
	}
	return nil
}
// #endregion approvals
