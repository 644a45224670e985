package store

// #region imports
import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pulseplan/taste-engine/internal/scheduler"
)

// #endregion imports

// #region find-unit
// FindUnit loads one scheduled unit by id.
func (s *Store) FindUnit(ctx context.Context, id string) (*scheduler.Unit, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM units WHERE unit_id = ?`, id,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("unit %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get unit %s: %w", id, err)
	}
	return unmarshalUnit(id, doc)
}
// #endregion find-unit

// #region save-unit
// SaveUnit upserts the unit document, lifting the scheduler predicate
// fields (status, toggles, next_post_at) into columns.
func (s *Store) SaveUnit(ctx context.Context, u *scheduler.Unit) error {
	doc, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal unit %s: %w", u.ID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO units (unit_id, subject_id, status, enabled, auto_post, next_post_at, doc, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(unit_id) DO UPDATE SET
		 subject_id = excluded.subject_id, status = excluded.status,
		 enabled = excluded.enabled, auto_post = excluded.auto_post,
		 next_post_at = excluded.next_post_at, doc = excluded.doc,
		 updated_at = excluded.updated_at`,
		u.ID, u.SubjectID, string(u.Status),
		boolInt(u.Scheduling.Enabled), boolInt(u.Scheduling.AutoPost),
		u.NextPostAt.UTC().Format(time.RFC3339Nano), string(doc),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save unit %s: %w", u.ID, err)
	}
	return nil
}
// #endregion save-unit

// #region due
// Due returns enabled auto-post units whose next post time has arrived,
// oldest first.
func (s *Store) Due(ctx context.Context, now time.Time) ([]*scheduler.Unit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT unit_id, doc FROM units
		 WHERE status = ? AND enabled = 1 AND auto_post = 1 AND next_post_at <= ?
		 ORDER BY next_post_at ASC`,
		string(scheduler.StatusScheduled), now.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("query due units: %w", err)
	}
	defer rows.Close()

	var units []*scheduler.Unit
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		u, err := unmarshalUnit(id, doc)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}
// #endregion due

// #region list-units
// ListUnits returns every unit for a subject, newest first.
func (s *Store) ListUnits(ctx context.Context, subjectID string) ([]*scheduler.Unit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT unit_id, doc FROM units WHERE subject_id = ? ORDER BY updated_at DESC`,
		subjectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()

	var units []*scheduler.Unit
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		u, err := unmarshalUnit(id, doc)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}
// #endregion list-units

// #region helpers
func unmarshalUnit(id, doc string) (*scheduler.Unit, error) {
	var u scheduler.Unit
	if err := json.Unmarshal([]byte(doc), &u); err != nil {
		return nil, fmt.Errorf("unmarshal unit %s: %w", id, err)
	}
	return &u, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
// #endregion helpers
