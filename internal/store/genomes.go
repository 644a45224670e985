package store

// #region imports
import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pulseplan/taste-engine/internal/genome"
)

// #endregion imports

// #region genome-for
// GenomeFor loads the genome document for a subject. A missing genome
// returns (nil, nil); callers treat that as "not yet created".
func (s *Store) GenomeFor(ctx context.Context, subjectID string) (*genome.Genome, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM genomes WHERE subject_id = ?`, subjectID,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get genome %s: %w", subjectID, err)
	}

	var g genome.Genome
	if err := json.Unmarshal([]byte(doc), &g); err != nil {
		return nil, fmt.Errorf("unmarshal genome %s: %w", subjectID, err)
	}
	return &g, nil
}
// #endregion genome-for

// #region save-genome
// SaveGenome upserts the genome document. Last writer wins.
func (s *Store) SaveGenome(ctx context.Context, g *genome.Genome) error {
	doc, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshal genome %s: %w", g.SubjectID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO genomes (subject_id, doc, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(subject_id) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		g.SubjectID, string(doc), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save genome %s: %w", g.SubjectID, err)
	}
	return nil
}
// #endregion save-genome

// #region ensure-genome
// EnsureGenome returns the subject's genome, creating it lazily on first use.
func (s *Store) EnsureGenome(ctx context.Context, subjectID string) (*genome.Genome, error) {
	g, err := s.GenomeFor(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if g != nil {
		return g, nil
	}
	g = genome.New(subjectID)
	if err := s.SaveGenome(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}
// #endregion ensure-genome
