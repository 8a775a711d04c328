package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"metrodoc/internal/model"
	"metrodoc/internal/repository"
)

// SummaryPostgres stores one summary per document. Rows go away with their document.
type SummaryPostgres struct {
	db *sql.DB
}

func NewSummaryPostgres(db *sql.DB) *SummaryPostgres {
	return &SummaryPostgres{db: db}
}

var _ repository.SummaryRepository = (*SummaryPostgres)(nil)

func (r *SummaryPostgres) Find(ctx context.Context, documentID string) (*model.Summary, error) {
	const q = `SELECT summary, key_points FROM document_summaries WHERE document_id = $1`
	var (
		s      model.Summary
		points []byte
	)
	if err := r.db.QueryRowContext(ctx, q, documentID).Scan(&s.Summary, &points); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(points, &s.KeyPoints); err != nil {
		return nil, fmt.Errorf("decode key points of document %s: %w", documentID, err)
	}
	return &s, nil
}

func (r *SummaryPostgres) Save(ctx context.Context, documentID string, s model.Summary) error {
	points, err := encodeStrings(s.KeyPoints)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO document_summaries (document_id, summary, key_points)
		VALUES ($1, $2, $3)
		ON CONFLICT (document_id) DO UPDATE
		SET summary = EXCLUDED.summary, key_points = EXCLUDED.key_points, created_at = now()`
	_, err = r.db.ExecContext(ctx, q, documentID, s.Summary, points)
	return err
}
