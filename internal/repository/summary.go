package repository

import (
	"context"

	"metrodoc/internal/model"
)

// SummaryRepository caches generated summaries per document.
type SummaryRepository interface {
	// Find returns sql.ErrNoRows when no summary is cached.
	Find(ctx context.Context, documentID string) (*model.Summary, error)
	Save(ctx context.Context, documentID string, s model.Summary) error
}
