package repository

import (
	"context"

	"metrodoc/internal/model"
)

// DocumentFilter narrows a document search. Empty fields do not filter.
// Text is matched case-insensitively against title, description, department and tags.
type DocumentFilter struct {
	Text       string
	Department string
	Priority   model.Priority
}

// DocumentRepository defines data access for documents using SQL queries only.
type DocumentRepository interface {
	// Create inserts a new document record. The caller assigns ID and UploadDate.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns a page of documents, newest first, and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Document], error)

	// Search returns every document matching f, newest first.
	Search(ctx context.Context, f DocumentFilter) ([]model.Document, error)

	// Update merges patch into the stored row under a row lock and returns the result.
	Update(ctx context.Context, id string, patch model.DocumentPatch) (*model.Document, error)

	// Delete removes a document by ID. A missing row is reported as sql.ErrNoRows.
	Delete(ctx context.Context, id string) error
}
