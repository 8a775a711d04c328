package postgres

import (
	"context"
	"database/sql"

	"metrodoc/internal/database"
	"metrodoc/internal/model"
	"metrodoc/internal/query"
	"metrodoc/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	tags, err := encodeStrings(doc.Tags)
	if err != nil {
		return nil, err
	}
	const q = `
		INSERT INTO documents (id, title, description, department, priority, tags, upload_date,
			file_type, file_name, file_size, file_path, extracted_text, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Title,
		doc.Description,
		doc.Department,
		doc.Priority,
		tags,
		doc.UploadDate,
		doc.FileType,
		doc.FileName,
		doc.FileSize,
		doc.FilePath,
		doc.ExtractedText,
		doc.UserID,
	)
	return scanDocument(row)
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// List returns documents using LIMIT/OFFSET pagination and a total count.
func (r *DocumentPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	const qCount = `SELECT COUNT(*) FROM documents`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	qList := `SELECT ` + documentColumns + `
		FROM documents
		ORDER BY upload_date DESC, id DESC
		LIMIT $1 OFFSET $2`
	items, err := r.queryDocuments(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Document]{Items: items, Total: total}, nil
}

// Search filters in SQL. Department "all" disables the department predicate.
func (r *DocumentPostgres) Search(ctx context.Context, f repository.DocumentFilter) ([]model.Document, error) {
	department := f.Department
	if department == query.AllDepartments {
		department = ""
	}
	q := `SELECT ` + documentColumns + `
		FROM documents
		WHERE ($1 = '' OR department = $1)
		  AND ($2 = '' OR priority = $2)
		  AND ($3 = '' OR title ILIKE $3 OR description ILIKE $3 OR department ILIKE $3
		       OR EXISTS (SELECT 1 FROM jsonb_array_elements_text(tags) AS t(tag) WHERE t.tag ILIKE $3))
		ORDER BY upload_date DESC, id DESC`
	return r.queryDocuments(ctx, q, department, string(f.Priority), containsPattern(f.Text))
}

// Update locks the row, merges patch and writes the mutable columns back.
func (r *DocumentPostgres) Update(ctx context.Context, id string, patch model.DocumentPatch) (*model.Document, error) {
	var out *model.Document
	err := database.InTx(ctx, r.db, func(tx *sql.Tx) error {
		cur, err := scanDocument(tx.QueryRowContext(ctx,
			`SELECT `+documentColumns+` FROM documents WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		next := patch.Apply(*cur)
		tags, err := encodeStrings(next.Tags)
		if err != nil {
			return err
		}
		const q = `
			UPDATE documents
			SET title = $2, description = $3, department = $4, priority = $5, tags = $6
			WHERE id = $1
			RETURNING ` + documentColumns
		out, err = scanDocument(tx.QueryRowContext(ctx, q,
			id, next.Title, next.Description, next.Department, next.Priority, tags))
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a document by ID.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	return noRowsIfUnaffected(res)
}

func (r *DocumentPostgres) queryDocuments(ctx context.Context, q string, args ...any) ([]model.Document, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func noRowsIfUnaffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
