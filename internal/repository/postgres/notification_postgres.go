package postgres

import (
	"context"
	"database/sql"

	"metrodoc/internal/model"
	"metrodoc/internal/repository"
)

// NotificationPostgres is a PostgreSQL implementation of repository.NotificationRepository.
// document_id carries no foreign key: notifications outlive the documents they mention.
type NotificationPostgres struct {
	db *sql.DB
}

func NewNotificationPostgres(db *sql.DB) *NotificationPostgres {
	return &NotificationPostgres{db: db}
}

var _ repository.NotificationRepository = (*NotificationPostgres)(nil)

func (r *NotificationPostgres) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	const q = `
		INSERT INTO notifications (id, type, category, priority, title, message, created_at,
			document_id, document_title, is_read)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + notificationColumns
	row := r.db.QueryRowContext(ctx, q,
		n.ID,
		n.Type,
		n.Category,
		n.Priority,
		n.Title,
		n.Message,
		n.Timestamp,
		nullable(n.DocumentID),
		nullable(n.DocumentTitle),
		n.IsRead,
	)
	return scanNotification(row)
}

func (r *NotificationPostgres) FindByID(ctx context.Context, id string) (*model.Notification, error) {
	q := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	return scanNotification(r.db.QueryRowContext(ctx, q, id))
}

func (r *NotificationPostgres) List(ctx context.Context, f repository.NotificationFilter) ([]model.Notification, error) {
	q := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE ($1 = '' OR category = $1)
		  AND ($2 = '' OR priority = $2)
		  AND ($3::timestamptz IS NULL OR created_at > $3)
		  AND ($4::timestamptz IS NULL OR created_at <= $4)
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, f.Category, string(f.Priority), nullTime(f.After), nullTime(f.NotAfter))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *NotificationPostgres) CountUnread(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE NOT is_read`).Scan(&n)
	return n, err
}

func (r *NotificationPostgres) MarkRead(ctx context.Context, id string) (*model.Notification, error) {
	q := `UPDATE notifications SET is_read = TRUE WHERE id = $1 RETURNING ` + notificationColumns
	return scanNotification(r.db.QueryRowContext(ctx, q, id))
}

func (r *NotificationPostgres) MarkAllRead(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE NOT is_read`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *NotificationPostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return noRowsIfUnaffected(res)
}
