package repository

import (
	"context"
	"time"

	"metrodoc/internal/model"
)

// NotificationFilter narrows a notification listing. Zero fields do not filter.
// After is exclusive and NotAfter inclusive, matching the current/past split.
type NotificationFilter struct {
	Category string
	Priority model.NotificationPriority
	After    time.Time
	NotAfter time.Time
}

// NotificationRepository defines data access for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) (*model.Notification, error)
	FindByID(ctx context.Context, id string) (*model.Notification, error)

	// List returns matching notifications, newest first.
	List(ctx context.Context, f NotificationFilter) ([]model.Notification, error)

	CountUnread(ctx context.Context) (int, error)

	// MarkRead sets is_read and returns the row. It is idempotent.
	MarkRead(ctx context.Context, id string) (*model.Notification, error)

	// MarkAllRead returns how many rows changed.
	MarkAllRead(ctx context.Context) (int64, error)

	Delete(ctx context.Context, id string) error
}
