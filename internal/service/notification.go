package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"metrodoc/internal/model"
	"metrodoc/internal/repository"
)

// NotificationFilter narrows List. Empty fields do not filter.
type NotificationFilter struct {
	Category string
	Priority model.NotificationPriority
}

// NotificationService defines the notification use cases. Current and Past split at
// now minus the window: a notification exactly on the boundary is past.
type NotificationService interface {
	Notifier
	List(ctx context.Context, f NotificationFilter) ([]model.Notification, error)
	Current(ctx context.Context, now time.Time) ([]model.Notification, error)
	Past(ctx context.Context, now time.Time) ([]model.Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkRead(ctx context.Context, id string) (*model.Notification, error)
	MarkAllRead(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id string) error
}

type notificationService struct {
	repo   repository.NotificationRepository
	window time.Duration
	clock  func() time.Time
	log    *zap.Logger
}

// NewNotificationService constructs a NotificationService. A non-positive window uses the default.
func NewNotificationService(repo repository.NotificationRepository, window time.Duration, log *zap.Logger) NotificationService {
	if window <= 0 {
		window = model.DefaultNotificationWindow
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &notificationService{repo: repo, window: window, clock: time.Now, log: log}
}

func (s *notificationService) List(ctx context.Context, f NotificationFilter) ([]model.Notification, error) {
	if f.Priority != "" && !f.Priority.Valid() {
		return nil, newError(model.ErrInvalid, "unknown priority %q", f.Priority)
	}
	return s.repo.List(ctx, repository.NotificationFilter{Category: f.Category, Priority: f.Priority})
}

func (s *notificationService) Current(ctx context.Context, now time.Time) ([]model.Notification, error) {
	return s.repo.List(ctx, repository.NotificationFilter{After: now.Add(-s.window)})
}

func (s *notificationService) Past(ctx context.Context, now time.Time) ([]model.Notification, error) {
	return s.repo.List(ctx, repository.NotificationFilter{NotAfter: now.Add(-s.window)})
}

func (s *notificationService) UnreadCount(ctx context.Context) (int, error) {
	return s.repo.CountUnread(ctx)
}

func (s *notificationService) MarkRead(ctx context.Context, id string) (*model.Notification, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	n, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotificationAbsent
		}
		return nil, err
	}
	return n, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx)
	if err != nil {
		return 0, err
	}
	s.log.Debug("notifications marked read", zap.Int64("count", n))
	return n, nil
}

func (s *notificationService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotificationAbsent
		}
		return err
	}
	return nil
}

// Notify stores a new unread notification. ID and Timestamp are assigned when empty.
func (s *notificationService) Notify(ctx context.Context, n model.Notification) (*model.Notification, error) {
	if strings.TrimSpace(n.Title) == "" {
		return nil, newError(model.ErrInvalid, "notification title is required")
	}
	if !n.Priority.Valid() {
		return nil, newError(model.ErrInvalid, "unknown priority %q", n.Priority)
	}
	if n.Type == "" {
		n.Type = model.TypeInfo
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = s.clock().UTC()
	}
	n.IsRead = false
	return s.repo.Create(ctx, &n)
}
