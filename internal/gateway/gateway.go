// Package gateway defines the boundary between the client core and the backend that persists
// documents and notifications.
package gateway

import (
	"context"
	"io"

	"metrodoc/internal/model"
	"metrodoc/internal/query"
)

// Gateway is the Remote Gateway contract. Every call may fail with a *model.RemoteError whose
// Error() text is suitable for display as-is.
type Gateway interface {
	Login(ctx context.Context, creds model.Credentials) (model.AuthResult, error)
	Register(ctx context.Context, reg model.Registration) (model.AuthResult, error)
	CurrentUser(ctx context.Context) (model.User, error)

	FetchAllDocuments(ctx context.Context) ([]model.Document, error)
	SearchDocuments(ctx context.Context, req query.Request) ([]model.Document, error)
	FetchDocumentByID(ctx context.Context, id string) (model.Document, error)
	CreateDocument(ctx context.Context, r io.Reader, fileName string, meta model.Metadata) (model.Document, error)
	UpdateDocument(ctx context.Context, id string, patch model.DocumentPatch) (model.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	FetchDocumentSummary(ctx context.Context, id string) (model.Summary, error)
	DownloadDocument(ctx context.Context, id string, w io.Writer) (int64, error)

	FetchAllNotifications(ctx context.Context) ([]model.Notification, error)
	FetchCurrentNotifications(ctx context.Context) ([]model.Notification, error)
	FetchPastNotifications(ctx context.Context) ([]model.Notification, error)
	FetchUnreadCount(ctx context.Context) (int, error)
	MarkNotificationRead(ctx context.Context, id string) (model.Notification, error)
	MarkAllNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error
}

type tokenKey struct{}

// WithToken attaches a bearer token to ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom returns the bearer token attached to ctx, if any.
func TokenFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}
