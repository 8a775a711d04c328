package session

import (
	"context"
	"io"

	"metrodoc/internal/gateway"
	"metrodoc/internal/model"
	"metrodoc/internal/query"
)

type guarded struct {
	next    gateway.Gateway
	session *Session
}

// Guard wraps gw so that every call except Login and Register fails fast with
// model.ErrUnauthenticated when there is no valid session. Passing calls carry the bearer token.
func Guard(gw gateway.Gateway, s *Session) gateway.Gateway {
	return &guarded{next: gw, session: s}
}

func (g *guarded) authorize(ctx context.Context) (context.Context, error) {
	token, err := g.session.Token()
	if err != nil {
		return nil, err
	}
	return gateway.WithToken(ctx, token), nil
}

func (g *guarded) Login(ctx context.Context, creds model.Credentials) (model.AuthResult, error) {
	return g.next.Login(ctx, creds)
}

func (g *guarded) Register(ctx context.Context, reg model.Registration) (model.AuthResult, error) {
	return g.next.Register(ctx, reg)
}

func (g *guarded) CurrentUser(ctx context.Context) (model.User, error) {
	ctx, err := g.authorize(ctx)
	if err != nil {
		return model.User{}, err
	}
	return g.next.CurrentUser(ctx)
}

func (g *guarded) FetchAllDocuments(ctx context.Context) ([]model.Document, error) {
	ctx, err := g.authorize(ctx)
	if err != nil {
		return nil, err
	}
	return g.next.FetchAllDocuments(ctx)
}

func (g *guarded) SearchDocuments(ctx context.Context, req query.Request) ([]model.Document, error) {
	ctx, err := g.authorize(ctx)
	if err != nil {
		return nil, err
	}
	return g.next.SearchDocuments(ctx, req)
}

func (g *guarded) FetchDocumentByID(ctx context.Context, id string) (model.Document, error) {
	ctx, err := g.authorize(ctx)
	if err != nil {
		return model.Document{}, err
	}
	return g.next.FetchDocumentByID(ctx, id)
}

func (g *guarded) CreateDocument(ctx context.Context, r io.Reader, fileName string, meta model.Metadata) (model.Document, error) {
	ctx, err := g.authorize(ctx)
	if err != nil {
		return model.Document{}, err
	}
	return g.next.CreateDocument(ctx, r, fileName, meta)
}

func (g *guarded) UpdateDocument(ctx context.Context, id string, patch model.DocumentPatch) (model.Document, error) {
	ctx, err := g.authorize(ctx)
	if err != nil {
		return model.Document{}, err
	}
	return g.next.UpdateDocument(ctx, id, patch)
}

func (g *guarded) DeleteDocument(ctx context.Context, id string) error {
	ctx, err := g.authorize(ctx)
	if err != nil {
		return err
	}
	return g.next.DeleteDocument(ctx, id)
}

func (g *guarded) FetchDocumentSummary(ctx context.Context, id string) (model.Summary, error) {
	ctx, err := g.authorize(ctx)
	if err != nil {
		return model.Summary{}, err
	}
	return g.next.FetchDocumentSummary(ctx, id)
}

func (g *guarded) DownloadDocument(ctx context.Context, id string, w io.Writer) (int64, error) {
	ctx, err := g.authorize(ctx)
	if err != nil {
		return 0, err
	}
	return g.next.DownloadDocument(ctx, id, w)
}

func (g *guarded) FetchAllNotifications(ctx context.Context) ([]model.Notification, error) {
	ctx, err := g.authorize(ctx)
	if err != nil {
		return nil, err
	}
	return g.next.FetchAllNotifications(ctx)
}

func (g *guarded) FetchCurrentNotifications(ctx context.Context) ([]model.Notification, error) {
	ctx, err := g.authorize(ctx)
	if err != nil {
		return nil, err
	}
	return g.next.FetchCurrentNotifications(ctx)
}

func (g *guarded) FetchPastNotifications(ctx context.Context) ([]model.Notification, error) {
	ctx, err := g.authorize(ctx)
	if err != nil {
		return nil, err
	}
	return g.next.FetchPastNotifications(ctx)
}

func (g *guarded) FetchUnreadCount(ctx context.Context) (int, error) {
	ctx, err := g.authorize(ctx)
	if err != nil {
		return 0, err
	}
	return g.next.FetchUnreadCount(ctx)
}

func (g *guarded) MarkNotificationRead(ctx context.Context, id string) (model.Notification, error) {
	ctx, err := g.authorize(ctx)
	if err != nil {
		return model.Notification{}, err
	}
	return g.next.MarkNotificationRead(ctx, id)
}

func (g *guarded) MarkAllNotificationsRead(ctx context.Context) error {
	ctx, err := g.authorize(ctx)
	if err != nil {
		return err
	}
	return g.next.MarkAllNotificationsRead(ctx)
}

func (g *guarded) DeleteNotification(ctx context.Context, id string) error {
	ctx, err := g.authorize(ctx)
	if err != nil {
		return err
	}
	return g.next.DeleteNotification(ctx, id)
}
