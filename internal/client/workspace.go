// Package client is the client core's entry point. A Workspace binds one session, one document
// store and one notification store to a Remote Gateway, and reconciles remote results into the
// stores as each call completes.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"metrodoc/internal/catalog"
	"metrodoc/internal/gateway"
	"metrodoc/internal/inbox"
	"metrodoc/internal/model"
	"metrodoc/internal/query"
	"metrodoc/internal/session"
)

// Layout is the presentation mode of the document list.
type Layout string

const (
	LayoutList Layout = "list"
	LayoutGrid Layout = "grid"
)

// ViewState is the user's current view over the catalogue.
type ViewState struct {
	Layout     Layout
	Text       string
	Department string
	Sort       query.SortKey
}

// Request converts the view into a query request.
func (v ViewState) Request() query.Request {
	return query.Request{Text: v.Text, Department: v.Department, Sort: v.Sort}
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(w *Workspace) {
		if log != nil {
			w.log = log
		}
	}
}

// WithLocale selects the collation locale for title sorting.
func WithLocale(tag language.Tag) Option {
	return func(w *Workspace) { w.engine = query.Engine{Locale: tag} }
}

// WithClock sets the clock used to check token expiry.
func WithClock(clock func() time.Time) Option {
	return func(w *Workspace) { w.clock = clock }
}

// WithNotificationWindow sets the current/past window of the notification store.
func WithNotificationWindow(d time.Duration) Option {
	return func(w *Workspace) { w.window = d }
}

// Workspace is safe for concurrent use.
type Workspace struct {
	log     *zap.Logger
	engine  query.Engine
	clock   func() time.Time
	window  time.Duration
	session *session.Session
	gw      gateway.Gateway
	docs    *catalog.Store
	inbox   *inbox.Store

	viewMu sync.RWMutex
	view   ViewState
}

// New returns a Workspace over gw. Every gateway call except login and registration is gated
// on the session.
func New(gw gateway.Gateway, opts ...Option) *Workspace {
	w := &Workspace{
		log:    zap.NewNop(),
		engine: query.Engine{Locale: language.English},
		clock:  time.Now,
		window: model.DefaultNotificationWindow,
		view:   ViewState{Layout: LayoutList, Department: query.AllDepartments, Sort: query.SortLatest},
	}
	for _, opt := range opts {
		opt(w)
	}
	w.session = session.New(w.clock)
	w.gw = session.Guard(gw, w.session)
	w.docs = catalog.New()
	w.inbox = inbox.New(inbox.WithWindow(w.window))
	return w
}

// Catalog exposes the document store.
func (w *Workspace) Catalog() *catalog.Store { return w.docs }

// Inbox exposes the notification store.
func (w *Workspace) Inbox() *inbox.Store { return w.inbox }

// Session exposes the session.
func (w *Workspace) Session() *session.Session { return w.session }

// Login authenticates and starts the session. Stores are not loaded until Refresh.
func (w *Workspace) Login(ctx context.Context, email, password string) (model.User, error) {
	res, err := w.gw.Login(ctx, model.Credentials{Email: email, Password: password})
	if err != nil {
		return model.User{}, err
	}
	if err := w.session.Start(res); err != nil {
		return model.User{}, err
	}
	w.log.Debug("session started", zap.String("user_id", res.User.ID))
	return res.User, nil
}

// Register creates an account and starts a session for it.
func (w *Workspace) Register(ctx context.Context, reg model.Registration) (model.User, error) {
	res, err := w.gw.Register(ctx, reg)
	if err != nil {
		return model.User{}, err
	}
	if err := w.session.Start(res); err != nil {
		return model.User{}, err
	}
	return res.User, nil
}

// ResumeSession starts a session from a previously stored token.
func (w *Workspace) ResumeSession(ctx context.Context, token string) (model.User, error) {
	if err := w.session.Start(model.AuthResult{Token: token}); err != nil {
		return model.User{}, err
	}
	u, err := w.gw.CurrentUser(ctx)
	if err != nil {
		w.session.End()
		return model.User{}, err
	}
	_ = w.session.Start(model.AuthResult{User: u, Token: token})
	return u, nil
}

// Logout ends the session and empties both stores.
func (w *Workspace) Logout() {
	w.session.End()
	_ = w.docs.ReplaceAll(nil)
	_ = w.inbox.ReplaceAll(nil)
	w.log.Debug("session ended")
}

// Refresh loads documents and notifications concurrently. Stores are replaced only when
// every call succeeded.
func (w *Workspace) Refresh(ctx context.Context) error {
	var (
		docs    []model.Document
		current []model.Notification
		past    []model.Notification
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		docs, err = w.gw.FetchAllDocuments(gctx)
		return err
	})
	g.Go(func() (err error) {
		current, err = w.gw.FetchCurrentNotifications(gctx)
		return err
	})
	g.Go(func() (err error) {
		past, err = w.gw.FetchPastNotifications(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		w.log.Warn("refresh failed, keeping last known state", zap.Error(err))
		return err
	}

	notes := mergeNotifications(current, past)
	if err := w.docs.ReplaceAll(docs); err != nil {
		return fmt.Errorf("refresh documents: %w", err)
	}
	if err := w.inbox.ReplaceAll(notes); err != nil {
		return fmt.Errorf("refresh notifications: %w", err)
	}
	w.log.Debug("refreshed", zap.Int("documents", len(docs)), zap.Int("notifications", len(notes)))
	return nil
}

func mergeNotifications(lists ...[]model.Notification) []model.Notification {
	seen := make(map[string]struct{})
	var out []model.Notification
	for _, l := range lists {
		for _, n := range l {
			if _, ok := seen[n.ID]; ok {
				continue
			}
			seen[n.ID] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}

// SetView replaces the view state.
func (w *Workspace) SetView(v ViewState) {
	if v.Layout == "" {
		v.Layout = LayoutList
	}
	if v.Department == "" {
		v.Department = query.AllDepartments
	}
	if v.Sort == "" {
		v.Sort = query.SortLatest
	}
	w.viewMu.Lock()
	w.view = v
	w.viewMu.Unlock()
}

// View returns the current view state.
func (w *Workspace) View() ViewState {
	w.viewMu.RLock()
	defer w.viewMu.RUnlock()
	return w.view
}

// Documents evaluates the current view against the store. It is recomputed on every call.
func (w *Workspace) Documents() []model.Document {
	return w.engine.Apply(w.docs.GetAll(), w.View().Request())
}

// SearchRemote runs a server-side search. The store is not modified.
func (w *Workspace) SearchRemote(ctx context.Context, req query.Request) ([]model.Document, error) {
	return w.gw.SearchDocuments(ctx, req)
}

// Upload validates metadata locally, sends the file and adds the server record to the store.
func (w *Workspace) Upload(ctx context.Context, r io.Reader, fileName string, meta model.Metadata) (model.Document, error) {
	meta = meta.Normalize()
	if err := meta.Validate(); err != nil {
		return model.Document{}, err
	}
	if model.FileTypeFromName(fileName) == "" {
		return model.Document{}, fmt.Errorf("%w: unsupported file type %q", model.ErrInvalid, fileName)
	}
	doc, err := w.gw.CreateDocument(ctx, r, fileName, meta)
	if err != nil {
		return model.Document{}, err
	}
	w.docs.Put(doc)
	w.log.Debug("document uploaded", zap.String("id", doc.ID))
	return doc, nil
}

// OpenDocument fetches the authoritative record and stores it. A 404 drops a stale local copy.
func (w *Workspace) OpenDocument(ctx context.Context, id string) (model.Document, error) {
	doc, err := w.gw.FetchDocumentByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			if rmErr := w.docs.Remove(id); rmErr == nil {
				w.log.Debug("dropped stale document", zap.String("id", id))
			}
		}
		return model.Document{}, err
	}
	w.docs.Put(doc)
	return doc, nil
}

// UpdateDocument applies patch optimistically, then commits the server record or rolls back.
func (w *Workspace) UpdateDocument(ctx context.Context, id string, patch model.DocumentPatch) (model.Document, error) {
	if err := patch.Validate(); err != nil {
		return model.Document{}, err
	}
	st, _, err := w.docs.StageUpdate(id, patch)
	if err != nil {
		return model.Document{}, err
	}
	doc, err := w.gw.UpdateDocument(ctx, id, patch)
	if err != nil {
		restored := st.Rollback()
		w.log.Warn("update rolled back", zap.String("id", id), zap.Bool("restored", restored), zap.Error(err))
		return model.Document{}, err
	}
	st.Commit(&doc)
	w.log.Debug("update committed", zap.String("id", id))
	return doc, nil
}

// DeleteDocument removes the document optimistically. Notifications referencing it are kept.
func (w *Workspace) DeleteDocument(ctx context.Context, id string) error {
	st, err := w.docs.StageRemove(id)
	if err != nil {
		return err
	}
	if err := w.gw.DeleteDocument(ctx, id); err != nil {
		restored := st.Rollback()
		w.log.Warn("delete rolled back", zap.String("id", id), zap.Bool("restored", restored), zap.Error(err))
		return err
	}
	st.Commit(nil)
	w.log.Debug("delete committed", zap.String("id", id))
	return nil
}

// Summary fetches the document summary. The result is not cached.
func (w *Workspace) Summary(ctx context.Context, id string) (model.Summary, error) {
	return w.gw.FetchDocumentSummary(ctx, id)
}

// Download streams the file to dst.
func (w *Workspace) Download(ctx context.Context, id string, dst io.Writer) (int64, error) {
	return w.gw.DownloadDocument(ctx, id, dst)
}

// MarkRead marks the notification read once the server confirms it, so read state never reverts.
func (w *Workspace) MarkRead(ctx context.Context, id string) error {
	n, err := w.gw.MarkNotificationRead(ctx, id)
	if err != nil {
		return err
	}
	if err := w.inbox.MarkRead(id); errors.Is(err, model.ErrNotFound) {
		n.IsRead = true
		_ = w.inbox.Add(n)
	}
	return nil
}

// MarkAllRead marks every notification read once the server confirms it.
func (w *Workspace) MarkAllRead(ctx context.Context) error {
	if err := w.gw.MarkAllNotificationsRead(ctx); err != nil {
		return err
	}
	w.inbox.MarkAllRead()
	return nil
}

// DeleteNotification removes the notification optimistically.
func (w *Workspace) DeleteNotification(ctx context.Context, id string) error {
	st, err := w.inbox.StageRemove(id)
	if err != nil {
		return err
	}
	if err := w.gw.DeleteNotification(ctx, id); err != nil {
		restored := st.Rollback()
		w.log.Warn("notification delete rolled back", zap.String("id", id), zap.Bool("restored", restored), zap.Error(err))
		return err
	}
	st.Commit()
	return nil
}

// CurrentNotifications lists notifications inside the window ending at now.
func (w *Workspace) CurrentNotifications(now time.Time) []model.Notification {
	return w.inbox.ListCurrent(now)
}

// PastNotifications lists notifications at or before the window boundary.
func (w *Workspace) PastNotifications(now time.Time) []model.Notification {
	return w.inbox.ListPast(now)
}

// UnreadCount counts unread notifications in the store.
func (w *Workspace) UnreadCount() int {
	return w.inbox.UnreadCount()
}

// ResolveDocument looks up the document a notification points at. A missing or dangling
// reference reports false.
func (w *Workspace) ResolveDocument(n model.Notification) (model.Document, bool) {
	if n.DocumentID == nil {
		return model.Document{}, false
	}
	return w.docs.Get(*n.DocumentID)
}

// Source names the store a Change came from.
type Source string

const (
	SourceDocuments     Source = "documents"
	SourceNotifications Source = "notifications"
)

// Change is a store event tagged with its source.
type Change struct {
	Source Source
	Kind   string
	ID     string
}

// Subscribe delivers changes from both stores to fn and returns a cancel func.
func (w *Workspace) Subscribe(fn func(Change)) (cancel func()) {
	cancelDocs := w.docs.Subscribe(func(ev catalog.Event) {
		fn(Change{Source: SourceDocuments, Kind: string(ev.Kind), ID: ev.ID})
	})
	cancelNotes := w.inbox.Subscribe(func(ev inbox.Event) {
		fn(Change{Source: SourceNotifications, Kind: string(ev.Kind), ID: ev.ID})
	})
	return func() {
		cancelDocs()
		cancelNotes()
	}
}
