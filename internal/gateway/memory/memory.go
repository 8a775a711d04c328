// Package memory is an in-process Remote Gateway backed by seeded fixtures.
// It serves offline CLI sessions and tests, and follows the REST server's rules for
// validation, authentication and error statuses.
package memory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"metrodoc/internal/auth"
	"metrodoc/internal/extract"
	"metrodoc/internal/gateway"
	"metrodoc/internal/model"
	"metrodoc/internal/query"
	"metrodoc/internal/summary"
)

const offlineSecret = "metrodoc-offline"

type account struct {
	user model.User
	hash string
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithClock sets the time source used for upload dates, tokens and the notification window.
func WithClock(clock func() time.Time) Option {
	return func(g *Gateway) { g.clock = clock }
}

// WithLatency delays every call by d, honouring context cancellation.
func WithLatency(d time.Duration) Option {
	return func(g *Gateway) { g.latency = d }
}

// WithWindow overrides the current/past notification window.
func WithWindow(d time.Duration) Option {
	return func(g *Gateway) { g.window = d }
}

// WithoutSeed starts with empty collections.
func WithoutSeed() Option {
	return func(g *Gateway) { g.seed = false }
}

// Gateway implements gateway.Gateway in memory.
type Gateway struct {
	clock   func() time.Time
	latency time.Duration
	window  time.Duration
	seed    bool

	issuer     *auth.TokenIssuer
	extractor  extract.Extractor
	summarizer summary.Summarizer

	mu       sync.Mutex
	accounts []account
	docs     []model.Document
	files    map[string][]byte
	notes    []model.Notification
	nextDoc  int
	nextNote int
	nextUser int
}

var _ gateway.Gateway = (*Gateway)(nil)

// New returns a gateway seeded with the demo catalogue, notifications placed relative to the
// clock, and the admin and demo accounts.
func New(opts ...Option) (*Gateway, error) {
	g := &Gateway{
		clock:      time.Now,
		window:     model.DefaultNotificationWindow,
		seed:       true,
		extractor:  extract.Plain{},
		summarizer: summary.Extractive{},
		files:      make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(g)
	}

	issuer, err := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte(offlineSecret),
		Issuer:        "metrodoc-memory",
		Clock:         g.clock,
	})
	if err != nil {
		return nil, err
	}
	g.issuer = issuer

	g.nextUser = len(seedAccounts) + 1
	g.nextDoc = 1
	g.nextNote = 1
	if !g.seed {
		return g, nil
	}

	for _, a := range seedAccounts {
		hash, err := auth.HashPasswordCost(a.password, bcrypt.MinCost)
		if err != nil {
			return nil, err
		}
		g.accounts = append(g.accounts, account{user: a.user, hash: hash})
	}
	g.docs = seedDocuments()
	g.notes = seedNotifications(g.clock())
	g.nextDoc = len(g.docs) + 1
	g.nextNote = len(g.notes) + 1
	return g, nil
}

func remoteErr(op string, status int, msg string) error {
	return &model.RemoteError{Op: op, Status: status, Message: msg}
}

// wait simulates network latency.
func (g *Gateway) wait(ctx context.Context) error {
	if g.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(g.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// authorize validates the bearer token carried by ctx and returns its subject.
func (g *Gateway) authorize(ctx context.Context, op string) (string, error) {
	if err := g.wait(ctx); err != nil {
		return "", err
	}
	token, ok := gateway.TokenFrom(ctx)
	if !ok {
		return "", remoteErr(op, http.StatusUnauthorized, "Authentication required")
	}
	claims, err := g.issuer.Validate(token)
	if err != nil {
		return "", remoteErr(op, http.StatusUnauthorized, "Invalid or expired token")
	}
	return claims.Subject, nil
}

func (g *Gateway) issue(u model.User) (model.AuthResult, error) {
	token, _, err := g.issuer.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return model.AuthResult{}, err
	}
	return model.AuthResult{User: u, Token: token}, nil
}

func (g *Gateway) Login(ctx context.Context, creds model.Credentials) (model.AuthResult, error) {
	if err := g.wait(ctx); err != nil {
		return model.AuthResult{}, err
	}
	email := strings.ToLower(strings.TrimSpace(creds.Email))

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, a := range g.accounts {
		if a.user.Email == email && auth.CheckPassword(a.hash, creds.Password) == nil {
			return g.issue(a.user)
		}
	}
	return model.AuthResult{}, remoteErr("Login", http.StatusUnauthorized, "Invalid email or password")
}

func (g *Gateway) Register(ctx context.Context, reg model.Registration) (model.AuthResult, error) {
	if err := g.wait(ctx); err != nil {
		return model.AuthResult{}, err
	}
	email := strings.ToLower(strings.TrimSpace(reg.Email))
	name := strings.TrimSpace(reg.Name)
	if email == "" || name == "" {
		return model.AuthResult{}, remoteErr("Register", http.StatusBadRequest, "Name and email are required")
	}
	hash, err := auth.HashPasswordCost(reg.Password, bcrypt.MinCost)
	if err != nil {
		return model.AuthResult{}, remoteErr("Register", http.StatusBadRequest, err.Error())
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, a := range g.accounts {
		if a.user.Email == email {
			return model.AuthResult{}, remoteErr("Register", http.StatusConflict, "User already exists")
		}
	}
	u := model.User{ID: strconv.Itoa(g.nextUser), Name: name, Email: email, Role: "user"}
	g.nextUser++
	g.accounts = append(g.accounts, account{user: u, hash: hash})
	return g.issue(u)
}

func (g *Gateway) CurrentUser(ctx context.Context) (model.User, error) {
	sub, err := g.authorize(ctx, "CurrentUser")
	if err != nil {
		return model.User{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, a := range g.accounts {
		if a.user.ID == sub {
			return a.user, nil
		}
	}
	return model.User{}, remoteErr("CurrentUser", http.StatusNotFound, "User not found")
}

func (g *Gateway) FetchAllDocuments(ctx context.Context) ([]model.Document, error) {
	if _, err := g.authorize(ctx, "FetchAllDocuments"); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return query.Apply(g.docs, query.Request{Sort: query.SortLatest}), nil
}

func (g *Gateway) SearchDocuments(ctx context.Context, req query.Request) ([]model.Document, error) {
	if _, err := g.authorize(ctx, "SearchDocuments"); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return query.Apply(g.docs, req), nil
}

func (g *Gateway) indexLocked(id string) int {
	for i, d := range g.docs {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (g *Gateway) FetchDocumentByID(ctx context.Context, id string) (model.Document, error) {
	if _, err := g.authorize(ctx, "FetchDocumentByID"); err != nil {
		return model.Document{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.indexLocked(id)
	if i < 0 {
		return model.Document{}, remoteErr("FetchDocumentByID", http.StatusNotFound, "Document not found")
	}
	return g.docs[i].Clone(), nil
}

func (g *Gateway) CreateDocument(ctx context.Context, r io.Reader, fileName string, meta model.Metadata) (model.Document, error) {
	const op = "CreateDocument"
	sub, err := g.authorize(ctx, op)
	if err != nil {
		return model.Document{}, err
	}
	if r == nil {
		return model.Document{}, remoteErr(op, http.StatusBadRequest, "File is required")
	}
	meta = meta.Normalize()
	if err := meta.Validate(); err != nil {
		return model.Document{}, remoteErr(op, http.StatusBadRequest, err.Error())
	}
	fileType := model.FileTypeFromName(fileName)
	if fileType == "" {
		return model.Document{}, remoteErr(op, http.StatusBadRequest, "Unsupported file type")
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return model.Document{}, fmt.Errorf("read upload: %w", err)
	}
	text, err := g.extractor.Extract(ctx, content, fileName)
	if err != nil && !errors.Is(err, extract.ErrUnsupported) {
		return model.Document{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	doc := model.Document{
		ID:            strconv.Itoa(g.nextDoc),
		Title:         meta.Title,
		Description:   meta.Description,
		Department:    meta.Department,
		Priority:      meta.Priority,
		Tags:          meta.Tags,
		UploadDate:    g.clock().UTC(),
		FileType:      fileType,
		FileName:      fileName,
		FileSize:      int64(len(content)),
		ExtractedText: text,
		UserID:        sub,
	}
	doc.FilePath = "memory/" + doc.ID + "/" + fileName
	g.nextDoc++
	g.docs = append(g.docs, doc)
	g.files[doc.ID] = content

	if doc.Priority == model.PriorityHigh {
		g.notes = append(g.notes, model.Notification{
			ID:            strconv.Itoa(g.nextNote),
			Type:          model.TypeAlert,
			Category:      strings.ToLower(doc.Department),
			Priority:      model.NotificationHigh,
			Title:         "High priority document uploaded",
			Message:       fmt.Sprintf("%q was uploaded to %s and is marked high priority.", doc.Title, doc.Department),
			Timestamp:     doc.UploadDate,
			DocumentID:    strPtr(doc.ID),
			DocumentTitle: strPtr(doc.Title),
		})
		g.nextNote++
	}
	return doc.Clone(), nil
}

func (g *Gateway) UpdateDocument(ctx context.Context, id string, patch model.DocumentPatch) (model.Document, error) {
	const op = "UpdateDocument"
	if _, err := g.authorize(ctx, op); err != nil {
		return model.Document{}, err
	}
	if err := patch.Validate(); err != nil {
		return model.Document{}, remoteErr(op, http.StatusBadRequest, err.Error())
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.indexLocked(id)
	if i < 0 {
		return model.Document{}, remoteErr(op, http.StatusNotFound, "Document not found")
	}
	g.docs[i] = patch.Apply(g.docs[i])
	return g.docs[i].Clone(), nil
}

func (g *Gateway) DeleteDocument(ctx context.Context, id string) error {
	if _, err := g.authorize(ctx, "DeleteDocument"); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.indexLocked(id)
	if i < 0 {
		return remoteErr("DeleteDocument", http.StatusNotFound, "Document not found")
	}
	g.docs = append(g.docs[:i], g.docs[i+1:]...)
	delete(g.files, id)
	return nil
}

func (g *Gateway) FetchDocumentSummary(ctx context.Context, id string) (model.Summary, error) {
	const op = "FetchDocumentSummary"
	if _, err := g.authorize(ctx, op); err != nil {
		return model.Summary{}, err
	}
	g.mu.Lock()
	i := g.indexLocked(id)
	var text string
	if i >= 0 {
		text = g.docs[i].ExtractedText
	}
	g.mu.Unlock()

	if i < 0 {
		return model.Summary{}, remoteErr(op, http.StatusNotFound, "Document not found")
	}
	if s, ok := seedSummaries[id]; ok {
		return s, nil
	}
	s, err := g.summarizer.Summarize(ctx, text)
	if errors.Is(err, summary.ErrNoText) {
		return summary.Placeholder(), nil
	}
	return s, err
}

func (g *Gateway) DownloadDocument(ctx context.Context, id string, w io.Writer) (int64, error) {
	if _, err := g.authorize(ctx, "DownloadDocument"); err != nil {
		return 0, err
	}
	g.mu.Lock()
	i := g.indexLocked(id)
	content, ok := g.files[id]
	g.mu.Unlock()

	if i < 0 {
		return 0, remoteErr("DownloadDocument", http.StatusNotFound, "Document not found")
	}
	if !ok {
		content = []byte(fmt.Sprintf("Mock document content for document ID: %s\n\nThis is a simulated download.", id))
	}
	return io.Copy(w, bytes.NewReader(content))
}

func (g *Gateway) notifications(ctx context.Context, op string, keep func(model.Notification) bool) ([]model.Notification, error) {
	if _, err := g.authorize(ctx, op); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]model.Notification, 0, len(g.notes))
	for _, n := range g.notes {
		if keep(n) {
			out = append(out, n.Clone())
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(items []model.Notification) {
	slices.SortStableFunc(items, func(a, b model.Notification) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
}

func (g *Gateway) FetchAllNotifications(ctx context.Context) ([]model.Notification, error) {
	return g.notifications(ctx, "FetchAllNotifications", func(model.Notification) bool { return true })
}

func (g *Gateway) FetchCurrentNotifications(ctx context.Context) ([]model.Notification, error) {
	now := g.clock()
	return g.notifications(ctx, "FetchCurrentNotifications", func(n model.Notification) bool {
		return n.IsCurrent(now, g.window)
	})
}

func (g *Gateway) FetchPastNotifications(ctx context.Context) ([]model.Notification, error) {
	now := g.clock()
	return g.notifications(ctx, "FetchPastNotifications", func(n model.Notification) bool {
		return !n.IsCurrent(now, g.window)
	})
}

func (g *Gateway) FetchUnreadCount(ctx context.Context) (int, error) {
	unread, err := g.notifications(ctx, "FetchUnreadCount", func(n model.Notification) bool { return !n.IsRead })
	return len(unread), err
}

func (g *Gateway) MarkNotificationRead(ctx context.Context, id string) (model.Notification, error) {
	if _, err := g.authorize(ctx, "MarkNotificationRead"); err != nil {
		return model.Notification{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.notes {
		if g.notes[i].ID == id {
			g.notes[i].IsRead = true
			return g.notes[i].Clone(), nil
		}
	}
	return model.Notification{}, remoteErr("MarkNotificationRead", http.StatusNotFound, "Notification not found")
}

func (g *Gateway) MarkAllNotificationsRead(ctx context.Context) error {
	if _, err := g.authorize(ctx, "MarkAllNotificationsRead"); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.notes {
		g.notes[i].IsRead = true
	}
	return nil
}

func (g *Gateway) DeleteNotification(ctx context.Context, id string) error {
	if _, err := g.authorize(ctx, "DeleteNotification"); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.notes {
		if g.notes[i].ID == id {
			g.notes = append(g.notes[:i], g.notes[i+1:]...)
			return nil
		}
	}
	return remoteErr("DeleteNotification", http.StatusNotFound, "Notification not found")
}
