package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"metrodoc/internal/auth"
	"metrodoc/internal/gateway/memory"
	"metrodoc/internal/gateway/mocks"
	"metrodoc/internal/model"
	"metrodoc/internal/query"
)

var now = time.Date(2025, 10, 12, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func offlineWorkspace(t *testing.T) *Workspace {
	t.Helper()
	gw, err := memory.New(memory.WithClock(clock))
	require.NoError(t, err)
	w := New(gw, WithClock(clock))
	_, err = w.Login(context.Background(), "admin@metrodoc.ai", "admin123")
	require.NoError(t, err)
	require.NoError(t, w.Refresh(context.Background()))
	return w
}

func mockWorkspace(t *testing.T) (*Workspace, *mocks.MockGateway) {
	t.Helper()
	issuer, err := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte("secret"),
		TokenTTL:      time.Hour,
		Clock:         clock,
	})
	require.NoError(t, err)
	token, _, err := issuer.Issue("1", "admin@metrodoc.ai", "admin")
	require.NoError(t, err)

	gw := new(mocks.MockGateway)
	gw.On("Login", mock.Anything, mock.Anything).
		Return(model.AuthResult{User: model.User{ID: "1", Name: "Admin User"}, Token: token}, nil).Once()

	w := New(gw, WithClock(clock))
	_, err = w.Login(context.Background(), "admin@metrodoc.ai", "admin123")
	require.NoError(t, err)

	require.NoError(t, w.Catalog().ReplaceAll([]model.Document{
		{ID: "1", Title: "Metro Safety Guidelines 2025", Department: "Operations", Priority: model.PriorityHigh, Tags: []string{"safety"}, UploadDate: now.Add(-48 * time.Hour)},
		{ID: "2", Title: "Q3 Financial Report", Department: "Finance", Priority: model.PriorityMedium, UploadDate: now.Add(-24 * time.Hour)},
	}))
	return w, gw
}

func remoteErr(status int, msg string) error {
	return &model.RemoteError{Status: status, Message: msg}
}

func TestRefresh_LoadsBothStores(t *testing.T) {
	w := offlineWorkspace(t)

	assert.Equal(t, 12, w.Catalog().Len())
	assert.Len(t, w.CurrentNotifications(now), 5)
	assert.Len(t, w.PastNotifications(now), 3)
	assert.Equal(t, 3, w.UnreadCount())

	u, ok := w.Session().User()
	require.True(t, ok)
	assert.Equal(t, "admin@metrodoc.ai", u.Email)
}

func TestRefresh_PartialFailureKeepsState(t *testing.T) {
	w, gw := mockWorkspace(t)
	gw.On("FetchAllDocuments", mock.Anything).Return([]model.Document{{ID: "9", Title: "New"}}, nil)
	gw.On("FetchCurrentNotifications", mock.Anything).Return([]model.Notification{{ID: "n1"}}, nil)
	gw.On("FetchPastNotifications", mock.Anything).Return(nil, remoteErr(http.StatusInternalServerError, "boom"))

	err := w.Refresh(context.Background())

	assert.EqualError(t, err, "boom")
	assert.Equal(t, 2, w.Catalog().Len())
	assert.Empty(t, w.Inbox().ListAll())
}

func TestDocuments_FollowsView(t *testing.T) {
	w := offlineWorkspace(t)

	w.SetView(ViewState{Text: "metro rail"})
	got := w.Documents()
	require.NotEmpty(t, got)
	assert.Less(t, len(got), 12)
	for _, d := range got {
		assert.True(t, query.Matches(d, "metro rail"), d.ID)
	}
	assert.Equal(t, LayoutList, w.View().Layout)
	assert.Equal(t, query.SortLatest, w.View().Sort)

	w.SetView(ViewState{Layout: LayoutGrid, Department: "Finance", Sort: query.SortTitleAsc})
	for _, d := range w.Documents() {
		assert.Equal(t, "Finance", d.Department)
	}
	assert.Equal(t, LayoutGrid, w.View().Layout)
}

func TestUpdateDocument_CommitsServerRecord(t *testing.T) {
	w, gw := mockWorkspace(t)
	title := "Metro Safety Guidelines 2026"
	patch := model.DocumentPatch{Title: &title}
	server := model.Document{ID: "1", Title: title, Department: "Operations", Priority: model.PriorityHigh, Tags: []string{"safety", "updated"}}
	gw.On("UpdateDocument", mock.Anything, "1", patch).Return(server, nil)

	doc, err := w.UpdateDocument(context.Background(), "1", patch)

	require.NoError(t, err)
	assert.Equal(t, server, doc)
	stored, _ := w.Catalog().Get("1")
	assert.Equal(t, []string{"safety", "updated"}, stored.Tags)
}

func TestUpdateDocument_RollsBackOnRemoteError(t *testing.T) {
	w, gw := mockWorkspace(t)
	before, _ := w.Catalog().Get("1")
	title := "Renamed"
	patch := model.DocumentPatch{Title: &title}

	var seenDuringCall string
	gw.On("UpdateDocument", mock.Anything, "1", patch).
		Run(func(args mock.Arguments) {
			d, _ := w.Catalog().Get("1")
			seenDuringCall = d.Title
		}).
		Return(model.Document{}, remoteErr(http.StatusForbidden, "Not allowed"))

	_, err := w.UpdateDocument(context.Background(), "1", patch)

	assert.EqualError(t, err, "Not allowed")
	assert.Equal(t, "Renamed", seenDuringCall)
	after, _ := w.Catalog().Get("1")
	assert.Equal(t, before, after)
}

func TestUpdateDocument_InvalidPatchNeverCallsRemote(t *testing.T) {
	w, gw := mockWorkspace(t)
	blank := "  "

	_, err := w.UpdateDocument(context.Background(), "1", model.DocumentPatch{Title: &blank})

	assert.ErrorIs(t, err, model.ErrInvalid)
	gw.AssertNotCalled(t, "UpdateDocument", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateDocument_CompletionOrderWins(t *testing.T) {
	w, gw := mockWorkspace(t)
	first, second := "First", "Second"
	patchA := model.DocumentPatch{Title: &first}
	patchB := model.DocumentPatch{Title: &second}

	started := make(chan struct{})
	release := make(chan struct{})
	gw.On("UpdateDocument", mock.Anything, "1", patchA).Return(
		func(context.Context, string, model.DocumentPatch) model.Document {
			close(started)
			<-release
			return model.Document{ID: "1", Title: first}
		}, nil)
	gw.On("UpdateDocument", mock.Anything, "1", patchB).Return(model.Document{ID: "1", Title: second}, nil)

	slow := Async(func() (model.Document, error) {
		return w.UpdateDocument(context.Background(), "1", patchA)
	})
	<-started
	_, err := w.UpdateDocument(context.Background(), "1", patchB)
	require.NoError(t, err)
	close(release)
	_, err = slow.Wait()
	require.NoError(t, err)

	doc, _ := w.Catalog().Get("1")
	assert.Equal(t, first, doc.Title)
}

func TestUpdateDocument_StaleRollbackKeepsLaterWrite(t *testing.T) {
	w, gw := mockWorkspace(t)
	first, second := "First", "Second"
	patchA := model.DocumentPatch{Title: &first}
	patchB := model.DocumentPatch{Title: &second}

	started := make(chan struct{})
	release := make(chan struct{})
	gw.On("UpdateDocument", mock.Anything, "1", patchA).Return(
		func(context.Context, string, model.DocumentPatch) model.Document {
			close(started)
			<-release
			return model.Document{}
		}, remoteErr(http.StatusInternalServerError, "boom"))
	gw.On("UpdateDocument", mock.Anything, "1", patchB).Return(model.Document{ID: "1", Title: second}, nil)

	slow := Async(func() (model.Document, error) {
		return w.UpdateDocument(context.Background(), "1", patchA)
	})
	<-started
	_, err := w.UpdateDocument(context.Background(), "1", patchB)
	require.NoError(t, err)
	close(release)
	_, err = slow.Wait()
	require.Error(t, err)

	doc, _ := w.Catalog().Get("1")
	assert.Equal(t, second, doc.Title)
}

func TestDeleteDocument_RollbackRestoresPosition(t *testing.T) {
	w, gw := mockWorkspace(t)
	gw.On("DeleteDocument", mock.Anything, "1").Return(remoteErr(http.StatusInternalServerError, "boom"))

	err := w.DeleteDocument(context.Background(), "1")

	assert.Error(t, err)
	all := w.Catalog().GetAll()
	require.Len(t, all, 2)
	assert.Equal(t, "1", all[0].ID)
}

func TestDeleteDocument_LeavesDanglingNotification(t *testing.T) {
	w := offlineWorkspace(t)
	var ref model.Notification
	for _, n := range w.Inbox().ListAll() {
		if n.DocumentID != nil {
			ref = n
			break
		}
	}
	require.NotEmpty(t, ref.ID)
	_, ok := w.ResolveDocument(ref)
	require.True(t, ok)

	require.NoError(t, w.DeleteDocument(context.Background(), *ref.DocumentID))

	_, ok = w.ResolveDocument(ref)
	assert.False(t, ok)
	_, still := w.Inbox().Get(ref.ID)
	assert.True(t, still)
}

func TestUpload_AddsServerRecord(t *testing.T) {
	w := offlineWorkspace(t)

	doc, err := w.Upload(context.Background(), bytes.NewBufferString("Escalator inspection steps."), "escalators.txt", model.Metadata{
		Title: "Escalator Checklist", Department: "Maintenance", Priority: model.PriorityLow,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	stored, ok := w.Catalog().Get(doc.ID)
	require.True(t, ok)
	assert.Equal(t, "Escalator Checklist", stored.Title)
}

func TestUpload_LocalValidation(t *testing.T) {
	w, gw := mockWorkspace(t)

	_, err := w.Upload(context.Background(), bytes.NewBufferString("x"), "a.txt", model.Metadata{Title: "", Department: "Finance"})
	assert.ErrorIs(t, err, model.ErrInvalid)

	_, err = w.Upload(context.Background(), bytes.NewBufferString("x"), "a.exe", model.Metadata{Title: "A", Department: "Finance"})
	assert.ErrorIs(t, err, model.ErrInvalid)

	gw.AssertNotCalled(t, "CreateDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOpenDocument_DropsStaleCopyOn404(t *testing.T) {
	w, gw := mockWorkspace(t)
	gw.On("FetchDocumentByID", mock.Anything, "2").Return(model.Document{}, remoteErr(http.StatusNotFound, "Document not found"))

	_, err := w.OpenDocument(context.Background(), "2")

	assert.ErrorIs(t, err, model.ErrNotFound)
	_, ok := w.Catalog().Get("2")
	assert.False(t, ok)
}

func TestNotifications_ReadAndDelete(t *testing.T) {
	w := offlineWorkspace(t)
	ctx := context.Background()
	unread := w.UnreadCount()

	var target string
	for _, n := range w.Inbox().ListAll() {
		if !n.IsRead {
			target = n.ID
			break
		}
	}
	require.NoError(t, w.MarkRead(ctx, target))
	assert.Equal(t, unread-1, w.UnreadCount())
	require.NoError(t, w.MarkRead(ctx, target))
	assert.Equal(t, unread-1, w.UnreadCount())

	require.NoError(t, w.MarkAllRead(ctx))
	assert.Zero(t, w.UnreadCount())

	total := len(w.Inbox().ListAll())
	require.NoError(t, w.DeleteNotification(ctx, target))
	assert.Len(t, w.Inbox().ListAll(), total-1)
}

func TestMarkRead_FailureLeavesUnread(t *testing.T) {
	w, gw := mockWorkspace(t)
	require.NoError(t, w.Inbox().Add(model.Notification{ID: "n1", Timestamp: now}))
	gw.On("MarkNotificationRead", mock.Anything, "n1").Return(model.Notification{}, remoteErr(http.StatusInternalServerError, "boom"))

	assert.Error(t, w.MarkRead(context.Background(), "n1"))
	assert.Equal(t, 1, w.UnreadCount())
}

func TestDeleteNotification_RollsBack(t *testing.T) {
	w, gw := mockWorkspace(t)
	require.NoError(t, w.Inbox().Add(model.Notification{ID: "n1", Timestamp: now}))
	gw.On("DeleteNotification", mock.Anything, "n1").Return(errors.New("offline"))

	assert.Error(t, w.DeleteNotification(context.Background(), "n1"))
	_, ok := w.Inbox().Get("n1")
	assert.True(t, ok)
}

func TestLogout_ClearsStoresAndGatesCalls(t *testing.T) {
	w, gw := mockWorkspace(t)

	w.Logout()

	assert.Zero(t, w.Catalog().Len())
	err := w.Refresh(context.Background())
	assert.ErrorIs(t, err, model.ErrUnauthenticated)
	gw.AssertNotCalled(t, "FetchAllDocuments", mock.Anything)
}

func TestSubscribe_FanIn(t *testing.T) {
	w, gw := mockWorkspace(t)
	gw.On("DeleteDocument", mock.Anything, "2").Return(nil)

	var mu sync.Mutex
	var got []Change
	cancel := w.Subscribe(func(c Change) {
		mu.Lock()
		got = append(got, c)
		mu.Unlock()
	})

	require.NoError(t, w.DeleteDocument(context.Background(), "2"))
	require.NoError(t, w.Inbox().Add(model.Notification{ID: "n1", Timestamp: now}))
	cancel()
	require.NoError(t, w.Inbox().Add(model.Notification{ID: "n2", Timestamp: now}))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Change{
		{Source: SourceDocuments, Kind: "removed", ID: "2"},
		{Source: SourceNotifications, Kind: "added", ID: "n1"},
	}, got)
}

func TestAsync_Done(t *testing.T) {
	p := Async(func() (int, error) { return 7, nil })
	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("pending never finished")
	}
	v, err := p.Wait()
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}
