package httpgw

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metrodoc/internal/gateway"
	"metrodoc/internal/model"
	"metrodoc/internal/query"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/api/", WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := New("/api")
	assert.Error(t, err)
}

func TestFetchAllDocuments_SendsTokenAndDecodesEnvelope(t *testing.T) {
	uploaded := time.Date(2025, 10, 1, 10, 30, 0, 0, time.UTC)
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/documents", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"count":   1,
			"data": []model.Document{{
				ID: "1", Title: "Metro Safety Guidelines 2025", Department: "Operations",
				Tags: []string{"safety"}, UploadDate: uploaded,
			}},
		})
	}))

	docs, err := c.FetchAllDocuments(gateway.WithToken(context.Background(), "tok"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Metro Safety Guidelines 2025", docs[0].Title)
	assert.True(t, docs[0].UploadDate.Equal(uploaded))
}

func TestErrorEnvelopeBecomesRemoteError(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"success":    false,
			"request_id": "rid-1",
			"error":      map[string]string{"code": "NOT_FOUND", "message": "Document not found"},
		})
	}))

	_, err := c.FetchDocumentByID(context.Background(), "missing")

	var re *model.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusNotFound, re.Status)
	assert.Equal(t, "NOT_FOUND", re.Code)
	assert.Equal(t, "FetchDocumentByID", re.Op)
	assert.Equal(t, "Document not found", err.Error())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestErrorWithoutEnvelopeFallsBackToStatusText(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "<html>bad gateway</html>", http.StatusBadGateway)
	}))

	err := c.DeleteDocument(context.Background(), "1")
	assert.Equal(t, "Bad Gateway", err.Error())
}

func TestSearchDocuments_QueryString(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/documents/search", r.URL.Path)
		assert.Equal(t, "safety first", r.URL.Query().Get("q"))
		assert.Equal(t, "Operations", r.URL.Query().Get("department"))
		assert.Equal(t, "oldest", r.URL.Query().Get("sort"))
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []model.Document{}, "count": 0})
	}))

	docs, err := c.SearchDocuments(context.Background(), query.Request{Text: "safety first", Department: "Operations", Sort: query.SortOldest})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestCreateDocument_Multipart(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/documents/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Notice", r.FormValue("title"))
		assert.Equal(t, "Operations", r.FormValue("department"))
		assert.Equal(t, `["a","b"]`, r.FormValue("tags"))

		f, fh, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		content, _ := io.ReadAll(f)
		assert.Equal(t, "notice.txt", fh.Filename)
		assert.Equal(t, "hello", string(content))

		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": model.Document{ID: "new", Title: "Notice"}})
	}))

	doc, err := c.CreateDocument(context.Background(), bytes.NewBufferString("hello"), "notice.txt", model.Metadata{
		Title: "Notice", Department: "Operations", Tags: []string{"a", "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, "new", doc.ID)
}

func TestUpdateDocument_SendsOnlySetFields(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"priority":"high"}`, string(body))
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": model.Document{ID: "1", Priority: model.PriorityHigh}})
	}))

	p := model.PriorityHigh
	doc, err := c.UpdateDocument(context.Background(), "1", model.DocumentPatch{Priority: &p})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityHigh, doc.Priority)
}

func TestDownloadDocument_StreamsBody(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/documents/7/download", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7"))
	}))

	var buf bytes.Buffer
	n, err := c.DownloadDocument(context.Background(), "7", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)
	assert.Equal(t, "%PDF-1.7", buf.String())
}

func TestNotifications(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/notifications/unread-count", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]int{"count": 4}})
	})
	mux.HandleFunc("/api/notifications/n1/read", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": model.Notification{ID: "n1", IsRead: true}})
	})
	mux.HandleFunc("/api/notifications/read-all", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})
	mux.HandleFunc("/api/notifications/current", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []model.Notification{{ID: "n1"}}})
	})
	c := newClient(t, mux)
	ctx := context.Background()

	count, err := c.FetchUnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	n, err := c.MarkNotificationRead(ctx, "n1")
	require.NoError(t, err)
	assert.True(t, n.IsRead)

	require.NoError(t, c.MarkAllNotificationsRead(ctx))

	current, err := c.FetchCurrentNotifications(ctx)
	require.NoError(t, err)
	assert.Len(t, current, 1)
}

func TestIDsAreEscapedInPath(t *testing.T) {
	tests := []struct {
		name string
		call func(ctx context.Context, c *Client) error
		want string
	}{
		{
			name: "delete document with a slash",
			call: func(ctx context.Context, c *Client) error { return c.DeleteDocument(ctx, "x/summary") },
			want: "/api/documents/x%2Fsummary",
		},
		{
			name: "delete notification with a dot segment",
			call: func(ctx context.Context, c *Client) error { return c.DeleteNotification(ctx, "../documents/1") },
			want: "/api/notifications/..%2Fdocuments%2F1",
		},
		{
			name: "summary with a query character",
			call: func(ctx context.Context, c *Client) error {
				_, err := c.FetchDocumentSummary(ctx, "a?b")
				return err
			},
			want: "/api/documents/a%3Fb/summary",
		},
		{
			name: "mark read with a space",
			call: func(ctx context.Context, c *Client) error {
				_, err := c.MarkNotificationRead(ctx, "n 1")
				return err
			},
			want: "/api/notifications/n%201/read",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got, query string
			c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, query = r.URL.EscapedPath(), r.URL.RawQuery
				writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{}})
			}))

			require.NoError(t, tt.call(context.Background(), c))
			assert.Equal(t, tt.want, got)
			assert.Empty(t, query)
		})
	}
}

func TestTransportFailureIsRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)

	_, err = c.FetchAllNotifications(context.Background())
	var re *model.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Zero(t, re.Status)
	assert.Contains(t, err.Error(), "Unable to reach the server")
}

func TestCanceledContext(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.CurrentUser(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
