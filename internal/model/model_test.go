package model

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePatch(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		check   func(t *testing.T, p DocumentPatch)
	}{
		{
			name: "mutable fields",
			body: `{"title":"New title","priority":"high","tags":["a","b"]}`,
			check: func(t *testing.T, p DocumentPatch) {
				require.NotNil(t, p.Title)
				assert.Equal(t, "New title", *p.Title)
				require.NotNil(t, p.Priority)
				assert.Equal(t, PriorityHigh, *p.Priority)
				require.NotNil(t, p.Tags)
				assert.Equal(t, []string{"a", "b"}, *p.Tags)
				assert.Nil(t, p.Department)
			},
		},
		{name: "id is immutable", body: `{"id":"x"}`, wantErr: ErrImmutableField},
		{name: "uploadDate is immutable", body: `{"title":"ok","uploadDate":"2025-01-01T00:00:00Z"}`, wantErr: ErrImmutableField},
		{name: "file metadata is immutable", body: `{"fileSize":10}`, wantErr: ErrImmutableField},
		{name: "not an object", body: `[1,2]`, wantErr: ErrInvalid},
		{name: "unknown department", body: `{"department":"Marketing"}`, wantErr: ErrInvalid},
		{name: "blank title", body: `{"title":"  "}`, wantErr: ErrInvalid},
		{name: "empty object", body: `{}`, check: func(t *testing.T, p DocumentPatch) { assert.True(t, p.IsEmpty()) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodePatch([]byte(tt.body))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}

func TestDocumentPatch_Apply(t *testing.T) {
	upload := time.Date(2025, 10, 1, 10, 30, 0, 0, time.UTC)
	doc := Document{
		ID:         "1",
		Title:      "Old",
		Department: "Operations",
		Priority:   PriorityLow,
		Tags:       []string{"x"},
		UploadDate: upload,
	}

	title := "  New  "
	tags := []string{"b", "b", " a "}
	got := DocumentPatch{Title: &title, Tags: &tags}.Apply(doc)

	assert.Equal(t, "New", got.Title)
	assert.Equal(t, []string{"b", "a"}, got.Tags)
	assert.Equal(t, "Operations", got.Department)
	assert.Equal(t, PriorityLow, got.Priority)
	assert.Equal(t, "1", got.ID)
	assert.True(t, got.UploadDate.Equal(upload))
	assert.Equal(t, "Old", doc.Title, "original is untouched")
}

func TestMetadata_Validate(t *testing.T) {
	valid := Metadata{Title: "Report", Department: "Finance"}.Normalize()
	require.NoError(t, valid.Validate())
	assert.Equal(t, PriorityNone, valid.Priority)

	cases := map[string]Metadata{
		"missing title":    {Department: "Finance"},
		"long title":       {Title: strings.Repeat("t", 201), Department: "Finance"},
		"long description": {Title: "t", Description: strings.Repeat("d", 501), Department: "Finance"},
		"bad department":   {Title: "t", Department: "finance"},
		"bad priority":     {Title: "t", Department: "Finance", Priority: "urgent"},
	}
	for name, m := range cases {
		assert.ErrorIs(t, m.Normalize().Validate(), ErrInvalid, name)
	}
}

func TestFileTypeFromName(t *testing.T) {
	assert.Equal(t, "PDF", FileTypeFromName("safety.pdf"))
	assert.Equal(t, "DOCX", FileTypeFromName("plan.v2.Docx"))
	assert.Equal(t, "", FileTypeFromName("archive.zip"))
	assert.Equal(t, "", FileTypeFromName("README"))
}

func TestRemoteError(t *testing.T) {
	err := error(&RemoteError{Op: "FetchDocumentByID", Status: http.StatusNotFound, Message: "Document not found"})
	assert.Equal(t, "Document not found", err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrUnauthenticated))

	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "FetchDocumentByID", re.Op)

	assert.ErrorIs(t, &RemoteError{Status: http.StatusUnauthorized}, ErrUnauthenticated)
	assert.ErrorIs(t, &RemoteError{Status: http.StatusConflict}, ErrDuplicateID)
	assert.Equal(t, "Internal Server Error", (&RemoteError{Status: 500}).Error())
	assert.Equal(t, "remote call failed", (&RemoteError{}).Error())
}

func TestNotification_IsCurrent(t *testing.T) {
	now := time.Date(2025, 10, 10, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) Notification { return Notification{Timestamp: now.Add(-d)} }

	assert.True(t, at(time.Hour).IsCurrent(now, DefaultNotificationWindow))
	assert.True(t, at(DefaultNotificationWindow-time.Nanosecond).IsCurrent(now, DefaultNotificationWindow))
	assert.False(t, at(DefaultNotificationWindow).IsCurrent(now, DefaultNotificationWindow))
	assert.False(t, at(5*24*time.Hour).IsCurrent(now, DefaultNotificationWindow))
}

func TestNotification_CloneDoesNotShare(t *testing.T) {
	id, title := "1", "Doc"
	n := Notification{ID: "n", DocumentID: &id, DocumentTitle: &title}
	c := n.Clone()
	*c.DocumentID = "2"
	assert.Equal(t, "1", *n.DocumentID)
}
