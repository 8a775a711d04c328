package extract

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlain(t *testing.T) {
	text, err := Plain{}.Extract(context.Background(), []byte("  Safety first.\n"), "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "Safety first.", text)

	text, err = Plain{}.Extract(context.Background(), []byte("sniffed as text"), "upload")
	require.NoError(t, err)
	assert.Equal(t, "sniffed as text", text)

	_, err = Plain{}.Extract(context.Background(), []byte("%PDF-1.7\x00\x01"), "report.pdf")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestTika(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/tika", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte("\n  Extracted body \n"))
	}))
	defer srv.Close()

	text, err := NewTika(srv.URL, srv.Client()).Extract(context.Background(), []byte("%PDF"), "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Extracted body", text)
	assert.Equal(t, "%PDF", gotBody)
}

func TestTika_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	_, err := NewTika(srv.URL, nil).Extract(context.Background(), []byte("x"), "a.pdf")
	assert.Error(t, err)
}

type failing struct{ err error }

func (f failing) Extract(context.Context, []byte, string) (string, error) { return "", f.err }

func TestChain(t *testing.T) {
	boom := errors.New("boom")

	text, err := Chain{failing{boom}, Plain{}}.Extract(context.Background(), []byte("hello"), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	_, err = Chain{failing{boom}, Plain{}}.Extract(context.Background(), []byte{0xff, 0x00}, "a.bin")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Chain{}.Extract(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrUnsupported)
}
