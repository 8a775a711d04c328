package storage

import (
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
)

func TestDocumentKey(t *testing.T) {
	assert.Equal(t, "documents/abc.pdf", DocumentKey("abc", "Report.PDF"))
	assert.Equal(t, "documents/abc", DocumentKey("abc", "README"))
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentTypeFor("pdf"))
	assert.Equal(t, "image/jpeg", ContentTypeFor("JPEG"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("EXE"))
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, `attachment; filename="safety.pdf"`, ContentDisposition("documents/safety.pdf"))
}

func TestTranslate(t *testing.T) {
	missing := minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist."}
	assert.ErrorIs(t, translate("documents/a.pdf", missing), ErrObjectNotFound)

	other := translate("documents/a.pdf", errors.New("timeout"))
	assert.NotErrorIs(t, other, ErrObjectNotFound)
	assert.Contains(t, other.Error(), "timeout")
}
