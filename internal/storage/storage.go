// Package storage holds uploaded document files in an S3-compatible object store.
// Implementations stream through readers and never touch local disk.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// ErrObjectNotFound is returned by Get when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; -1 lets the backend chunk the stream.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a reusable, S3-compatible object storage client interface.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	// A non-empty fileName makes the link download as an attachment with that name.
	PresignGet(ctx context.Context, key, fileName string, expiry time.Duration) (string, error)
}

// DocumentKey returns the object key for a document file: documents/<id><ext>, with the
// extension taken lower-cased from the original file name.
func DocumentKey(documentID, fileName string) string {
	return path.Join("documents", documentID+strings.ToLower(path.Ext(fileName)))
}

// ContentTypeFor maps a document file type label to a MIME type for downloads.
func ContentTypeFor(fileType string) string {
	switch strings.ToUpper(fileType) {
	case "PDF":
		return "application/pdf"
	case "DOC":
		return "application/msword"
	case "DOCX":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case "JPG", "JPEG":
		return "image/jpeg"
	case "PNG":
		return "image/png"
	case "TXT":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// ContentDisposition renders an attachment header for name.
func ContentDisposition(name string) string {
	return fmt.Sprintf("attachment; filename=%q", path.Base(name))
}
