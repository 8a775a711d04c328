// Package extract turns uploaded file content into plain text for search and summaries.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/go-tika/tika"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrUnsupported is returned when an extractor cannot handle the content.
var ErrUnsupported = errors.New("extract: unsupported content")

// Extractor produces plain text from a file.
type Extractor interface {
	Extract(ctx context.Context, content []byte, fileName string) (string, error)
}

// Plain handles text files without any external service.
type Plain struct{}

func (Plain) Extract(_ context.Context, content []byte, fileName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	isText := ext == ".txt" || ext == ".md" || ext == ".csv"
	if !isText {
		isText = strings.HasPrefix(http.DetectContentType(content), "text/")
	}
	if !isText || !utf8.Valid(content) {
		return "", ErrUnsupported
	}
	return strings.TrimSpace(string(content)), nil
}

// Tika sends content to an Apache Tika server.
type Tika struct {
	client *tika.Client
}

// NewTika returns a Tika extractor for the server at url. A nil httpClient gets a traced client
// with a 30s timeout.
func NewTika(url string, httpClient *http.Client) *Tika {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Tika{client: tika.NewClient(httpClient, url)}
}

func (t *Tika) Extract(ctx context.Context, content []byte, _ string) (string, error) {
	text, err := t.client.Parse(ctx, bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("tika parse: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Chain tries each extractor in order and returns the first success.
type Chain []Extractor

func (c Chain) Extract(ctx context.Context, content []byte, fileName string) (string, error) {
	var errs []error
	for _, e := range c {
		text, err := e.Extract(ctx, content, fileName)
		if err == nil {
			return text, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return "", ErrUnsupported
	}
	return "", errors.Join(errs...)
}
