package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"metrodoc/internal/extract"
	"metrodoc/internal/model"
	"metrodoc/internal/query"
	"metrodoc/internal/repository"
	"metrodoc/internal/storage"
	"metrodoc/internal/summary"
)

// DocumentListResult is the service-level DTO for documents.
type DocumentListResult struct {
	Items []model.Document
	Total int
}

// UploadInput is one multipart upload.
type UploadInput struct {
	Reader      io.Reader
	FileName    string
	ContentType string
	Size        int64
	Metadata    model.Metadata
	UserID      string
}

// SearchRequest is a server-side search. Priority is an extra filter the client view lacks.
type SearchRequest struct {
	query.Request
	Priority model.Priority
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload stores the file, extracts its text and saves the metadata row. The stored object is
	// removed again when the row cannot be written. High priority uploads raise a notification.
	Upload(ctx context.Context, in UploadInput) (*model.Document, error)

	// List returns documents newest first. A non-positive limit returns every document.
	List(ctx context.Context, limit, offset int) (*DocumentListResult, error)

	Search(ctx context.Context, req SearchRequest) ([]model.Document, error)

	Get(ctx context.Context, id string) (*model.Document, error)

	Update(ctx context.Context, id string, patch model.DocumentPatch) (*model.Document, error)

	// Delete removes the file, then the row. Notifications referencing the document stay.
	Delete(ctx context.Context, id string) error

	// Summary returns the cached summary or generates and caches one.
	Summary(ctx context.Context, id string) (*model.Summary, error)

	// Download opens the stored file. The caller closes the reader.
	Download(ctx context.Context, id string) (io.ReadCloser, *model.Document, error)

	// DownloadURL returns a presigned link to the stored file, valid for DownloadURLExpiry.
	DownloadURL(ctx context.Context, id string) (string, error)
}

// DownloadURLExpiry bounds the lifetime of links returned by DownloadURL.
const DownloadURLExpiry = 15 * time.Minute

// Notifier raises notifications on behalf of other services.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) (*model.Notification, error)
}

// DocumentServiceConfig wires a DocumentService. Nil collaborators get working defaults except
// Store and Documents.
type DocumentServiceConfig struct {
	Store         storage.Storage
	Documents     repository.DocumentRepository
	Summaries     repository.SummaryRepository
	Notifier      Notifier
	Extractor     extract.Extractor
	Summarizer    summary.Summarizer
	MaxUploadSize int64
	Locale        language.Tag
	Logger        *zap.Logger
	Clock         func() time.Time
}

type documentService struct {
	store      storage.Storage
	repo       repository.DocumentRepository
	summaries  repository.SummaryRepository
	notifier   Notifier
	extractor  extract.Extractor
	summarizer summary.Summarizer
	maxSize    int64
	engine     query.Engine
	log        *zap.Logger
	clock      func() time.Time
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(cfg DocumentServiceConfig) DocumentService {
	s := &documentService{
		store:      cfg.Store,
		repo:       cfg.Documents,
		summaries:  cfg.Summaries,
		notifier:   cfg.Notifier,
		extractor:  cfg.Extractor,
		summarizer: cfg.Summarizer,
		maxSize:    cfg.MaxUploadSize,
		engine:     query.Engine{Locale: cfg.Locale},
		log:        cfg.Logger,
		clock:      cfg.Clock,
	}
	if s.extractor == nil {
		s.extractor = extract.Plain{}
	}
	if s.summarizer == nil {
		s.summarizer = summary.Extractive{}
	}
	if s.maxSize <= 0 {
		s.maxSize = 10 * units.MB
	}
	if s.engine.Locale == language.Und {
		s.engine.Locale = language.English
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	return s
}

func (s *documentService) tooLarge() error {
	return newError(model.ErrTooLarge, "file exceeds the %s upload limit", units.HumanSize(float64(s.maxSize)))
}

var tracer trace.Tracer = otel.Tracer("metrodoc/internal/service")

func (s *documentService) Upload(ctx context.Context, in UploadInput) (*model.Document, error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Upload", trace.WithAttributes(
		attribute.String("document.file_name", in.FileName),
		attribute.Int64("document.declared_size", in.Size),
	))
	defer span.End()

	doc, err := s.upload(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("document.id", doc.ID), attribute.Int64("document.size", doc.FileSize))
	return doc, nil
}

func (s *documentService) upload(ctx context.Context, in UploadInput) (*model.Document, error) {
	if in.Reader == nil {
		return nil, ErrReaderNil
	}
	meta := in.Metadata.Normalize()
	if err := meta.Validate(); err != nil {
		return nil, invalid(err)
	}
	fileType := model.FileTypeFromName(in.FileName)
	if fileType == "" {
		return nil, ErrUnsupportedType
	}
	if in.Size > s.maxSize {
		return nil, s.tooLarge()
	}

	content, err := io.ReadAll(io.LimitReader(in.Reader, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(content)) > s.maxSize {
		return nil, s.tooLarge()
	}

	text, err := s.extractor.Extract(ctx, content, in.FileName)
	if err != nil {
		if !errors.Is(err, extract.ErrUnsupported) {
			s.log.Warn("text extraction failed", zap.String("file_name", in.FileName), zap.Error(err))
		}
		text = ""
	}

	id := uuid.New().String()
	key := storage.DocumentKey(id, in.FileName)
	contentType := in.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = storage.ContentTypeFor(fileType)
	}
	objInfo, err := s.store.Put(ctx, key, bytes.NewReader(content), storage.PutObjectOptions{
		Size:        int64(len(content)),
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": in.FileName,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	doc := &model.Document{
		ID:            id,
		Title:         meta.Title,
		Description:   meta.Description,
		Department:    meta.Department,
		Priority:      meta.Priority,
		Tags:          meta.Tags,
		UploadDate:    s.clock().UTC(),
		FileType:      fileType,
		FileName:      in.FileName,
		FileSize:      objInfo.Size,
		FilePath:      objInfo.Key,
		ExtractedText: text,
		UserID:        in.UserID,
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	if stored.Priority == model.PriorityHigh && s.notifier != nil {
		s.raiseHighPriority(ctx, stored)
	}
	return stored, nil
}

func (s *documentService) raiseHighPriority(ctx context.Context, doc *model.Document) {
	id, title := doc.ID, doc.Title
	_, err := s.notifier.Notify(ctx, model.Notification{
		Type:          model.TypeAlert,
		Category:      strings.ToLower(doc.Department),
		Priority:      model.NotificationHigh,
		Title:         "High priority document uploaded",
		Message:       fmt.Sprintf("%q was uploaded to %s and is marked high priority.", doc.Title, doc.Department),
		Timestamp:     doc.UploadDate,
		DocumentID:    &id,
		DocumentTitle: &title,
	})
	if err != nil {
		s.log.Warn("upload notification failed", zap.String("document_id", doc.ID), zap.Error(err))
	}
}

func (s *documentService) List(ctx context.Context, limit, offset int) (*DocumentListResult, error) {
	if limit <= 0 {
		items, err := s.repo.Search(ctx, repository.DocumentFilter{})
		if err != nil {
			return nil, err
		}
		return &DocumentListResult{Items: items, Total: len(items)}, nil
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

// Search filters in the database and orders with the same engine the client uses, so a
// server-side search and a local view of the same data agree.
func (s *documentService) Search(ctx context.Context, req SearchRequest) ([]model.Document, error) {
	if req.Priority != "" && !req.Priority.Valid() {
		return nil, newError(model.ErrInvalid, "unknown priority %q", req.Priority)
	}
	items, err := s.repo.Search(ctx, repository.DocumentFilter{
		Text:       req.Text,
		Department: req.Department,
		Priority:   req.Priority,
	})
	if err != nil {
		return nil, err
	}
	s.engine.Sort(items, req.Sort)
	return items, nil
}

func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) Update(ctx context.Context, id string, patch model.DocumentPatch) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if err := patch.Validate(); err != nil {
		return nil, invalid(err)
	}
	doc, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) Delete(ctx context.Context, id string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	// Storage goes first; a failure keeps the row so the file stays reachable.
	if err := s.store.Delete(ctx, doc.FilePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	return nil
}

func (s *documentService) Summary(ctx context.Context, id string) (*model.Summary, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.summaries != nil {
		cached, err := s.summaries.Find(ctx, id)
		switch {
		case err == nil:
			return cached, nil
		case !errors.Is(err, sql.ErrNoRows):
			return nil, err
		}
	}

	sum, err := s.summarizer.Summarize(ctx, doc.ExtractedText)
	if errors.Is(err, summary.ErrNoText) {
		sum, err = s.summarizer.Summarize(ctx, doc.Description)
	}
	if errors.Is(err, summary.ErrNoText) {
		p := summary.Placeholder()
		return &p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("summarize document %s: %w", id, err)
	}

	if s.summaries != nil {
		if err := s.summaries.Save(ctx, id, sum); err != nil {
			s.log.Warn("summary cache write failed", zap.String("document_id", id), zap.Error(err))
		}
	}
	return &sum, nil
}

func (s *documentService) Download(ctx context.Context, id string) (io.ReadCloser, *model.Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.store.Get(ctx, doc.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, newError(model.ErrNotFound, "Document file not found")
		}
		return nil, nil, err
	}
	return rc, doc, nil
}

func (s *documentService) DownloadURL(ctx context.Context, id string) (string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	link, err := s.store.PresignGet(ctx, doc.FilePath, doc.FileName, DownloadURLExpiry)
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	return link, nil
}
