package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"metrodoc/internal/model"
)

type rowScanner interface {
	Scan(dest ...any) error
}

const documentColumns = `id, title, description, department, priority, tags, upload_date,
	file_type, file_name, file_size, file_path, extracted_text, user_id`

const notificationColumns = `id, type, category, priority, title, message, created_at,
	document_id, document_title, is_read`

func scanDocument(s rowScanner) (*model.Document, error) {
	var (
		d    model.Document
		tags []byte
	)
	if err := s.Scan(
		&d.ID,
		&d.Title,
		&d.Description,
		&d.Department,
		&d.Priority,
		&tags,
		&d.UploadDate,
		&d.FileType,
		&d.FileName,
		&d.FileSize,
		&d.FilePath,
		&d.ExtractedText,
		&d.UserID,
	); err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &d.Tags); err != nil {
			return nil, fmt.Errorf("decode tags of document %s: %w", d.ID, err)
		}
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	return &d, nil
}

func scanNotification(s rowScanner) (*model.Notification, error) {
	var (
		n        model.Notification
		docID    sql.NullString
		docTitle sql.NullString
	)
	if err := s.Scan(
		&n.ID,
		&n.Type,
		&n.Category,
		&n.Priority,
		&n.Title,
		&n.Message,
		&n.Timestamp,
		&docID,
		&docTitle,
		&n.IsRead,
	); err != nil {
		return nil, err
	}
	if docID.Valid {
		n.DocumentID = &docID.String
	}
	if docTitle.Valid {
		n.DocumentTitle = &docTitle.String
	}
	return &n, nil
}

func encodeStrings(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching text anywhere. Blank text yields "" so the
// query can skip the predicate.
func containsPattern(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return "%" + likeEscaper.Replace(text) + "%"
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
