package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 500
)

// Document is a catalog entry describing an uploaded file plus its metadata.
// ID and UploadDate are assigned by the server at creation time and never change afterwards.
type Document struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Department    string    `json:"department"`
	Priority      Priority  `json:"priority"`
	Tags          []string  `json:"tags"`
	UploadDate    time.Time `json:"uploadDate"`
	FileType      string    `json:"fileType,omitempty"`
	FileName      string    `json:"fileName,omitempty"`
	FileSize      int64     `json:"fileSize,omitempty"`
	FilePath      string    `json:"filePath,omitempty"`
	ExtractedText string    `json:"extractedText,omitempty"`
	UserID        string    `json:"userId,omitempty"`
}

// Clone returns a deep copy so callers can never alias a stored record's tag slice.
func (d Document) Clone() Document {
	if d.Tags != nil {
		d.Tags = append([]string(nil), d.Tags...)
	}
	return d
}

// Metadata is the caller-supplied part of a document at upload time.
type Metadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Department  string   `json:"department"`
	Priority    Priority `json:"priority,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Normalize trims whitespace, defaults the priority and drops empty or repeated tags.
func (m Metadata) Normalize() Metadata {
	m.Title = strings.TrimSpace(m.Title)
	m.Description = strings.TrimSpace(m.Description)
	m.Department = strings.TrimSpace(m.Department)
	if m.Priority == "" {
		m.Priority = PriorityNone
	}
	m.Tags = NormalizeTags(m.Tags)
	return m
}

// Validate checks the metadata against the catalog rules.
func (m Metadata) Validate() error {
	if m.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if utf8.RuneCountInString(m.Title) > maxTitleLen {
		return fmt.Errorf("%w: title exceeds %d characters", ErrInvalid, maxTitleLen)
	}
	if utf8.RuneCountInString(m.Description) > maxDescriptionLen {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalid, maxDescriptionLen)
	}
	if !IsDepartment(m.Department) {
		return fmt.Errorf("%w: unknown department %q", ErrInvalid, m.Department)
	}
	if !m.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalid, m.Priority)
	}
	return nil
}

// NormalizeTags trims tags and removes blanks and duplicates, keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// FileTypeFromName derives the upper-case file type label from a file name extension.
func FileTypeFromName(name string) string {
	ext := strings.ToUpper(strings.TrimPrefix(filepath.Ext(name), "."))
	if _, ok := fileTypes[ext]; ok {
		return ext
	}
	return ""
}

var fileTypes = map[string]struct{}{
	"PDF": {}, "DOC": {}, "DOCX": {}, "JPG": {}, "JPEG": {}, "PNG": {}, "TXT": {},
}

// DocumentPatch carries the mutable document fields. A nil field is left untouched.
type DocumentPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Department  *string   `json:"department,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

var mutableFields = map[string]struct{}{
	"title":       {},
	"description": {},
	"department":  {},
	"priority":    {},
	"tags":        {},
}

// DecodePatch parses a JSON object into a DocumentPatch.
// Any key outside the mutable set (id, uploadDate, file metadata, ...) is rejected with ErrImmutableField.
func DecodePatch(data []byte) (DocumentPatch, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return DocumentPatch{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for k := range raw {
		if _, ok := mutableFields[k]; !ok {
			return DocumentPatch{}, fmt.Errorf("%w: %s", ErrImmutableField, k)
		}
	}

	var p DocumentPatch
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&p); err != nil {
		return DocumentPatch{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return p, p.Validate()
}

// IsEmpty reports whether the patch changes nothing.
func (p DocumentPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Department == nil && p.Priority == nil && p.Tags == nil
}

// Validate applies the Metadata rules to the fields the patch sets.
func (p DocumentPatch) Validate() error {
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		if t == "" {
			return fmt.Errorf("%w: title must not be empty", ErrInvalid)
		}
		if utf8.RuneCountInString(t) > maxTitleLen {
			return fmt.Errorf("%w: title exceeds %d characters", ErrInvalid, maxTitleLen)
		}
	}
	if p.Description != nil && utf8.RuneCountInString(*p.Description) > maxDescriptionLen {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalid, maxDescriptionLen)
	}
	if p.Department != nil && !IsDepartment(*p.Department) {
		return fmt.Errorf("%w: unknown department %q", ErrInvalid, *p.Department)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalid, *p.Priority)
	}
	return nil
}

// Apply returns a copy of d with the patch merged in.
func (p DocumentPatch) Apply(d Document) Document {
	out := d.Clone()
	if p.Title != nil {
		out.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Department != nil {
		out.Department = *p.Department
	}
	if p.Priority != nil {
		out.Priority = *p.Priority
		if out.Priority == "" {
			out.Priority = PriorityNone
		}
	}
	if p.Tags != nil {
		out.Tags = NormalizeTags(*p.Tags)
	}
	return out
}

// Summary is the opaque AI result for a document.
type Summary struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints"`
}
