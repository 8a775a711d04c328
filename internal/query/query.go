// Package query derives filtered, sorted views over a document collection.
// Every function here is pure: inputs are never mutated and results never alias them.
package query

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"metrodoc/internal/model"
)

// AllDepartments disables the department filter.
const AllDepartments = "all"

// SortKey selects the ordering of a view.
type SortKey string

const (
	SortLatest   SortKey = "latest"
	SortOldest   SortKey = "oldest"
	SortTitleAsc SortKey = "title-asc"
)

// ParseSort accepts the spellings used by the UI and the REST API. Unknown values report false.
func ParseSort(s string) (SortKey, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "latest", "newest":
		return SortLatest, true
	case "oldest":
		return SortOldest, true
	case "title", "title-asc", "title-ascending":
		return SortTitleAsc, true
	}
	return SortLatest, false
}

// Request describes a view: free-text query, department filter and sort key.
type Request struct {
	Text       string  `json:"q,omitempty"`
	Department string  `json:"department,omitempty"`
	Sort       SortKey `json:"sort,omitempty"`
}

// Engine evaluates requests using a locale for title comparison.
type Engine struct {
	Locale language.Tag
}

var defaultEngine = Engine{Locale: language.English}

// Apply evaluates req over docs with the default (English) engine.
func Apply(docs []model.Document, req Request) []model.Document {
	return defaultEngine.Apply(docs, req)
}

// Apply filters docs by text AND department, then sorts them stably by req.Sort.
// An empty result is a valid outcome.
func (e Engine) Apply(docs []model.Document, req Request) []model.Document {
	out := Filter(docs, req)
	e.Sort(out, req.Sort)
	return out
}

// Filter returns deep copies of the documents that satisfy both the text and the department predicate,
// in their original order.
func Filter(docs []model.Document, req Request) []model.Document {
	needle := normalize(req.Text)
	out := make([]model.Document, 0, len(docs))
	for _, d := range docs {
		if !matchesDepartment(d, req.Department) {
			continue
		}
		if needle != "" && !containsAny(d, needle) {
			continue
		}
		out = append(out, d.Clone())
	}
	return out
}

// Matches reports whether text occurs, case-insensitively, in the title, description,
// department or any single tag of d. Blank text matches everything.
func Matches(d model.Document, text string) bool {
	needle := normalize(text)
	return needle == "" || containsAny(d, needle)
}

// MatchesDepartment applies the exact, case-sensitive department filter. "all" and "" disable it.
func MatchesDepartment(d model.Document, department string) bool {
	return matchesDepartment(d, department)
}

func matchesDepartment(d model.Document, department string) bool {
	if department == "" || department == AllDepartments {
		return true
	}
	return d.Department == department
}

func containsAny(d model.Document, needle string) bool {
	if strings.Contains(strings.ToLower(d.Title), needle) ||
		strings.Contains(strings.ToLower(d.Description), needle) ||
		strings.Contains(strings.ToLower(d.Department), needle) {
		return true
	}
	for _, t := range d.Tags {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}

// normalize lowercases text for matching. Surrounding spaces are part of the needle; only an
// all-blank query collapses to "".
func normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return strings.ToLower(text)
}

// Sort orders docs in place. Ties keep their relative order.
func (e Engine) Sort(docs []model.Document, key SortKey) {
	switch key {
	case SortOldest:
		slices.SortStableFunc(docs, func(a, b model.Document) int {
			return a.UploadDate.Compare(b.UploadDate)
		})
	case SortTitleAsc:
		// collate.Collator keeps internal buffers, so one per call.
		col := collate.New(e.Locale)
		slices.SortStableFunc(docs, func(a, b model.Document) int {
			return col.CompareString(a.Title, b.Title)
		})
	default:
		slices.SortStableFunc(docs, func(a, b model.Document) int {
			return b.UploadDate.Compare(a.UploadDate)
		})
	}
}

// Page returns the window [offset, offset+limit) of docs. A non-positive limit means "to the end".
func Page(docs []model.Document, offset, limit int) []model.Document {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(docs) {
		return []model.Document{}
	}
	end := len(docs)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]model.Document, 0, end-offset)
	for _, d := range docs[offset:end] {
		out = append(out, d.Clone())
	}
	return out
}
