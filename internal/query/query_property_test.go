package query

import (
	"slices"
	"strconv"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"metrodoc/internal/model"
)

// buildDocs turns generated columns into documents. Offsets become upload times in hours.
func buildDocs(titles []string, offsets []int) []model.Document {
	docs := make([]model.Document, 0, len(titles))
	for i, title := range titles {
		off := 0
		if len(offsets) > 0 {
			off = offsets[i%len(offsets)]
		}
		docs = append(docs, model.Document{
			ID:          strconv.Itoa(i) + "-" + title,
			Title:       title,
			Description: "desc " + title,
			Department:  model.Departments[i%len(model.Departments)],
			Tags:        []string{title + "-tag"},
			UploadDate:  base.Add(time.Duration(off) * time.Hour),
		})
	}
	return docs
}

func TestQueryProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("filter is sound and complete", prop.ForAll(
		func(titles []string, needle string, deptIdx int) bool {
			docs := buildDocs(titles, nil)
			dept := model.Departments[deptIdx]
			req := Request{Text: needle, Department: dept}

			got := Filter(docs, req)
			for _, d := range got {
				if !Matches(d, needle) || !MatchesDepartment(d, dept) {
					return false
				}
			}
			want := 0
			for _, d := range docs {
				if Matches(d, needle) && MatchesDepartment(d, dept) {
					want++
				}
			}
			return want == len(got)
		},
		gen.SliceOf(gen.AlphaString()),
		gen.AlphaString(),
		gen.IntRange(0, len(model.Departments)-1),
	))

	properties.Property("result is the intersection of the text and department filters", prop.ForAll(
		func(titles []string, needle string, deptIdx int) bool {
			docs := buildDocs(titles, nil)
			dept := model.Departments[deptIdx]

			both := Filter(docs, Request{Text: needle, Department: dept})
			textOnly := Filter(docs, Request{Text: needle})
			deptOnly := Filter(docs, Request{Department: dept})

			chained := Filter(textOnly, Request{Department: dept})
			if len(chained) != len(both) {
				return false
			}
			for i := range both {
				if both[i].ID != chained[i].ID {
					return false
				}
			}
			return len(both) <= len(textOnly) && len(both) <= len(deptOnly)
		},
		gen.SliceOf(gen.AlphaString()),
		gen.AlphaString(),
		gen.IntRange(0, len(model.Departments)-1),
	))

	properties.Property("latest is the reverse of oldest when upload dates are distinct", prop.ForAll(
		func(titles []string) bool {
			offsets := make([]int, len(titles))
			for i := range offsets {
				offsets[i] = (i * 7919) % 100003
			}
			docs := buildDocs(titles, offsets)

			latest := Apply(docs, Request{Sort: SortLatest})
			oldest := Apply(docs, Request{Sort: SortOldest})
			slices.Reverse(oldest)
			for i := range latest {
				if latest[i].ID != oldest[i].ID || !latest[i].UploadDate.Equal(oldest[i].UploadDate) {
					return false
				}
			}
			return len(latest) == len(docs)
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("sort keeps equal keys in input order", prop.ForAll(
		func(titles []string, offsets []int) bool {
			docs := buildDocs(titles, offsets)
			for i := range docs {
				docs[i].ID = strconv.Itoa(i)
			}
			position := make(map[string]int, len(docs))
			for i, d := range docs {
				position[d.ID] = i
			}

			sorted := Apply(docs, Request{Sort: SortOldest})
			for i := 1; i < len(sorted); i++ {
				prev, cur := sorted[i-1], sorted[i]
				if prev.UploadDate.Equal(cur.UploadDate) && position[prev.ID] > position[cur.ID] {
					return false
				}
				if prev.UploadDate.After(cur.UploadDate) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.IntRange(0, 3)),
	))

	properties.Property("apply never changes its input", prop.ForAll(
		func(titles []string, offsets []int, needle string) bool {
			docs := buildDocs(titles, offsets)
			snapshot := make([]model.Document, len(docs))
			for i, d := range docs {
				snapshot[i] = d.Clone()
			}

			out := Apply(docs, Request{Text: needle, Sort: SortTitleAsc})
			for i := range out {
				out[i].Title = "changed"
				if len(out[i].Tags) > 0 {
					out[i].Tags[0] = "changed"
				}
			}

			for i := range docs {
				if docs[i].Title != snapshot[i].Title || !slices.Equal(docs[i].Tags, snapshot[i].Tags) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.IntRange(0, 50)),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
