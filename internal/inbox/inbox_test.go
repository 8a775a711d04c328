package inbox

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metrodoc/internal/model"
)

var now = time.Date(2025, 10, 10, 12, 0, 0, 0, time.UTC)

func note(id string, age time.Duration, read bool) model.Notification {
	return model.Notification{
		ID:        id,
		Type:      model.TypeInfo,
		Category:  "General",
		Priority:  model.NotificationMedium,
		Title:     "n" + id,
		Timestamp: now.Add(-age),
		IsRead:    read,
	}
}

func ids(items []model.Notification) []string {
	out := make([]string, 0, len(items))
	for _, n := range items {
		out = append(out, n.ID)
	}
	return out
}

func TestStore_CurrentAndPastPartition(t *testing.T) {
	s := New()
	require.NoError(t, s.ReplaceAll([]model.Notification{
		note("old", 5*24*time.Hour, false),
		note("fresh", time.Hour, false),
		note("boundary", 72*time.Hour, false),
		note("inside", 72*time.Hour-time.Second, false),
	}))

	assert.Equal(t, []string{"fresh", "inside"}, ids(s.ListCurrent(now)))
	assert.Equal(t, []string{"boundary", "old"}, ids(s.ListPast(now)))
	assert.Equal(t, []string{"fresh", "inside", "boundary", "old"}, ids(s.ListAll()))
}

func TestStore_WithWindow(t *testing.T) {
	s := New(WithWindow(2 * time.Hour))
	require.NoError(t, s.Add(note("a", time.Hour, false)))
	require.NoError(t, s.Add(note("b", 3*time.Hour, false)))

	assert.Equal(t, 2*time.Hour, s.Window())
	assert.Equal(t, []string{"a"}, ids(s.ListCurrent(now)))
	assert.Equal(t, []string{"b"}, ids(s.ListPast(now)))
}

func TestStore_MarkReadIsIdempotent(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(note("1", time.Hour, false)))
	require.NoError(t, s.Add(note("2", time.Hour, false)))

	require.NoError(t, s.MarkRead("1"))
	first, _ := s.Get("1")
	require.NoError(t, s.MarkRead("1"))
	second, _ := s.Get("1")

	assert.Equal(t, first, second)
	assert.True(t, second.IsRead)
	assert.Equal(t, 1, s.UnreadCount())
	assert.ErrorIs(t, s.MarkRead("missing"), model.ErrNotFound)
}

func TestStore_MarkAllRead(t *testing.T) {
	s := New()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Add(note(fmt.Sprintf("u%d", i), time.Hour, false)))
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Add(note(fmt.Sprintf("r%d", i), time.Hour, true)))
	}
	require.Equal(t, 5, s.UnreadCount())

	s.MarkAllRead()

	assert.Equal(t, 0, s.UnreadCount())
	assert.Len(t, s.ListAll(), 8)
}

func TestStore_DanglingDocumentReferenceSurvives(t *testing.T) {
	s := New()
	docID := "1"
	n := note("n1", time.Hour, false)
	n.DocumentID = &docID
	require.NoError(t, s.Add(n))

	got, ok := s.Get("n1")
	require.True(t, ok)
	require.NotNil(t, got.DocumentID)
	assert.Equal(t, "1", *got.DocumentID)
}

func TestStore_FilterByCategoryAndPriority(t *testing.T) {
	s := New()
	a := note("a", time.Hour, false)
	a.Category = "Compliance"
	a.Priority = model.NotificationHigh
	b := note("b", 2*time.Hour, false)
	require.NoError(t, s.ReplaceAll([]model.Notification{a, b}))

	assert.Equal(t, []string{"a"}, ids(s.ByCategory("Compliance")))
	assert.Equal(t, []string{"b"}, ids(s.ByPriority(model.NotificationMedium)))
	assert.Empty(t, s.ByCategory("compliance"))
}

func TestStore_RemoveAndStage(t *testing.T) {
	s := New()
	require.NoError(t, s.ReplaceAll([]model.Notification{
		note("1", time.Hour, false), note("2", 2*time.Hour, false),
	}))

	st, err := s.StageRemove("1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids(s.ListAll()))

	assert.True(t, st.Rollback())
	assert.Equal(t, []string{"1", "2"}, ids(s.ListAll()))

	st, err = s.StageRemove("2")
	require.NoError(t, err)
	st.Commit()
	assert.False(t, st.Rollback())
	assert.Equal(t, []string{"1"}, ids(s.ListAll()))

	assert.ErrorIs(t, s.Remove("2"), model.ErrNotFound)
	require.NoError(t, s.Remove("1"))
	assert.Empty(t, s.ListAll())
}

func TestStage_RollbackAfterReplaceAllIsNoop(t *testing.T) {
	tests := []struct {
		name string
		next []model.Notification
		want []string
	}{
		{"refresh without the id", []model.Notification{note("a", time.Hour, false)}, []string{"a"}},
		{"logout", nil, []string{}},
		{"refresh still listing the id", []model.Notification{note("a", time.Hour, false), note("b", 2*time.Hour, false)}, []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			require.NoError(t, s.ReplaceAll([]model.Notification{
				note("a", time.Hour, false), note("b", 2*time.Hour, false),
			}))

			st, err := s.StageRemove("b")
			require.NoError(t, err)
			require.NoError(t, s.ReplaceAll(tt.next))

			assert.False(t, st.Rollback())
			assert.Equal(t, tt.want, ids(s.ListAll()))
		})
	}
}

func TestStore_ReplaceAllRejectsDuplicates(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(note("keep", time.Hour, false)))

	err := s.ReplaceAll([]model.Notification{note("x", 0, false), note("x", 0, false)})
	assert.ErrorIs(t, err, model.ErrDuplicateID)
	assert.Equal(t, []string{"keep"}, ids(s.ListAll()))
}

func TestStore_Subscribe(t *testing.T) {
	s := New()
	var got []Event
	cancel := s.Subscribe(func(ev Event) { got = append(got, ev) })
	defer cancel()

	require.NoError(t, s.Add(note("1", time.Hour, false)))
	require.NoError(t, s.MarkRead("1"))
	require.NoError(t, s.MarkRead("1"))
	s.MarkAllRead()

	assert.Equal(t, []Event{{Kind: EventAdded, ID: "1"}, {Kind: EventRead, ID: "1"}}, got)
}

func TestPartitionProperties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("current and past partition the collection", prop.ForAll(
		func(ages []int64) bool {
			s := New()
			for i, age := range ages {
				if err := s.Add(note(fmt.Sprint(i), time.Duration(age)*time.Minute, false)); err != nil {
					return false
				}
			}
			cur, past := s.ListCurrent(now), s.ListPast(now)
			if len(cur)+len(past) != len(ages) {
				return false
			}
			boundary := now.Add(-s.Window())
			for _, n := range cur {
				if !n.Timestamp.After(boundary) {
					return false
				}
			}
			for _, n := range past {
				if n.Timestamp.After(boundary) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int64Range(-60, 10*24*60)),
	))

	properties.TestingRun(t)
}
