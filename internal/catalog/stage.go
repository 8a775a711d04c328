package catalog

import (
	"fmt"
	"sync"

	"metrodoc/internal/model"
)

// Stage is a tentative write awaiting the outcome of a remote call.
// Exactly one of Commit or Rollback takes effect; later calls are no-ops.
type Stage struct {
	store *Store
	id    string
	rev   uint64

	prev    model.Document
	removal bool
	pos     int

	once sync.Once
}

// StageUpdate applies patch tentatively and returns the stage plus the optimistic result.
func (s *Store) StageUpdate(id string, patch model.DocumentPatch) (*Stage, model.Document, error) {
	s.mu.Lock()
	cur, ok := s.docs[id]
	if !ok {
		s.mu.Unlock()
		return nil, model.Document{}, fmt.Errorf("update %s: %w", id, model.ErrNotFound)
	}
	next := patch.Apply(cur)
	s.docs[id] = next
	st := &Stage{store: s, id: id, prev: cur, rev: s.stampLocked(id)}
	s.mu.Unlock()

	s.publish(Event{Kind: EventUpdated, ID: id})
	return st, next.Clone(), nil
}

// StageRemove removes the document tentatively.
func (s *Store) StageRemove(id string) (*Stage, error) {
	s.mu.Lock()
	cur, ok := s.docs[id]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("remove %s: %w", id, model.ErrNotFound)
	}
	pos := s.removeLocked(id)
	st := &Stage{store: s, id: id, prev: cur, removal: true, pos: pos, rev: s.rev[id]}
	s.mu.Unlock()

	s.publish(Event{Kind: EventRemoved, ID: id})
	return st, nil
}

// ID returns the document id the stage applies to.
func (st *Stage) ID() string { return st.id }

// Commit confirms the staged write. A non-nil server record is upserted as the authoritative copy,
// so concurrent updates settle in completion order.
func (st *Stage) Commit(server *model.Document) {
	st.once.Do(func() {
		if server != nil {
			st.store.Put(*server)
		}
	})
}

// Rollback undoes the staged write unless a later write touched the same id, in which case the later
// write wins and Rollback reports false.
func (st *Stage) Rollback() bool {
	restored := false
	st.once.Do(func() {
		s := st.store
		s.mu.Lock()
		if s.rev[st.id] != st.rev {
			s.mu.Unlock()
			return
		}
		if _, present := s.docs[st.id]; present {
			s.docs[st.id] = st.prev
			s.stampLocked(st.id)
		} else {
			s.insertLocked(st.pos, st.prev)
		}
		s.mu.Unlock()

		restored = true
		kind := EventUpdated
		if st.removal {
			kind = EventAdded
		}
		s.publish(Event{Kind: kind, ID: st.id})
	})
	return restored
}
