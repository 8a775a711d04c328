// Package catalog holds the authoritative client-side copy of the document catalogue.
//
// A Store is created per session and is safe for concurrent use. Every read returns deep copies,
// so callers can never mutate stored records through a returned value.
package catalog

import (
	"fmt"
	"slices"
	"sync"

	"metrodoc/internal/model"
)

// EventKind identifies what changed in the store.
type EventKind string

const (
	EventAdded    EventKind = "added"
	EventUpdated  EventKind = "updated"
	EventRemoved  EventKind = "removed"
	EventReplaced EventKind = "replaced"
)

// Event is delivered to subscribers after a write. ID is empty for EventReplaced.
type Event struct {
	Kind EventKind
	ID   string
}

// Store is the in-memory document collection, keyed by id and kept in insertion order.
type Store struct {
	mu    sync.Mutex
	order []string
	docs  map[string]model.Document

	// rev stamps the last write per id, removed ids included, so a stale rollback can be detected.
	rev   map[string]uint64
	clock uint64

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// New returns an empty store.
func New() *Store {
	return &Store{
		docs: make(map[string]model.Document),
		rev:  make(map[string]uint64),
		subs: make(map[int]func(Event)),
	}
}

// Add inserts doc at the end of the collection.
func (s *Store) Add(doc model.Document) error {
	s.mu.Lock()
	if _, ok := s.docs[doc.ID]; ok {
		s.mu.Unlock()
		return fmt.Errorf("add %s: %w", doc.ID, model.ErrDuplicateID)
	}
	s.insertLocked(len(s.order), doc.Clone())
	s.mu.Unlock()

	s.publish(Event{Kind: EventAdded, ID: doc.ID})
	return nil
}

// Update merges the patch into the stored document and returns the result.
func (s *Store) Update(id string, patch model.DocumentPatch) (model.Document, error) {
	s.mu.Lock()
	cur, ok := s.docs[id]
	if !ok {
		s.mu.Unlock()
		return model.Document{}, fmt.Errorf("update %s: %w", id, model.ErrNotFound)
	}
	next := patch.Apply(cur)
	s.docs[id] = next
	s.stampLocked(id)
	s.mu.Unlock()

	s.publish(Event{Kind: EventUpdated, ID: id})
	return next.Clone(), nil
}

// Remove deletes the document. Notifications that reference it are not touched.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	if _, ok := s.docs[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("remove %s: %w", id, model.ErrNotFound)
	}
	s.removeLocked(id)
	s.mu.Unlock()

	s.publish(Event{Kind: EventRemoved, ID: id})
	return nil
}

// Put upserts doc. An existing record keeps its position; a new one is appended.
func (s *Store) Put(doc model.Document) {
	s.mu.Lock()
	kind := EventUpdated
	if _, ok := s.docs[doc.ID]; ok {
		s.docs[doc.ID] = doc.Clone()
		s.stampLocked(doc.ID)
	} else {
		kind = EventAdded
		s.insertLocked(len(s.order), doc.Clone())
	}
	s.mu.Unlock()

	s.publish(Event{Kind: kind, ID: doc.ID})
}

// ReplaceAll swaps the whole collection. On a repeated id the store is left unchanged.
func (s *Store) ReplaceAll(docs []model.Document) error {
	order := make([]string, 0, len(docs))
	next := make(map[string]model.Document, len(docs))
	for _, d := range docs {
		if _, ok := next[d.ID]; ok {
			return fmt.Errorf("replace: %s: %w", d.ID, model.ErrDuplicateID)
		}
		next[d.ID] = d.Clone()
		order = append(order, d.ID)
	}

	s.mu.Lock()
	for id := range s.rev {
		s.stampLocked(id)
	}
	s.order = order
	s.docs = next
	for _, id := range order {
		s.stampLocked(id)
	}
	s.mu.Unlock()

	s.publish(Event{Kind: EventReplaced})
	return nil
}

// GetAll returns copies of every document in insertion order.
func (s *Store) GetAll() []model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Document, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.docs[id].Clone())
	}
	return out
}

// Get returns a copy of the document with the given id.
func (s *Store) Get(id string) (model.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[id]
	if !ok {
		return model.Document{}, false
	}
	return d.Clone(), true
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Subscribe registers fn for change events. Events are delivered synchronously, outside the store lock.
// The returned func cancels the subscription.
func (s *Store) Subscribe(fn func(Event)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) publish(ev Event) {
	s.subMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (s *Store) stampLocked(id string) uint64 {
	s.clock++
	s.rev[id] = s.clock
	return s.clock
}

func (s *Store) insertLocked(pos int, doc model.Document) {
	pos = max(0, min(pos, len(s.order)))
	s.order = slices.Insert(s.order, pos, doc.ID)
	s.docs[doc.ID] = doc
	s.stampLocked(doc.ID)
}

// removeLocked deletes id and returns its former position.
func (s *Store) removeLocked(id string) int {
	pos := slices.Index(s.order, id)
	if pos >= 0 {
		s.order = slices.Delete(s.order, pos, pos+1)
	}
	delete(s.docs, id)
	s.stampLocked(id)
	return pos
}
