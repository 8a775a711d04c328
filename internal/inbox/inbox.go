// Package inbox holds the client-side notification collection and its current/past partition.
//
// The store never reads the clock: every time-dependent query takes now as a parameter.
package inbox

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"metrodoc/internal/model"
)

// EventKind identifies what changed in the store.
type EventKind string

const (
	EventAdded    EventKind = "added"
	EventRead     EventKind = "read"
	EventRemoved  EventKind = "removed"
	EventReplaced EventKind = "replaced"
)

// Event is delivered to subscribers after a write. ID is empty for bulk changes.
type Event struct {
	Kind EventKind
	ID   string
}

// Option configures a Store.
type Option func(*Store)

// WithWindow overrides the width of the "current" window.
func WithWindow(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.window = d
		}
	}
}

// Store is a mutex-guarded notification collection.
type Store struct {
	mu     sync.Mutex
	window time.Duration
	order  []string
	items  map[string]model.Notification
	rev    map[string]uint64
	clock  uint64

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// New returns an empty store with the default 72h window.
func New(opts ...Option) *Store {
	s := &Store{
		window: model.DefaultNotificationWindow,
		items:  make(map[string]model.Notification),
		rev:    make(map[string]uint64),
		subs:   make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Window returns the configured current window.
func (s *Store) Window() time.Duration { return s.window }

// Add inserts n. Ids must be unique.
func (s *Store) Add(n model.Notification) error {
	s.mu.Lock()
	if _, ok := s.items[n.ID]; ok {
		s.mu.Unlock()
		return fmt.Errorf("add notification %s: %w", n.ID, model.ErrDuplicateID)
	}
	s.insertLocked(len(s.order), n.Clone())
	s.mu.Unlock()

	s.publish(Event{Kind: EventAdded, ID: n.ID})
	return nil
}

// ReplaceAll swaps the whole collection. On a repeated id the store is left unchanged.
func (s *Store) ReplaceAll(items []model.Notification) error {
	order := make([]string, 0, len(items))
	next := make(map[string]model.Notification, len(items))
	for _, n := range items {
		if _, ok := next[n.ID]; ok {
			return fmt.Errorf("replace notifications: %s: %w", n.ID, model.ErrDuplicateID)
		}
		next[n.ID] = n.Clone()
		order = append(order, n.ID)
	}

	s.mu.Lock()
	for id := range s.rev {
		s.stampLocked(id)
	}
	s.order = order
	s.items = next
	for _, id := range order {
		s.stampLocked(id)
	}
	s.mu.Unlock()

	s.publish(Event{Kind: EventReplaced})
	return nil
}

// Get returns a copy of the notification with the given id.
func (s *Store) Get(id string) (model.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.items[id]
	if !ok {
		return model.Notification{}, false
	}
	return n.Clone(), true
}

// ListAll returns every notification, newest first.
func (s *Store) ListAll() []model.Notification {
	return s.list(func(model.Notification) bool { return true })
}

// ListCurrent returns notifications with timestamp > now-window, newest first.
func (s *Store) ListCurrent(now time.Time) []model.Notification {
	return s.list(func(n model.Notification) bool { return n.IsCurrent(now, s.window) })
}

// ListPast returns notifications with timestamp <= now-window, newest first.
// A timestamp exactly at the boundary is past.
func (s *Store) ListPast(now time.Time) []model.Notification {
	return s.list(func(n model.Notification) bool { return !n.IsCurrent(now, s.window) })
}

// ByCategory returns notifications whose category equals category, newest first.
func (s *Store) ByCategory(category string) []model.Notification {
	return s.list(func(n model.Notification) bool { return n.Category == category })
}

// ByPriority returns notifications of the given priority, newest first.
func (s *Store) ByPriority(p model.NotificationPriority) []model.Notification {
	return s.list(func(n model.Notification) bool { return n.Priority == p })
}

// UnreadCount returns how many notifications are unread.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.items {
		if !n.IsRead {
			count++
		}
	}
	return count
}

// MarkRead sets IsRead. Marking an already-read notification succeeds and changes nothing.
func (s *Store) MarkRead(id string) error {
	s.mu.Lock()
	n, ok := s.items[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("mark read %s: %w", id, model.ErrNotFound)
	}
	changed := !n.IsRead
	if changed {
		n.IsRead = true
		s.items[id] = n
		s.stampLocked(id)
	}
	s.mu.Unlock()

	if changed {
		s.publish(Event{Kind: EventRead, ID: id})
	}
	return nil
}

// MarkAllRead marks every notification read.
func (s *Store) MarkAllRead() {
	s.mu.Lock()
	changed := false
	for id, n := range s.items {
		if !n.IsRead {
			n.IsRead = true
			s.items[id] = n
			s.stampLocked(id)
			changed = true
		}
	}
	s.mu.Unlock()

	if changed {
		s.publish(Event{Kind: EventRead})
	}
}

// Remove deletes the notification.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	if _, ok := s.items[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("remove notification %s: %w", id, model.ErrNotFound)
	}
	s.removeLocked(id)
	s.mu.Unlock()

	s.publish(Event{Kind: EventRemoved, ID: id})
	return nil
}

// Subscribe registers fn for change events and returns a cancel func.
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

func (s *Store) list(keep func(model.Notification) bool) []model.Notification {
	s.mu.Lock()
	out := make([]model.Notification, 0, len(s.order))
	for _, id := range s.order {
		if n := s.items[id]; keep(n) {
			out = append(out, n.Clone())
		}
	}
	s.mu.Unlock()

	slices.SortStableFunc(out, func(a, b model.Notification) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out
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

func (s *Store) insertLocked(pos int, n model.Notification) {
	pos = max(0, min(pos, len(s.order)))
	s.order = slices.Insert(s.order, pos, n.ID)
	s.items[n.ID] = n
	s.stampLocked(n.ID)
}

func (s *Store) removeLocked(id string) int {
	pos := slices.Index(s.order, id)
	if pos >= 0 {
		s.order = slices.Delete(s.order, pos, pos+1)
	}
	delete(s.items, id)
	s.stampLocked(id)
	return pos
}

// Stage is a tentative removal awaiting the remote outcome.
type Stage struct {
	store *Store
	id    string
	rev   uint64
	prev  model.Notification
	pos   int
	once  sync.Once
}

// StageRemove removes the notification tentatively.
func (s *Store) StageRemove(id string) (*Stage, error) {
	s.mu.Lock()
	n, ok := s.items[id]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("remove notification %s: %w", id, model.ErrNotFound)
	}
	pos := s.removeLocked(id)
	st := &Stage{store: s, id: id, prev: n, pos: pos, rev: s.rev[id]}
	s.mu.Unlock()

	s.publish(Event{Kind: EventRemoved, ID: id})
	return st, nil
}

// Commit confirms the removal.
func (st *Stage) Commit() { st.once.Do(func() {}) }

// Rollback restores the notification unless a later write touched the same id.
func (st *Stage) Rollback() bool {
	restored := false
	st.once.Do(func() {
		s := st.store
		s.mu.Lock()
		if s.rev[st.id] != st.rev {
			s.mu.Unlock()
			return
		}
		s.insertLocked(st.pos, st.prev)
		s.mu.Unlock()

		restored = true
		s.publish(Event{Kind: EventAdded, ID: st.id})
	})
	return restored
}
