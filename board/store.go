// Package board holds the client-side reconciliation core: an ordered
// in-memory mirror of the server's task list (Store), optimistic
// mutation dispatch (Dispatcher) and application of authoritative
// server responses (reconciler). All mutations run on one loop
// goroutine, so they are atomic with respect to each other and
// completions apply strictly in arrival order.
package board

import (
	"sync"

	"innoboard/domain"
)

// Store is the single source of truth for what renderers display. It
// holds the ordered task list mirrored from the server plus whatever
// optimistic guesses are currently in flight.
type Store struct {
	mu       sync.RWMutex
	tasks    []domain.Task
	watchers []func()
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Subscribe registers fn to run after every mutation. Renderers use
// this as their re-render trigger. fn runs outside the store lock.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.watchers = append(s.watchers, fn)
	s.mu.Unlock()
}

func (s *Store) changed() {
	s.mu.RLock()
	watchers := s.watchers
	s.mu.RUnlock()
	for _, fn := range watchers {
		fn()
	}
}

// Tasks returns a copy of the current ordered task list.
func (s *Store) Tasks() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Get returns a copy of the task with the given identifier.
func (s *Store) Get(id string) (domain.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.tasks[i].Clone(), true
	}
	return domain.Task{}, false
}

// Len returns the number of tasks held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// IDs returns the current ordering as a sequence of identifiers.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, len(s.tasks))
	for i, t := range s.tasks {
		ids[i] = t.ID
	}
	return ids
}

// ReplaceAll swaps in a freshly fetched task list. The result is the
// new canonical order, sorted by the case-number rule.
func (s *Store) ReplaceAll(tasks []domain.Task) {
	s.mu.Lock()
	s.tasks = s.tasks[:0]
	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		s.tasks = append(s.tasks, t.Clone())
	}
	domain.SortTasksByCaseNumber(s.tasks)
	s.mu.Unlock()
	s.changed()
}

// Upsert inserts the record if its identifier is unknown, otherwise
// replaces it in place. The list is re-sorted only when the insert or
// a case-number change can move the record.
func (s *Store) Upsert(task domain.Task) {
	s.mu.Lock()
	if i := s.indexLocked(task.ID); i >= 0 {
		renumbered := s.tasks[i].CaseNumber != task.CaseNumber
		s.tasks[i] = task.Clone()
		if renumbered {
			domain.SortTasksByCaseNumber(s.tasks)
		}
	} else {
		s.tasks = append(s.tasks, task.Clone())
		domain.SortTasksByCaseNumber(s.tasks)
	}
	s.mu.Unlock()
	s.changed()
}

// Remove drops the record with the given identifier. Removing an
// unknown identifier is a no-op, so a late delete confirmation after a
// local removal cannot fail.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.mu.Unlock()
	s.changed()
}

// Reorder applies a full or partial ordering. Identifiers missing from
// ids keep their relative order and are appended after the ones named,
// so late or partial reorder instructions cannot drop records.
// Unknown identifiers in ids are ignored.
func (s *Store) Reorder(ids []string) {
	s.mu.Lock()
	reordered := make([]domain.Task, 0, len(s.tasks))
	taken := make(map[string]bool, len(ids))
	for _, id := range ids {
		if taken[id] {
			continue
		}
		if i := s.indexLocked(id); i >= 0 {
			reordered = append(reordered, s.tasks[i])
			taken[id] = true
		}
	}
	for _, t := range s.tasks {
		if !taken[t.ID] {
			reordered = append(reordered, t)
		}
	}
	s.tasks = reordered
	s.mu.Unlock()
	s.changed()
}

func (s *Store) indexLocked(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// recordSnapshot captures one record (and its position) immediately
// before an optimistic mutation, so failure handling can restore it
// without a refetch.
type recordSnapshot struct {
	task    domain.Task
	index   int
	present bool
}

// snapshot captures the record with the given identifier.
func (s *Store) snapshot(id string) recordSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return recordSnapshot{task: s.tasks[i].Clone(), index: i, present: true}
	}
	return recordSnapshot{}
}

// restore puts a snapshotted record back. If the record still exists
// its fields are reverted in place; if it was removed it is
// re-inserted at its original index, not appended at the end.
func (s *Store) restore(snap recordSnapshot) {
	if !snap.present {
		return
	}
	s.mu.Lock()
	if i := s.indexLocked(snap.task.ID); i >= 0 {
		renumbered := s.tasks[i].CaseNumber != snap.task.CaseNumber
		s.tasks[i] = snap.task.Clone()
		if renumbered {
			domain.SortTasksByCaseNumber(s.tasks)
		}
	} else {
		at := snap.index
		if at > len(s.tasks) {
			at = len(s.tasks)
		}
		s.tasks = append(s.tasks, domain.Task{})
		copy(s.tasks[at+1:], s.tasks[at:])
		s.tasks[at] = snap.task.Clone()
	}
	s.mu.Unlock()
	s.changed()
}
