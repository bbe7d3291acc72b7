package saved

import (
	"sync"

	"github.com/google/uuid"
)

type Kind string

const (
	KindSave   Kind = "save"
	KindUnsave Kind = "unsave"
)

// Command is a save toggle applied locally before the write is confirmed.
type Command struct {
	Kind Kind
	ID   uuid.UUID

	applied  bool
	wasSaved bool
}

// Set is the in-memory saved state shown next to feed items.
type Set struct {
	mu  sync.RWMutex
	ids map[uuid.UUID]struct{}
}

func NewSet(ids ...uuid.UUID) *Set {
	s := &Set{ids: make(map[uuid.UUID]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

func (s *Set) Has(id uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// Replace swaps the whole set, e.g. after reloading from storage.
func (s *Set) Replace(ids []uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

// ApplyOptimistic mutates the set and returns the command carrying the prior
// state needed by Rollback.
func (s *Set) ApplyOptimistic(cmd Command) Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, cmd.wasSaved = s.ids[cmd.ID]
	switch cmd.Kind {
	case KindSave:
		s.ids[cmd.ID] = struct{}{}
	case KindUnsave:
		delete(s.ids, cmd.ID)
	}
	cmd.applied = true
	return cmd
}

// Rollback restores the state observed before ApplyOptimistic.
func (s *Set) Rollback(cmd Command) {
	if !cmd.applied {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if cmd.wasSaved {
		s.ids[cmd.ID] = struct{}{}
	} else {
		delete(s.ids, cmd.ID)
	}
}

// Reconcile keeps the optimistic state when writeErr is nil and rolls back
// otherwise. writeErr is returned unchanged.
func (s *Set) Reconcile(cmd Command, writeErr error) error {
	if writeErr != nil {
		s.Rollback(cmd)
	}
	return writeErr
}
