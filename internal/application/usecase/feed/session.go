package feed

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/talent-match/internal/domain/saved"
)

// SessionStore keeps one Controller per talent and evicts sessions that
// have been idle longer than ttl.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Controller
	ttl      time.Duration
	factory  func(userID uuid.UUID) *Controller
	now      func() time.Time
}

func NewSessionStore(ttl time.Duration, factory func(userID uuid.UUID) *Controller) *SessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionStore{
		sessions: map[uuid.UUID]*Controller{},
		ttl:      ttl,
		factory:  factory,
		now:      time.Now,
	}
}

// Get returns the user's controller and whether it already existed.
func (s *SessionStore) Get(userID uuid.UUID) (*Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.sessions[userID]; ok {
		if s.now().Sub(c.idleSince()) <= s.ttl {
			return c, true
		}
		delete(s.sessions, userID)
	}
	c := s.factory(userID)
	s.sessions[userID] = c
	return c, false
}

// Peek returns the user's live controller without creating one.
func (s *SessionStore) Peek(userID uuid.UUID) (*Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sessions[userID]
	if !ok {
		return nil, false
	}
	if s.now().Sub(c.idleSince()) > s.ttl {
		delete(s.sessions, userID)
		return nil, false
	}
	return c, true
}

// Evict drops idle sessions and returns how many were removed.
func (s *SessionStore) Evict() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, c := range s.sessions {
		if s.now().Sub(c.idleSince()) > s.ttl {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// SavedSet returns the saved set of a live session, or nil when the user
// has no feed open.
func (s *SessionStore) SavedSet(userID uuid.UUID) *saved.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.sessions[userID]; ok {
		return c.Saved()
	}
	return nil
}

// RunEviction evicts idle sessions every interval until ctx is done.
func (s *SessionStore) RunEviction(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Evict()
		}
	}
}
