package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemorySessionStore builds an in-memory session store for testing and
// dev-mode runs without a database.
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{sessions: make(map[string]Session)}
}

func (s *memorySessionStore) Create(_ context.Context, session Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *memorySessionStore) FindByTokenHash(_ context.Context, hash string) (Session, error) {
	now := time.Now().UTC()

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, session := range s.sessions {
		if session.RefreshTokenHash == hash && session.ExpiresAt.After(now) {
			return session, nil
		}
	}
	return Session{}, ErrTokenInvalid
}
