package memory

import (
	"sync"

	"uplay-player-service/internal/app"
	"uplay-player-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) GetOrCreate(key string, catalog domain.Catalog) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[key]; ok {
		return session
	}
	session := app.NewSession(key, catalog)
	s.sessions[key] = session
	return session
}

func (s *SessionStore) Get(key string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[key]
	return session, ok
}

// DeleteIfEmpty tears the session down once nobody subscribes to it.
// Stopping the session cancels its drive loop; a leaked ticker here
// would keep resolving questions for a viewer who already left.
func (s *SessionStore) DeleteIfEmpty(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[key]
	if !ok {
		return
	}
	if session.IsEmpty() {
		delete(s.sessions, key)
		session.Stop()
	}
}
