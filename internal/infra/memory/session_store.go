package memory

import (
	"context"
	"sync"

	"procap-study-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore.
type SessionStore struct {
	mu     sync.RWMutex
	users  map[string]domain.User
	themes map[string]string
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		users:  make(map[string]domain.User),
		themes: make(map[string]string),
	}
}

func (s *SessionStore) SaveUser(_ context.Context, clientID string, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[clientID] = user
	return nil
}

func (s *SessionStore) LoadUser(_ context.Context, clientID string) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[clientID]
	return user, ok, nil
}

func (s *SessionStore) ClearUser(_ context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, clientID)
	return nil
}

func (s *SessionStore) SaveTheme(_ context.Context, clientID, theme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.themes[clientID] = theme
	return nil
}

func (s *SessionStore) LoadTheme(_ context.Context, clientID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if theme, ok := s.themes[clientID]; ok {
		return theme, nil
	}
	return domain.ThemeLight, nil
}
