package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"procap-study-service/internal/domain"
)

// SessionStore keeps the per-client persisted slots in Redis: one key holding
// the serialized active user and one holding the theme preference. A zero TTL
// means the slots never expire.
// The stored user intentionally omits the passphrase.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) SaveUser(ctx context.Context, clientID string, user domain.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	return s.client.Set(ctx, s.userKey(clientID), payload, s.ttl).Err()
}

func (s *SessionStore) LoadUser(ctx context.Context, clientID string) (domain.User, bool, error) {
	raw, err := s.client.Get(ctx, s.userKey(clientID)).Bytes()
	if err == redis.Nil {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, fmt.Errorf("load user slot: %w", err)
	}
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return domain.User{}, false, fmt.Errorf("unmarshal user slot: %w", err)
	}
	return user, true, nil
}

func (s *SessionStore) ClearUser(ctx context.Context, clientID string) error {
	return s.client.Del(ctx, s.userKey(clientID)).Err()
}

func (s *SessionStore) SaveTheme(ctx context.Context, clientID, theme string) error {
	return s.client.Set(ctx, s.themeKey(clientID), theme, s.ttl).Err()
}

func (s *SessionStore) LoadTheme(ctx context.Context, clientID string) (string, error) {
	theme, err := s.client.Get(ctx, s.themeKey(clientID)).Result()
	if err == redis.Nil {
		return domain.ThemeLight, nil
	}
	if err != nil {
		return "", fmt.Errorf("load theme slot: %w", err)
	}
	return theme, nil
}

func (s *SessionStore) userKey(clientID string) string {
	return "study:client:" + clientID + ":user"
}

func (s *SessionStore) themeKey(clientID string) string {
	return "study:client:" + clientID + ":theme"
}
