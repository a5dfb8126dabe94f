package app

import (
	"context"
	"fmt"

	"procap-study-service/internal/domain"
)

// AuthService resolves a pseudonym/passphrase pair to a User, provisioning a
// new identity on first contact. The resolved user is persisted to the
// session store under the caller's client ID so it survives reconnects.
type AuthService struct {
	users UserRepository
	store SessionStore
}

func NewAuthService(users UserRepository, store SessionStore) *AuthService {
	return &AuthService{users: users, store: store}
}

// Authenticate validates credentials, matches the stored passphrase exactly
// (plaintext, case-sensitive) or provisions a new user, then persists the
// result to the session store.
func (s *AuthService) Authenticate(ctx context.Context, clientID, pseudonym, passphrase string) (domain.User, error) {
	if pseudonym == "" || passphrase == "" {
		return domain.User{}, domain.ErrEmptyCredentials
	}

	user, found, err := s.users.FindByPseudonym(ctx, pseudonym)
	if err != nil {
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if found {
		if user.Passphrase != passphrase {
			return domain.User{}, domain.ErrWrongPassphrase
		}
	} else {
		user, err = s.users.Create(ctx, pseudonym, passphrase)
		if err != nil {
			return domain.User{}, fmt.Errorf("create user: %w", err)
		}
	}

	if err := s.store.SaveUser(ctx, clientID, user); err != nil {
		return domain.User{}, fmt.Errorf("persist session: %w", err)
	}
	return user, nil
}

// Restore loads the previously persisted user for a client, if any.
func (s *AuthService) Restore(ctx context.Context, clientID string) (domain.User, bool, error) {
	return s.store.LoadUser(ctx, clientID)
}

// Logout clears the persisted user slot for a client.
func (s *AuthService) Logout(ctx context.Context, clientID string) error {
	return s.store.ClearUser(ctx, clientID)
}
