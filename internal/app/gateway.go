package app

import (
	"context"

	"procap-study-service/internal/domain"
)

// UserRepository resolves and provisions pseudonymous identities.
// Pseudonym uniqueness is a schema-level guarantee of the backing store.
type UserRepository interface {
	FindByPseudonym(ctx context.Context, pseudonym string) (domain.User, bool, error)
	Create(ctx context.Context, pseudonym, passphrase string) (domain.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.User, error)
}

// QuestionRepository reads from the question bank. Questions are immutable
// from the application's perspective.
type QuestionRepository interface {
	// SampleRandom returns up to count questions drawn server-side.
	SampleRandom(ctx context.Context, count int) ([]domain.Question, error)
	// FindByIDs returns the matching rows in no particular order.
	FindByIDs(ctx context.Context, ids []string) ([]domain.Question, error)
}

// NotebookRepository reads curated question notebooks.
type NotebookRepository interface {
	ListNotebooks(ctx context.Context) ([]domain.QuestionNotebook, error)
	FindNotebook(ctx context.Context, id string) (domain.QuestionNotebook, bool, error)
}

// AnswerRepository persists first-attempt outcomes.
type AnswerRepository interface {
	// RecordFirstAttempt inserts the record unless one already exists for the
	// same (user, question, notebook) triple. The insert must be atomic;
	// it reports whether a row was actually written.
	RecordFirstAttempt(ctx context.Context, record domain.AnswerRecord) (bool, error)
	ListCorrectFirstTries(ctx context.Context) ([]domain.AnswerRecord, error)
}

// SessionStore holds per-client persisted state: the serialized active user
// and the theme preference. Both survive reconnects and carry no expiry.
type SessionStore interface {
	SaveUser(ctx context.Context, clientID string, user domain.User) error
	LoadUser(ctx context.Context, clientID string) (domain.User, bool, error)
	ClearUser(ctx context.Context, clientID string) error
	SaveTheme(ctx context.Context, clientID, theme string) error
	LoadTheme(ctx context.Context, clientID string) (string, error)
}
