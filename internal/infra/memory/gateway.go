package memory

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"procap-study-service/internal/domain"
)

type answerKey struct {
	userID     string
	questionID string
	notebookID string
}

// Gateway is an in-memory stand-in for the hosted data backend, used when no
// Postgres URL is configured and throughout the unit tests. Per-resource
// repositories share its state.
type Gateway struct {
	mu            sync.RWMutex
	users         map[string]domain.User
	byPseudonym   map[string]string
	questions     map[string]domain.Question
	questionOrder []string
	notebooks     map[string]domain.QuestionNotebook
	notebookOrder []string
	answers       map[answerKey]domain.AnswerRecord
	answerOrder   []answerKey
	rnd           *rand.Rand
	clock         func() time.Time
}

func NewGateway() *Gateway {
	return &Gateway{
		users:       make(map[string]domain.User),
		byPseudonym: make(map[string]string),
		questions:   make(map[string]domain.Question),
		notebooks:   make(map[string]domain.QuestionNotebook),
		answers:     make(map[answerKey]domain.AnswerRecord),
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
		clock:       time.Now,
	}
}

// SeedQuestions loads questions into the bank (test/demo data).
func (g *Gateway) SeedQuestions(questions []domain.Question) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, q := range questions {
		if _, ok := g.questions[q.ID]; !ok {
			g.questionOrder = append(g.questionOrder, q.ID)
		}
		g.questions[q.ID] = q
	}
}

// SeedNotebooks loads notebooks (test/demo data).
func (g *Gateway) SeedNotebooks(notebooks []domain.QuestionNotebook) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, nb := range notebooks {
		if _, ok := g.notebooks[nb.ID]; !ok {
			g.notebookOrder = append(g.notebookOrder, nb.ID)
		}
		g.notebooks[nb.ID] = nb
	}
}

// AnswerCount reports how many answer records exist (test helper).
func (g *Gateway) AnswerCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.answers)
}

// UserCount reports how many users exist (test helper).
func (g *Gateway) UserCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.users)
}

// Users returns the user repository view of the gateway.
func (g *Gateway) Users() *UserRepo { return &UserRepo{g: g} }

// Questions returns the question repository view of the gateway.
func (g *Gateway) Questions() *QuestionRepo { return &QuestionRepo{g: g} }

// Notebooks returns the notebook repository view of the gateway.
func (g *Gateway) Notebooks() *NotebookRepo { return &NotebookRepo{g: g} }

// Answers returns the answer repository view of the gateway.
func (g *Gateway) Answers() *AnswerRepo { return &AnswerRepo{g: g} }

type UserRepo struct{ g *Gateway }

func (r *UserRepo) FindByPseudonym(_ context.Context, pseudonym string) (domain.User, bool, error) {
	r.g.mu.RLock()
	defer r.g.mu.RUnlock()
	id, ok := r.g.byPseudonym[pseudonym]
	if !ok {
		return domain.User{}, false, nil
	}
	return r.g.users[id], true, nil
}

func (r *UserRepo) Create(_ context.Context, pseudonym, passphrase string) (domain.User, error) {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	user := domain.User{
		ID:           uuid.NewString(),
		Pseudonym:    pseudonym,
		Passphrase:   passphrase,
		CreatedAt:    r.g.clock(),
		Level:        1,
		XP:           0,
		Achievements: []string{},
		Stats:        json.RawMessage(`{}`),
	}
	r.g.users[user.ID] = user
	r.g.byPseudonym[pseudonym] = user.ID
	return user, nil
}

func (r *UserRepo) FindByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	r.g.mu.RLock()
	defer r.g.mu.RUnlock()
	users := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := r.g.users[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

type QuestionRepo struct{ g *Gateway }

func (r *QuestionRepo) SampleRandom(_ context.Context, count int) ([]domain.Question, error) {
	// Write lock: the shared rand source is not safe under concurrent reads.
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	ids := make([]string, len(r.g.questionOrder))
	copy(ids, r.g.questionOrder)
	r.g.rnd.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	if count > len(ids) {
		count = len(ids)
	}
	questions := make([]domain.Question, 0, count)
	for _, id := range ids[:count] {
		questions = append(questions, r.g.questions[id])
	}
	return questions, nil
}

// FindByIDs returns matches in bank order, not request order; callers needing
// notebook order must restore it themselves.
func (r *QuestionRepo) FindByIDs(_ context.Context, ids []string) ([]domain.Question, error) {
	r.g.mu.RLock()
	defer r.g.mu.RUnlock()
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	questions := make([]domain.Question, 0, len(ids))
	for _, id := range r.g.questionOrder {
		if _, ok := wanted[id]; ok {
			questions = append(questions, r.g.questions[id])
		}
	}
	return questions, nil
}

type NotebookRepo struct{ g *Gateway }

func (r *NotebookRepo) ListNotebooks(_ context.Context) ([]domain.QuestionNotebook, error) {
	r.g.mu.RLock()
	defer r.g.mu.RUnlock()
	notebooks := make([]domain.QuestionNotebook, 0, len(r.g.notebookOrder))
	for _, id := range r.g.notebookOrder {
		notebooks = append(notebooks, r.g.notebooks[id])
	}
	return notebooks, nil
}

func (r *NotebookRepo) FindNotebook(_ context.Context, id string) (domain.QuestionNotebook, bool, error) {
	r.g.mu.RLock()
	defer r.g.mu.RUnlock()
	nb, ok := r.g.notebooks[id]
	return nb, ok, nil
}

type AnswerRepo struct{ g *Gateway }

// RecordFirstAttempt inserts unless the triple already exists. The mutex makes
// the check-and-insert atomic within the process.
func (r *AnswerRepo) RecordFirstAttempt(_ context.Context, record domain.AnswerRecord) (bool, error) {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	key := answerKey{record.UserID, record.QuestionID, record.NotebookID}
	if _, exists := r.g.answers[key]; exists {
		return false, nil
	}
	r.g.answers[key] = record
	r.g.answerOrder = append(r.g.answerOrder, key)
	return true, nil
}

func (r *AnswerRepo) ListCorrectFirstTries(_ context.Context) ([]domain.AnswerRecord, error) {
	r.g.mu.RLock()
	defer r.g.mu.RUnlock()
	records := make([]domain.AnswerRecord, 0, len(r.g.answerOrder))
	for _, key := range r.g.answerOrder {
		if record := r.g.answers[key]; record.IsCorrectFirstTry {
			records = append(records, record)
		}
	}
	return records, nil
}
