package app

import (
	"context"
	"fmt"

	"procap-study-service/internal/domain"
)

// MaxBlockSize caps a random study block.
const MaxBlockSize = 200

// SessionState is the study flow state machine.
type SessionState string

const (
	// StateSelecting means no session is active; the user is on the setup screen.
	StateSelecting SessionState = "selecting"
	// StateInProgress means a session is active and not yet completed.
	StateInProgress SessionState = "in_progress"
	// StateCompleted means the user advanced past the last question.
	StateCompleted SessionState = "completed"
)

// StudyService assembles question blocks and records first-attempt outcomes.
type StudyService struct {
	questions QuestionRepository
	notebooks NotebookRepository
	answers   AnswerRepository
}

func NewStudyService(questions QuestionRepository, notebooks NotebookRepository, answers AnswerRepository) *StudyService {
	return &StudyService{questions: questions, notebooks: notebooks, answers: answers}
}

// ListNotebooks returns the curated notebooks for the setup screen.
func (s *StudyService) ListNotebooks(ctx context.Context) ([]domain.QuestionNotebook, error) {
	notebooks, err := s.notebooks.ListNotebooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notebooks: %w", err)
	}
	return notebooks, nil
}

// RandomBlock draws count questions via the server-side sampling procedure.
// A small bank may yield fewer rows than requested; an empty draw fails with
// ErrNoQuestions so no session starts over nothing.
func (s *StudyService) RandomBlock(ctx context.Context, count int) ([]domain.Question, error) {
	if count < 1 || count > MaxBlockSize {
		return nil, domain.ErrInvalidBlockSize
	}
	questions, err := s.questions.SampleRandom(ctx, count)
	if err != nil {
		return nil, fmt.Errorf("sample questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return questions, nil
}

// NotebookBlock loads a notebook's questions in the notebook's own order.
// The fetch-by-id-set does not preserve order, so rows are reordered to match
// QuestionIDs; ids without a matching row are dropped. A notebook whose ids
// all miss fails the same way as a missing one.
func (s *StudyService) NotebookBlock(ctx context.Context, notebookID string) ([]domain.Question, error) {
	notebook, found, err := s.notebooks.FindNotebook(ctx, notebookID)
	if err != nil {
		return nil, fmt.Errorf("fetch notebook: %w", err)
	}
	if !found || len(notebook.QuestionIDs) == 0 {
		return nil, domain.ErrNotebookNotFound
	}

	rows, err := s.questions.FindByIDs(ctx, notebook.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch notebook questions: %w", err)
	}

	byID := make(map[string]domain.Question, len(rows))
	for _, q := range rows {
		byID[q.ID] = q
	}
	ordered := make([]domain.Question, 0, len(notebook.QuestionIDs))
	for _, id := range notebook.QuestionIDs {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	if len(ordered) == 0 {
		return nil, domain.ErrNotebookNotFound
	}
	return ordered, nil
}

// RecordFirstAttempt stores the outcome of a first confirmed answer under the
// all-questions notebook context. Later confirmations of the same question
// are ignored by the atomic conditional insert.
func (s *StudyService) RecordFirstAttempt(ctx context.Context, user domain.User, questionID string, correct bool) error {
	_, err := s.answers.RecordFirstAttempt(ctx, domain.AnswerRecord{
		UserID:            user.ID,
		QuestionID:        questionID,
		NotebookID:        domain.AllQuestionsNotebookID,
		IsCorrectFirstTry: correct,
	})
	if err != nil {
		return fmt.Errorf("record answer: %w", err)
	}
	return nil
}

// studySession is the transient in-memory question sequence and cursor.
type studySession struct {
	questions []domain.Question
	index     int
	completed bool
	view      presentation
}

// Controller owns one user's study flow: the active session, its cursor, and
// the per-question answer state. It is bound to a single client connection
// and is not safe for concurrent use.
type Controller struct {
	study   *StudyService
	user    *domain.User
	session *studySession
}

func NewController(study *StudyService) *Controller {
	return &Controller{study: study}
}

// SetUser binds the authenticated user. Any active session is discarded.
func (c *Controller) SetUser(user domain.User) {
	u := user
	c.user = &u
	c.session = nil
}

// ClearUser drops the user and any active session (logout).
func (c *Controller) ClearUser() {
	c.user = nil
	c.session = nil
}

// User returns the bound user, if any.
func (c *Controller) User() (domain.User, bool) {
	if c.user == nil {
		return domain.User{}, false
	}
	return *c.user, true
}

// State reports where the study flow stands.
func (c *Controller) State() SessionState {
	switch {
	case c.session == nil:
		return StateSelecting
	case c.session.completed:
		return StateCompleted
	default:
		return StateInProgress
	}
}

// StartRandomBlock begins a session of count randomly sampled questions.
// On failure the controller stays in the selecting state.
func (c *Controller) StartRandomBlock(ctx context.Context, count int) error {
	if c.user == nil {
		return domain.ErrNotAuthenticated
	}
	questions, err := c.study.RandomBlock(ctx, count)
	if err != nil {
		return err
	}
	c.session = &studySession{questions: questions}
	return nil
}

// StartNotebook begins a session over a notebook's questions in notebook order.
func (c *Controller) StartNotebook(ctx context.Context, notebookID string) error {
	if c.user == nil {
		return domain.ErrNotAuthenticated
	}
	questions, err := c.study.NotebookBlock(ctx, notebookID)
	if err != nil {
		return err
	}
	c.session = &studySession{questions: questions}
	return nil
}

// Current builds the renderable view of the question under the cursor.
func (c *Controller) Current() (QuestionView, error) {
	if c.session == nil || c.session.completed {
		return QuestionView{}, domain.ErrNoActiveSession
	}
	return c.buildView(), nil
}

// SelectOption marks an option as the pending selection. Only options the
// current question actually offers are accepted. Selecting after the question
// was answered is a no-op.
func (c *Controller) SelectOption(option string) (QuestionView, error) {
	if c.session == nil || c.session.completed {
		return QuestionView{}, domain.ErrNoActiveSession
	}
	if !c.session.view.answered {
		if !hasOption(c.session.questions[c.session.index].Options, option) {
			return QuestionView{}, domain.ErrUnknownOption
		}
		c.session.view.selected = option
	}
	return c.buildView(), nil
}

func hasOption(options []string, option string) bool {
	for _, o := range options {
		if o == option {
			return true
		}
	}
	return false
}

// ConfirmAnswer locks in the selection, reveals correctness, and records the
// first-attempt outcome exactly once per confirmation. The question only
// locks once the record is stored, so a failed write leaves it answerable and
// the user can confirm again.
func (c *Controller) ConfirmAnswer(ctx context.Context) (AnswerResult, error) {
	if c.session == nil || c.session.completed {
		return AnswerResult{}, domain.ErrNoActiveSession
	}
	view := &c.session.view
	if view.answered {
		return AnswerResult{}, domain.ErrAlreadyAnswered
	}
	if view.selected == "" {
		return AnswerResult{}, domain.ErrNoSelection
	}

	question := c.session.questions[c.session.index]
	correct := view.selected == question.CorrectAnswer

	if err := c.study.RecordFirstAttempt(ctx, *c.user, question.ID, correct); err != nil {
		return AnswerResult{}, err
	}
	view.answered = true
	view.correct = correct
	return AnswerResult{
		QuestionID:    question.ID,
		Selected:      view.selected,
		Correct:       view.correct,
		CorrectAnswer: question.CorrectAnswer,
		Explanation:   question.Explanation,
	}, nil
}

// Advance moves the cursor forward, or transitions to completed past the last
// question. Once completed it is an idempotent no-op. It reports whether the
// session is completed.
func (c *Controller) Advance() (bool, error) {
	if c.session == nil {
		return false, domain.ErrNoActiveSession
	}
	if c.session.completed {
		return true, nil
	}
	if c.session.index < len(c.session.questions)-1 {
		c.session.index++
		c.session.view = presentation{}
		return false, nil
	}
	c.session.completed = true
	return true, nil
}

// Retreat moves the cursor back; a no-op at the first question or once the
// session is completed.
func (c *Controller) Retreat() error {
	if c.session == nil {
		return domain.ErrNoActiveSession
	}
	if c.session.completed || c.session.index == 0 {
		return nil
	}
	c.session.index--
	c.session.view = presentation{}
	return nil
}

// Finish discards the session and returns to selection.
func (c *Controller) Finish() {
	c.session = nil
}

func (c *Controller) buildView() QuestionView {
	question := c.session.questions[c.session.index]
	view := &c.session.view

	options := make([]OptionView, len(question.Options))
	for i, option := range question.Options {
		options[i] = OptionView{
			Label:  optionLabel(i),
			Text:   OptionText(option),
			Value:  option,
			Status: view.classify(option, question.CorrectAnswer),
		}
	}

	qv := QuestionView{
		QuestionID:   question.ID,
		Number:       c.session.index + 1,
		Total:        len(c.session.questions),
		Difficulty:   question.Difficulty,
		QuestionText: question.QuestionText,
		Options:      options,
		Answered:     view.answered,
		Hints:        question.Hints,
	}
	if view.answered {
		qv.Explanation = question.Explanation
	}
	return qv
}
