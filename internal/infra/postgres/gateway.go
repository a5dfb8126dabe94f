package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"procap-study-service/internal/domain"
)

// Gateway exposes the four logical resources of the hosted backend on a
// shared pgx pool.
type Gateway struct {
	pool *pgxpool.Pool
}

func NewGateway(pool *pgxpool.Pool) *Gateway {
	return &Gateway{pool: pool}
}

func (g *Gateway) Users() *UserRepo         { return &UserRepo{pool: g.pool} }
func (g *Gateway) Questions() *QuestionRepo { return &QuestionRepo{pool: g.pool} }
func (g *Gateway) Notebooks() *NotebookRepo { return &NotebookRepo{pool: g.pool} }
func (g *Gateway) Answers() *AnswerRepo     { return &AnswerRepo{pool: g.pool} }

const userColumns = `id::text, pseudonym, passphrase, created_at, level, xp, COALESCE(achievements, '{}'), stats`

type UserRepo struct {
	pool *pgxpool.Pool
}

func (r *UserRepo) FindByPseudonym(ctx context.Context, pseudonym string) (domain.User, bool, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE pseudonym = $1`, pseudonym)
	user, err := scanUser(row)
	if err == pgx.ErrNoRows {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, fmt.Errorf("select user: %w", err)
	}
	return user, true, nil
}

// Create provisions a new identity; level, xp, achievements and stats come
// from the column defaults.
func (r *UserRepo) Create(ctx context.Context, pseudonym, passphrase string) (domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (pseudonym, passphrase) VALUES ($1, $2) RETURNING `+userColumns,
		pseudonym, passphrase)
	user, err := scanUser(row)
	if err != nil {
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (r *UserRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (domain.User, error) {
	var user domain.User
	var stats []byte
	err := row.Scan(&user.ID, &user.Pseudonym, &user.Passphrase, &user.CreatedAt,
		&user.Level, &user.XP, &user.Achievements, &stats)
	if err != nil {
		return domain.User{}, err
	}
	user.Stats = stats
	return user, nil
}

const questionColumns = `id, COALESCE(source_id, ''), COALESCE(difficulty, ''), COALESCE(question_text, ''),
	COALESCE(options, '{}'), COALESCE(correct_answer, ''), COALESCE(explanation, ''),
	COALESCE(hints, '{}'), comments, hot_votes, cold_votes`

type QuestionRepo struct {
	pool *pgxpool.Pool
}

// SampleRandom calls the server-side sampling function so the draw happens in
// the database, not over a full client-side fetch.
func (r *QuestionRepo) SampleRandom(ctx context.Context, count int) ([]domain.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM random_question_sample($1)`, count)
	if err != nil {
		return nil, fmt.Errorf("sample questions: %w", err)
	}
	defer rows.Close()
	return collectQuestions(rows)
}

// FindByIDs returns matching rows; result order follows the query plan, not
// the id list.
func (r *QuestionRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}
	defer rows.Close()
	return collectQuestions(rows)
}

func collectQuestions(rows pgx.Rows) ([]domain.Question, error) {
	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		var comments []byte
		err := rows.Scan(&q.ID, &q.SourceID, &q.Difficulty, &q.QuestionText,
			&q.Options, &q.CorrectAnswer, &q.Explanation, &q.Hints,
			&comments, &q.HotVotes, &q.ColdVotes)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Comments = comments
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

type NotebookRepo struct {
	pool *pgxpool.Pool
}

func (r *NotebookRepo) ListNotebooks(ctx context.Context) ([]domain.QuestionNotebook, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, COALESCE(name, ''), COALESCE(question_ids, '{}') FROM question_notebooks ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("select notebooks: %w", err)
	}
	defer rows.Close()

	var notebooks []domain.QuestionNotebook
	for rows.Next() {
		var nb domain.QuestionNotebook
		if err := rows.Scan(&nb.ID, &nb.Name, &nb.QuestionIDs); err != nil {
			return nil, fmt.Errorf("scan notebook: %w", err)
		}
		notebooks = append(notebooks, nb)
	}
	return notebooks, rows.Err()
}

func (r *NotebookRepo) FindNotebook(ctx context.Context, id string) (domain.QuestionNotebook, bool, error) {
	var nb domain.QuestionNotebook
	err := r.pool.QueryRow(ctx,
		`SELECT id, COALESCE(name, ''), COALESCE(question_ids, '{}') FROM question_notebooks WHERE id = $1`, id).
		Scan(&nb.ID, &nb.Name, &nb.QuestionIDs)
	if err == pgx.ErrNoRows {
		return domain.QuestionNotebook{}, false, nil
	}
	if err != nil {
		return domain.QuestionNotebook{}, false, fmt.Errorf("select notebook: %w", err)
	}
	return nb, true, nil
}

type AnswerRepo struct {
	pool *pgxpool.Pool
}

// RecordFirstAttempt inserts atomically: the unique constraint on
// (user_id, question_id, notebook_id) plus DO NOTHING makes concurrent
// duplicate submissions collapse to a single row.
func (r *AnswerRepo) RecordFirstAttempt(ctx context.Context, record domain.AnswerRecord) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO user_question_answers (user_id, question_id, notebook_id, is_correct_first_try)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, question_id, notebook_id) DO NOTHING`,
		record.UserID, record.QuestionID, record.NotebookID, record.IsCorrectFirstTry)
	if err != nil {
		return false, fmt.Errorf("insert answer: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *AnswerRepo) ListCorrectFirstTries(ctx context.Context) ([]domain.AnswerRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id::text, question_id, notebook_id, is_correct_first_try
		 FROM user_question_answers WHERE is_correct_first_try = true`)
	if err != nil {
		return nil, fmt.Errorf("select answers: %w", err)
	}
	defer rows.Close()

	var records []domain.AnswerRecord
	for rows.Next() {
		var record domain.AnswerRecord
		if err := rows.Scan(&record.UserID, &record.QuestionID, &record.NotebookID, &record.IsCorrectFirstTry); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
