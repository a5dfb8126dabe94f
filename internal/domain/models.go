package domain

import (
	"encoding/json"
	"time"
)

// AllQuestionsNotebookID is the notebook context every answer is recorded
// under, no matter whether the session came from a notebook or a random block.
const AllQuestionsNotebookID = "all_questions"

// Theme values persisted in the session store.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// User is a pseudonymous identity. The passphrase is stored and compared in
// plaintext; this mirrors the deployed schema and is not a cryptographic check.
type User struct {
	ID           string          `json:"id"`
	Pseudonym    string          `json:"pseudonym"`
	Passphrase   string          `json:"-"`
	CreatedAt    time.Time       `json:"createdAt"`
	Level        int             `json:"level"`
	XP           int             `json:"xp"`
	Achievements []string        `json:"achievements"`
	Stats        json.RawMessage `json:"stats,omitempty"` // uninterpreted backend blob
}

// Question is a read-only multiple-choice question. Options carry their label
// inline ("A) ...", "B) ..."); CorrectAnswer is the full text of one option.
type Question struct {
	ID            string          `json:"id"`
	SourceID      string          `json:"sourceId"`
	Difficulty    string          `json:"difficulty,omitempty"`
	QuestionText  string          `json:"questionText"`
	Options       []string        `json:"options"`
	CorrectAnswer string          `json:"correctAnswer"`
	Explanation   string          `json:"explanation"`
	Hints         []string        `json:"hints,omitempty"`
	Comments      json.RawMessage `json:"comments,omitempty"` // uninterpreted backend blob
	HotVotes      int             `json:"hotVotes"`
	ColdVotes     int             `json:"coldVotes"`
}

// QuestionNotebook is a named, ordered, curated subset of questions.
type QuestionNotebook struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	QuestionIDs []string `json:"questionIds"`
}

// AnswerRecord stores the outcome of a user's first confirmed attempt at a
// question within a notebook context. At most one exists per
// (user, question, notebook) triple.
type AnswerRecord struct {
	UserID            string `json:"userId"`
	QuestionID        string `json:"questionId"`
	NotebookID        string `json:"notebookId"`
	IsCorrectFirstTry bool   `json:"isCorrectFirstTry"`
}

// LeaderboardEntry pairs a pseudonym with its correct-first-try count.
type LeaderboardEntry struct {
	Pseudonym string `json:"pseudonym"`
	Score     int    `json:"score"`
}
