package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"procap-study-service/internal/app"
	"procap-study-service/internal/domain"
	"procap-study-service/internal/infra/memory"
)

func TestWebSocketStudyFlow(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	conn := dial(t, server, "c1")
	defer conn.Close()

	readNext(conn, t, "hello")

	send(conn, t, "login", map[string]any{"pseudonym": "tester", "passphrase": "pw"})
	_, userRaw := readNext(conn, t, "user")
	var user domain.User
	if err := json.Unmarshal(userRaw, &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user.Pseudonym != "tester" {
		t.Fatalf("expected tester, got %q", user.Pseudonym)
	}

	send(conn, t, "list_notebooks", nil)
	_, notebooksRaw := readNext(conn, t, "notebooks")
	var notebooks []struct {
		ID            string `json:"id"`
		QuestionCount int    `json:"questionCount"`
	}
	if err := json.Unmarshal(notebooksRaw, &notebooks); err != nil {
		t.Fatalf("decode notebooks: %v", err)
	}
	if len(notebooks) != 1 || notebooks[0].ID != "nb-1" || notebooks[0].QuestionCount != 3 {
		t.Fatalf("unexpected notebooks %+v", notebooks)
	}

	send(conn, t, "start_notebook", map[string]any{"notebookId": "nb-1"})
	view := readQuestion(conn, t)
	if view.QuestionID != "q3" || view.Number != 1 || view.Total != 3 {
		t.Fatalf("expected notebook order starting at q3, got %+v", view)
	}

	send(conn, t, "select_option", map[string]any{"option": "A) right"})
	view = readQuestion(conn, t)
	if view.Options[0].Status != app.OptionSelected {
		t.Fatalf("expected selected option, got %+v", view.Options[0])
	}

	send(conn, t, "confirm_answer", nil)
	_, resultRaw := readNext(conn, t, "answer_result")
	var result app.AnswerResult
	if err := json.Unmarshal(resultRaw, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !result.Correct || result.QuestionID != "q3" {
		t.Fatalf("expected correct q3, got %+v", result)
	}
	view = readQuestion(conn, t)
	if !view.Answered || view.Options[0].Status != app.OptionCorrect {
		t.Fatalf("expected answered view with correct highlight, got %+v", view)
	}

	send(conn, t, "next", nil)
	view = readQuestion(conn, t)
	if view.QuestionID != "q1" || view.Number != 2 || view.Answered {
		t.Fatalf("expected fresh q1 at position 2, got %+v", view)
	}

	send(conn, t, "leaderboard", nil)
	_, boardRaw := readNext(conn, t, "leaderboard")
	var board []domain.LeaderboardEntry
	if err := json.Unmarshal(boardRaw, &board); err != nil {
		t.Fatalf("decode leaderboard: %v", err)
	}
	if len(board) != 1 || board[0].Pseudonym != "tester" || board[0].Score != 1 {
		t.Fatalf("expected tester with 1 point, got %+v", board)
	}
}

func TestWebSocketCompletionAndRestart(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	conn := dial(t, server, "c1")
	defer conn.Close()

	readNext(conn, t, "hello")
	send(conn, t, "login", map[string]any{"pseudonym": "tester", "passphrase": "pw"})
	readNext(conn, t, "user")

	send(conn, t, "start_random", map[string]any{"count": 2})
	readQuestion(conn, t)

	send(conn, t, "next", nil)
	readQuestion(conn, t)
	send(conn, t, "next", nil)
	readNext(conn, t, "completed")
	// Idempotent once completed.
	send(conn, t, "next", nil)
	readNext(conn, t, "completed")

	send(conn, t, "finish", nil)
	readNext(conn, t, "selecting")

	send(conn, t, "start_random", map[string]any{"count": 2})
	view := readQuestion(conn, t)
	if view.Number != 1 || view.Answered {
		t.Fatalf("expected fresh session, got %+v", view)
	}
}

func TestWebSocketRestoresPersistedUser(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	conn := dial(t, server, "c9")
	readNext(conn, t, "hello")
	send(conn, t, "login", map[string]any{"pseudonym": "returning", "passphrase": "pw"})
	readNext(conn, t, "user")
	conn.Close()

	// Reconnect with the same client id: the hello carries the restored user.
	conn = dial(t, server, "c9")
	defer conn.Close()
	_, helloRaw := readNext(conn, t, "hello")
	var hello struct {
		User  *domain.User `json:"user"`
		State string       `json:"state"`
	}
	if err := json.Unmarshal(helloRaw, &hello); err != nil {
		t.Fatalf("decode hello: %v", err)
	}
	if hello.User == nil || hello.User.Pseudonym != "returning" {
		t.Fatalf("expected restored user, got %+v", hello)
	}
	if hello.State != string(app.StateSelecting) {
		t.Fatalf("expected selecting state on reconnect, got %s", hello.State)
	}
}

func TestWebSocketRejectsBadLogin(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	conn := dial(t, server, "c1")
	defer conn.Close()
	readNext(conn, t, "hello")

	send(conn, t, "login", map[string]any{"pseudonym": "", "passphrase": ""})
	readNext(conn, t, "error")

	send(conn, t, "login", map[string]any{"pseudonym": "eve", "passphrase": "right"})
	readNext(conn, t, "user")
	send(conn, t, "logout", nil)
	readNext(conn, t, "logged_out")
	send(conn, t, "login", map[string]any{"pseudonym": "eve", "passphrase": "wrong"})
	readNext(conn, t, "error")
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gateway := memory.NewGateway()
	gateway.SeedQuestions([]domain.Question{
		{ID: "q1", QuestionText: "Q1", Options: []string{"A) right", "B) wrong"}, CorrectAnswer: "A) right"},
		{ID: "q2", QuestionText: "Q2", Options: []string{"A) right", "B) wrong"}, CorrectAnswer: "A) right"},
		{ID: "q3", QuestionText: "Q3", Options: []string{"A) right", "B) wrong"}, CorrectAnswer: "A) right"},
	})
	gateway.SeedNotebooks([]domain.QuestionNotebook{
		{ID: "nb-1", Name: "Caderno", QuestionIDs: []string{"q3", "q1", "q2"}},
	})
	store := memory.NewSessionStore()
	auth := app.NewAuthService(gateway.Users(), store)
	study := app.NewStudyService(gateway.Questions(), memory.NewNotebookCache(gateway.Notebooks(), time.Minute), gateway.Answers())
	leaderboard := app.NewLeaderboardService(gateway.Answers(), gateway.Users())
	handler := NewWSHandler(auth, study, leaderboard, store)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.ServeWS)
	return httptest.NewServer(mux)
}

func dial(t *testing.T, server *httptest.Server, clientID string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?clientId=" + clientID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func send(conn *websocket.Conn, t *testing.T, msgType string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": msgType, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, json.RawMessage) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s (payload %s)", expect, msg.Type, msg.Payload)
	}
	return msg.Type, msg.Payload
}

func readQuestion(conn *websocket.Conn, t *testing.T) app.QuestionView {
	t.Helper()
	_, raw := readNext(conn, t, "question")
	var view app.QuestionView
	if err := json.Unmarshal(raw, &view); err != nil {
		t.Fatalf("decode question: %v", err)
	}
	return view
}
