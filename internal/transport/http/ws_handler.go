package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"procap-study-service/internal/app"
	"procap-study-service/internal/domain"
)

// WSHandler drives one client's study flow over a websocket: the inbound
// commands mirror the single-page app's events (login, start a block, select,
// confirm, navigate, leaderboard) and every reply is a typed envelope.
type WSHandler struct {
	auth        *app.AuthService
	study       *app.StudyService
	leaderboard *app.LeaderboardService
	store       app.SessionStore
	upgrader    websocket.Upgrader
}

func NewWSHandler(auth *app.AuthService, study *app.StudyService, leaderboard *app.LeaderboardService, store app.SessionStore) *WSHandler {
	return &WSHandler{
		auth:        auth,
		study:       study,
		leaderboard: leaderboard,
		store:       store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type helloPayload struct {
	ClientID string       `json:"clientId"`
	User     *domain.User `json:"user,omitempty"`
	Theme    string       `json:"theme"`
	State    string       `json:"state"`
}

type loginPayload struct {
	Pseudonym  string `json:"pseudonym"`
	Passphrase string `json:"passphrase"`
}

type themePayload struct {
	Theme string `json:"theme"`
}

type startRandomPayload struct {
	Count int `json:"count"`
}

type startNotebookPayload struct {
	NotebookID string `json:"notebookId"`
}

type selectPayload struct {
	Option string `json:"option"`
}

type notebookSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	QuestionCount int    `json:"questionCount"`
}

// client is the per-connection state: the persisted identity plus the
// transient study session controller.
type client struct {
	id         string
	controller *app.Controller
}

// ServeWS upgrades the request and runs the study-flow loop. Reads and writes
// happen on this goroutine only, so writes need no extra serialization.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("clientId")
	if clientID == "" {
		clientID = uuid.NewString()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	c := &client{id: clientID, controller: app.NewController(h.study)}

	hello := helloPayload{ClientID: clientID, Theme: domain.ThemeLight}
	if user, ok, err := h.auth.Restore(ctx, clientID); err == nil && ok {
		c.controller.SetUser(user)
		hello.User = &user
	}
	if theme, err := h.store.LoadTheme(ctx, clientID); err == nil {
		hello.Theme = theme
	}
	hello.State = string(c.controller.State())
	writeMessage(conn, "hello", hello)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		h.dispatch(ctx, conn, c, inbound)
	}
}

func (h *WSHandler) dispatch(ctx context.Context, conn *websocket.Conn, c *client, inbound inboundMessage) {
	switch inbound.Type {
	case "login":
		var payload loginPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			writeError(conn, "invalid login payload")
			return
		}
		user, err := h.auth.Authenticate(ctx, c.id, payload.Pseudonym, payload.Passphrase)
		if err != nil {
			writeError(conn, err.Error())
			return
		}
		c.controller.SetUser(user)
		writeMessage(conn, "user", user)

	case "logout":
		if err := h.auth.Logout(ctx, c.id); err != nil {
			writeError(conn, err.Error())
			return
		}
		c.controller.ClearUser()
		writeMessage(conn, "logged_out", struct{}{})

	case "set_theme":
		var payload themePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			writeError(conn, "invalid theme payload")
			return
		}
		if payload.Theme != domain.ThemeLight && payload.Theme != domain.ThemeDark {
			writeError(conn, "unknown theme")
			return
		}
		if err := h.store.SaveTheme(ctx, c.id, payload.Theme); err != nil {
			writeError(conn, err.Error())
			return
		}
		writeMessage(conn, "theme", themePayload{Theme: payload.Theme})

	case "list_notebooks":
		notebooks, err := h.study.ListNotebooks(ctx)
		if err != nil {
			writeError(conn, err.Error())
			return
		}
		summaries := make([]notebookSummary, 0, len(notebooks))
		for _, nb := range notebooks {
			summaries = append(summaries, notebookSummary{
				ID:            nb.ID,
				Name:          nb.Name,
				QuestionCount: len(nb.QuestionIDs),
			})
		}
		writeMessage(conn, "notebooks", summaries)

	case "start_random":
		var payload startRandomPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			writeError(conn, "invalid start payload")
			return
		}
		if err := c.controller.StartRandomBlock(ctx, payload.Count); err != nil {
			writeError(conn, err.Error())
			return
		}
		h.sendCurrent(conn, c)

	case "start_notebook":
		var payload startNotebookPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			writeError(conn, "invalid start payload")
			return
		}
		if err := c.controller.StartNotebook(ctx, payload.NotebookID); err != nil {
			writeError(conn, err.Error())
			return
		}
		h.sendCurrent(conn, c)

	case "select_option":
		var payload selectPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			writeError(conn, "invalid select payload")
			return
		}
		view, err := c.controller.SelectOption(payload.Option)
		if err != nil {
			writeError(conn, err.Error())
			return
		}
		writeMessage(conn, "question", view)

	case "confirm_answer":
		result, err := c.controller.ConfirmAnswer(ctx)
		if err != nil {
			writeError(conn, err.Error())
			return
		}
		writeMessage(conn, "answer_result", result)
		h.sendCurrent(conn, c)

	case "next":
		completed, err := c.controller.Advance()
		if err != nil {
			writeError(conn, err.Error())
			return
		}
		if completed {
			writeMessage(conn, "completed", struct{}{})
			return
		}
		h.sendCurrent(conn, c)

	case "prev":
		if err := c.controller.Retreat(); err != nil {
			writeError(conn, err.Error())
			return
		}
		h.sendCurrent(conn, c)

	case "finish":
		c.controller.Finish()
		writeMessage(conn, "selecting", struct{}{})

	case "leaderboard":
		entries, err := h.leaderboard.Compute(ctx)
		if err != nil {
			writeError(conn, err.Error())
			return
		}
		writeMessage(conn, "leaderboard", entries)

	default:
		writeError(conn, "unsupported message type")
	}
}

func (h *WSHandler) sendCurrent(conn *websocket.Conn, c *client) {
	view, err := c.controller.Current()
	if err != nil {
		writeError(conn, err.Error())
		return
	}
	writeMessage(conn, "question", view)
}

func writeMessage[T any](conn *websocket.Conn, msgType string, payload T) {
	if err := conn.WriteJSON(outboundMessage[T]{Type: msgType, Payload: payload}); err != nil {
		log.Printf("ws write error: %v", err)
	}
}

func writeError(conn *websocket.Conn, message string) {
	writeMessage(conn, "error", errorPayload{Message: message})
}
