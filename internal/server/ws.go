package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/coco-labs/coco/internal/session"
)

// Close codes for the streaming endpoint. 4004 distinguishes an unknown
// session identifier from ordinary policy violations.
const (
	closeSessionNotFound = 4004
	closeAlreadyStream   = websocket.ClosePolicyViolation
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type controlMessage struct {
	Type string `json:"type"`
}

func registerWSRoute(mux *http.ServeMux, deps Deps) {
	mux.HandleFunc("GET /ws/{id}", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			deps.Logger.Error("ws upgrade failed", "error", err)
			return
		}
		defer func() { _ = conn.Close() }()

		sessionID := r.PathValue("id")
		sess, err := deps.Registry.Get(sessionID)
		if err != nil {
			closeWith(conn, closeSessionNotFound, "Session not found")
			return
		}

		logger := deps.Logger.With("session_id", sessionID)
		emitter := newWSEmitter(conn, logger)
		orch := session.NewOrchestrator(sess, deps.Gateway, emitter, deps.Policy, deps.Observer, deps.Logger)

		if err := orch.Start(r.Context()); err != nil {
			closeWith(conn, closeAlreadyStream, err.Error())
			return
		}
		logger.Info("websocket connected")

		if deps.Observer != nil {
			deps.Observer.SessionStarted()
			defer deps.Observer.SessionEnded()
		}
		defer orch.Stop()

		ingest(conn, sess, orch, logger)
		logger.Info("websocket session ended")
	})
}

// ingest is the session's single ingestion loop: binary frames accumulate
// audio, a stop control or any transport error deactivates the session. No
// distinction between the two is surfaced to the client.
func ingest(conn *websocket.Conn, sess *session.Session, orch *session.Orchestrator, logger *slog.Logger) {
	for sess.Active() {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			logger.Debug("client disconnected", "error", err)
			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			orch.HandleAudio(data)
		case websocket.TextMessage:
			var msg controlMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				// Malformed control frame: treated like a stop.
				logger.Debug("malformed control frame", "error", err)
				return
			}
			if msg.Type == "stop" {
				logger.Info("stop signal received")
				return
			}
		}
	}
}

func closeWith(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
}
