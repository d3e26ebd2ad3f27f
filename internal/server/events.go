package server

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/coco-labs/coco/internal/session"
)

// Outbound frame payloads. Timestamps are RFC3339Nano UTC.
type transcriptFrame struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	Speaker   string `json:"speaker"`
	Timestamp string `json:"timestamp"`
}

type suggestionFrame struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

type audioFrame struct {
	Type   string `json:"type"`
	Data   []byte `json:"data"`
	Format string `json:"format"`
}

type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// wsEmitter serializes outbound events onto one websocket connection. The
// analysis cycle and the handler may both write, so sends are mutex-guarded;
// a failed write is logged and dropped, since transport failure surfaces
// through the read loop anyway.
type wsEmitter struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	logger *slog.Logger
}

func newWSEmitter(conn *websocket.Conn, logger *slog.Logger) *wsEmitter {
	return &wsEmitter{conn: conn, logger: logger}
}

func (e *wsEmitter) Transcript(entry session.Entry) {
	e.send(transcriptFrame{
		Type:      "transcript",
		Text:      entry.Text,
		Speaker:   entry.Speaker,
		Timestamp: entry.Timestamp.UTC().Format(time.RFC3339Nano),
	})
}

func (e *wsEmitter) Suggestion(text string, at time.Time) {
	e.send(suggestionFrame{
		Type:      "suggestion",
		Text:      text,
		Timestamp: at.UTC().Format(time.RFC3339Nano),
	})
}

func (e *wsEmitter) Audio(data []byte, format string) {
	e.send(audioFrame{Type: "audio", Data: data, Format: format})
}

func (e *wsEmitter) Error(message string) {
	e.send(errorFrame{Type: "error", Message: message})
}

func (e *wsEmitter) send(frame any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.conn.WriteJSON(frame); err != nil {
		e.logger.Debug("drop outbound frame", "error", err)
	}
}
