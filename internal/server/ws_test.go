package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/coco-labs/coco/internal/session"
)

// wireFrame covers every outbound frame shape for decoding in tests.
type wireFrame struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	Speaker   string `json:"speaker"`
	Timestamp string `json:"timestamp"`
	Data      []byte `json:"data"`
	Format    string `json:"format"`
}

func streamPolicy() session.CadencePolicy {
	return session.CadencePolicy{
		PollInterval:       10 * time.Millisecond,
		MinBufferBytes:     32000,
		SuggestionInterval: 0,
		MinHistory:         1,
		HistoryWindow:      6,
	}
}

func newStreamServer(t *testing.T, gw *gatewayStub, policy session.CadencePolicy) (*httptest.Server, *session.Registry) {
	t.Helper()
	registry := session.NewRegistry()
	server := httptest.NewServer(Handler(Deps{
		Registry: registry,
		Gateway:  gw,
		Policy:   policy,
		Logger:   discardLogger(),
	}))
	t.Cleanup(server.Close)
	return server, registry
}

func dialWS(t *testing.T, server *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) wireFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var frame wireFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return frame
}

func TestWSUnknownSessionCloses4004(t *testing.T) {
	server, _ := newStreamServer(t, &gatewayStub{}, session.DefaultPolicy())

	conn := dialWS(t, server, "no-such-session")
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))

	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, 4004) {
		t.Fatalf("expected close code 4004, got %v", err)
	}
}

func TestWSSecondConnectionRejected(t *testing.T) {
	server, registry := newStreamServer(t, &gatewayStub{}, session.DefaultPolicy())
	sess := registry.Create(session.Profile{UserName: "Ana", Context: "c", Goal: "g"})

	first := dialWS(t, server, sess.ID)
	defer func() { _ = first.Close() }()

	deadline := time.Now().Add(2 * time.Second)
	for !sess.Active() {
		if time.Now().After(deadline) {
			t.Fatal("first connection never claimed the stream")
		}
		time.Sleep(5 * time.Millisecond)
	}

	second := dialWS(t, server, sess.ID)
	_ = second.SetReadDeadline(time.Now().Add(3 * time.Second))

	_, _, err := second.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy violation close, got %v", err)
	}
}

// TestWSStreamingSession walks the full streaming lifecycle: audio in,
// transcript/suggestion/audio frames out, stop signal, then finalize over
// HTTP.
func TestWSStreamingSession(t *testing.T) {
	gw := &gatewayStub{
		transcribeText: "Hi I am Ana",
		suggestText:    "Ask about the team",
		analyzeResult:  validSummary(),
	}
	server, registry := newStreamServer(t, gw, streamPolicy())
	sess := registry.Create(session.Profile{UserName: "Ana", Context: "job interview", Goal: "sound confident"})

	conn := dialWS(t, server, sess.ID)

	// One second of 16kHz 16-bit mono audio plus one byte crosses the
	// transcription threshold.
	chunk := bytes.Repeat([]byte{1}, 32001)
	if err := conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	transcript := readFrame(t, conn)
	if transcript.Type != "transcript" || transcript.Text != "Hi I am Ana" || transcript.Speaker != "user" {
		t.Fatalf("unexpected transcript frame: %#v", transcript)
	}
	if transcript.Timestamp == "" {
		t.Fatal("expected transcript timestamp")
	}

	suggestion := readFrame(t, conn)
	if suggestion.Type != "suggestion" || suggestion.Text != "Ask about the team" {
		t.Fatalf("unexpected suggestion frame: %#v", suggestion)
	}

	audio := readFrame(t, conn)
	if audio.Type != "audio" || audio.Format != "mp3" || len(audio.Data) == 0 {
		t.Fatalf("unexpected audio frame: %#v", audio)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type": "stop"}`)); err != nil {
		t.Fatalf("write stop: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for sess.Active() {
		if time.Now().After(deadline) {
			t.Fatal("session still active after stop signal")
		}
		time.Sleep(5 * time.Millisecond)
	}

	resp, err := http.Post(server.URL+"/session/"+sess.ID+"/finish", "application/json", nil)
	if err != nil {
		t.Fatalf("finish request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from finish, got %d", resp.StatusCode)
	}

	var report session.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Wish != "Pause more between thoughts" {
		t.Fatalf("expected analysis result, got wish %q", report.Wish)
	}
	if len(report.Transcript) != 2 {
		t.Fatalf("expected user and coach transcript entries, got %#v", report.Transcript)
	}
	if report.Transcript[0].Speaker != "user" || report.Transcript[1].Speaker != "coach" {
		t.Fatalf("unexpected transcript speakers: %#v", report.Transcript)
	}
	if gw.analyzeCount() != 1 {
		t.Fatalf("expected a single analysis call, got %d", gw.analyzeCount())
	}
}

func TestWSMalformedControlStopsSession(t *testing.T) {
	server, registry := newStreamServer(t, &gatewayStub{}, session.DefaultPolicy())
	sess := registry.Create(session.Profile{UserName: "Ana", Context: "c", Goal: "g"})

	conn := dialWS(t, server, sess.ID)
	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write control: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for sess.Active() {
		if time.Now().After(deadline) {
			t.Fatal("session still active after malformed control frame")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
