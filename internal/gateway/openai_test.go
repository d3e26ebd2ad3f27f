package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func openaiTestConfig(baseURL string) openai.ClientConfig {
	config := openai.DefaultConfig("test-key")
	config.BaseURL = baseURL + "/v1"
	return config
}

func TestOpenAITranscriber(t *testing.T) {
	wav := append([]byte("RIFF"), bytes.Repeat([]byte{1}, 64)...)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart form: %v", err)
		}
		if got := r.FormValue("model"); got != "gpt-4o-mini-transcribe" {
			t.Fatalf("expected default transcription model, got %q", got)
		}
		if got := r.FormValue("language"); got != "en" {
			t.Fatalf("expected language en, got %q", got)
		}
		if got := r.FormValue("prompt"); got != "Context: job interview." {
			t.Fatalf("unexpected prompt %q", got)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer func() { _ = file.Close() }()
		if header.Filename != "audio.wav" {
			t.Fatalf("expected audio.wav upload, got %q", header.Filename)
		}
		uploaded, err := io.ReadAll(file)
		if err != nil {
			t.Fatalf("read upload: %v", err)
		}
		if !bytes.Equal(uploaded, wav) {
			t.Fatalf("uploaded audio does not match: %d bytes vs %d", len(uploaded), len(wav))
		}

		_ = json.NewEncoder(w).Encode(map[string]any{"text": "Hi I am Ana"})
	}))
	defer server.Close()

	tr := NewOpenAITranscriberWithConfig(openaiTestConfig(server.URL), "")
	got, err := tr.Transcribe(context.Background(), wav, "Context: job interview.")
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if got != "Hi I am Ana" {
		t.Fatalf("expected transcription text, got %q", got)
	}
}

func TestOpenAITranscriberError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "boom", "type": "server_error"}}`))
	}))
	defer server.Close()

	tr := NewOpenAITranscriberWithConfig(openaiTestConfig(server.URL), "")
	if _, err := tr.Transcribe(context.Background(), []byte("RIFF"), ""); err == nil {
		t.Fatal("expected transcription error")
	}
}

func TestOpenAISynthesizer(t *testing.T) {
	mp3 := []byte{0xFF, 0xF3, 0x01, 0x02, 0x03}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}

		var req struct {
			Model          string `json:"model"`
			Input          string `json:"input"`
			Voice          string `json:"voice"`
			ResponseFormat string `json:"response_format"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "tts-1" || req.Voice != "alloy" {
			t.Fatalf("expected default model and voice, got %q/%q", req.Model, req.Voice)
		}
		if req.Input != "Ask about the team" {
			t.Fatalf("unexpected input %q", req.Input)
		}
		if req.ResponseFormat != "mp3" {
			t.Fatalf("expected mp3 response format, got %q", req.ResponseFormat)
		}

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write(mp3)
	}))
	defer server.Close()

	syn := NewOpenAISynthesizerWithConfig(openaiTestConfig(server.URL), "", "")
	speech, err := syn.Synthesize(context.Background(), "Ask about the team")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if speech.Format != "mp3" {
		t.Fatalf("expected mp3 format, got %q", speech.Format)
	}
	if !bytes.Equal(speech.Data, mp3) {
		t.Fatalf("speech bytes do not match server response")
	}
}

func TestOpenAISynthesizerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "bad voice", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	syn := NewOpenAISynthesizerWithConfig(openaiTestConfig(server.URL), "", "")
	if _, err := syn.Synthesize(context.Background(), "hi"); err == nil {
		t.Fatal("expected synthesis error")
	}
}

func TestOpenAISynthesizerCustomVoice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string `json:"model"`
			Voice string `json:"voice"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "tts-1-hd" || req.Voice != "nova" {
			t.Fatalf("expected configured model and voice, got %q/%q", req.Model, req.Voice)
		}
		_, _ = w.Write([]byte{0xFF})
	}))
	defer server.Close()

	syn := NewOpenAISynthesizerWithConfig(openaiTestConfig(server.URL), "tts-1-hd", "nova")
	if _, err := syn.Synthesize(context.Background(), "hi"); err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
}
