// Package gateway implements the speech/language capability boundary the
// session core consumes: transcription, coaching suggestions, speech
// synthesis, and end-of-session analysis.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coco-labs/coco/internal/audio"
	"github.com/coco-labs/coco/internal/llm"
	"github.com/coco-labs/coco/internal/session"
)

// Transcriber converts one WAV-wrapped audio chunk into text.
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte, prompt string) (string, error)
}

// Synthesizer converts suggestion text into encoded speech.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (session.SpeechAudio, error)
}

// Service assembles the capability boundary from a transcription backend,
// chat-completion clients for suggestions and analysis, and a synthesis
// backend. It implements session.Gateway.
type Service struct {
	transcriber Transcriber
	suggester   llm.Client
	analyzer    llm.Client
	synthesizer Synthesizer
	sampleRate  int
}

// NewService wires a gateway service. sampleRate describes the inbound PCM
// stream and defaults to 16kHz when zero.
func NewService(transcriber Transcriber, suggester, analyzer llm.Client, synthesizer Synthesizer, sampleRate int) *Service {
	if sampleRate <= 0 {
		sampleRate = audio.DefaultSampleRate
	}
	return &Service{
		transcriber: transcriber,
		suggester:   suggester,
		analyzer:    analyzer,
		synthesizer: synthesizer,
		sampleRate:  sampleRate,
	}
}

// Transcribe wraps the raw PCM chunk in a WAV container and hands it to the
// transcription backend.
func (s *Service) Transcribe(ctx context.Context, pcm []byte, prompt string) (string, error) {
	text, err := s.transcriber.Transcribe(ctx, audio.WrapPCM(pcm, s.sampleRate), prompt)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Suggest produces one short coaching tip from the profile and the recent
// conversation window.
func (s *Service) Suggest(ctx context.Context, profile session.Profile, recent []session.Exchange) (string, error) {
	messages := []llm.Message{
		{Role: "system", Content: suggestionSystemPrompt(profile)},
		{Role: "user", Content: suggestionUserPrompt(profile, recent)},
	}

	text, err := s.suggester.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("suggest: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Synthesize converts suggestion text to speech.
func (s *Service) Synthesize(ctx context.Context, text string) (session.SpeechAudio, error) {
	speech, err := s.synthesizer.Synthesize(ctx, text)
	if err != nil {
		return session.SpeechAudio{}, fmt.Errorf("synthesize: %w", err)
	}
	return speech, nil
}

// Analyze asks the analysis model for the structured end-of-session
// summary. Providers with a native JSON response mode get it; others are
// steered by the prompt. A response that does not decode is an error, never
// patched.
func (s *Service) Analyze(ctx context.Context, profile session.Profile, transcript string) (session.Summary, error) {
	messages := []llm.Message{
		{Role: "system", Content: analysisSystemPrompt},
		{Role: "user", Content: analysisUserPrompt(profile, transcript)},
	}

	var raw string
	var err error
	if jc, ok := s.analyzer.(llm.JSONCompleter); ok {
		raw, err = jc.CompleteJSON(ctx, messages)
	} else {
		raw, err = s.analyzer.Complete(ctx, messages)
	}
	if err != nil {
		return session.Summary{}, fmt.Errorf("analyze: %w", err)
	}

	var summary session.Summary
	if err := json.Unmarshal([]byte(stripFences(raw)), &summary); err != nil {
		return session.Summary{}, fmt.Errorf("analyze: decode response: %w", err)
	}
	return summary, nil
}

// stripFences removes a markdown code fence some models wrap JSON in.
func stripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}
