package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/coco-labs/coco/internal/session"
)

const (
	defaultTranscriptionModel = "gpt-4o-mini-transcribe"
	defaultSpeechModel        = "tts-1"
	defaultSpeechVoice        = "alloy"
)

// OpenAITranscriber transcribes audio chunks through the OpenAI
// transcription endpoint.
type OpenAITranscriber struct {
	client *openai.Client
	model  string
}

func NewOpenAITranscriber(apiKey, model string) *OpenAITranscriber {
	return NewOpenAITranscriberWithConfig(openai.DefaultConfig(apiKey), model)
}

func NewOpenAITranscriberWithConfig(config openai.ClientConfig, model string) *OpenAITranscriber {
	if model == "" {
		model = defaultTranscriptionModel
	}
	return &OpenAITranscriber{client: openai.NewClientWithConfig(config), model: model}
}

func (t *OpenAITranscriber) Transcribe(ctx context.Context, wav []byte, prompt string) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		Reader:   bytes.NewReader(wav),
		FilePath: "audio.wav",
		Language: "en",
		Prompt:   prompt,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("openai transcription: %w", err)
	}
	return resp.Text, nil
}

// OpenAISynthesizer produces MP3 speech through the OpenAI text-to-speech
// endpoint.
type OpenAISynthesizer struct {
	client *openai.Client
	model  string
	voice  string
}

func NewOpenAISynthesizer(apiKey, model, voice string) *OpenAISynthesizer {
	return NewOpenAISynthesizerWithConfig(openai.DefaultConfig(apiKey), model, voice)
}

func NewOpenAISynthesizerWithConfig(config openai.ClientConfig, model, voice string) *OpenAISynthesizer {
	if model == "" {
		model = defaultSpeechModel
	}
	if voice == "" {
		voice = defaultSpeechVoice
	}
	return &OpenAISynthesizer{client: openai.NewClientWithConfig(config), model: model, voice: voice}
}

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text string) (session.SpeechAudio, error) {
	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.model),
		Input:          text,
		Voice:          openai.SpeechVoice(s.voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return session.SpeechAudio{}, fmt.Errorf("openai speech: %w", err)
	}
	defer func() { _ = resp.Close() }()

	data, err := io.ReadAll(resp)
	if err != nil {
		return session.SpeechAudio{}, fmt.Errorf("read openai speech response: %w", err)
	}
	return session.SpeechAudio{Data: data, Format: "mp3"}, nil
}
