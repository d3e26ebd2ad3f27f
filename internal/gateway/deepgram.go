package gateway

import (
	"bytes"
	"context"
	"fmt"

	listenapi "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	listen "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"
)

const defaultDeepgramModel = "nova-2"

// DeepgramTranscriber transcribes audio chunks through Deepgram's
// pre-recorded REST API. It is the alternate transcription backend,
// selected by configuration.
type DeepgramTranscriber struct {
	api   *listenapi.Client
	model string
}

func NewDeepgramTranscriber(apiKey, model string) *DeepgramTranscriber {
	if model == "" {
		model = defaultDeepgramModel
	}
	client := listen.NewREST(apiKey, &interfaces.ClientOptions{})
	return &DeepgramTranscriber{api: listenapi.New(client), model: model}
}

func (t *DeepgramTranscriber) Transcribe(ctx context.Context, wav []byte, _ string) (string, error) {
	options := &interfaces.PreRecordedTranscriptionOptions{
		Model:       t.model,
		Language:    "en",
		Punctuate:   true,
		SmartFormat: true,
	}

	resp, err := t.api.FromStream(ctx, bytes.NewReader(wav), options)
	if err != nil {
		return "", fmt.Errorf("deepgram transcription: %w", err)
	}

	if resp == nil || len(resp.Results.Channels) == 0 || len(resp.Results.Channels[0].Alternatives) == 0 {
		return "", nil
	}
	return resp.Results.Channels[0].Alternatives[0].Transcript, nil
}
