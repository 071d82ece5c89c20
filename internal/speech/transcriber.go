package speech

import (
	"bytes"
	"context"
	"errors"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/vaak-ai/voxengine/internal/voxerr"
)

// OpenAITranscriberConfig configures an OpenAITranscriber.
type OpenAITranscriberConfig struct {
	APIKey         string
	Model          string // e.g. "whisper-1"
	Language       string // ISO-639-1 hint, optional
	RequestOptions []option.RequestOption
}

// OpenAITranscriber adapts OpenAI's audio transcription endpoint to the
// ws.Transcriber collaborator interface. The endpoint is non-streaming,
// so every call reports isFinal=true. Handler calls Transcribe once per
// received audio frame; frames are not buffered into utterances first.
type OpenAITranscriber struct {
	client   openai.Client
	model    string
	language string
}

// NewOpenAITranscriber builds an OpenAITranscriber.
func NewOpenAITranscriber(cfg OpenAITranscriberConfig) *OpenAITranscriber {
	opts := append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, cfg.RequestOptions...)
	return &OpenAITranscriber{
		client:   openai.NewClient(opts...),
		model:    cfg.Model,
		language: cfg.Language,
	}
}

// Transcribe implements ws.Transcriber, wrapping pcm16le in a WAV
// container before upload since the endpoint sniffs file format rather
// than accepting a bare sample stream.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, pcm16le []byte, sampleRateHz int) (string, bool, error) {
	wav := wrapPCM16WAV(pcm16le, sampleRateHz)

	params := openai.AudioTranscriptionNewParams{
		Model: t.model,
		File:  bytes.NewReader(wav),
	}
	if t.language != "" {
		params.Language = openai.String(t.language)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", false, voxerr.New(voxerr.BackendUnavailable, "speech.OpenAITranscriber.Transcribe", err)
	}
	if resp == nil {
		return "", false, voxerr.New(voxerr.BackendUnavailable, "speech.OpenAITranscriber.Transcribe", errors.New("no transcription returned"))
	}

	return resp.Text, true, nil
}
