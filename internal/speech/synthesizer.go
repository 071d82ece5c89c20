package speech

import (
	"context"
	"io"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/vaak-ai/voxengine/internal/voxerr"
)

// OpenAISynthesizerConfig configures an OpenAISynthesizer.
type OpenAISynthesizerConfig struct {
	APIKey         string
	Model          string // e.g. "tts-1"
	Voice          string // e.g. "alloy"
	Speed          float64
	RequestOptions []option.RequestOption
}

// OpenAISynthesizer adapts OpenAI's audio speech endpoint to the
// ws.Synthesizer collaborator interface, requesting the "pcm" response
// format directly so no transcode step is needed before the frame is
// written back to the client.
type OpenAISynthesizer struct {
	client openai.Client
	model  string
	voice  string
	speed  float64
}

// NewOpenAISynthesizer builds an OpenAISynthesizer.
func NewOpenAISynthesizer(cfg OpenAISynthesizerConfig) *OpenAISynthesizer {
	opts := append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, cfg.RequestOptions...)
	speed := cfg.Speed
	if speed == 0 {
		speed = 1.0
	}
	return &OpenAISynthesizer{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		voice:  cfg.Voice,
		speed:  speed,
	}
}

// Synthesize implements ws.Synthesizer.
func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	params := openai.AudioSpeechNewParams{
		Model:          s.model,
		Input:          text,
		Voice:          openai.AudioSpeechNewParamsVoice(s.voice),
		Speed:          openai.Float(s.speed),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormat("pcm"),
	}

	resp, err := s.client.Audio.Speech.New(ctx, params)
	if err != nil {
		return nil, voxerr.New(voxerr.BackendUnavailable, "speech.OpenAISynthesizer.Synthesize", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, voxerr.New(voxerr.BackendUnavailable, "speech.OpenAISynthesizer.Synthesize", err)
	}
	return data, nil
}
