package llm

import (
	"context"
	"errors"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/pkoukk/tiktoken-go"

	"github.com/vaak-ai/voxengine/internal/turn"
	"github.com/vaak-ai/voxengine/internal/voxerr"
)

// OpenAIConfig configures one OpenAIModel instance. A single config
// backs either the SLM or LLM role, differing only in ModelName/Name
// and (typically) latency/quality tradeoffs on the caller's side.
type OpenAIConfig struct {
	APIKey         string
	ModelName      string
	RoleName       string // "slm" or "llm"; returned by Name()
	Temperature    float64
	MaxTokens      int64
	RequestOptions []option.RequestOption
}

// OpenAIModel adapts an OpenAI-compatible chat completions endpoint to
// the Model interface. One client backs both the SLM and LLM roles with
// different configs, same as a single concrete backend serving both
// dispatch tiers.
type OpenAIModel struct {
	client   openai.Client
	cfg      OpenAIConfig
	encoding *tiktoken.Tiktoken
}

// NewOpenAIModel builds an OpenAIModel. encoding may be nil, in which
// case CountTokens falls back to a chars/4 estimate.
func NewOpenAIModel(cfg OpenAIConfig, encoding *tiktoken.Tiktoken) *OpenAIModel {
	opts := append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, cfg.RequestOptions...)
	return &OpenAIModel{
		client:   openai.NewClient(opts...),
		cfg:      cfg,
		encoding: encoding,
	}
}

func buildMessages(turns []turn.Turn) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case turn.RoleSystem:
			msgs = append(msgs, openai.SystemMessage(t.Content))
		case turn.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(t.Content))
		default:
			msgs = append(msgs, openai.UserMessage(t.Content))
		}
	}
	return msgs
}

func (m *OpenAIModel) buildParams(req Request) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:    m.cfg.ModelName,
		Messages: buildMessages(req.Turns),
	}
	if m.cfg.Temperature > 0 {
		params.Temperature = openai.Float(m.cfg.Temperature)
	}
	if m.cfg.MaxTokens > 0 {
		params.MaxTokens = openai.Int(m.cfg.MaxTokens)
	}
	return params
}

// Complete implements Model.
func (m *OpenAIModel) Complete(ctx context.Context, req Request) (Response, error) {
	params := m.buildParams(req)
	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Response{}, voxerr.New(voxerr.BackendUnavailable, "llm.OpenAIModel.Complete", err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, voxerr.New(voxerr.BackendUnavailable, "llm.OpenAIModel.Complete", errors.New("no choices returned"))
	}
	return Response{
		Text: resp.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
		},
	}, nil
}

// StreamCompletion implements Model, accumulating server-sent chat
// completion chunks and forwarding each delta as it arrives.
func (m *OpenAIModel) StreamCompletion(ctx context.Context, req Request) (<-chan Chunk, error) {
	params := m.buildParams(req)
	stream := m.client.Chat.Completions.NewStreaming(ctx, params)

	out := make(chan Chunk)
	go func() {
		defer close(out)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta.Content
			if delta != "" {
				select {
				case out <- Chunk{Delta: delta}:
				case <-ctx.Done():
					return
				}
			}
		}
		select {
		case out <- Chunk{Done: true}:
		case <-ctx.Done():
		}
	}()
	return out, nil
}

// CountTokens implements Model using the tiktoken encoding passed at
// construction, falling back to a chars/4 heuristic when none was
// supplied (e.g. an unrecognized model family).
func (m *OpenAIModel) CountTokens(text string) int {
	if m.encoding == nil {
		return len(text) / 4
	}
	return len(m.encoding.Encode(text, nil, nil))
}

// Capabilities implements Model.
func (m *OpenAIModel) Capabilities() Capabilities {
	return Capabilities{Streaming: true, ToolCalling: false, MaxContextLen: 128000}
}

// Name implements Model, reporting the dispatch role this instance
// backs ("slm" or "llm").
func (m *OpenAIModel) Name() string { return m.cfg.RoleName }
