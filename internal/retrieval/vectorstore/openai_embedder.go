package vectorstore

import (
	"context"
	"errors"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/vaak-ai/voxengine/internal/voxerr"
)

// OpenAIEmbedder adapts OpenAI's embeddings endpoint to the Embedder
// interface, one text in, one vector out.
type OpenAIEmbedder struct {
	client openai.Client
	model  string
}

// NewOpenAIEmbedder builds an OpenAIEmbedder calling modelName (e.g.
// "text-embedding-3-small") for every Embed call.
func NewOpenAIEmbedder(apiKey, modelName string, opts ...option.RequestOption) *OpenAIEmbedder {
	reqOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIEmbedder{client: openai.NewClient(reqOpts...), model: modelName}
}

// Embed implements Embedder.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: e.model,
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: []string{text}},
	})
	if err != nil {
		return nil, voxerr.New(voxerr.BackendUnavailable, "vectorstore.OpenAIEmbedder.Embed", err)
	}
	if len(resp.Data) == 0 {
		return nil, voxerr.New(voxerr.BackendUnavailable, "vectorstore.OpenAIEmbedder.Embed", errors.New("no embedding returned"))
	}

	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, f := range resp.Data[0].Embedding {
		vec[i] = float32(f)
	}
	return vec, nil
}
