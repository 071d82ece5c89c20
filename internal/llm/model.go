// Package llm defines the model abstraction and speculative dispatch layer
// that routes each turn's generation between a small, fast model (SLM) and
// a larger, higher-quality model (LLM).
//
// Model follows a Provider interface shape (Complete/StreamCompletion/
// CountTokens/Capabilities), targeting this project's turn.Turn and
// tool.Definition types.
package llm

import (
	"context"

	"github.com/vaak-ai/voxengine/internal/tool"
	"github.com/vaak-ai/voxengine/internal/turn"
)

// Capabilities describes what a Model backend supports, so callers (and
// the speculative executor) can decide whether streaming or tool-calling
// is available before attempting it.
type Capabilities struct {
	Streaming     bool
	ToolCalling   bool
	MaxContextLen int
}

// Request is one generation request: the full turn history plus whatever
// tool definitions should be offered to the model.
type Request struct {
	Turns []turn.Turn
	Tools []tool.Definition
}

// Usage reports token accounting for a single completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Chunk is one piece of a streamed completion.
type Chunk struct {
	Delta string
	Done  bool
}

// Response is a complete, non-streamed model completion.
type Response struct {
	Text  string
	Usage Usage
}

// Model is the generation backend interface both the SLM and LLM
// implement. A single concrete type (e.g. an OpenAI-compatible client)
// can back both roles with different model names/timeouts.
type Model interface {
	// Complete generates a full response for req in one call.
	Complete(ctx context.Context, req Request) (Response, error)

	// StreamCompletion generates a response incrementally, sending Chunks
	// on the returned channel until Done or ctx is cancelled. Callers
	// wishing to abort should cancel ctx rather than draining the channel.
	StreamCompletion(ctx context.Context, req Request) (<-chan Chunk, error)

	// CountTokens estimates the token length of text for this model's
	// tokenizer, used for prompt-window truncation.
	CountTokens(text string) int

	// Capabilities reports what this backend supports.
	Capabilities() Capabilities

	// Name identifies the backend for logging and stats (e.g. "slm", "llm").
	Name() string
}
