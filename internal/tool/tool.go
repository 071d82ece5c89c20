// Package tool implements the tool registry and intent-driven dispatch
// layer. The Tool/CallableTool builder split and the thread-safe
// Registry follow an immutable-tool design, generalized from an
// LLM-framework-agnostic Definition to an MCP-compatible input
// descriptor shape and dispatched from dialog intents rather than from
// an LLM's function-call decision.
package tool

import (
	"context"
	"errors"
)

// InputDescriptor is a JSON-schema-like description of one tool's
// arguments, modeled after the MCP tool input schema shape.
type InputDescriptor struct {
	Type       string                    `json:"type"`
	Properties map[string]PropertySchema `json:"properties"`
	Required   []string                  `json:"required,omitempty"`
}

// PropertySchema describes one argument's type and description.
type PropertySchema struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Definition is the immutable, LLM/dispatch-facing description of a tool.
type Definition struct {
	Name        string
	Description string
	Category    string
	Input       InputDescriptor
}

// ContentKind enumerates the tool output content block kinds: ordered
// list of content blocks (text / image-ref / resource-ref / audio).
type ContentKind string

const (
	ContentText        ContentKind = "text"
	ContentImageRef    ContentKind = "image_ref"
	ContentResourceRef ContentKind = "resource_ref"
	ContentAudio       ContentKind = "audio"
)

// Content is one block of tool output.
type Content struct {
	Kind ContentKind
	Text string
	Ref  string // URI/handle for image_ref, resource_ref, or audio blocks
}

// Output is a tool's complete invocation result.
type Output struct {
	Content []Content
	IsError bool
}

// TextContext concatenates every text content block, newline-joined, into
// the opaque context string the LLM prompt uses.
func (o Output) TextContext() string {
	var parts []string
	for _, c := range o.Content {
		if c.Kind == ContentText && c.Text != "" {
			parts = append(parts, c.Text)
		}
	}
	return joinNewline(parts)
}

func joinNewline(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += "\n" + p
	}
	return out
}

// Tool is an immutable, callable unit of work dispatched from a detected
// intent.
type Tool interface {
	Definition() Definition
	Call(ctx context.Context, args map[string]string) (Output, error)
}

// Func adapts a plain function into a Tool, the common construction path
// for built-in tools.
type Func struct {
	Def     Definition
	Handler func(ctx context.Context, args map[string]string) (Output, error)
}

func (f Func) Definition() Definition { return f.Def }

func (f Func) Call(ctx context.Context, args map[string]string) (Output, error) {
	if f.Handler == nil {
		return Output{}, errors.New("tool.Func: nil handler for " + f.Def.Name)
	}
	return f.Handler(ctx, args)
}
