package tool

import (
	"context"

	"github.com/vaak-ai/voxengine/internal/voxerr"
)

// DispatchConfig is the config-driven intent->tool mapping plus default
// argument values: maps intent names to tool names via IntentToTool
// (there is no built-in table; an intent absent from it maps to no tool),
// and fills in missing arguments from configured defaults.
type DispatchConfig struct {
	IntentToTool map[string]string
	Defaults     map[string]map[string]string // tool name -> arg name -> default value
}

// ToolForIntent resolves the tool name mapped to intentName, if any.
func (c DispatchConfig) ToolForIntent(intentName string) (string, bool) {
	name, ok := c.IntentToTool[intentName]
	return name, ok
}

// Event is emitted around tool invocation: each call emits a
// ToolCall{name} event, then a ToolResult{name, success} event.
type Event struct {
	Kind    string // "tool_call" or "tool_result"
	Name    string
	Success bool
}

// EventSink receives dispatch events; the engine wires this to its event
// stream.
type EventSink func(Event)

// Executor resolves, validates, and invokes tools by name. A tool error
// is reported to the caller through Invoke's ok=false rather than
// aborting the turn; Executor itself does not log it.
type Executor struct {
	registry *Registry
	cfg      DispatchConfig
}

// NewExecutor builds an Executor over registry and cfg.
func NewExecutor(registry *Registry, cfg DispatchConfig) *Executor {
	return &Executor{registry: registry, cfg: cfg}
}

// BuildArgs merges extracted slot values over the tool's configured
// defaults, extracted values taking precedence, then validates the result
// against the tool's input descriptor.
func (e *Executor) BuildArgs(toolName string, extracted map[string]string) (map[string]string, error) {
	t, ok := e.registry.Find(toolName)
	if !ok {
		return nil, voxerr.Newf(voxerr.NotFound, "tool.Executor.BuildArgs", "tool %q not registered", toolName)
	}

	args := map[string]string{}
	for k, v := range e.cfg.Defaults[toolName] {
		args[k] = v
	}
	for k, v := range extracted {
		if v != "" {
			args[k] = v
		}
	}

	def := t.Definition()
	for _, required := range def.Input.Required {
		if _, ok := args[required]; !ok {
			return nil, voxerr.Newf(voxerr.InvalidInput, "tool.Executor.BuildArgs",
				"tool %q: missing required argument %q", toolName, required)
		}
	}
	for k := range args {
		if _, ok := def.Input.Properties[k]; !ok {
			delete(args, k)
		}
	}

	return args, nil
}

// Invoke runs toolName with args, emitting ToolCall/ToolResult events to
// sink (if non-nil) and returning the opaque text context plus whether
// the call failed. A failure (tool not found, execution error, or
// is_error output) is reported via ok=false but never returned as a
// package error: the caller's failure policy is "log, don't abort".
func (e *Executor) Invoke(ctx context.Context, toolName string, args map[string]string, sink EventSink) (text string, ok bool) {
	emit := func(ev Event) {
		if sink != nil {
			sink(ev)
		}
	}

	emit(Event{Kind: "tool_call", Name: toolName})

	t, found := e.registry.Find(toolName)
	if !found {
		emit(Event{Kind: "tool_result", Name: toolName, Success: false})
		return "", false
	}

	out, err := t.Call(ctx, args)
	if err != nil {
		emit(Event{Kind: "tool_result", Name: toolName, Success: false})
		return "", false
	}

	emit(Event{Kind: "tool_result", Name: toolName, Success: !out.IsError})
	return out.TextContext(), !out.IsError
}
