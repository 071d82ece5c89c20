// Package engine implements the per-session turn orchestration pipeline:
// phonetic correction of the raw transcript, intent/slot extraction,
// parallel tool dispatch and RAG retrieval, prompt assembly and
// token-budget truncation, speculative-executor dispatch, assistant-turn
// commit, and fire-and-forget background memory summarization. Event
// ordering (Thinking -> IntentDetected -> (ToolCall, ToolResult)* ->
// Response) and the turn-lock discipline are fixed for the whole
// pipeline. The parallel tool+RAG fan-in uses an errgroup-based Execute
// for independent-stage fan-out; Session is a long-lived,
// turn-serialized conversation object built around a single-shot
// request builder.
package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vaak-ai/voxengine/internal/dialog"
	"github.com/vaak-ai/voxengine/internal/llm"
	"github.com/vaak-ai/voxengine/internal/memory"
	"github.com/vaak-ai/voxengine/internal/retrieval"
	"github.com/vaak-ai/voxengine/internal/tool"
	"github.com/vaak-ai/voxengine/internal/turn"
	"github.com/vaak-ai/voxengine/internal/voxerr"
)

// EventKind enumerates the fixed per-turn event sequence.
type EventKind string

const (
	EventThinking       EventKind = "thinking"
	EventIntentDetected EventKind = "intent_detected"
	EventToolCall       EventKind = "tool_call"
	EventToolResult     EventKind = "tool_result"
	EventResponse       EventKind = "response"
)

// Event is one point in a turn's event stream.
type Event struct {
	Kind     EventKind
	Intent   string
	ToolName string
	Success  bool
	Text     string
}

// EventSink receives events as a turn progresses; may be nil.
type EventSink func(Event)

// Config tunes prompt assembly and feature gating for an Engine.
type Config struct {
	ToolsEnabled        bool
	SystemInstructions  string
	StageGuidance       map[dialog.Stage]string
	ContextWindowTokens int

	// CountTokens estimates a string's token length for prompt-window
	// truncation. Nil falls back to the chars/4 heuristic internal/memory
	// also uses.
	CountTokens func(string) int
}

// DefaultConfig returns conservative defaults; StageGuidance is empty and
// is expected to be populated from the domain persona/config loader.
func DefaultConfig() Config {
	return Config{
		ToolsEnabled:        true,
		ContextWindowTokens: 8000,
	}
}

func (c Config) countTokens(s string) int {
	if c.CountTokens != nil {
		return c.CountTokens(s)
	}
	return len(s) / 4
}

// Engine wires dialog tracking, retrieval, tools, and speculative
// dispatch into the per-turn pipeline. One Engine serves every session;
// per-session state lives on Session.
type Engine struct {
	retriever   *retrieval.HybridRetriever // nil disables the RAG step
	tools       *tool.Executor             // nil disables tool dispatch
	speculative *llm.Executor
	phonetic    *PhoneticCorrector
	cfg         Config
	log         zerolog.Logger
}

// New builds an Engine. retriever and tools may be nil to disable those
// stages entirely; speculative must not be nil. phonetic may be nil, in
// which case no pre-extraction text correction is applied.
func New(retriever *retrieval.HybridRetriever, tools *tool.Executor, speculative *llm.Executor, phonetic *PhoneticCorrector, cfg Config, log zerolog.Logger) *Engine {
	return &Engine{retriever: retriever, tools: tools, speculative: speculative, phonetic: phonetic, cfg: cfg, log: log}
}

// ProcessTurn runs the nine-step per-turn pipeline for userText against
// sess, emitting events to sink (which may be nil) in the fixed order,
// and returns the assistant's reply text. An error
// from the speculative executor releases the turn lock and is returned
// without committing an assistant turn or emitting Response.
func (e *Engine) ProcessTurn(ctx context.Context, sess *Session, userText string, sink EventSink) (string, error) {
	sess.Touch()
	emit(sink, Event{Kind: EventThinking})

	sess.lockTurn()
	unlock := sync.OnceFunc(sess.unlockTurn)
	defer unlock()

	correctedText := e.phonetic.Correct(userText)

	intent, action := sess.Tracker.Process(correctedText, classifySignal(correctedText))

	userTurn := turn.New(turn.RoleUser, correctedText, time.Now()).WithAnnotations(&turn.Annotations{
		Intent: intent.Name,
		Slots:  slotValues(intent.Slots),
	})
	sess.appendTurn(userTurn)
	sess.Memory.AddEntry(memory.Entry{
		Role:        turn.RoleUser,
		Content:     correctedText,
		TimestampMS: userTurn.Timestamp.UnixMilli(),
		Stage:       sess.Stage(),
		Intents:     []string{intent.Name},
	})

	emit(sink, Event{Kind: EventIntentDetected, Intent: intent.Name})

	var toolCtx string
	var ragResults []retrieval.SearchResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		toolCtx = e.dispatchTool(gctx, action, sink)
		return nil
	})
	g.Go(func() error {
		ragResults = e.retrieveContext(gctx, correctedText)
		return nil
	})
	_ = g.Wait() // both arms degrade internally; neither ever returns a non-nil error

	requestTurns := assemblePrompt(sess, e.cfg, ragResults, toolCtx, e.cfg.countTokens)

	result, err := e.speculative.Execute(ctx, llm.Request{Turns: requestTurns})
	if err != nil {
		return "", voxerr.New(voxerr.Internal, "engine.ProcessTurn", err)
	}

	assistantTurn := turn.New(turn.RoleAssistant, result.Text, time.Now())
	sess.appendTurn(assistantTurn)
	sess.Memory.AddEntry(memory.Entry{
		Role:        turn.RoleAssistant,
		Content:     result.Text,
		TimestampMS: assistantTurn.Timestamp.UnixMilli(),
		Stage:       sess.Stage(),
	})
	unlock()

	go sess.Memory.SummarizeBackground(context.Background())

	emit(sink, Event{Kind: EventResponse, Text: result.Text})
	return result.Text, nil
}

func (e *Engine) dispatchTool(ctx context.Context, action dialog.Action, sink EventSink) string {
	if !e.cfg.ToolsEnabled || e.tools == nil || action.CallTool == "" {
		return ""
	}

	args, err := e.tools.BuildArgs(action.CallTool, action.ToolArgs)
	if err != nil {
		e.log.Warn().Err(err).Str("tool", action.CallTool).
			Msg("tool argument build failed, continuing without tool context")
		return ""
	}

	toolSink := func(ev tool.Event) {
		kind := EventToolCall
		if ev.Kind == "tool_result" {
			kind = EventToolResult
		}
		emit(sink, Event{Kind: kind, ToolName: ev.Name, Success: ev.Success})
	}

	text, _ := e.tools.Invoke(ctx, action.CallTool, args, toolSink)
	return text
}

func (e *Engine) retrieveContext(ctx context.Context, query string) []retrieval.SearchResult {
	if e.retriever == nil || strings.TrimSpace(query) == "" {
		return nil
	}

	results, err := e.retriever.Search(ctx, query, nil)
	if err != nil {
		e.log.Warn().Err(err).Msg("retrieval failed, continuing without RAG context")
		return nil
	}
	if len(results) > 3 {
		results = results[:3]
	}
	return results
}

func emit(sink EventSink, ev Event) {
	if sink != nil {
		sink(ev)
	}
}

func slotValues(slots map[string]dialog.Slot) map[string]string {
	out := make(map[string]string, len(slots))
	for k, s := range slots {
		out[k] = s.Value
	}
	return out
}
