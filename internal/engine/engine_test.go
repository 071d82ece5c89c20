package engine

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/vaak-ai/voxengine/internal/dialog"
	"github.com/vaak-ai/voxengine/internal/llm"
	"github.com/vaak-ai/voxengine/internal/memory"
	"github.com/vaak-ai/voxengine/internal/tool"
)

type fakeModel struct {
	name string
	text string
}

func (m *fakeModel) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	return llm.Response{Text: m.text}, nil
}
func (m *fakeModel) StreamCompletion(ctx context.Context, req llm.Request) (<-chan llm.Chunk, error) {
	ch := make(chan llm.Chunk, 1)
	ch <- llm.Chunk{Delta: m.text, Done: true}
	close(ch)
	return ch, nil
}
func (m *fakeModel) CountTokens(text string) int    { return len(text) / 4 }
func (m *fakeModel) Capabilities() llm.Capabilities { return llm.Capabilities{} }
func (m *fakeModel) Name() string                   { return m.name }

func testTracker() *dialog.Tracker {
	classifier := dialog.NewIntentClassifier([]dialog.IntentExample{
		{Name: "new_loan_inquiry", Examples: []string{"I want a gold loan"}},
	})
	goals := dialog.GoalConfig{
		Goals: map[string]dialog.Goal{
			"new_loan": {ID: "new_loan", RequiredSlots: []string{"loan_amount"}, CompletionTool: "submit_loan_application"},
		},
		IntentToGoal:  map[string]string{"new_loan_inquiry": "new_loan"},
		DefaultGoalID: "new_loan",
	}
	return dialog.NewTracker(classifier, dialog.NewSlotExtractor(), goals)
}

func testSession() *Session {
	mem := memory.New(memory.DefaultConfig(), nil)
	return NewSession("agent-1", testTracker(), mem, "en")
}

func TestProcessTurn_EmitsEventsInOrder(t *testing.T) {
	eng := New(nil, nil, llm.NewExecutor(&fakeModel{name: "slm", text: "a decent sized slm answer here"}, &fakeModel{name: "llm", text: "llm answer"}, llm.DefaultConfig()), nil, DefaultConfig(), zerolog.Nop())
	sess := testSession()

	var kinds []EventKind
	text, err := eng.ProcessTurn(context.Background(), sess, "I want a gold loan", func(ev Event) {
		kinds = append(kinds, ev.Kind)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text == "" {
		t.Fatal("expected non-empty response text")
	}
	if len(kinds) < 3 || kinds[0] != EventThinking || kinds[1] != EventIntentDetected || kinds[len(kinds)-1] != EventResponse {
		t.Fatalf("event order = %v", kinds)
	}
}

func TestProcessTurn_AppliesPhoneticCorrectionBeforeHistory(t *testing.T) {
	eng := New(nil, nil, llm.NewExecutor(&fakeModel{name: "slm", text: "a decent sized slm answer here"}, &fakeModel{name: "llm", text: "llm answer"}, llm.DefaultConfig()), DefaultPhoneticCorrector(), DefaultConfig(), zerolog.Nop())
	sess := testSession()

	_, err := eng.ProcessTurn(context.Background(), sess, "loan from mutton finance please", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	history := sess.History()
	if len(history) == 0 || history[0].Content != "loan from Muthoot Finance please" {
		t.Errorf("expected corrected text in history, got %+v", history)
	}
}

func TestProcessTurn_TurnCountIncreasesByTwo(t *testing.T) {
	eng := New(nil, nil, llm.NewExecutor(&fakeModel{name: "slm", text: "a decent sized slm answer here"}, &fakeModel{name: "llm", text: "llm answer"}, llm.DefaultConfig()), nil, DefaultConfig(), zerolog.Nop())
	sess := testSession()

	before := sess.TurnCount()
	_, err := eng.ProcessTurn(context.Background(), sess, "hello there", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := sess.TurnCount() - before; got != 2 {
		t.Errorf("turn count delta = %d, want 2", got)
	}
}

func TestProcessTurn_DispatchesCompletionTool(t *testing.T) {
	registry := tool.NewRegistry()
	called := false
	registry.Register(tool.Func{
		Def: tool.Definition{
			Name:  "submit_loan_application",
			Input: tool.InputDescriptor{Required: []string{"loan_amount"}},
		},
		Handler: func(ctx context.Context, args map[string]string) (tool.Output, error) {
			called = true
			return tool.Output{Content: []tool.Content{{Kind: tool.ContentText, Text: "application submitted"}}}, nil
		},
	})
	executor := tool.NewExecutor(registry, tool.DispatchConfig{})

	eng := New(nil, executor, llm.NewExecutor(&fakeModel{name: "slm", text: "a decent sized slm answer here"}, &fakeModel{name: "llm", text: "llm answer"}, llm.DefaultConfig()), nil, DefaultConfig(), zerolog.Nop())
	sess := testSession()

	var sawToolCall, sawToolResult bool
	_, err := eng.ProcessTurn(context.Background(), sess, "I want a gold loan of 5 lakh", func(ev Event) {
		switch ev.Kind {
		case EventToolCall:
			sawToolCall = true
		case EventToolResult:
			sawToolResult = true
		}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected tool to be invoked once required slot is filled")
	}
	if !sawToolCall || !sawToolResult {
		t.Errorf("sawToolCall=%v sawToolResult=%v", sawToolCall, sawToolResult)
	}
}

func TestProcessTurn_ToolsDisabledSkipsDispatch(t *testing.T) {
	registry := tool.NewRegistry()
	called := false
	registry.Register(tool.Func{
		Def: tool.Definition{Name: "submit_loan_application", Input: tool.InputDescriptor{Required: []string{"loan_amount"}}},
		Handler: func(ctx context.Context, args map[string]string) (tool.Output, error) {
			called = true
			return tool.Output{}, nil
		},
	})
	executor := tool.NewExecutor(registry, tool.DispatchConfig{})

	cfg := DefaultConfig()
	cfg.ToolsEnabled = false
	eng := New(nil, executor, llm.NewExecutor(&fakeModel{name: "slm", text: "a decent sized slm answer here"}, &fakeModel{name: "llm", text: "llm answer"}, llm.DefaultConfig()), nil, cfg, zerolog.Nop())
	sess := testSession()

	_, err := eng.ProcessTurn(context.Background(), sess, "I want a gold loan of 5 lakh", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Error("expected tool dispatch to be skipped when disabled")
	}
}
