package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vaak-ai/voxengine/internal/turn"
)

func simpleReq(text string) Request {
	return Request{Turns: []turn.Turn{turn.New(turn.RoleUser, text, time.Time{})}}
}

func TestSlmFirst_AcceptsGoodSlmResponse(t *testing.T) {
	slm := &fakeModel{name: "slm", text: "a reasonably detailed and varied response about gold loans"}
	llm := &fakeModel{name: "llm", text: "should not be used"}
	ex := NewExecutor(slm, llm, DefaultConfig())

	res, err := ex.Execute(context.Background(), simpleReq("what is the interest rate"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Used != UsedSlm || res.FellBack {
		t.Fatalf("got %+v", res)
	}
}

func TestSlmFirst_FallsBackOnLowQuality(t *testing.T) {
	slm := &fakeModel{name: "slm", text: "sorry cannot"}
	llm := &fakeModel{name: "llm", text: "a complete and helpful answer with varied wording throughout"}
	ex := NewExecutor(slm, llm, DefaultConfig())

	res, err := ex.Execute(context.Background(), simpleReq("tell me about rates"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Used != UsedLlm || !res.FellBack {
		t.Fatalf("got %+v, want fallback to llm", res)
	}
}

func TestSlmFirst_FallsBackOnSlmTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SlmTimeout = 5 * time.Millisecond
	slm := &fakeModel{name: "slm", text: "too slow", delay: 50 * time.Millisecond}
	llm := &fakeModel{name: "llm", text: "a complete and helpful answer with varied wording throughout"}
	ex := NewExecutor(slm, llm, cfg)

	res, err := ex.Execute(context.Background(), simpleReq("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Used != UsedLlm || !res.FellBack {
		t.Fatalf("got %+v, want fallback on timeout", res)
	}
}

func TestSlmFirst_SkipsSlmForHighComplexity(t *testing.T) {
	slm := &fakeModel{name: "slm", text: "would have been used"}
	llm := &fakeModel{name: "llm", text: "llm response"}
	ex := NewExecutor(slm, llm, DefaultConfig())

	complex := "why how what when where "
	for i := 0; i < 90; i++ {
		complex += "word "
	}
	complex += "{code}"

	res, err := ex.Execute(context.Background(), simpleReq(complex))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Used != UsedLlm || res.FellBack {
		t.Fatalf("got %+v, want direct llm routing without fallback flag", res)
	}
}

func TestSlmFirst_ErrorWithoutFallbackSurfaces(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FallbackEnabled = false
	slm := &fakeModel{name: "slm", err: errors.New("boom")}
	llm := &fakeModel{name: "llm", text: "unused"}
	ex := NewExecutor(slm, llm, cfg)

	_, err := ex.Execute(context.Background(), simpleReq("hi"))
	if err == nil {
		t.Fatal("expected error to surface when fallback disabled")
	}
}

func TestRaceParallel_AcceptsFasterGoodSlm(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = RaceParallel
	slm := &fakeModel{name: "slm", text: "a reasonably detailed and varied response about gold loans", delay: 1 * time.Millisecond}
	llm := &fakeModel{name: "llm", text: "slower llm response", delay: 50 * time.Millisecond}
	ex := NewExecutor(slm, llm, cfg)

	res, err := ex.Execute(context.Background(), simpleReq("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Used != UsedSlm {
		t.Fatalf("got %+v, want faster slm to win", res)
	}
}

func TestRaceParallel_FasterLlmWins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = RaceParallel
	slm := &fakeModel{name: "slm", text: "slow slm", delay: 50 * time.Millisecond}
	llm := &fakeModel{name: "llm", text: "fast and complete llm response with varied words", delay: 1 * time.Millisecond}
	ex := NewExecutor(slm, llm, cfg)

	res, err := ex.Execute(context.Background(), simpleReq("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Used != UsedLlm {
		t.Fatalf("got %+v, want faster llm to win", res)
	}
}

func TestHybridStreaming_StaysOnSlmForGoodQuality(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = HybridStreaming
	cfg.MinTokensBeforeSwitch = 5
	slm := &fakeModel{name: "slm", text: "a fully varied and complete streamed response about gold loan rates", chunkLen: 4}
	llm := &fakeModel{name: "llm", text: "unused"}
	ex := NewExecutor(slm, llm, cfg)

	res, err := ex.Execute(context.Background(), simpleReq("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Used != UsedSlm {
		t.Fatalf("got %+v, want to stay on slm stream", res)
	}
}

func TestHybridStreaming_SwitchesToLlmOnPoorEarlyTokens(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = HybridStreaming
	cfg.MinTokensBeforeSwitch = 2
	slm := &fakeModel{name: "slm", text: "sorry cannot help at all with this long rambling refusal text", chunkLen: 2}
	llm := &fakeModel{name: "llm", text: " a complete and helpful answer"}
	ex := NewExecutor(slm, llm, cfg)

	res, err := ex.Execute(context.Background(), simpleReq("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Used != UsedHybrid || !res.FellBack {
		t.Fatalf("got %+v, want a marked hybrid switch", res)
	}
}

func TestDraftVerify_AlwaysUsesLlm(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = DraftVerify
	slm := &fakeModel{name: "slm", text: "draft"}
	llm := &fakeModel{name: "llm", text: "verified final answer"}
	ex := NewExecutor(slm, llm, cfg)

	res, err := ex.Execute(context.Background(), simpleReq("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Used != UsedLlm || res.Text != "verified final answer" {
		t.Fatalf("got %+v", res)
	}
}

func TestExecute_UpdatesStats(t *testing.T) {
	slm := &fakeModel{name: "slm", text: "a reasonably detailed and varied response about gold loans"}
	llm := &fakeModel{name: "llm", text: "unused"}
	ex := NewExecutor(slm, llm, DefaultConfig())

	_, _ = ex.Execute(context.Background(), simpleReq("hello"))
	_, _ = ex.Execute(context.Background(), simpleReq("hello again"))

	snap := ex.Stats()
	if snap.Calls != 2 || snap.Successes != 2 {
		t.Fatalf("got %+v", snap)
	}
}
