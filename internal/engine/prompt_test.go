package engine

import (
	"testing"
	"time"

	"github.com/vaak-ai/voxengine/internal/dialog"
	"github.com/vaak-ai/voxengine/internal/turn"
)

func charTokens(s string) int { return len(s) }

func TestTruncateToBudget_DropsOldestHistoryFirst(t *testing.T) {
	turns := []turn.Turn{
		turn.New(turn.RoleSystem, "persona and instructions", time.Time{}),
		turn.New(turn.RoleUser, "oldest message", time.Time{}),
		turn.New(turn.RoleAssistant, "middle reply", time.Time{}),
		turn.New(turn.RoleUser, "current message", time.Time{}),
	}

	got := truncateToBudget(turns, len("persona and instructions")+len("current message")+5, charTokens)

	if len(got) != 2 {
		t.Fatalf("got %d turns, want 2 (system + current): %+v", len(got), got)
	}
	if got[0].Role != turn.RoleSystem || got[1].Content != "current message" {
		t.Errorf("got %+v", got)
	}
}

func TestTruncateToBudget_NeverDropsSystemOrCurrent(t *testing.T) {
	turns := []turn.Turn{
		turn.New(turn.RoleSystem, "persona", time.Time{}),
		turn.New(turn.RoleUser, "current message", time.Time{}),
	}

	got := truncateToBudget(turns, 1, charTokens)
	if len(got) != 2 {
		t.Fatalf("got %d turns, want 2 kept regardless of budget: %+v", len(got), got)
	}
}

func TestTruncateToBudget_UnboundedWhenZero(t *testing.T) {
	turns := []turn.Turn{
		turn.New(turn.RoleUser, "a", time.Time{}),
		turn.New(turn.RoleUser, "b", time.Time{}),
	}
	got := truncateToBudget(turns, 0, charTokens)
	if len(got) != 2 {
		t.Fatalf("got %d turns, want unchanged", len(got))
	}
}

func TestBuildSystemText_OmitsEmptySections(t *testing.T) {
	sess := testSession()
	text := buildSystemText(sess, Config{}, nil, "")
	if text != "" {
		t.Errorf("expected empty system text with nothing configured, got %q", text)
	}
}

func TestBuildSystemText_IncludesStageGuidance(t *testing.T) {
	sess := testSession()
	cfg := Config{StageGuidance: map[dialog.Stage]string{
		dialog.StageGreeting: "greet the customer warmly",
	}}
	text := buildSystemText(sess, cfg, nil, "")
	if text != "greet the customer warmly" {
		t.Errorf("got %q", text)
	}
}
