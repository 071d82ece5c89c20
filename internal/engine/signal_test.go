package engine

import (
	"testing"

	"github.com/vaak-ai/voxengine/internal/dialog"
)

func TestClassifySignal(t *testing.T) {
	cases := []struct {
		text string
		want dialog.Signal
	}{
		{"I'll take it, let's proceed", dialog.SignalCommitment},
		{"that rate is too expensive for me", dialog.SignalObjection},
		{"yes, sounds good", dialog.SignalAssent},
		{"I understand, got it", dialog.SignalAcknowledgment},
		{"tell me about gold loan interest rates", dialog.SignalSubstantive},
		{"", dialog.SignalNone},
	}
	for _, c := range cases {
		if got := classifySignal(c.text); got != c.want {
			t.Errorf("classifySignal(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}
