package engine

import (
	"strings"

	"github.com/vaak-ai/voxengine/internal/dialog"
)

// classifySignal maps user text to the stage-machine signal it most
// likely carries. dialog.Tracker deliberately does not infer signals
// from text itself (see dialog.Tracker.Process's doc comment) since the
// engine is free to combine richer detection (an LLM-assisted objection
// classifier, say) with these keyword rules; this is the Open Question
// decision recorded in DESIGN.md for this package. Order matters: the
// more specific markers are checked before the general ones, so e.g. "I
// understand but it's too expensive" classifies as an objection rather
// than an acknowledgment.
func classifySignal(text string) dialog.Signal {
	lower := strings.ToLower(text)

	switch {
	case containsAny(lower, commitmentMarkers):
		return dialog.SignalCommitment
	case containsAny(lower, objectionMarkers):
		return dialog.SignalObjection
	case containsAny(lower, assentMarkers):
		return dialog.SignalAssent
	case containsAny(lower, acknowledgmentMarkers):
		return dialog.SignalAcknowledgment
	case strings.TrimSpace(lower) != "":
		return dialog.SignalSubstantive
	default:
		return dialog.SignalNone
	}
}

var commitmentMarkers = []string{
	"i'll take it", "let's proceed", "go ahead", "book it", "i want to apply",
	"sign me up", "proceed with", "mujhe chahiye", "haan karo", "karwa do",
}

var objectionMarkers = []string{
	"too expensive", "too high", "not interested", "other bank", "competitor",
	"lower rate", "too much", "mehenga", "zyada hai", "dusri bank",
}

var assentMarkers = []string{
	"yes", "sure", "ok", "okay", "yeah", "haan", "theek hai", "thik hai",
}

var acknowledgmentMarkers = []string{
	"i understand", "got it", "makes sense", "i see", "samajh gaya", "samjha",
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
