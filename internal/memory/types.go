// Package memory implements the three-tier conversation memory (working,
// episodic, semantic) plus the two core memory blocks (human, persona)
// that back prompt assembly. Builds on a Reader/Writer/Clearer split and
// a sliding-window-with-system-message-preservation strategy,
// generalized from a flat chat.Message list to three distinct tiers
// with watermark compaction.
package memory

import (
	"github.com/vaak-ai/voxengine/internal/dialog"
	"github.com/vaak-ai/voxengine/internal/turn"
)

// Entry is one working-memory record: a role-tagged utterance plus the
// dialog signals detected for it.
type Entry struct {
	Role        turn.Role
	Content     string
	TimestampMS int64
	Stage       dialog.Stage // zero value means untagged
	Intents     []string
	Entities    map[string]string
}

// EpisodicSummary is a compacted description of a batch of working-memory
// entries that aged out of the window.
type EpisodicSummary struct {
	Text         string
	RangeStartMS int64
	RangeEndMS   int64
	Topics       []string
	TurnsCovered int
}

// SemanticFact is a single durable (key, value) pair extracted from the
// conversation, with a confidence score and provenance.
type SemanticFact struct {
	Key           string
	Value         string
	Confidence    float64
	SourceTurnIdx int
	UpdatedAtMS   int64
}

// Stats summarizes the current tier sizes for compaction decisions and
// observability.
type Stats struct {
	WorkingEntries    int
	EpisodicSummaries int
	SemanticFacts     int
	EstimatedTokens   int
}
