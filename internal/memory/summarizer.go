package memory

import (
	"context"
	"strings"

	"github.com/vaak-ai/voxengine/internal/turn"
)

// Summarizer condenses a batch of working-memory entries into an episodic
// summary's text. The engine binds an LLM-backed implementation; when none
// is bound, trivialSummarize is used instead.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// formatTranscript renders entries as a role-tagged transcript, the input
// format the bound Summarizer is prompted with.
func formatTranscript(entries []Entry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(e.Role))
		b.WriteString(": ")
		b.WriteString(e.Content)
	}
	return b.String()
}

// trivialSummarize concatenates truncated user utterances when no LLM is
// bound: truncated at word boundaries, with an ellipsis appended only
// if truncation actually occurred.
func trivialSummarize(entries []Entry, maxCharsPerUtterance int) string {
	var parts []string
	for _, e := range entries {
		if e.Role != turn.RoleUser {
			continue
		}
		parts = append(parts, truncateAtWordBoundary(e.Content, maxCharsPerUtterance))
	}
	return strings.Join(parts, " ")
}

func truncateAtWordBoundary(s string, maxChars int) string {
	if len(s) <= maxChars {
		return s
	}
	cut := strings.LastIndexByte(s[:maxChars], ' ')
	if cut <= 0 {
		cut = maxChars
	}
	return s[:cut] + "..."
}

func unionTopics(entries []Entry) []string {
	seen := map[string]struct{}{}
	var topics []string
	for _, e := range entries {
		for _, intent := range e.Intents {
			if _, ok := seen[intent]; ok {
				continue
			}
			seen[intent] = struct{}{}
			topics = append(topics, intent)
		}
	}
	return topics
}
