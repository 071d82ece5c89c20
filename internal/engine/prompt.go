package engine

import (
	"sort"
	"strings"
	"time"

	"github.com/vaak-ai/voxengine/internal/memory"
	"github.com/vaak-ai/voxengine/internal/retrieval"
	"github.com/vaak-ai/voxengine/internal/turn"
)

// assemblePrompt builds the prompt turn sequence (persona -> known
// customer facts -> system instructions -> memory context -> RAG context -> tool-result context
// -> stage guidance -> history -> current user message), then truncates
// it to the configured token budget. history's last entry is the
// current user turn, so "history" and "current user message" are
// naturally the same slice: the tail entry is never dropped during
// truncation.
func assemblePrompt(sess *Session, cfg Config, rag []retrieval.SearchResult, toolCtx string, countTokens func(string) int) []turn.Turn {
	systemText := buildSystemText(sess, cfg, rag, toolCtx)
	history := sess.History()

	turns := make([]turn.Turn, 0, len(history)+1)
	if systemText != "" {
		turns = append(turns, turn.New(turn.RoleSystem, systemText, time.Time{}))
	}
	turns = append(turns, history...)

	return truncateToBudget(turns, cfg.ContextWindowTokens, countTokens)
}

// truncateToBudget drops the oldest non-system, non-final turn
// repeatedly until the total estimated token count fits maxTokens or
// only the protected turns (system, if present, and the current user
// message) remain. maxTokens <= 0 means unbounded.
func truncateToBudget(turns []turn.Turn, maxTokens int, countTokens func(string) int) []turn.Turn {
	if maxTokens <= 0 || len(turns) == 0 {
		return turns
	}

	hasSystem := turns[0].Role == turn.RoleSystem
	minKeep := 1
	if hasSystem {
		minKeep = 2
	}
	dropIdx := 0
	if hasSystem {
		dropIdx = 1
	}

	total := func() int {
		n := 0
		for _, t := range turns {
			n += countTokens(t.Content)
		}
		return n
	}

	for total() > maxTokens && len(turns) > minKeep {
		turns = append(turns[:dropIdx], turns[dropIdx+1:]...)
	}
	return turns
}

func buildSystemText(sess *Session, cfg Config, rag []retrieval.SearchResult, toolCtx string) string {
	var sections []string

	if p := renderCoreBlock("Persona", sess.Memory.PersonaBlock()); p != "" {
		sections = append(sections, p)
	}
	if h := renderCoreBlock("Known about the customer", sess.Memory.HumanBlock()); h != "" {
		sections = append(sections, h)
	}
	if cfg.SystemInstructions != "" {
		sections = append(sections, cfg.SystemInstructions)
	}
	if mc := sess.Memory.AssembleContext(); mc != "" {
		sections = append(sections, mc)
	}
	if rc := renderRAGContext(rag); rc != "" {
		sections = append(sections, rc)
	}
	if toolCtx != "" {
		sections = append(sections, "Tool Result:\n"+toolCtx)
	}
	if cfg.StageGuidance != nil {
		if g := cfg.StageGuidance[sess.Stage()]; g != "" {
			sections = append(sections, g)
		}
	}

	return strings.Join(sections, "\n\n")
}

func renderCoreBlock(heading string, b *memory.CoreBlock) string {
	facts := b.Snapshot()
	if len(facts) == 0 {
		return ""
	}
	keys := make([]string, 0, len(facts))
	for k := range facts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(heading)
	sb.WriteString(":\n")
	for _, k := range keys {
		sb.WriteString("- ")
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(facts[k])
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderRAGContext(results []retrieval.SearchResult) string {
	if len(results) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Retrieved Context:\n")
	for _, r := range results {
		sb.WriteString("- ")
		sb.WriteString(r.Content)
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}
