package memory

import (
	"context"
	"strconv"
	"strings"
	"sync"
)

// Config configures one ConversationMemory instance's conversation-memory
// settings.
type Config struct {
	WorkingMemorySize      int
	SummarizationThreshold int
	MaxEpisodicSummaries   int
	SemanticMemoryEnabled  bool
	LowWatermarkTokens     int
	HighWatermarkTokens    int
	MaxContextTokens       int
	CoreBlockCharCap       int
}

// DefaultConfig returns conservative defaults for the scenario constants
// stated.
func DefaultConfig() Config {
	return Config{
		WorkingMemorySize:      20,
		SummarizationThreshold: 10,
		MaxEpisodicSummaries:   20,
		SemanticMemoryEnabled:  true,
		LowWatermarkTokens:     4000,
		HighWatermarkTokens:    7000,
		MaxContextTokens:       8000,
		CoreBlockCharCap:       2000,
	}
}

// ConversationMemory is the per-session three-tier memory plus the two
// core memory blocks. Safe for concurrent use: every mutation made
// through its methods is guarded by mu and none of them block on I/O --
// an interior-mutable structure behind a read-write lock, where every
// mutation is short and non-awaiting. The *CoreBlock values returned by
// HumanBlock and PersonaBlock are not guarded by mu.
type ConversationMemory struct {
	mu sync.RWMutex

	cfg Config

	working  *workingMemory
	episodic *episodicMemory
	semantic *semanticMemory

	human   *CoreBlock
	persona *CoreBlock

	summarizer Summarizer
	pending    []Entry // drained-from-working entries awaiting summarization
}

// New constructs a ConversationMemory. summarizer may be nil, in which
// case summarization always falls back to the trivial concatenation.
func New(cfg Config, summarizer Summarizer) *ConversationMemory {
	return &ConversationMemory{
		cfg:        cfg,
		working:    newWorkingMemory(cfg.WorkingMemorySize),
		episodic:   newEpisodicMemory(cfg.MaxEpisodicSummaries),
		semantic:   newSemanticMemory(cfg.SemanticMemoryEnabled),
		human:      newCoreBlock(BlockHuman, cfg.CoreBlockCharCap),
		persona:    newCoreBlock(BlockPersona, cfg.CoreBlockCharCap),
		summarizer: summarizer,
	}
}

// AddEntry appends e to working memory, draining overflow into the
// pending-summarization queue. Never blocks on I/O.
func (m *ConversationMemory) AddEntry(e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	drained := m.working.push(e, m.cfg.SummarizationThreshold)
	m.pending = append(m.pending, drained...)
}

// SetFact upserts a semantic fact. No-op if semantic memory is disabled.
func (m *ConversationMemory) SetFact(f SemanticFact) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.semantic.set(f)
}

// Fact returns the current value of a semantic fact key, if present.
func (m *ConversationMemory) Fact(key string) (SemanticFact, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.semantic.get(key)
}

// HumanBlock returns the human core memory block.
func (m *ConversationMemory) HumanBlock() *CoreBlock { return m.human }

// PersonaBlock returns the persona core memory block.
func (m *ConversationMemory) PersonaBlock() *CoreBlock { return m.persona }

// WorkingEntries returns a snapshot of the current working-memory FIFO.
func (m *ConversationMemory) WorkingEntries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.working.snapshot()
}

// EpisodicSummaries returns a snapshot of the current episodic queue.
func (m *ConversationMemory) EpisodicSummaries() []EpisodicSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.episodic.snapshot()
}

// GetStats returns the current tier sizes and the estimated token count:
// token estimate ≈ total character count / 4.
func (m *ConversationMemory) GetStats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statsLocked()
}

func (m *ConversationMemory) statsLocked() Stats {
	chars := m.working.charCount() + m.episodic.charCount() + m.semantic.charCount()
	return Stats{
		WorkingEntries:    m.working.len(),
		EpisodicSummaries: m.episodic.len(),
		SemanticFacts:     m.semantic.len(),
		EstimatedTokens:   chars / 4,
	}
}

// NeedsCleanup reports whether the estimated token count has reached the
// high watermark.
func (m *ConversationMemory) NeedsCleanup() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statsLocked().EstimatedTokens >= m.cfg.HighWatermarkTokens
}

// CleanupToWatermark performs a three-step compaction, summarizing the
// drained working-memory prefix with summarizer
// (or the trivial fallback on failure or absence). It is synchronous and
// may block on the summarizer; callers on the hot path should instead use
// SummarizeBackground, which performs the same work off the response
// path.
func (m *ConversationMemory) CleanupToWatermark(ctx context.Context) {
	m.mu.Lock()
	drained := m.working.drainKeepingLast(2)
	m.pending = append(m.pending, drained...)
	toSummarize := m.pending
	m.pending = nil
	m.mu.Unlock()

	if len(toSummarize) > 0 {
		summary := m.summarize(ctx, toSummarize)
		m.mu.Lock()
		m.episodic.push(summary)
		m.mu.Unlock()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.episodic.popOldestUntil(1, func() bool {
		return m.statsLocked().EstimatedTokens <= m.cfg.LowWatermarkTokens
	})

	if m.statsLocked().EstimatedTokens > m.cfg.LowWatermarkTokens {
		m.semantic.purgeBelowConfidence(0.5)
	}
}

// SummarizeBackground drains the pending-summarization queue without
// touching working or episodic memory sizing, intended for the
// fire-and-forget post-turn task: background summarization must not
// block the user-response path. Failures in the bound summarizer fall
// back to the trivial summary and are not propagated.
func (m *ConversationMemory) SummarizeBackground(ctx context.Context) {
	m.mu.Lock()
	toSummarize := m.pending
	m.pending = nil
	m.mu.Unlock()

	if len(toSummarize) == 0 {
		return
	}

	summary := m.summarize(ctx, toSummarize)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.episodic.push(summary)
}

func (m *ConversationMemory) summarize(ctx context.Context, entries []Entry) EpisodicSummary {
	text := ""
	if m.summarizer != nil {
		transcript := formatTranscript(entries)
		if s, err := m.summarizer.Summarize(ctx, transcript); err == nil {
			text = s
		}
	}
	if text == "" {
		text = trivialSummarize(entries, 80)
	}

	start, end := int64(0), int64(0)
	if len(entries) > 0 {
		start = entries[0].TimestampMS
		end = entries[len(entries)-1].TimestampMS
	}

	return EpisodicSummary{
		Text:         text,
		RangeStartMS: start,
		RangeEndMS:   end,
		Topics:       unionTopics(entries),
		TurnsCovered: len(entries),
	}
}

// AssembleContext renders the deterministic memory-context string: a
// "Known Facts" section (semantic, insertion order), then an "Episodic
// Summary" list. Working-memory messages are assembled elsewhere in the
// prompt, by the caller.
func (m *ConversationMemory) AssembleContext() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var b strings.Builder

	facts := m.semantic.orderedFacts()
	if len(facts) > 0 {
		b.WriteString("Known Facts:\n")
		for _, f := range facts {
			b.WriteString("- ")
			b.WriteString(f.Key)
			b.WriteString(": ")
			b.WriteString(f.Value)
			b.WriteByte('\n')
		}
	}

	summaries := m.episodic.snapshot()
	if len(summaries) > 0 {
		b.WriteString("Episodic Summary:\n")
		for i, s := range summaries {
			b.WriteString("- [")
			b.WriteString(strconv.Itoa(i + 1))
			b.WriteString("] ")
			b.WriteString(s.Text)
			b.WriteByte('\n')
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
