package memory

// episodicMemory is a double-ended queue of EpisodicSummary, capped at a
// configured size; the oldest summary is discarded first on overflow.
type episodicMemory struct {
	cap       int
	summaries []EpisodicSummary
}

func newEpisodicMemory(cap int) *episodicMemory {
	if cap <= 0 {
		cap = 1
	}
	return &episodicMemory{cap: cap}
}

func (e *episodicMemory) push(s EpisodicSummary) {
	e.summaries = append(e.summaries, s)
	for len(e.summaries) > e.cap {
		e.summaries = e.summaries[1:]
	}
}

// popOldestUntil discards the oldest summaries until the predicate reports
// the memory no longer needs trimming, preserving at least minKeep
// summaries regardless -- compaction step 2.
func (e *episodicMemory) popOldestUntil(minKeep int, shouldStop func() bool) {
	for len(e.summaries) > minKeep && !shouldStop() {
		e.summaries = e.summaries[1:]
	}
}

func (e *episodicMemory) snapshot() []EpisodicSummary {
	out := make([]EpisodicSummary, len(e.summaries))
	copy(out, e.summaries)
	return out
}

func (e *episodicMemory) len() int { return len(e.summaries) }

func (e *episodicMemory) charCount() int {
	n := 0
	for _, s := range e.summaries {
		n += len(s.Text)
	}
	return n
}
