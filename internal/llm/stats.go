package llm

import "sync"

// Stats accumulates call counters and a numerically stable running mean of
// latency using Welford's online algorithm, guarded by a mutex since the
// executor may be invoked concurrently across sessions.
type Stats struct {
	mu sync.Mutex

	calls       int64
	successes   int64
	fallbacks   int64
	meanLatency float64 // milliseconds
}

// Snapshot is an immutable copy of Stats for reporting.
type Snapshot struct {
	Calls         int64
	Successes     int64
	Fallbacks     int64
	MeanLatencyMs float64
}

// record folds one observation into the running stats. ok marks whether
// the call ultimately produced an accepted result; fellBack marks whether
// an SLM attempt was abandoned in favor of the LLM.
func (s *Stats) record(latencyMs float64, ok, fellBack bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if ok {
		s.successes++
	}
	if fellBack {
		s.fallbacks++
	}

	// Welford's algorithm: mean_n = mean_{n-1} + (x_n - mean_{n-1}) / n.
	s.meanLatency += (latencyMs - s.meanLatency) / float64(s.calls)
}

// Snapshot returns a consistent copy of the current counters.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Calls:         s.calls,
		Successes:     s.successes,
		Fallbacks:     s.fallbacks,
		MeanLatencyMs: s.meanLatency,
	}
}
