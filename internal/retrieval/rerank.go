package retrieval

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/vaak-ai/voxengine/internal/llm"
	"github.com/vaak-ai/voxengine/internal/turn"
)

// Reranker re-scores fused candidates against the query, optionally
// recording an early-exit layer when the underlying model supports it.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []SearchResult) ([]SearchResult, error)
}

// CrossEncoderReranker scores each candidate with a scoring-prompt
// completion against an llm.Model, going through internal/llm's Model
// abstraction rather than calling an LLM SDK directly from this package.
type CrossEncoderReranker struct {
	model llm.Model
}

// NewCrossEncoderReranker wraps model for reranking use.
func NewCrossEncoderReranker(model llm.Model) *CrossEncoderReranker {
	return &CrossEncoderReranker{model: model}
}

func (r *CrossEncoderReranker) Rerank(ctx context.Context, query string, candidates []SearchResult) ([]SearchResult, error) {
	out := make([]SearchResult, len(candidates))
	copy(out, candidates)

	for i, c := range out {
		prompt := fmt.Sprintf(
			"Rate how relevant this passage is to the query on a scale from 0.0 to 1.0. "+
				"Reply with only the number.\n\nQuery: %s\n\nPassage: %s", query, c.Content)

		resp, err := r.model.Complete(ctx, llm.Request{
			Turns: []turn.Turn{turn.New(turn.RoleUser, prompt, time.Time{})},
		})
		if err != nil {
			return nil, fmt.Errorf("retrieval.CrossEncoderReranker.Rerank: %w", err)
		}

		rerankScore, ok := parseScore(resp.Text)
		if !ok {
			continue
		}
		out[i].Score = 0.3*out[i].Score + 0.7*rerankScore
	}
	return out, nil
}

func parseScore(text string) (float64, bool) {
	trimmed := strings.TrimSpace(text)
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v, true
}

// BM25Fallback is a simple term-overlap scorer used when reranking is
// enabled but no cross-encoder is installed. This deliberately-simple
// scoring is hand-rolled over the standard library rather than pulled
// in from a dependency.
type BM25Fallback struct{}

func (BM25Fallback) Rerank(ctx context.Context, query string, candidates []SearchResult) ([]SearchResult, error) {
	queryTerms := tokenize(query)
	out := make([]SearchResult, len(candidates))
	copy(out, candidates)

	for i, c := range out {
		overlap := overlapScore(queryTerms, tokenize(c.Content))
		out[i].Score = 0.3*out[i].Score + 0.7*overlap
	}
	return out, nil
}

func tokenize(s string) map[string]struct{} {
	set := map[string]struct{}{}
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			set[strings.ToLower(string(cur))] = struct{}{}
			cur = cur[:0]
		}
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur = append(cur, r)
		} else {
			flush()
		}
	}
	flush()
	return set
}

func overlapScore(query, content map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	hits := 0
	for t := range query {
		if _, ok := content[t]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(query))
}
