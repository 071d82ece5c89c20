package retrieval

import (
	"context"
	"testing"

	"github.com/vaak-ai/voxengine/internal/llm"
)

type scoringModel struct {
	score string
}

func (m *scoringModel) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	return llm.Response{Text: m.score}, nil
}
func (m *scoringModel) StreamCompletion(ctx context.Context, req llm.Request) (<-chan llm.Chunk, error) {
	return nil, nil
}
func (m *scoringModel) CountTokens(text string) int    { return len(text) / 4 }
func (m *scoringModel) Capabilities() llm.Capabilities { return llm.Capabilities{} }
func (m *scoringModel) Name() string                   { return "scoring" }

func TestCrossEncoderReranker_BlendsScores(t *testing.T) {
	r := NewCrossEncoderReranker(&scoringModel{score: "1.0"})
	candidates := []SearchResult{{ID: "a", Score: 0.2}}

	out, err := r.Rerank(context.Background(), "gold loan", candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 0.3*0.2 + 0.7*1.0
	if out[0].Score != want {
		t.Errorf("score = %v, want %v", out[0].Score, want)
	}
}

func TestCrossEncoderReranker_SkipsUnparseableScore(t *testing.T) {
	r := NewCrossEncoderReranker(&scoringModel{score: "not a number"})
	candidates := []SearchResult{{ID: "a", Score: 0.5}}

	out, err := r.Rerank(context.Background(), "gold loan", candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].Score != 0.5 {
		t.Errorf("score = %v, want unchanged 0.5", out[0].Score)
	}
}

func TestBM25Fallback_ScoresByOverlap(t *testing.T) {
	var f BM25Fallback
	candidates := []SearchResult{
		{ID: "match", Score: 0, Content: "gold loan interest rate details"},
		{ID: "nomatch", Score: 0, Content: "completely unrelated text"},
	}
	out, err := f.Rerank(context.Background(), "gold loan rate", candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].Score <= out[1].Score {
		t.Errorf("expected matching content to score higher: %+v", out)
	}
}
