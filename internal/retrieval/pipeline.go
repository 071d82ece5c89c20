package retrieval

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/vaak-ai/voxengine/internal/retrieval/sparseindex"
	"github.com/vaak-ai/voxengine/internal/retrieval/vectorstore"
	"github.com/vaak-ai/voxengine/internal/voxerr"
)

// Config tunes the hybrid retriever's stage parameters.
type Config struct {
	DenseTopK                   int
	SparseTopK                  int
	FinalTopK                   int
	MinScore                    float64
	DenseWeight                 float64
	RRFK                        int
	RerankEnabled               bool
	PrefetchConfidenceThreshold float64
	PrefetchTopK                int
}

// DefaultConfig mirrors the retriever's stated defaults.
func DefaultConfig() Config {
	return Config{
		DenseTopK:                   20,
		SparseTopK:                  20,
		FinalTopK:                   5,
		MinScore:                    0.0,
		DenseWeight:                 0.5,
		RRFK:                        DefaultRRFK,
		RerankEnabled:               true,
		PrefetchConfidenceThreshold: 0.6,
		PrefetchTopK:                3,
	}
}

// HybridRetriever orchestrates expand -> parallel dense+sparse search ->
// RRF fusion -> rerank -> truncate. Either backend may be nil; search
// degrades silently to the other source in that case.
type HybridRetriever struct {
	dense    vectorstore.Store
	sparse   sparseindex.Index
	expander Expander // optional; nil skips query expansion
	reranker Reranker // optional; nil skips reranking even if cfg.RerankEnabled
	cfg      Config
}

// New builds a HybridRetriever. dense and sparse may be nil (absent
// backend); expander and reranker may be nil (stage skipped).
func New(dense vectorstore.Store, sparse sparseindex.Index, expander Expander, reranker Reranker, cfg Config) *HybridRetriever {
	return &HybridRetriever{dense: dense, sparse: sparse, expander: expander, reranker: reranker, cfg: cfg}
}

// Search runs the full hybrid pipeline for query under an optional
// metadata filter, returning at most cfg.FinalTopK results.
func (h *HybridRetriever) Search(ctx context.Context, query string, filter Filter) ([]SearchResult, error) {
	if h.dense == nil && h.sparse == nil {
		return nil, voxerr.Newf(voxerr.BackendUnavailable, "retrieval.Search", "no backend configured")
	}

	searchQuery := query
	if h.expander != nil {
		searchQuery = h.expander.Expand(query).Serialize()
	}

	dense, sparse, err := h.parallelSearch(ctx, searchQuery, filter)
	if err != nil {
		return nil, err
	}

	fused := fuseRRF(dense, sparse, h.cfg.DenseWeight, h.cfg.RRFK)

	if h.cfg.RerankEnabled && h.reranker != nil {
		fused, err = h.reranker.Rerank(ctx, query, fused)
		if err != nil {
			return nil, voxerr.New(voxerr.Internal, "retrieval.Search.rerank", err)
		}
		resortByScore(fused)
	}

	return truncate(fused, h.cfg.MinScore, h.cfg.FinalTopK), nil
}

// parallelSearch runs the dense and sparse arms concurrently. A present
// backend that errors degrades to an empty result for that arm UNLESS
// both configured backends error, in which case the slower arm's error
// is returned.
func (h *HybridRetriever) parallelSearch(ctx context.Context, query string, filter Filter) ([]rankedHit, []rankedHit, error) {
	var (
		denseHits, sparseHits []rankedHit
		denseErr, sparseErr   error
		lastErr               error // error of whichever arm failed last
		mu                    sync.Mutex
	)

	g, gctx := errgroup.WithContext(ctx)

	if h.dense != nil {
		g.Go(func() error {
			hits, err := h.dense.Search(gctx, vectorstore.SearchRequest{
				Query: query, TopK: h.cfg.DenseTopK, Filter: map[string]string(filter),
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				denseErr = err
				lastErr = err
				return nil
			}
			for _, hit := range hits {
				denseHits = append(denseHits, rankedHit{ID: hit.ID, Content: hit.Content, Metadata: hit.Metadata})
			}
			return nil
		})
	}

	if h.sparse != nil {
		g.Go(func() error {
			hits, err := h.sparse.Search(gctx, sparseindex.SearchRequest{
				Query: query, TopK: h.cfg.SparseTopK, Filter: map[string]string(filter),
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				sparseErr = err
				lastErr = err
				return nil
			}
			for _, hit := range hits {
				sparseHits = append(sparseHits, rankedHit{ID: hit.ID, Content: hit.Content, Metadata: hit.Metadata})
			}
			return nil
		})
	}

	_ = g.Wait() // arm goroutines never return a non-nil error; failures are captured above

	denseAbsent := h.dense == nil
	sparseAbsent := h.sparse == nil

	if !denseAbsent && !sparseAbsent && denseErr != nil && sparseErr != nil {
		return nil, nil, voxerr.New(voxerr.BackendUnavailable, "retrieval.parallelSearch", lastErr)
	}
	return denseHits, sparseHits, nil
}

func resortByScore(results []SearchResult) {
	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && results[j].Score > results[j-1].Score; j-- {
			results[j], results[j-1] = results[j-1], results[j]
		}
	}
}

func truncate(results []SearchResult, minScore float64, topK int) []SearchResult {
	out := make([]SearchResult, 0, topK)
	for _, r := range results {
		if r.Score < minScore {
			continue
		}
		out = append(out, r)
		if len(out) >= topK {
			break
		}
	}
	return out
}

// Prefetch implements the prefetch contract: given a partial
// transcript and confidence c, if c is at or above the configured
// threshold, extract up to 5 stopword-filtered keywords (len > 2) and
// run a dense-only search scaled by c. Returns empty on any failure.
func (h *HybridRetriever) Prefetch(ctx context.Context, partialTranscript string, confidence float64) []SearchResult {
	if confidence < h.cfg.PrefetchConfidenceThreshold || h.dense == nil {
		return nil
	}

	keywords := extractKeywords(partialTranscript, 5)
	if len(keywords) == 0 {
		return nil
	}

	hits, err := h.dense.Search(ctx, vectorstore.SearchRequest{
		Query: strings.Join(keywords, " "),
		TopK:  h.cfg.PrefetchTopK,
	})
	if err != nil {
		return nil
	}

	out := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		out = append(out, SearchResult{
			ID: hit.ID, Content: hit.Content, Score: hit.Score * confidence,
			Metadata: hit.Metadata, Source: SourceDense,
		})
	}
	return out
}

var prefetchStopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"to": {}, "of": {}, "in": {}, "for": {}, "on": {}, "with": {}, "at": {},
	"and": {}, "but": {}, "or": {}, "please": {}, "want": {}, "tell": {}, "know": {},
	"hai": {}, "hain": {}, "ka": {}, "ki": {}, "ke": {}, "ko": {}, "se": {}, "mein": {},
	"aur": {}, "kya": {}, "kaise": {}, "chahiye": {},
}

// extractKeywords returns up to max lowercase words from text with
// length > 2 that are not in prefetchStopwords, in order of appearance.
func extractKeywords(text string, max int) []string {
	var out []string
	var cur []rune
	flush := func() {
		if len(cur) == 0 {
			return
		}
		word := strings.ToLower(string(cur))
		cur = cur[:0]
		if len([]rune(word)) <= 2 {
			return
		}
		if _, stop := prefetchStopwords[word]; stop {
			return
		}
		out = append(out, word)
	}
	for _, r := range text {
		if len(out) >= max {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur = append(cur, r)
		} else {
			flush()
		}
	}
	if len(out) < max {
		flush()
	}
	if len(out) > max {
		out = out[:max]
	}
	return out
}
