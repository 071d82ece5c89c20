// Package retrieval implements the hybrid dense+sparse retriever: query
// expansion, parallel search across a vector store and a sparse index,
// Reciprocal Rank Fusion, and cross-encoder reranking with a BM25-like
// fallback.
//
// Pipeline shape (expand -> parallel retrieve -> fuse -> rerank ->
// truncate) uses an errgroup-based parallel fan-out across both search
// arms.
package retrieval

// Document is a retrievable unit of knowledge: stable id, text content,
// and flat string metadata used for conjunctive-equality filtering.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// SourceTag identifies which arm of the hybrid search produced a result.
type SourceTag string

const (
	SourceDense  SourceTag = "dense"
	SourceSparse SourceTag = "sparse"
	SourceHybrid SourceTag = "hybrid"
)

// SearchResult is one ranked candidate returned to a caller.
type SearchResult struct {
	ID              string
	Content         string
	Score           float64
	Metadata        map[string]string
	Source          SourceTag
	RerankExitLayer *int
}

// Filter is a conjunctive-equality metadata filter: a candidate matches
// iff every key present in Filter equals the candidate's metadata value.
type Filter map[string]string

func (f Filter) matches(metadata map[string]string) bool {
	for k, v := range f {
		if metadata[k] != v {
			return false
		}
	}
	return true
}
