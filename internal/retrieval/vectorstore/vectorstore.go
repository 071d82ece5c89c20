// Package vectorstore defines the dense-search backend interface used by
// the hybrid retriever. A full filter AST/lexer/parser is not carried
// over: this domain's metadata filters are conjunctive equality only,
// so a plain map[string]string replaces the boolean expression
// language.
package vectorstore

import "context"

// SearchRequest specifies one dense-similarity search.
type SearchRequest struct {
	Query    string
	TopK     int
	Filter   map[string]string
	MinScore float64
}

// Hit is one dense-search result prior to fusion.
type Hit struct {
	ID       string
	Content  string
	Score    float64
	Metadata map[string]string
}

// Embedder turns text into a dense vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store performs approximate nearest-neighbor search over embedded
// documents. A nil Store is a valid "absent backend": callers must treat
// that as an empty result set, not a failure, per the hybrid retriever's
// degrade-silently contract.
type Store interface {
	Search(ctx context.Context, req SearchRequest) ([]Hit, error)
}
