// Package sparseindex defines the sparse/full-text search backend used by
// the hybrid retriever, with a PostgreSQL tsvector/ts_rank adapter.
// Postgres full-text search is used here over a hand-rolled index or a
// dedicated full-text engine, via jackc/pgx/v5 (pgxpool.Pool +
// pgx.CollectRows).
package sparseindex

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vaak-ai/voxengine/internal/voxerr"
)

// SearchRequest specifies one sparse full-text search.
type SearchRequest struct {
	Query  string
	TopK   int
	Filter map[string]string
}

// Hit is one sparse-search result prior to fusion.
type Hit struct {
	ID       string
	Content  string
	Score    float64
	Metadata map[string]string
}

// Index performs term-frequency ranked search. A nil Index is a valid
// "absent backend": callers must treat that as an empty result set, not
// a failure.
type Index interface {
	Search(ctx context.Context, req SearchRequest) ([]Hit, error)
}

// PostgresIndex ranks rows of a documents table by ts_rank against a
// plainto_tsquery built from the request query.
type PostgresIndex struct {
	pool  *pgxpool.Pool
	table string // table with (id text, content text, metadata jsonb, search_vector tsvector)
}

// NewPostgresIndex wraps an existing pool for full-text search over table.
func NewPostgresIndex(pool *pgxpool.Pool, table string) *PostgresIndex {
	return &PostgresIndex{pool: pool, table: table}
}

type scannedRow struct {
	id       string
	content  string
	metadata map[string]string
	score    float64
}

func (p *PostgresIndex) Search(ctx context.Context, req SearchRequest) ([]Hit, error) {
	topK := req.TopK
	if topK <= 0 {
		topK = 5
	}

	args := []any{req.Query}
	where := "search_vector @@ plainto_tsquery('simple', $1)"
	for k, v := range req.Filter {
		args = append(args, k, v)
		where += fmt.Sprintf(" AND metadata ->> $%d = $%d", len(args)-1, len(args))
	}
	args = append(args, topK)

	q := fmt.Sprintf(`
		SELECT id, content, metadata, ts_rank(search_vector, plainto_tsquery('simple', $1)) AS score
		FROM %s
		WHERE %s
		ORDER BY score DESC
		LIMIT $%d`, p.table, where, len(args))

	rows, err := p.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, voxerr.New(voxerr.BackendUnavailable, "sparseindex.PostgresIndex.Search", err)
	}

	scanned, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (scannedRow, error) {
		var (
			r        scannedRow
			metadata map[string]string
		)
		if err := row.Scan(&r.id, &r.content, &metadata, &r.score); err != nil {
			return scannedRow{}, err
		}
		r.metadata = metadata
		return r, nil
	})
	if err != nil {
		return nil, voxerr.New(voxerr.Internal, "sparseindex.PostgresIndex.Search.scan", err)
	}

	hits := make([]Hit, 0, len(scanned))
	for _, r := range scanned {
		hits = append(hits, Hit{ID: r.id, Content: r.content, Score: r.score, Metadata: r.metadata})
	}
	return hits, nil
}
