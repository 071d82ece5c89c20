package retrieval

import "sort"

// DefaultRRFK is the default Reciprocal Rank Fusion smoothing constant.
const DefaultRRFK = 60

// fuseRRF combines ranked dense and sparse hit lists into one scored
// candidate set. For a result at rank r (0-based) from source s with
// source-weight w_s, it contributes w_s / (rrfK + r + 1) to that
// candidate's accumulated score; a candidate appearing in both lists
// accumulates both contributions and is tagged SourceHybrid.
func fuseRRF(dense, sparse []rankedHit, denseWeight float64, rrfK int) []SearchResult {
	if rrfK <= 0 {
		rrfK = DefaultRRFK
	}
	sparseWeight := 1 - denseWeight

	type accum struct {
		result     SearchResult
		fromDense  bool
		fromSparse bool
	}
	byID := map[string]*accum{}
	order := []string{}

	add := func(hits []rankedHit, weight float64, source SourceTag) {
		for r, h := range hits {
			contribution := weight / float64(rrfK+r+1)
			a, ok := byID[h.ID]
			if !ok {
				a = &accum{result: SearchResult{ID: h.ID, Content: h.Content, Metadata: h.Metadata, Source: source}}
				byID[h.ID] = a
				order = append(order, h.ID)
			}
			a.result.Score += contribution
			if source == SourceDense {
				a.fromDense = true
			} else {
				a.fromSparse = true
			}
		}
	}

	add(dense, denseWeight, SourceDense)
	add(sparse, sparseWeight, SourceSparse)

	out := make([]SearchResult, 0, len(order))
	for _, id := range order {
		a := byID[id]
		if a.fromDense && a.fromSparse {
			a.result.Source = SourceHybrid
		}
		out = append(out, a.result)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// rankedHit is a source-agnostic shape fusion consumes, so dense and
// sparse Hit types (which differ by package) are normalized before
// fusion.
type rankedHit struct {
	ID       string
	Content  string
	Metadata map[string]string
}
