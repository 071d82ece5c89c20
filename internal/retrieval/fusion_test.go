package retrieval

import "testing"

func TestFuseRRF_HybridSourceWhenInBoth(t *testing.T) {
	dense := []rankedHit{{ID: "a", Content: "dense a"}, {ID: "b", Content: "dense b"}}
	sparse := []rankedHit{{ID: "a", Content: "sparse a"}, {ID: "c", Content: "sparse c"}}

	results := fuseRRF(dense, sparse, 0.5, 60)

	byID := map[string]SearchResult{}
	for _, r := range results {
		byID[r.ID] = r
	}
	if byID["a"].Source != SourceHybrid {
		t.Errorf("a source = %v, want hybrid", byID["a"].Source)
	}
	if byID["b"].Source != SourceDense {
		t.Errorf("b source = %v, want dense", byID["b"].Source)
	}
	if byID["c"].Source != SourceSparse {
		t.Errorf("c source = %v, want sparse", byID["c"].Source)
	}
}

func TestFuseRRF_HigherRankScoresHigher(t *testing.T) {
	dense := []rankedHit{{ID: "first"}, {ID: "second"}, {ID: "third"}}
	results := fuseRRF(dense, nil, 1.0, 60)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].ID != "first" || results[1].ID != "second" || results[2].ID != "third" {
		t.Errorf("order not preserved by score: %+v", results)
	}
}

func TestFuseRRF_WeightSplitHonored(t *testing.T) {
	dense := []rankedHit{{ID: "d"}}
	sparse := []rankedHit{{ID: "s"}}

	allDense := fuseRRF(dense, sparse, 1.0, 60)
	byID := map[string]SearchResult{}
	for _, r := range allDense {
		byID[r.ID] = r
	}
	if byID["s"].Score != 0 {
		t.Errorf("sparse score = %v, want 0 when denseWeight=1.0", byID["s"].Score)
	}
	if byID["d"].Score <= 0 {
		t.Errorf("dense score = %v, want > 0", byID["d"].Score)
	}
}

func TestTruncate_DropsBelowMinScoreAndCapsTopK(t *testing.T) {
	results := []SearchResult{
		{ID: "a", Score: 0.9},
		{ID: "b", Score: 0.1},
		{ID: "c", Score: 0.5},
	}
	got := truncate(results, 0.3, 1)
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("got %+v", got)
	}
}
