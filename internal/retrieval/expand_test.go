package retrieval

import "testing"

func TestStaticExpander_OriginalTermsBoosted(t *testing.T) {
	e := NewGoldLoanExpander()
	eq := e.Expand("gold loan")

	var sawOriginal bool
	for _, t2 := range eq.Terms {
		if t2.Source == TermOriginal && t2.Weight != 2.0 {
			t.Errorf("original term %q weight = %v, want 2.0", t2.Term, t2.Weight)
		}
		if t2.Source == TermOriginal {
			sawOriginal = true
		}
	}
	if !sawOriginal {
		t.Fatal("expected original terms in expansion")
	}
}

func TestStaticExpander_SynonymExpansion(t *testing.T) {
	e := NewGoldLoanExpander()
	eq := e.Expand("interest rate")

	found := false
	for _, t2 := range eq.Terms {
		if t2.Term == "byaj" && t2.Source == TermSynonym && t2.Weight == 1.0 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected byaj synonym at weight 1.0")
	}
	if !eq.WasExpanded {
		t.Error("expected WasExpanded=true")
	}
}

func TestStaticExpander_TransliterationExpansion(t *testing.T) {
	e := NewGoldLoanExpander()
	eq := e.Expand("sona")

	found := false
	for _, t2 := range eq.Terms {
		if t2.Term == "सोना" && t2.Source == TermTransliteration && t2.Weight == 0.8 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected सोना transliteration at weight 0.8")
	}
}

func TestStaticExpander_DomainPhraseExpansion(t *testing.T) {
	e := NewGoldLoanExpander()
	eq := e.Expand("what is the gold loan interest rate")

	found := false
	for _, t2 := range eq.Terms {
		if t2.Source == TermDomain && t2.Weight == 0.9 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected at least one domain-phrase expansion")
	}
}

func TestStaticExpander_NoDuplicateTerms(t *testing.T) {
	e := NewGoldLoanExpander()
	eq := e.Expand("loan loan interest")

	seen := map[string]int{}
	for _, t2 := range eq.Terms {
		seen[t2.Term]++
	}
	for term, count := range seen {
		if count > 1 && term != "loan" {
			// "loan" appears twice as an original term (query had it twice);
			// every other term must be deduplicated against prior expansions.
			t.Errorf("term %q appeared %d times, want deduplicated expansions", term, count)
		}
	}
}

func TestExpandedQuery_SerializeFormatsWeights(t *testing.T) {
	eq := ExpandedQuery{Terms: []WeightedTerm{
		{Term: "loan", Weight: 2.0},
		{Term: "rin", Weight: 1.0},
		{Term: "karza", Weight: 0.8},
	}}
	got := eq.Serialize()
	want := "loan^2.0 rin karza^0.8"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
