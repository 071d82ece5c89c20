package retrieval

import (
	"fmt"
	"math"
	"strings"
	"sync"
)

// TermSource tags where an expanded term came from.
type TermSource string

const (
	TermOriginal        TermSource = "original"
	TermSynonym         TermSource = "synonym"
	TermTransliteration TermSource = "transliteration"
	TermDomain          TermSource = "domain"
)

// WeightedTerm is one term in an expanded query, carrying its retrieval
// boost and provenance.
type WeightedTerm struct {
	Term   string
	Weight float64
	Source TermSource
}

// ExpandedQuery is the result of expanding one raw query string.
type ExpandedQuery struct {
	Original    string
	Terms       []WeightedTerm
	WasExpanded bool
}

// Serialize renders the expanded query as a term list with inline
// weights ("term^weight"), omitting the suffix for unit-weight terms.
func (q ExpandedQuery) Serialize() string {
	parts := make([]string, 0, len(q.Terms))
	for _, t := range q.Terms {
		if math.Abs(t.Weight-1.0) < 0.01 {
			parts = append(parts, t.Term)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s^%.1f", t.Term, t.Weight))
	}
	return strings.Join(parts, " ")
}

// ExpanderConfig tunes StaticExpander's behavior.
type ExpanderConfig struct {
	EnableSynonyms        bool
	EnableTransliteration bool
	MaxExpansionsPerTerm  int
	OriginalTermBoost     float64
}

// DefaultExpanderConfig returns conservative query-expansion defaults.
func DefaultExpanderConfig() ExpanderConfig {
	return ExpanderConfig{
		EnableSynonyms:        true,
		EnableTransliteration: true,
		MaxExpansionsPerTerm:  3,
		OriginalTermBoost:     2.0,
	}
}

// Expander expands a raw query into weighted terms.
type Expander interface {
	Expand(query string) ExpandedQuery
}

// StaticExpander expands queries against fixed domain-synonym,
// transliteration, and multi-word-domain-term dictionaries: original
// terms carry OriginalTermBoost, synonyms carry 1.0, transliterations
// 0.8, domain-phrase expansions 0.9.
type StaticExpander struct {
	mu               sync.RWMutex
	cfg              ExpanderConfig
	synonyms         map[string][]string
	transliterations map[string][]string
	domainTerms      map[string][]string
}

// NewStaticExpander builds an expander over the given dictionaries.
func NewStaticExpander(cfg ExpanderConfig, synonyms, transliterations, domainTerms map[string][]string) *StaticExpander {
	return &StaticExpander{cfg: cfg, synonyms: synonyms, transliterations: transliterations, domainTerms: domainTerms}
}

// NewGoldLoanExpander builds a StaticExpander preloaded with the
// gold-loan domain dictionaries.
func NewGoldLoanExpander() *StaticExpander {
	return NewStaticExpander(DefaultExpanderConfig(), goldLoanSynonyms(), goldLoanTransliterations(), goldLoanDomainTerms())
}

func (e *StaticExpander) Expand(query string) ExpandedQuery {
	e.mu.RLock()
	defer e.mu.RUnlock()

	lower := strings.ToLower(query)
	words := strings.Fields(lower)

	var terms []WeightedTerm
	contains := func(term string) bool {
		for _, t := range terms {
			if t.Term == term {
				return true
			}
		}
		return false
	}

	for _, w := range words {
		terms = append(terms, WeightedTerm{Term: w, Weight: e.cfg.OriginalTermBoost, Source: TermOriginal})
	}

	expandedCount := 0

	if e.cfg.EnableSynonyms {
		for _, w := range words {
			for i, syn := range e.synonyms[w] {
				if i >= e.cfg.MaxExpansionsPerTerm {
					break
				}
				if contains(syn) {
					continue
				}
				terms = append(terms, WeightedTerm{Term: syn, Weight: 1.0, Source: TermSynonym})
				expandedCount++
			}
		}
	}

	if e.cfg.EnableTransliteration {
		for _, w := range words {
			for i, tr := range e.transliterations[w] {
				if i >= e.cfg.MaxExpansionsPerTerm {
					break
				}
				if contains(tr) {
					continue
				}
				terms = append(terms, WeightedTerm{Term: tr, Weight: 0.8, Source: TermTransliteration})
				expandedCount++
			}
		}
	}

	for pattern, expansions := range e.domainTerms {
		if !strings.Contains(lower, pattern) {
			continue
		}
		for i, exp := range expansions {
			if i >= e.cfg.MaxExpansionsPerTerm {
				break
			}
			if contains(exp) {
				continue
			}
			terms = append(terms, WeightedTerm{Term: exp, Weight: 0.9, Source: TermDomain})
			expandedCount++
		}
	}

	return ExpandedQuery{Original: query, Terms: terms, WasExpanded: expandedCount > 0}
}

func goldLoanSynonyms() map[string][]string {
	return map[string][]string{
		"interest":    {"rate", "byaj", "sud"},
		"rate":        {"interest", "percentage", "dar"},
		"byaj":        {"interest", "sud", "rate"},
		"loan":        {"karza", "rin", "udhar", "credit"},
		"karza":       {"loan", "rin", "udhar"},
		"gold":        {"sona", "swarna", "jewelry", "jewellery"},
		"sona":        {"gold", "swarna"},
		"eligibility": {"patrta", "qualification", "criteria"},
		"eligible":    {"patr", "qualified", "qualify"},
		"amount":      {"rashi", "paisa", "money", "sum"},
		"lakh":        {"lac", "100000"},
		"crore":       {"cr", "10000000"},
		"apply":       {"aavedan", "application", "request"},
		"document":    {"dastavez", "papers", "kagaz"},
		"disburse":    {"vitrit", "release", "sanction"},
		"purity":      {"shudhta", "karat", "carat", "fineness"},
		"weight":      {"vajan", "gram", "tola"},
		"hallmark":    {"certified", "bis", "standard"},
		"customer":    {"grahak", "client", "applicant"},
		"account":     {"khata", "savings", "current"},
		"muthoot":     {"muthut", "muthoot finance"},
		"manappuram":  {"manapuram", "manappuram finance"},
		"emi":         {"installment", "kist", "monthly payment"},
		"repay":       {"chukana", "payment", "return"},
		"prepay":      {"prepayment", "early payment", "foreclosure"},
	}
}

func goldLoanTransliterations() map[string][]string {
	return map[string][]string{
		"सोना":    {"sona", "gold"},
		"ब्याज":   {"byaj", "interest"},
		"दर":      {"dar", "rate"},
		"कर्ज़ा":   {"karza", "loan"},
		"पात्रता":  {"patrta", "eligibility"},
		"राशि":    {"rashi", "amount"},
		"आवेदन":   {"aavedan", "apply"},
		"दस्तावेज़": {"dastavez", "document"},
		"ग्राहक":   {"grahak", "customer"},
		"खाता":    {"khata", "account"},
		"किस्त":    {"kist", "emi"},
		"शुद्धता":  {"shudhta", "purity"},
		"वजन":     {"vajan", "weight"},
		"sona":    {"सोना", "gold"},
		"byaj":    {"ब्याज", "interest"},
		"karza":   {"कर्ज़ा", "loan"},
		"patrta":  {"पात्रता", "eligibility"},
	}
}

func goldLoanDomainTerms() map[string][]string {
	return map[string][]string{
		"gold loan":            {"sona loan", "gold karza", "jewel loan"},
		"interest rate":        {"byaj dar", "rate of interest", "loan rate"},
		"eligibility criteria": {"patrta", "who can apply", "requirements"},
		"loan amount":          {"kitna milega", "how much", "maximum loan"},
		"processing fee":       {"charges", "fees", "cost"},
		"repayment":            {"chukana", "pay back", "return loan"},
		"kya hai":              {"what is", "क्या है"},
		"kitna hai":            {"how much", "कितना है"},
		"kaise":                {"how to", "कैसे"},
		"kahan":                {"where", "कहाँ"},
	}
}
