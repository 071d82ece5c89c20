package engine

import "strings"

// PhoneticCorrector applies a fixed domain-vocabulary substitution table
// to a raw ASR transcript before it reaches intent/slot extraction. It is
// intentionally not a general phonetic model: just the known mishearings
// a domain vocabulary can enumerate up front (lender names, gold-loan
// terms) -- post-ASR text normalization from a domain vocabulary.
type PhoneticCorrector struct {
	corrections map[string]string // lowercase mishearing -> canonical term
}

// NewPhoneticCorrector builds a corrector from a mishearing->canonical
// map. A nil or empty map is valid and makes Correct a no-op.
func NewPhoneticCorrector(corrections map[string]string) *PhoneticCorrector {
	lowered := make(map[string]string, len(corrections))
	for k, v := range corrections {
		lowered[strings.ToLower(k)] = v
	}
	return &PhoneticCorrector{corrections: lowered}
}

// DefaultPhoneticCorrector seeds the corrector with the gold-loan
// mishearings most likely to appear in ASR output for this domain.
func DefaultPhoneticCorrector() *PhoneticCorrector {
	return NewPhoneticCorrector(map[string]string{
		"mutton finance": "Muthoot Finance",
		"muthu finance":  "Muthoot Finance",
		"manapuram":      "Manappuram",
		"mana puram":     "Manappuram",
		"gold lone":      "gold loan",
		"for closure":    "foreclosure",
		"for close":      "foreclose",
		"emi calculater": "EMI calculator",
	})
}

// Correct rewrites every occurrence of a known mishearing in text with
// its canonical term, case-insensitively, preserving the rest of text
// unchanged. Returns text unmodified if nothing matched.
func (c *PhoneticCorrector) Correct(text string) string {
	if c == nil || len(c.corrections) == 0 || text == "" {
		return text
	}

	out := text
	for {
		lower := strings.ToLower(out)
		replacedAny := false
		for mishearing, canonical := range c.corrections {
			idx := strings.Index(lower, mishearing)
			if idx < 0 {
				continue
			}
			out = out[:idx] + canonical + out[idx+len(mishearing):]
			replacedAny = true
			break
		}
		if !replacedAny {
			return out
		}
	}
}
