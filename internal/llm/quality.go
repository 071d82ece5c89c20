package llm

import (
	"strings"
	"unicode"
)

// refusalMarkers are substrings whose presence in a response suggests the
// model declined or failed rather than answering, per the quality
// estimator heuristic.
var refusalMarkers = []string{"sorry", "cannot", "error", "invalid"}

// questionWords flag an utterance as interrogative for complexity scoring.
var questionWords = []string{"what", "why", "how", "when", "where", "which", "kya", "kaise", "kyu"}

// EstimateComplexity scores prompt text in [0,1]: longer prompts, multiple
// question marks, code-like punctuation runs, and question-word markers
// each push the score up. Used by SlmFirst mode to decide whether to skip
// the SLM entirely and route straight to the LLM.
func EstimateComplexity(text string) float64 {
	score := 0.0

	words := strings.Fields(text)
	switch {
	case len(words) > 80:
		score += 0.4
	case len(words) > 40:
		score += 0.25
	case len(words) > 20:
		score += 0.1
	}

	if qm := strings.Count(text, "?"); qm > 1 {
		score += 0.2
	}

	if strings.ContainsAny(text, "{}();") || strings.Contains(text, "```") {
		score += 0.3
	}

	lower := strings.ToLower(text)
	for _, w := range questionWords {
		if strings.Contains(lower, w) {
			score += 0.1
			break
		}
	}

	if score > 1 {
		score = 1
	}
	return score
}

// EstimateQuality scores a candidate response in [0,1] using a
// language-agnostic heuristic: start at 1.0, subtract 0.3 if the response
// is under 20 characters, subtract 0.4 if the unique-word ratio is below
// 0.5, and subtract 0.2 for each refusal marker found. Clamped to [0,1].
func EstimateQuality(text string) float64 {
	score := 1.0

	if len([]rune(text)) < 20 {
		score -= 0.3
	}

	if ratio := uniqueWordRatio(text); ratio < 0.5 {
		score -= 0.4
	}

	lower := strings.ToLower(text)
	for _, m := range refusalMarkers {
		if strings.Contains(lower, m) {
			score -= 0.2
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

// uniqueWordRatio returns the fraction of distinct words among all words
// in s (1.0 for an empty string, since there is nothing to penalize).
func uniqueWordRatio(s string) float64 {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) {
			cur = append(cur, unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()

	if len(words) == 0 {
		return 1.0
	}
	seen := map[string]struct{}{}
	for _, w := range words {
		seen[w] = struct{}{}
	}
	return float64(len(seen)) / float64(len(words))
}

// hasRefusalMarker reports whether text contains any refusal marker.
func hasRefusalMarker(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range refusalMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
