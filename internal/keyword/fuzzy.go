package keyword

import (
	"strings"
	"unicode/utf8"
)

// DefaultFuzzyThreshold is the maximum edit distance at which two words still match.
const DefaultFuzzyThreshold = 2

// shortQueryLen is the rune length at or below which queries must match as substrings.
const shortQueryLen = 2

// FuzzyMatch reports whether text matches query allowing typos and partial words.
// An empty query always matches. Queries of at most two runes require a
// case-insensitive substring match. Longer queries match when any query word is
// contained in, contains, or is within threshold edits of any text word.
// A threshold <= 0 uses DefaultFuzzyThreshold.
func FuzzyMatch(text, query string, threshold int) bool {
	if query == "" {
		return true
	}
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}

	textLower := strings.ToLower(text)
	queryLower := strings.ToLower(query)
	if utf8.RuneCountInString(query) <= shortQueryLen {
		return strings.Contains(textLower, queryLower)
	}

	words := strings.Fields(textLower)
	for _, qw := range strings.Fields(queryLower) {
		for _, w := range words {
			if strings.Contains(w, qw) || strings.Contains(qw, w) {
				return true
			}
			if EditDistance(w, qw) <= threshold {
				return true
			}
		}
	}
	return false
}

// FuzzyMatchAny reports whether query fuzzy-matches any of the given texts.
func FuzzyMatchAny(query string, threshold int, texts ...string) bool {
	for _, t := range texts {
		if FuzzyMatch(t, query, threshold) {
			return true
		}
	}
	return false
}
