package search

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxSuggestions caps the suggestion list.
const DefaultMaxSuggestions = 5

// advancedTriggers make a query eligible for the "<query> advanced" suggestion.
var advancedTriggers = []string{"security", "protection"}

// Suggester derives follow-up queries from the current query.
type Suggester struct {
	max int
}

// NewSuggester creates a Suggester returning at most max suggestions (default 5).
func NewSuggester(max int) *Suggester {
	if max <= 0 {
		max = DefaultMaxSuggestions
	}
	return &Suggester{max: max}
}

// Suggest returns, in order and without duplicates: category filters and tag
// filters containing the query, recent queries containing it (but not equal
// to it), and "<query> advanced" for security or protection queries.
// Queries shorter than two runes get no suggestions.
func (s *Suggester) Suggest(query string, recent, categories, tags []string) []string {
	if utf8.RuneCountInString(query) < 2 {
		return nil
	}
	q := strings.ToLower(query)

	seen := make(map[string]struct{})
	var out []string
	add := func(v string) bool {
		if _, ok := seen[v]; ok {
			return len(out) < s.max
		}
		seen[v] = struct{}{}
		out = append(out, v)
		return len(out) < s.max
	}

	for _, c := range categories {
		if strings.Contains(strings.ToLower(c), q) && !add("category:"+c) {
			return out
		}
	}
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), q) && !add("tag:"+t) {
			return out
		}
	}
	for _, r := range recent {
		if r != query && strings.Contains(strings.ToLower(r), q) && !add(r) {
			return out
		}
	}
	for _, trigger := range advancedTriggers {
		if strings.Contains(query, trigger) {
			add(query + " advanced")
			break
		}
	}
	return out
}
