// Package ranking scores catalog candidates against query terms and parses filter commands.
package ranking

import (
	"regexp"
	"strings"

	"github.com/devansh3112/product-harmony-sphere/internal/models"
)

// ScoringInput is the subset of a candidate the scorer reads.
// Empty optional fields contribute nothing.
type ScoringInput struct {
	Title       string
	Description string
	Category    string
	Tags        []string
}

// InputFromCandidate extracts the scored fields of a candidate.
func InputFromCandidate(c *models.Candidate) ScoringInput {
	return ScoringInput{
		Title:       c.Title,
		Description: c.Description,
		Category:    c.Category,
		Tags:        c.Tags,
	}
}

// Term is a lower-cased query term with its word-boundary matcher.
type Term struct {
	Text     string
	boundary *regexp.Regexp
}

// NewTerm lower-cases text and compiles its word-boundary pattern.
// The term is quoted so punctuation such as "c++" matches literally.
func NewTerm(text string) Term {
	text = strings.ToLower(text)
	return Term{
		Text:     text,
		boundary: regexp.MustCompile(`\b` + regexp.QuoteMeta(text) + `\b`),
	}
}

// PrepareTerms converts raw terms, dropping empty ones.
func PrepareTerms(terms []string) []Term {
	out := make([]Term, 0, len(terms))
	for _, t := range terms {
		if t == "" {
			continue
		}
		out = append(out, NewTerm(t))
	}
	return out
}

// QueryTerms splits a main query into lower-cased scoring terms.
func QueryTerms(mainQuery string) []string {
	return strings.Fields(strings.ToLower(mainQuery))
}

// HighlightTerms returns the query terms worth emphasizing: words longer than one rune.
func HighlightTerms(mainQuery string) []string {
	var out []string
	for _, w := range QueryTerms(mainQuery) {
		if len([]rune(w)) > 1 {
			out = append(out, w)
		}
	}
	return out
}
