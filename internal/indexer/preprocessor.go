package indexer

import (
	"strings"
	"unicode"

	"github.com/devansh3112/product-harmony-sphere/internal/models"
)

// Preprocess normalizes text for indexing (trim, collapse whitespace).
func Preprocess(text string) string {
	text = strings.TrimSpace(text)
	var b strings.Builder
	wasSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !wasSpace {
				b.WriteRune(' ')
				wasSpace = true
			}
		} else {
			b.WriteRune(r)
			wasSpace = false
		}
	}
	return b.String()
}

// Normalize returns c with whitespace collapsed in its text fields and blank or
// repeated tags removed. Tag case is preserved.
func Normalize(c models.Candidate) models.Candidate {
	c = c.Clone()
	c.ID = strings.TrimSpace(c.ID)
	c.Title = Preprocess(c.Title)
	c.Description = Preprocess(c.Description)
	c.Category = Preprocess(c.Category)
	c.URL = strings.TrimSpace(c.URL)
	if len(c.Tags) == 0 {
		c.Tags = nil
		return c
	}
	seen := make(map[string]bool, len(c.Tags))
	tags := c.Tags[:0]
	for _, t := range c.Tags {
		t = Preprocess(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	if len(tags) == 0 {
		tags = nil
	}
	c.Tags = tags
	return c
}
