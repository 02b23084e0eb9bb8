package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"
)

// Command is a filter prefix offered by the palette.
type Command struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Prefix      string `json:"prefix"`
}

// DefaultCommands are the filter commands in Tab-completion order.
var DefaultCommands = []Command{
	{Name: "Category", Description: "Filter by product category", Prefix: FilterCategory + ":"},
	{Name: "Tag", Description: "Search for specific tags", Prefix: FilterTag + ":"},
	{Name: "Documentation", Description: "Search within documentation", Prefix: FilterDocs + ":"},
	{Name: "Feature", Description: "Search for specific features", Prefix: FilterFeature + ":"},
}

// TrendingSearches are shown while the palette has no query.
var TrendingSearches = []string{
	"endpoint security",
	"cloud protection",
	"data loss prevention",
	"threat detection",
}

// commandSource exposes command keys to sahilm/fuzzy.
type commandSource []Command

func (s commandSource) String(i int) string { return strings.TrimSuffix(s[i].Prefix, ":") }
func (s commandSource) Len() int            { return len(s) }

// CompleteCommand performs Tab completion. A partially typed command word
// ("cat", "fea") is replaced by its prefix; otherwise the first command whose
// prefix the query lacks is appended. It reports false when nothing changed.
func CompleteCommand(query string, commands []Command) (string, bool) {
	if query != "" && !endsWithSpace(query) {
		fields := strings.Fields(query)
		word := fields[len(fields)-1]
		if !strings.Contains(word, ":") && utf8.RuneCountInString(word) >= 2 {
			for _, m := range fuzzy.FindFrom(word, commandSource(commands)) {
				prefix := commands[m.Index].Prefix
				if len(m.MatchedIndexes) == 0 || m.MatchedIndexes[0] != 0 || strings.Contains(query, prefix) {
					continue
				}
				return strings.TrimSuffix(query, word) + prefix, true
			}
		}
	}

	for _, c := range commands {
		if strings.Contains(query, c.Prefix) {
			continue
		}
		if query == "" || endsWithSpace(query) {
			return query + c.Prefix, true
		}
		return query + " " + c.Prefix, true
	}
	return query, false
}

// Placeholder returns the input hint for the palette given recent queries, newest first.
func Placeholder(recent []string) string {
	if len(recent) > 0 {
		return `Search or try "` + recent[0] + `"...`
	}
	return "Search or type a command..."
}

func endsWithSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}
