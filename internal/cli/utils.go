// Package cli renders search results, palette state and history for the portfolio CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/devansh3112/product-harmony-sphere/internal/models"
	"github.com/devansh3112/product-harmony-sphere/internal/search"
	"github.com/devansh3112/product-harmony-sphere/pkg/utils"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text grouped by candidate type (default).
	OutputText SearchOutputFormat = "text"
	// OutputCompact is one result per line.
	OutputCompact SearchOutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

// ParseOutputFormat maps a flag value to a SearchOutputFormat.
func ParseOutputFormat(s string) (SearchOutputFormat, error) {
	switch SearchOutputFormat(s) {
	case OutputText, OutputCompact, OutputJSON:
		return SearchOutputFormat(s), nil
	case "":
		return OutputText, nil
	}
	return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
}

// SupportHint is shown under the empty state.
const SupportHint = "Clear the search to browse everything, or contact support to report a missing product."

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		writeSearchResultsCompact(w, response)
		return nil
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

// WriteEmptyState prints the no-results message for query.
func WriteEmptyState(w io.Writer, query string) {
	fmt.Fprintf(w, "No results found for %q\n", query)
	fmt.Fprintln(w, SupportHint)
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	if len(response.Results) == 0 {
		fmt.Fprintln(w)
		WriteEmptyState(w, response.Query)
		writeSuggestions(w, response.Suggestions)
		return
	}
	fmt.Fprintf(w, "\nFound %d results in %dms", response.Total, response.QueryTime)
	if len(response.Filters) > 0 {
		fmt.Fprintf(w, " (filters: %s)", response.Filters.Encode())
	}
	fmt.Fprint(w, "\n\n")
	for _, g := range response.Groups {
		fmt.Fprintf(w, "--- %s ---\n", TypeLabel(g.Type))
		for _, result := range g.Results {
			writeOneResult(w, result)
		}
	}
	if len(response.Results) < response.Total {
		fmt.Fprintf(w, "(showing %d of %d)\n", len(response.Results), response.Total)
	}
	writeSuggestions(w, response.Suggestions)
}

func writeOneResult(w io.Writer, result *models.SearchResult) {
	c := &result.Candidate
	fmt.Fprintf(w, "[%d] %s", result.Position+1, search.RenderSegments(result.TitleSegments, search.MarkBold))
	if c.Category != "" {
		fmt.Fprintf(w, "  (%s)", c.Category)
	}
	fmt.Fprintf(w, "  score %.2f\n", result.Score)
	if len(result.SnippetSegments) > 0 {
		fmt.Fprintf(w, "    %s\n", search.RenderSegments(result.SnippetSegments, search.MarkBold))
	}
	if len(c.Tags) > 0 {
		fmt.Fprintf(w, "    tags: %s\n", strings.Join(c.Tags, ", "))
	}
	fmt.Fprintf(w, "    %s\n", c.URL)
}

func writeSearchResultsCompact(w io.Writer, response *models.SearchResponse) {
	if len(response.Results) == 0 {
		WriteEmptyState(w, response.Query)
		return
	}
	for _, r := range response.Results {
		fmt.Fprintf(w, "%d\t%.2f\t%s\t%s\t%s\n",
			r.Position+1, r.Score, r.Candidate.Type, utils.Truncate(r.Candidate.Title, 60), r.Candidate.URL)
	}
}

func writeSuggestions(w io.Writer, suggestions []string) {
	if len(suggestions) == 0 {
		return
	}
	fmt.Fprintf(w, "\nTry: %s\n", strings.Join(suggestions, " | "))
}

// TypeLabel is the group heading for a candidate type.
func TypeLabel(t models.CandidateType) string {
	switch t {
	case models.TypeProduct:
		return "Products"
	case models.TypeCategory:
		return "Categories"
	case models.TypeDocumentation:
		return "Documentation"
	case models.TypeFeature:
		return "Features"
	}
	return string(t)
}

// WriteHistory prints recent searches, newest first.
func WriteHistory(w io.Writer, entries []models.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No recent searches")
		return
	}
	for i, e := range entries {
		ts := time.UnixMilli(e.Timestamp).Format(time.RFC3339)
		fmt.Fprintf(w, "%d. %s  (%s)\n", i+1, e.Query, ts)
	}
}

// PrintSearchResults prints search results to stdout in text format.
func PrintSearchResults(response *models.SearchResponse) {
	_ = WriteSearchResults(os.Stdout, response, OutputText)
}
