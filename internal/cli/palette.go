package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/devansh3112/product-harmony-sphere/internal/palette"
	"github.com/devansh3112/product-harmony-sphere/internal/search"
	"github.com/devansh3112/product-harmony-sphere/pkg/utils"
)

// maxRecentWords keeps long recent queries on one dialog line.
const maxRecentWords = 8

// WriteSnapshot renders the palette the way the dialog shows it.
func WriteSnapshot(w io.Writer, snap palette.Snapshot) {
	if !snap.Open {
		fmt.Fprintln(w, "(palette closed)")
		return
	}
	switch {
	case strings.TrimSpace(snap.Query) == "":
		fmt.Fprintf(w, "> %s\n", snap.Placeholder)
		if len(snap.Recent) > 0 {
			fmt.Fprintln(w, "Recent:")
			for _, e := range snap.Recent {
				fmt.Fprintf(w, "  %s\n", utils.TruncateWords(e.Query, maxRecentWords))
			}
		}
		if len(snap.Trending) > 0 {
			fmt.Fprintln(w, "Trending:")
			for _, q := range snap.Trending {
				fmt.Fprintf(w, "  %s\n", q)
			}
		}
		fmt.Fprintln(w, "Commands:")
		for _, c := range search.DefaultCommands {
			fmt.Fprintf(w, "  %-10s %s\n", c.Prefix, c.Description)
		}
	case snap.State == palette.Debouncing || snap.Loading():
		fmt.Fprintf(w, "> %s  (searching...)\n", snap.Query)
	case snap.Empty():
		fmt.Fprintf(w, "> %s\n", snap.Query)
		WriteEmptyState(w, snap.Query)
		writeSuggestions(w, snap.Suggestions)
	default:
		fmt.Fprintf(w, "> %s\n", snap.Query)
		for _, g := range snap.Groups {
			fmt.Fprintf(w, "%s\n", TypeLabel(g.Type))
			for _, r := range g.Results {
				fmt.Fprintf(w, "  [%d] %s", r.Position, search.RenderSegments(r.TitleSegments, search.MarkBold))
				if r.Candidate.Category != "" {
					fmt.Fprintf(w, "  (%s)", r.Candidate.Category)
				}
				fmt.Fprintln(w)
			}
		}
		writeSuggestions(w, snap.Suggestions)
	}
}
