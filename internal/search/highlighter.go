package search

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/devansh3112/product-harmony-sphere/internal/models"
)

// DefaultSnippetLength is the snippet window in runes.
const DefaultSnippetLength = 150

const ellipsis = "..."

// Marker wraps matched text for rendering.
type Marker struct {
	Open  string
	Close string
}

var (
	// MarkTag renders matches as HTML <mark> elements.
	MarkTag = Marker{Open: "<mark>", Close: "</mark>"}
	// MarkBold renders matches as Markdown bold.
	MarkBold = Marker{Open: "**", Close: "**"}
)

// HighlightSegments splits text into matched and unmatched runs. Matching is
// case-insensitive, terms shorter than two runes are ignored, and longer terms
// claim text first so a shorter term never matches inside them.
func HighlightSegments(text string, terms []string) []models.Segment {
	if text == "" {
		return nil
	}
	needles := highlightNeedles(terms)
	if len(needles) == 0 {
		return []models.Segment{{Text: text}}
	}

	runes := []rune(text)
	lower := lowerRunes(runes)
	claimed := make([]bool, len(runes))
	for _, needle := range needles {
		for i := 0; i+len(needle) <= len(lower); {
			if hasPrefixAt(lower, needle, i) && !anyClaimed(claimed, i, i+len(needle)) {
				for j := i; j < i+len(needle); j++ {
					claimed[j] = true
				}
				i += len(needle)
				continue
			}
			i++
		}
	}

	var segments []models.Segment
	start := 0
	for i := 1; i <= len(runes); i++ {
		if i == len(runes) || claimed[i] != claimed[start] {
			segments = append(segments, models.Segment{Text: string(runes[start:i]), Match: claimed[start]})
			start = i
		}
	}
	return segments
}

// HighlightTerms wraps every match in marker. Text is returned unchanged
// when no term qualifies.
func HighlightTerms(text string, terms []string, marker Marker) string {
	return RenderSegments(HighlightSegments(text, terms), marker)
}

// RenderSegments joins segments, wrapping matched ones in marker.
func RenderSegments(segments []models.Segment, marker Marker) string {
	var b strings.Builder
	for _, s := range segments {
		if s.Match {
			b.WriteString(marker.Open)
			b.WriteString(s.Text)
			b.WriteString(marker.Close)
			continue
		}
		b.WriteString(s.Text)
	}
	return b.String()
}

// highlightNeedles lower-cases and deduplicates terms of two or more runes,
// longest first.
func highlightNeedles(terms []string) [][]rune {
	seen := make(map[string]struct{}, len(terms))
	var needles [][]rune
	for _, t := range terms {
		if utf8.RuneCountInString(t) < 2 {
			continue
		}
		r := lowerRunes([]rune(t))
		key := string(r)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		needles = append(needles, r)
	}
	sort.SliceStable(needles, func(i, j int) bool { return len(needles[i]) > len(needles[j]) })
	return needles
}

// ExtractSnippet returns a window of up to maxLength runes centred on the
// offset of text densest in terms.
// Each offset scores the summed length of the terms starting there; the first
// best offset wins. The window never splits a word and gains "..." on any side
// that does not reach the edge of text. Without a match (or without terms) the
// text is truncated from the start.
func ExtractSnippet(text string, terms []string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultSnippetLength
	}
	runes := []rune(text)
	n := len(runes)

	best, bestScore := -1, 0
	needles := snippetNeedles(terms)
	if len(needles) > 0 {
		lower := lowerRunes(runes)
		for i := 0; i < n; i++ {
			score := 0
			for _, needle := range needles {
				if hasPrefixAt(lower, needle, i) {
					score += len(needle)
				}
			}
			if score > bestScore {
				best, bestScore = i, score
			}
		}
	}

	if best < 0 {
		if n > maxLength {
			return string(runes[:maxLength]) + ellipsis
		}
		return text
	}
	if n <= maxLength {
		return text
	}

	// Each side is clamped on its own, so a match near an edge yields a shorter window.
	start := best - maxLength/2
	if start < 0 {
		start = 0
	}
	end := best + maxLength/2
	if end > n {
		end = n
	}

	start = snapStart(runes, start, best)
	end = snapEnd(runes, end, best+longestAt(runes, needles, best))
	for start < end && unicode.IsSpace(runes[start]) {
		start++
	}
	for end > start && unicode.IsSpace(runes[end-1]) {
		end--
	}

	var b strings.Builder
	if start > 0 {
		b.WriteString(ellipsis)
	}
	b.WriteString(string(runes[start:end]))
	if end < n {
		b.WriteString(ellipsis)
	}
	return b.String()
}

// snapStart moves a window start off a word's interior: forward to the first
// space before the match, else back to the word start.
func snapStart(runes []rune, start, match int) int {
	if start == 0 || unicode.IsSpace(runes[start-1]) || unicode.IsSpace(runes[start]) {
		return start
	}
	for i := start; i < match; i++ {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	for start > 0 && !unicode.IsSpace(runes[start-1]) {
		start--
	}
	return start
}

// snapEnd moves a window end off a word's interior: back to the last space
// after the match, else forward to the word end.
func snapEnd(runes []rune, end, matchEnd int) int {
	n := len(runes)
	if end == n || unicode.IsSpace(runes[end]) || unicode.IsSpace(runes[end-1]) {
		return end
	}
	for i := end - 1; i >= matchEnd; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	for end < n && !unicode.IsSpace(runes[end]) {
		end++
	}
	return end
}

func snippetNeedles(terms []string) [][]rune {
	var needles [][]rune
	for _, t := range terms {
		if t == "" {
			continue
		}
		needles = append(needles, lowerRunes([]rune(t)))
	}
	return needles
}

// longestAt returns the length of the longest needle matching at offset i.
func longestAt(runes []rune, needles [][]rune, i int) int {
	lower := lowerRunes(runes[i:])
	longest := 0
	for _, needle := range needles {
		if len(needle) > longest && hasPrefixAt(lower, needle, 0) {
			longest = len(needle)
		}
	}
	return longest
}

func lowerRunes(in []rune) []rune {
	out := make([]rune, len(in))
	for i, r := range in {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func hasPrefixAt(s, prefix []rune, i int) bool {
	if i+len(prefix) > len(s) {
		return false
	}
	for j, r := range prefix {
		if s[i+j] != r {
			return false
		}
	}
	return true
}

func anyClaimed(claimed []bool, from, to int) bool {
	for i := from; i < to; i++ {
		if claimed[i] {
			return true
		}
	}
	return false
}
