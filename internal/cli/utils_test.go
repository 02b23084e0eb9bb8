package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/devansh3112/product-harmony-sphere/internal/models"
	"github.com/devansh3112/product-harmony-sphere/internal/search"
)

func sampleResponse() *models.SearchResponse {
	terms := []string{"black"}
	title := "Carbon Black App Control"
	snippet := "Trusted software enforcement with flexible deployment"
	result := &models.SearchResult{
		Candidate: models.Candidate{
			ID:       "7",
			Title:    title,
			Type:     models.TypeProduct,
			Category: "Carbon Black",
			Tags:     []string{"security", "software"},
			URL:      "/products/7",
		},
		Score:           8,
		Position:        0,
		TitleSegments:   search.HighlightSegments(title, terms),
		Snippet:         snippet,
		SnippetSegments: search.HighlightSegments(snippet, terms),
	}
	return &models.SearchResponse{
		Query:       "black",
		MainQuery:   "black",
		Terms:       terms,
		Results:     []*models.SearchResult{result},
		Groups:      search.GroupByType([]*models.SearchResult{result}),
		Suggestions: []string{"category:Carbon Black"},
		Total:       1,
		QueryTime:   3,
	}
}

func TestWriteSearchResults_JSON(t *testing.T) {
	response := sampleResponse()
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, response, OutputJSON); err != nil {
		t.Fatalf("WriteSearchResults(json): %v", err)
	}
	var decoded models.SearchResponse
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Query != "black" || decoded.Total != 1 {
		t.Errorf("decoded query=%q total=%d", decoded.Query, decoded.Total)
	}
	if len(decoded.Results) != 1 || decoded.Results[0].Candidate.ID != "7" {
		t.Errorf("decoded results: %+v", decoded.Results)
	}
}

func TestWriteSearchResults_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"Found 1 results in 3ms",
		"--- Products ---",
		"[1] Carbon **Black** App Control",
		"(Carbon Black)",
		"tags: security, software",
		"/products/7",
		"Try: category:Carbon Black",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSearchResults_Compact(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputCompact); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), buf.String())
	}
	fields := strings.Split(lines[0], "\t")
	if len(fields) != 5 || fields[0] != "1" || fields[2] != "product" || fields[4] != "/products/7" {
		t.Errorf("compact line = %q", lines[0])
	}
}

func TestWriteSearchResults_EmptyState(t *testing.T) {
	resp := &models.SearchResponse{Query: "xyz123", Suggestions: nil}
	for _, format := range []SearchOutputFormat{OutputText, OutputCompact} {
		var buf bytes.Buffer
		if err := WriteSearchResults(&buf, resp, format); err != nil {
			t.Fatal(err)
		}
		out := buf.String()
		if !strings.Contains(out, `No results found for "xyz123"`) {
			t.Errorf("%s: missing empty state: %q", format, out)
		}
		if !strings.Contains(out, SupportHint) {
			t.Errorf("%s: missing support hint: %q", format, out)
		}
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    SearchOutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"compact", OutputCompact, false},
		{"json", OutputJSON, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOutputFormat(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTypeLabel(t *testing.T) {
	if TypeLabel(models.TypeDocumentation) != "Documentation" || TypeLabel(models.TypeFeature) != "Features" {
		t.Error("unexpected labels")
	}
	if TypeLabel("widget") != "widget" {
		t.Error("unknown types fall back to their name")
	}
}

func TestWriteHistory(t *testing.T) {
	var buf bytes.Buffer
	WriteHistory(&buf, nil)
	if !strings.Contains(buf.String(), "No recent searches") {
		t.Errorf("empty history: %q", buf.String())
	}

	buf.Reset()
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).UnixMilli()
	WriteHistory(&buf, []models.HistoryEntry{{Query: "dlp", Timestamp: ts}, {Query: "cloud", Timestamp: ts}})
	out := buf.String()
	if !strings.Contains(out, "1. dlp") || !strings.Contains(out, "2. cloud") {
		t.Errorf("history output: %q", out)
	}
}
