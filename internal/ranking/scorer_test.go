package ranking

import (
	"math"
	"testing"

	"github.com/devansh3112/product-harmony-sphere/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScorer_Score(t *testing.T) {
	s := NewScorer(nil)

	tests := []struct {
		name  string
		in    ScoringInput
		terms []string
		want  float64
	}{
		{
			name:  "no terms",
			in:    ScoringInput{Title: "Carbon Black App Control"},
			terms: nil,
			want:  0,
		},
		{
			name:  "title word",
			in:    ScoringInput{Title: "Carbon Black"},
			terms: []string{"black"},
			// contains 3, boundary 2, "black" prefix 1.5, "black" typo 1; "carbon" distance 5
			want: 7.5,
		},
		{
			name:  "exact title",
			in:    ScoringInput{Title: "DLP"},
			terms: []string{"dlp"},
			// contains 3, exact 5, boundary 2, prefix 1.5, typo 1
			want: 12.5,
		},
		{
			name:  "tag exact and contains",
			in:    ScoringInput{Title: "Zzzzzzzz", Tags: []string{"Security"}},
			terms: []string{"security"},
			want:  4.5,
		},
		{
			name:  "tag contains only",
			in:    ScoringInput{Title: "Zzzzzzzz", Tags: []string{"cybersecurity"}},
			terms: []string{"security"},
			want:  1.5,
		},
		{
			name:  "category contains",
			in:    ScoringInput{Title: "Zzzzzzzz", Category: "Carbon Black"},
			terms: []string{"carbon"},
			want:  2,
		},
		{
			name:  "description contains and prefix",
			in:    ScoringInput{Title: "Zzzzzzzz", Description: "protects endpoints"},
			terms: []string{"protect"},
			// contains 2, "protects" prefix 0.5, "protects" typo 0.3
			want: 2.8,
		},
		{
			name:  "missing optional fields",
			in:    ScoringInput{Title: "Zzzzzzzz"},
			terms: []string{"security"},
			want:  0,
		},
		{
			name:  "terms are cumulative",
			in:    ScoringInput{Title: "DLP"},
			terms: []string{"dlp", "dlp"},
			want:  25,
		},
		{
			name:  "regex metacharacters are literal",
			in:    ScoringInput{Title: "Zzzzzzzz"},
			terms: []string{"(a+"},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Score(tt.in, tt.terms)
			if !almostEqual(got, tt.want) {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
			if got < 0 {
				t.Errorf("Score() = %v, must be non-negative", got)
			}
		})
	}
}

func TestScorer_MonotonicInMatchingFields(t *testing.T) {
	s := NewScorer(nil)
	terms := []string{"endpoint"}

	inputs := []ScoringInput{
		{Title: "Zzzzzzzzzzzz"},
		{Title: "Zzzzzzzzzzzz", Description: "guards the endpoint"},
		{Title: "Zzzzzzzzzzzz", Description: "guards the endpoint", Category: "Endpoint"},
		{Title: "Zzzzzzzzzzzz", Description: "guards the endpoint", Category: "Endpoint", Tags: []string{"endpoint"}},
		{Title: "Endpoint", Description: "guards the endpoint", Category: "Endpoint", Tags: []string{"endpoint"}},
	}
	prev := -1.0
	for i, in := range inputs {
		got := s.Score(in, terms)
		if got < prev {
			t.Errorf("input %d scored %v, lower than previous %v", i, got, prev)
		}
		prev = got
	}
}

func TestScorer_CustomConfig(t *testing.T) {
	s := NewScorer(&ScoringConfig{TitleExact: 100})
	cfg := s.Config()
	if cfg.TitleExact != 100 {
		t.Errorf("TitleExact = %v, want 100", cfg.TitleExact)
	}
	if cfg.TitleContains != 3 || cfg.TypoDistance != 2 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	got := s.Score(ScoringInput{Title: "DLP"}, []string{"dlp"})
	if !almostEqual(got, 107.5) {
		t.Errorf("Score() = %v, want 107.5", got)
	}
}

func TestScorer_ScoreCandidate(t *testing.T) {
	s := NewScorer(nil)
	c := &models.Candidate{Title: "Carbon Black App Control", Tags: []string{"security", "software"}}
	other := &models.Candidate{Title: "Endpoint DLP", Tags: []string{"data", "endpoint"}}
	terms := PrepareTerms(QueryTerms("Black"))

	if got := s.ScoreCandidate(c, terms); got <= 0 {
		t.Errorf("expected positive score for matching candidate, got %v", got)
	}
	if got := s.ScoreCandidate(other, terms); got != 0 {
		t.Errorf("expected zero score for non-matching candidate, got %v", got)
	}
}

func TestTerms(t *testing.T) {
	if got := QueryTerms("  Carbon   BLACK "); len(got) != 2 || got[0] != "carbon" || got[1] != "black" {
		t.Errorf("QueryTerms = %v", got)
	}
	if got := HighlightTerms("a black x edr"); len(got) != 2 || got[0] != "black" || got[1] != "edr" {
		t.Errorf("HighlightTerms = %v", got)
	}
	if got := PrepareTerms([]string{"", "DLP"}); len(got) != 1 || got[0].Text != "dlp" {
		t.Errorf("PrepareTerms = %v", got)
	}
}

func TestDefaultScoringConfig(t *testing.T) {
	var c ScoringConfig
	c.ApplyDefaults()
	if c != *DefaultScoringConfig() {
		t.Errorf("ApplyDefaults on zero config = %+v, want defaults", c)
	}
}
