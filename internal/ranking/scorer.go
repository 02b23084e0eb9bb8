package ranking

import (
	"strings"

	"github.com/devansh3112/product-harmony-sphere/internal/keyword"
	"github.com/devansh3112/product-harmony-sphere/internal/models"
)

// Scorer computes additive, unnormalized relevance scores.
type Scorer struct {
	config *ScoringConfig
}

// NewScorer creates a Scorer. A nil config uses DefaultScoringConfig.
func NewScorer(config *ScoringConfig) *Scorer {
	if config == nil {
		config = DefaultScoringConfig()
	} else {
		cfg := *config
		cfg.ApplyDefaults()
		config = &cfg
	}
	return &Scorer{config: config}
}

// Config returns the effective scoring configuration.
func (s *Scorer) Config() ScoringConfig {
	return *s.config
}

// Score sums every triggered bonus for every term. No terms scores zero.
func (s *Scorer) Score(in ScoringInput, terms []string) float64 {
	return s.score(in, PrepareTerms(terms))
}

// ScoreCandidate scores a candidate against pre-compiled terms.
func (s *Scorer) ScoreCandidate(c *models.Candidate, terms []Term) float64 {
	return s.score(InputFromCandidate(c), terms)
}

func (s *Scorer) score(in ScoringInput, terms []Term) float64 {
	if len(terms) == 0 {
		return 0
	}
	cfg := s.config

	title := strings.ToLower(in.Title)
	description := strings.ToLower(in.Description)
	category := strings.ToLower(in.Category)
	tags := make([]string, len(in.Tags))
	for i, t := range in.Tags {
		tags[i] = strings.ToLower(t)
	}
	titleWords := strings.Fields(title)
	descWords := strings.Fields(description)

	var score float64
	for _, term := range terms {
		t := term.Text
		if t == "" {
			continue
		}

		if title != "" {
			if strings.Contains(title, t) {
				score += cfg.TitleContains
			}
			if title == t {
				score += cfg.TitleExact
			}
			if term.boundary.MatchString(title) {
				score += cfg.TitleWord
			}
		}
		if description != "" && strings.Contains(description, t) {
			score += cfg.DescriptionContains
		}
		if category != "" && strings.Contains(category, t) {
			score += cfg.CategoryContains
		}
		if hasTag(tags, t, func(tag, t string) bool { return tag == t }) {
			score += cfg.TagExact
		}
		if hasTag(tags, t, strings.Contains) {
			score += cfg.TagContains
		}

		score += s.wordBonus(titleWords, t, cfg.TitleWordPrefix, cfg.TitleWordTypo)
		score += s.wordBonus(descWords, t, cfg.DescriptionWordPrefix, cfg.DescriptionWordTypo)
	}
	return score
}

// wordBonus awards prefix and typo bonuses per word; both may apply to one word.
func (s *Scorer) wordBonus(words []string, term string, prefix, typo float64) float64 {
	var bonus float64
	for _, w := range words {
		if strings.HasPrefix(w, term) || strings.HasPrefix(term, w) {
			bonus += prefix
		}
		if keyword.EditDistance(term, w) <= s.config.TypoDistance {
			bonus += typo
		}
	}
	return bonus
}

func hasTag(tags []string, term string, match func(tag, term string) bool) bool {
	for _, tag := range tags {
		if match(tag, term) {
			return true
		}
	}
	return false
}
