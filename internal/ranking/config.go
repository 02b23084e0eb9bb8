package ranking

// ScoringConfig holds the additive weights of the relevance scorer.
type ScoringConfig struct {
	// Title rules
	TitleContains float64 `yaml:"title_contains"` // default: 3
	TitleExact    float64 `yaml:"title_exact"`    // default: 5
	TitleWord     float64 `yaml:"title_word"`     // default: 2

	// Field containment
	DescriptionContains float64 `yaml:"description_contains"` // default: 2
	CategoryContains    float64 `yaml:"category_contains"`    // default: 2
	TagExact            float64 `yaml:"tag_exact"`            // default: 3
	TagContains         float64 `yaml:"tag_contains"`         // default: 1.5

	// Per-word partial matches
	TitleWordPrefix       float64 `yaml:"title_word_prefix"`       // default: 1.5
	TitleWordTypo         float64 `yaml:"title_word_typo"`         // default: 1
	DescriptionWordPrefix float64 `yaml:"description_word_prefix"` // default: 0.5
	DescriptionWordTypo   float64 `yaml:"description_word_typo"`   // default: 0.3

	// TypoDistance is the maximum edit distance that counts as a typo.
	TypoDistance int `yaml:"typo_distance"` // default: 2
}

// DefaultScoringConfig returns the default scoring configuration.
func DefaultScoringConfig() *ScoringConfig {
	return &ScoringConfig{
		TitleContains: 3,
		TitleExact:    5,
		TitleWord:     2,

		DescriptionContains: 2,
		CategoryContains:    2,
		TagExact:            3,
		TagContains:         1.5,

		TitleWordPrefix:       1.5,
		TitleWordTypo:         1,
		DescriptionWordPrefix: 0.5,
		DescriptionWordTypo:   0.3,

		TypoDistance: 2,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *ScoringConfig) ApplyDefaults() {
	defaults := DefaultScoringConfig()

	if c.TitleContains == 0 {
		c.TitleContains = defaults.TitleContains
	}
	if c.TitleExact == 0 {
		c.TitleExact = defaults.TitleExact
	}
	if c.TitleWord == 0 {
		c.TitleWord = defaults.TitleWord
	}

	if c.DescriptionContains == 0 {
		c.DescriptionContains = defaults.DescriptionContains
	}
	if c.CategoryContains == 0 {
		c.CategoryContains = defaults.CategoryContains
	}
	if c.TagExact == 0 {
		c.TagExact = defaults.TagExact
	}
	if c.TagContains == 0 {
		c.TagContains = defaults.TagContains
	}

	if c.TitleWordPrefix == 0 {
		c.TitleWordPrefix = defaults.TitleWordPrefix
	}
	if c.TitleWordTypo == 0 {
		c.TitleWordTypo = defaults.TitleWordTypo
	}
	if c.DescriptionWordPrefix == 0 {
		c.DescriptionWordPrefix = defaults.DescriptionWordPrefix
	}
	if c.DescriptionWordTypo == 0 {
		c.DescriptionWordTypo = defaults.DescriptionWordTypo
	}

	if c.TypoDistance == 0 {
		c.TypoDistance = defaults.TypoDistance
	}
}
