package catalog

import (
	"strings"

	"github.com/devansh3112/product-harmony-sphere/internal/models"
)

// Vocabulary is the known set of categories and tags offered as suggestions.
type Vocabulary struct {
	Categories []string `json:"categories" yaml:"categories"`
	Tags       []string `json:"tags" yaml:"tags"`
}

// ReferenceCategories are the category names of the reference portfolio.
var ReferenceCategories = []string{"Carbon Black", "DLP", "Endpoint", "Proxy", "AOD", "IMS", "ITSM"}

// ReferenceTags are the tags suggested regardless of the current results.
var ReferenceTags = []string{
	"security", "cloud", "data", "protection", "detection", "monitoring",
	"endpoint", "network", "authentication", "encryption", "prevention",
	"compliance", "management", "automation", "analytics",
}

// ReferenceVocabulary returns copies of the reference categories and tags.
func ReferenceVocabulary() Vocabulary {
	return Vocabulary{
		Categories: append([]string(nil), ReferenceCategories...),
		Tags:       append([]string(nil), ReferenceTags...),
	}
}

// Or returns v, replacing empty lists with those of fallback.
func (v Vocabulary) Or(fallback Vocabulary) Vocabulary {
	if len(v.Categories) == 0 {
		v.Categories = fallback.Categories
	}
	if len(v.Tags) == 0 {
		v.Tags = fallback.Tags
	}
	return v
}

// Merge returns the union of v and other, keeping first-seen order and
// ignoring case when comparing entries.
func (v Vocabulary) Merge(other Vocabulary) Vocabulary {
	return Vocabulary{
		Categories: mergeFold(v.Categories, other.Categories),
		Tags:       mergeFold(v.Tags, other.Tags),
	}
}

func mergeFold(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			key := strings.ToLower(s)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// CategorySlug converts a category name to its id form, e.g. "Carbon Black" -> "carbon-black".
func CategorySlug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// CategoryCandidate builds the browse-all record for a category.
func CategoryCandidate(name string) models.Candidate {
	slug := CategorySlug(name)
	return models.Candidate{
		ID:             slug,
		Title:          name,
		Description:    "Browse all " + name + " products",
		Type:           models.TypeCategory,
		RelevanceScore: 0.75,
		URL:            "/products?category=" + slug,
	}
}

// ReferenceCandidates returns the reference portfolio: products, categories,
// documentation and features, in that order.
func ReferenceCandidates() []models.Candidate {
	out := []models.Candidate{
		{
			ID:             "7",
			Title:          "Carbon Black App Control",
			Description:    "Trusted software enforcement with flexible deployment",
			Type:           models.TypeProduct,
			Category:       "Carbon Black",
			RelevanceScore: 0.95,
			URL:            "/products/7",
			Tags:           []string{"security", "software", "enforcement"},
		},
		{
			ID:             "30",
			Title:          "Endpoint DLP",
			Description:    "Endpoint Prevent and Endpoint Discover for comprehensive endpoint data protection",
			Type:           models.TypeProduct,
			Category:       "DLP",
			RelevanceScore: 0.9,
			URL:            "/products/30",
			Tags:           []string{"data", "protection", "endpoint"},
		},
		{
			ID:             "34",
			Title:          "SEP-SES",
			Description:    "Symantec Endpoint Security - Comprehensive endpoint protection suite",
			Type:           models.TypeProduct,
			Category:       "Endpoint",
			RelevanceScore: 0.85,
			URL:            "/products/34",
			Tags:           []string{"endpoint", "security", "protection"},
		},
		{
			ID:             "51",
			Title:          "CloudSOC CASB",
			Description:    "Cloud Security Broker for secure cloud access",
			Type:           models.TypeProduct,
			Category:       "Proxy",
			RelevanceScore: 0.8,
			URL:            "/products/51",
			Tags:           []string{"cloud", "security", "access"},
		},
	}
	for _, name := range ReferenceCategories {
		out = append(out, CategoryCandidate(name))
	}
	out = append(out,
		models.Candidate{
			ID:             "doc-1",
			Title:          "Getting Started with Endpoint Security",
			Description:    "Learn how to set up and configure endpoint security solutions",
			Type:           models.TypeDocumentation,
			Category:       "Endpoint",
			RelevanceScore: 0.7,
			URL:            "/docs/endpoint-security",
			Tags:           []string{"guide", "setup", "endpoint", "security"},
		},
		models.Candidate{
			ID:             "doc-2",
			Title:          "DLP Best Practices",
			Description:    "Best practices for implementing Data Loss Prevention",
			Type:           models.TypeDocumentation,
			Category:       "DLP",
			RelevanceScore: 0.65,
			URL:            "/docs/dlp-best-practices",
			Tags:           []string{"guide", "best practices", "dlp"},
		},
		models.Candidate{
			ID:             "feature-1",
			Title:          "Real-time Threat Detection",
			Description:    "Detect and respond to threats in real-time",
			Type:           models.TypeFeature,
			Category:       "Endpoint",
			RelevanceScore: 0.6,
			URL:            "/features/threat-detection",
			Tags:           []string{"security", "detection", "real-time"},
		},
		models.Candidate{
			ID:             "feature-2",
			Title:          "Data Classification",
			Description:    "Automatically classify sensitive data",
			Type:           models.TypeFeature,
			Category:       "DLP",
			RelevanceScore: 0.55,
			URL:            "/features/data-classification",
			Tags:           []string{"data", "classification", "automation"},
		},
	)
	return out
}
