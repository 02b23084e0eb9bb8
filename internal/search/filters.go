package search

import (
	"strings"

	"github.com/devansh3112/product-harmony-sphere/internal/models"
)

// Filter keys understood by ApplyFilters.
const (
	FilterCategory = "category"
	FilterTag      = "tag"
	FilterDocs     = "docs"
	FilterFeature  = "feature"
	FilterType     = "type"
)

// ApplyFilters narrows candidates by the structured filters of a query.
//
// The base set is products and categories. docs:<any> adds documentation;
// feature:<v> adds features whose title or description contains v; type:<t>
// replaces the base set with all candidates of type t. category:<v> then keeps
// candidates in category v, plus the category record titled v; tag:<v> keeps
// candidates with a tag containing v. All comparisons ignore case and the
// input order is preserved. Unknown filter keys are ignored.
func ApplyFilters(candidates []models.Candidate, filters models.QueryFilters) []models.Candidate {
	typeFilter := models.CandidateType(strings.ToLower(filters[FilterType]))
	docs := filters[FilterDocs] != ""
	feature := strings.ToLower(filters[FilterFeature])
	category := strings.ToLower(filters[FilterCategory])
	tag := strings.ToLower(filters[FilterTag])

	out := make([]models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !inBaseSet(&c, typeFilter, docs, feature) {
			continue
		}
		if category != "" && !inCategory(&c, category) {
			continue
		}
		if tag != "" && !hasTagContaining(c.Tags, tag) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func inBaseSet(c *models.Candidate, typeFilter models.CandidateType, docs bool, feature string) bool {
	if c.Type == models.TypeFeature && feature != "" &&
		!strings.Contains(strings.ToLower(c.Title), feature) &&
		!strings.Contains(strings.ToLower(c.Description), feature) {
		return false
	}
	if typeFilter != "" {
		return c.Type == typeFilter
	}
	switch c.Type {
	case models.TypeProduct, models.TypeCategory:
		return true
	case models.TypeDocumentation:
		return docs
	case models.TypeFeature:
		return feature != ""
	}
	return false
}

func inCategory(c *models.Candidate, category string) bool {
	if strings.ToLower(c.Category) == category {
		return true
	}
	return c.Type == models.TypeCategory && strings.ToLower(c.Title) == category
}

func hasTagContaining(tags []string, value string) bool {
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), value) {
			return true
		}
	}
	return false
}
