package models

import (
	"fmt"
	"sort"
	"strings"
)

// QueryFilters maps lower-cased filter keys to values, e.g. {"category": "DLP"}.
type QueryFilters map[string]string

// Encode returns a deterministic "k=v;k=v" encoding sorted by key.
func (f QueryFilters) Encode() string {
	if len(f) == 0 {
		return ""
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(f[k])
	}
	return b.String()
}

// ParsedQuery is a raw query split into free text and filter tokens.
type ParsedQuery struct {
	MainQuery string       `json:"main_query"`
	Filters   QueryFilters `json:"filters"`
}

// SortOrder selects how ranked results are ordered.
type SortOrder string

const (
	SortRelevance SortOrder = "relevance"
	SortName      SortOrder = "name"
	SortCategory  SortOrder = "category"
)

// ParseSortOrder maps a user-provided value to a SortOrder. Empty means relevance.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortRelevance:
		return SortRelevance, nil
	case SortName:
		return SortName, nil
	case SortCategory:
		return SortCategory, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// SearchRequest is one search invocation.
type SearchRequest struct {
	Query string    `json:"query"`
	Sort  SortOrder `json:"sort,omitempty"`
	Limit int       `json:"limit,omitempty"`
	// RecentQueries feed the suggestion generator; callers take them from history.
	RecentQueries []string `json:"-"`
}

// Validate normalizes the sort order and clamps the limit to [1, maxLimit].
func (r *SearchRequest) Validate(defaultLimit, maxLimit int) error {
	order, err := ParseSortOrder(string(r.Sort))
	if err != nil {
		return err
	}
	r.Sort = order
	if r.Limit <= 0 {
		r.Limit = defaultLimit
	}
	if maxLimit > 0 && r.Limit > maxLimit {
		r.Limit = maxLimit
	}
	return nil
}
