// Package models defines core data structures for catalog candidates, queries, and search results.
package models

import (
	"errors"
	"fmt"
)

// ErrInvalidCandidate is returned by Validate for candidates missing required fields.
var ErrInvalidCandidate = errors.New("invalid candidate")

// ErrCandidateNotFound is returned by catalog lookups for unknown candidates.
var ErrCandidateNotFound = errors.New("candidate not found")

// CandidateType is the closed set of searchable record kinds.
type CandidateType string

const (
	TypeProduct       CandidateType = "product"
	TypeCategory      CandidateType = "category"
	TypeDocumentation CandidateType = "documentation"
	TypeFeature       CandidateType = "feature"
)

// CandidateTypes lists every candidate type in display order.
var CandidateTypes = []CandidateType{TypeProduct, TypeCategory, TypeDocumentation, TypeFeature}

// Valid reports whether t is one of the known candidate types.
func (t CandidateType) Valid() bool {
	switch t {
	case TypeProduct, TypeCategory, TypeDocumentation, TypeFeature:
		return true
	}
	return false
}

// Candidate is one searchable catalog record. Candidates are value snapshots:
// the search engine copies them before setting RelevanceScore.
type Candidate struct {
	ID          string        `json:"id" yaml:"id"`
	Title       string        `json:"title" yaml:"title"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Type        CandidateType `json:"type" yaml:"type"`
	Category    string        `json:"category,omitempty" yaml:"category,omitempty"`
	Tags        []string      `json:"tags,omitempty" yaml:"tags,omitempty"`
	// RelevanceScore is recomputed per query. A value supplied by a source is the
	// base relevance used when the query carries no free-text terms.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance,omitempty"`
	URL            string  `json:"url" yaml:"url"`
	Image          string  `json:"image,omitempty" yaml:"image,omitempty"`
}

// Key returns the identifier unique across types ("type/id").
func (c *Candidate) Key() string {
	return CandidateKey(c.Type, c.ID)
}

// CandidateKey builds the cross-type identifier for a candidate.
func CandidateKey(t CandidateType, id string) string {
	return string(t) + "/" + id
}

// Validate checks required fields.
func (c *Candidate) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidCandidate)
	}
	if c.Title == "" {
		return fmt.Errorf("%w: title is required (id %s)", ErrInvalidCandidate, c.ID)
	}
	if c.URL == "" {
		return fmt.Errorf("%w: url is required (id %s)", ErrInvalidCandidate, c.ID)
	}
	if !c.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q (id %s)", ErrInvalidCandidate, c.Type, c.ID)
	}
	return nil
}

// Clone returns a copy that does not share the Tags slice.
func (c Candidate) Clone() Candidate {
	if c.Tags != nil {
		c.Tags = append([]string(nil), c.Tags...)
	}
	return c
}

// Summary returns the reduced view of a candidate carried in click events.
func (c *Candidate) Summary(position int) *SelectedResult {
	return &SelectedResult{
		ID:       c.ID,
		Title:    c.Title,
		Type:     string(c.Type),
		Position: position,
	}
}
