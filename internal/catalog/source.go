// Package catalog supplies search candidates to the engine from pluggable sources.
package catalog

import (
	"context"
	"errors"

	"github.com/devansh3112/product-harmony-sphere/internal/models"
)

// ErrReadOnly is returned when the configured catalog cannot be edited.
var ErrReadOnly = errors.New("catalog is read-only")

// Source delivers the candidate set for one search. Delivery order is the
// tie-break order for equal scores; the engine does not require any other ordering.
type Source interface {
	Fetch(ctx context.Context, query string, filters models.QueryFilters) ([]models.Candidate, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, query string, filters models.QueryFilters) ([]models.Candidate, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context, query string, filters models.QueryFilters) ([]models.Candidate, error) {
	return f(ctx, query, filters)
}

// Editor is a catalog that supports admin-console edits.
type Editor interface {
	Source
	Get(ctx context.Context, t models.CandidateType, id string) (models.Candidate, error)
	Upsert(ctx context.Context, c models.Candidate) error
	Delete(ctx context.Context, t models.CandidateType, id string) error
}

func cloneAll(in []models.Candidate) []models.Candidate {
	out := make([]models.Candidate, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
