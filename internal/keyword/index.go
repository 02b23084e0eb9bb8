package keyword

import (
	"context"

	"github.com/devansh3112/product-harmony-sphere/internal/models"
)

// CandidateIndex narrows the catalog by structured attributes before fuzzy matching.
type CandidateIndex interface {
	Index(ctx context.Context, candidates []models.Candidate) error
	Fetch(ctx context.Context, query string, filters models.QueryFilters) ([]models.Candidate, error)
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
	// DocCount returns the total number of candidates in the index.
	DocCount() (uint64, error)
}
