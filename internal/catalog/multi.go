package catalog

import (
	"context"
	"fmt"

	"github.com/devansh3112/product-harmony-sphere/internal/models"
	"golang.org/x/sync/errgroup"
)

// MultiSource fetches from several sources concurrently and concatenates the
// results in source order. A candidate key delivered twice keeps its first copy.
type MultiSource struct {
	sources []Source
}

// NewMultiSource combines sources.
func NewMultiSource(sources ...Source) *MultiSource {
	return &MultiSource{sources: sources}
}

// Fetch fails if any source fails.
func (m *MultiSource) Fetch(ctx context.Context, query string, filters models.QueryFilters) ([]models.Candidate, error) {
	results := make([][]models.Candidate, len(m.sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range m.sources {
		i, src := i, src
		g.Go(func() error {
			cands, err := src.Fetch(gctx, query, filters)
			if err != nil {
				return fmt.Errorf("source %d: %w", i, err)
			}
			results[i] = cands
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var out []models.Candidate
	for _, cands := range results {
		for _, c := range cands {
			key := c.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, c)
		}
	}
	return out, nil
}
