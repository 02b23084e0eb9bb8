// Package indexer loads catalog files into the persistent store and keeps the
// Bleve narrowing index in step with it.
package indexer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/devansh3112/product-harmony-sphere/internal/catalog"
	"github.com/devansh3112/product-harmony-sphere/internal/keyword"
	"github.com/devansh3112/product-harmony-sphere/internal/models"
	"github.com/devansh3112/product-harmony-sphere/internal/storage"
)

// Indexer writes candidates to a CatalogStore and mirrors them into an optional
// CandidateIndex. It is itself a catalog.Editor: reads are served from the index
// when one is configured, otherwise from the store.
type Indexer struct {
	store  storage.CatalogStore
	index  keyword.CandidateIndex
	logger *zap.Logger
}

var _ catalog.Editor = (*Indexer)(nil)

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) {
		if l != nil {
			idx.logger = l
		}
	}
}

// NewIndexer creates an indexer. index may be nil.
func NewIndexer(store storage.CatalogStore, index keyword.CandidateIndex, opts ...IndexerOption) *Indexer {
	idx := &Indexer{
		store:  store,
		index:  index,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// ImportFile replaces the catalog with the contents of a YAML catalog file and
// returns the number of candidates imported together with the file's vocabulary.
func (idx *Indexer) ImportFile(ctx context.Context, path string) (int, catalog.Vocabulary, error) {
	f, err := catalog.LoadFile(path)
	if err != nil {
		return 0, catalog.Vocabulary{}, err
	}
	n, err := idx.Import(ctx, f.Candidates)
	if err != nil {
		return 0, catalog.Vocabulary{}, err
	}
	idx.logger.Debug("indexer imported catalog file", zap.String("path", path), zap.Int("candidates", n))
	return n, f.Vocabulary(), nil
}

// Import replaces the catalog with candidates.
func (idx *Indexer) Import(ctx context.Context, candidates []models.Candidate) (int, error) {
	normalized := make([]models.Candidate, len(candidates))
	for i, c := range candidates {
		normalized[i] = Normalize(c)
	}
	if err := idx.store.ReplaceAll(ctx, normalized); err != nil {
		return 0, fmt.Errorf("failed to store catalog: %w", err)
	}
	if err := idx.reindex(ctx, normalized); err != nil {
		return 0, err
	}
	return len(normalized), nil
}

// Rebuild repopulates the index from the store and returns the candidate count.
func (idx *Indexer) Rebuild(ctx context.Context) (int, error) {
	all, err := idx.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list catalog: %w", err)
	}
	if err := idx.reindex(ctx, all); err != nil {
		return 0, err
	}
	idx.logger.Debug("indexer rebuilt index", zap.Int("candidates", len(all)))
	return len(all), nil
}

func (idx *Indexer) reindex(ctx context.Context, candidates []models.Candidate) error {
	if idx.index == nil {
		return nil
	}
	if err := idx.index.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear keyword index: %w", err)
	}
	if err := idx.index.Index(ctx, candidates); err != nil {
		return fmt.Errorf("failed to index candidates: %w", err)
	}
	return nil
}

// Fetch returns candidates narrowed by filters.
func (idx *Indexer) Fetch(ctx context.Context, query string, filters models.QueryFilters) ([]models.Candidate, error) {
	if idx.index != nil {
		return idx.index.Fetch(ctx, query, filters)
	}
	return idx.store.Fetch(ctx, query, filters)
}

// Get returns one stored candidate.
func (idx *Indexer) Get(ctx context.Context, t models.CandidateType, id string) (models.Candidate, error) {
	return idx.store.Get(ctx, t, id)
}

// Upsert stores c and updates the index. Replacing an existing candidate
// rebuilds the index so catalog order is preserved.
func (idx *Indexer) Upsert(ctx context.Context, c models.Candidate) error {
	c = Normalize(c)
	_, getErr := idx.store.Get(ctx, c.Type, c.ID)
	exists := getErr == nil
	if getErr != nil && !errors.Is(getErr, models.ErrCandidateNotFound) {
		return getErr
	}
	if err := idx.store.Upsert(ctx, c); err != nil {
		return err
	}
	if idx.index == nil {
		return nil
	}
	if exists {
		_, err := idx.Rebuild(ctx)
		return err
	}
	if err := idx.index.Index(ctx, []models.Candidate{c}); err != nil {
		return fmt.Errorf("failed to index %s: %w", c.Key(), err)
	}
	idx.logger.Debug("indexer candidate indexed", zap.String("key", c.Key()))
	return nil
}

// Delete removes a candidate from the store and the index.
func (idx *Indexer) Delete(ctx context.Context, t models.CandidateType, id string) error {
	if err := idx.store.Delete(ctx, t, id); err != nil {
		return err
	}
	if idx.index != nil {
		if err := idx.index.Delete(ctx, models.CandidateKey(t, id)); err != nil {
			return fmt.Errorf("failed to delete from keyword index: %w", err)
		}
	}
	idx.logger.Debug("indexer candidate deleted", zap.String("key", models.CandidateKey(t, id)))
	return nil
}

// Count returns the number of stored candidates.
func (idx *Indexer) Count(ctx context.Context) (int64, error) {
	return idx.store.Count(ctx)
}
