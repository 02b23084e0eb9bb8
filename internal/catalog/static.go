package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/devansh3112/product-harmony-sphere/internal/models"
)

// StaticSource serves an in-memory candidate list. It supports edits, so it
// doubles as the catalog when no database is configured.
type StaticSource struct {
	mu         sync.RWMutex
	candidates []models.Candidate
	latency    time.Duration
}

var _ Editor = (*StaticSource)(nil)

// StaticOption configures a StaticSource.
type StaticOption func(*StaticSource)

// WithLatency delays every Fetch, standing in for a network round trip.
func WithLatency(d time.Duration) StaticOption {
	return func(s *StaticSource) {
		s.latency = d
	}
}

// NewStaticSource creates a source over a copy of candidates.
func NewStaticSource(candidates []models.Candidate, opts ...StaticOption) *StaticSource {
	s := &StaticSource{candidates: cloneAll(candidates)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewReferenceSource creates a source over the reference portfolio.
func NewReferenceSource(opts ...StaticOption) *StaticSource {
	return NewStaticSource(ReferenceCandidates(), opts...)
}

// Fetch returns every candidate; query and filters are applied by the engine.
func (s *StaticSource) Fetch(ctx context.Context, query string, filters models.QueryFilters) ([]models.Candidate, error) {
	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.candidates), nil
}

// Get returns the candidate with the given type and id.
func (s *StaticSource) Get(ctx context.Context, t models.CandidateType, id string) (models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.candidates {
		if c.Type == t && c.ID == id {
			return c.Clone(), nil
		}
	}
	return models.Candidate{}, fmt.Errorf("%w: %s", models.ErrCandidateNotFound, models.CandidateKey(t, id))
}

// Upsert replaces a candidate in place or appends it.
func (s *StaticSource) Upsert(ctx context.Context, c models.Candidate) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.candidates {
		if s.candidates[i].Type == c.Type && s.candidates[i].ID == c.ID {
			s.candidates[i] = c.Clone()
			return nil
		}
	}
	s.candidates = append(s.candidates, c.Clone())
	return nil
}

// Delete removes a candidate.
func (s *StaticSource) Delete(ctx context.Context, t models.CandidateType, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.candidates {
		if s.candidates[i].Type == t && s.candidates[i].ID == id {
			s.candidates = append(s.candidates[:i], s.candidates[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", models.ErrCandidateNotFound, models.CandidateKey(t, id))
}

// Replace swaps the whole candidate list.
func (s *StaticSource) Replace(candidates []models.Candidate) {
	s.mu.Lock()
	s.candidates = cloneAll(candidates)
	s.mu.Unlock()
}

// Len returns the number of candidates.
func (s *StaticSource) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.candidates)
}
