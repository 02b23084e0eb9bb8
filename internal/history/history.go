// Package history keeps the most recent successful searches in a key/value slot.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/devansh3112/product-harmony-sphere/internal/models"
	"github.com/devansh3112/product-harmony-sphere/internal/storage"
)

// Defaults for the history slot.
const (
	DefaultKey        = "recent-searches"
	DefaultMaxEntries = 5
)

// Store is the recent-search list, newest first, deduplicated by exact query.
type Store struct {
	kv     storage.KeyValueStore
	key    string
	max    int
	logger *zap.Logger
	now    func() time.Time

	mu      sync.RWMutex
	entries []models.HistoryEntry
	loaded  bool
}

// Option configures a Store.
type Option func(*Store)

// WithKey sets the slot name.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithMaxEntries caps the list length.
func WithMaxEntries(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.max = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore returns a Store over kv. Call Load to read the persisted list.
func NewStore(kv storage.KeyValueStore, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		key:    DefaultKey,
		max:    DefaultMaxEntries,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the slot. Unparseable content is logged, removed from the store
// and replaced by an empty history.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *Store) loadLocked(ctx context.Context) error {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		s.entries = nil
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	var entries []models.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn("failed to parse recent searches, discarding",
			zap.String("key", s.key), zap.Error(err))
		if derr := s.kv.Delete(ctx, s.key); derr != nil {
			s.logger.Warn("failed to delete corrupt history", zap.String("key", s.key), zap.Error(derr))
		}
		entries = nil
	}
	if len(entries) > s.max {
		entries = entries[:s.max]
	}
	s.entries = entries
	s.loaded = true
	return nil
}

// Add moves query to the front of the history and persists the list. Blank
// queries are ignored. The in-memory list is updated even if persisting fails.
func (s *Store) Add(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		if err := s.loadLocked(ctx); err != nil {
			s.logger.Warn("history load failed, starting empty", zap.Error(err))
			s.loaded = true
		}
	}

	updated := make([]models.HistoryEntry, 0, s.max)
	updated = append(updated, models.HistoryEntry{Query: query, Timestamp: s.now().UnixMilli()})
	for _, e := range s.entries {
		if len(updated) == s.max {
			break
		}
		if e.Query != query {
			updated = append(updated, e)
		}
	}
	s.entries = updated
	return s.persistLocked(ctx)
}

// Clear empties the history and removes the slot.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.loaded = true
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}

// Entries returns a copy of the history, newest first.
func (s *Store) Entries() []models.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.HistoryEntry(nil), s.entries...)
}

// Queries returns the query strings, newest first.
func (s *Store) Queries() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Query
	}
	return out
}

// MostRecent returns the newest query.
func (s *Store) MostRecent() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) == 0 {
		return "", false
	}
	return s.entries[0].Query, true
}
