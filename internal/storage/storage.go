// Package storage persists catalog candidates and small key/value slots such as
// the recent-search history.
package storage

import (
	"context"
	"errors"

	"github.com/devansh3112/product-harmony-sphere/internal/catalog"
	"github.com/devansh3112/product-harmony-sphere/internal/models"
)

// ErrNotFound is returned by KeyValueStore.Get for a missing key.
var ErrNotFound = errors.New("key not found")

// KeyValueStore holds opaque values under string keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// CatalogStore is an editable, persistent candidate catalog.
type CatalogStore interface {
	catalog.Editor
	List(ctx context.Context) ([]models.Candidate, error)
	ReplaceAll(ctx context.Context, candidates []models.Candidate) error
	Count(ctx context.Context) (int64, error)
	Close() error
}
