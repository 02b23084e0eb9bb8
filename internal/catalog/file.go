package catalog

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/devansh3112/product-harmony-sphere/internal/models"
	"gopkg.in/yaml.v3"
)

// File is the YAML catalog format.
//
//	categories: [Carbon Black, DLP]
//	tags: [security, cloud]
//	candidates:
//	  - id: "7"
//	    title: Carbon Black App Control
//	    type: product
//	    url: /products/7
type File struct {
	Categories []string           `yaml:"categories,omitempty"`
	Tags       []string           `yaml:"tags,omitempty"`
	Candidates []models.Candidate `yaml:"candidates"`
}

// Vocabulary returns the categories and tags declared in the file.
func (f *File) Vocabulary() Vocabulary {
	return Vocabulary{Categories: f.Categories, Tags: f.Tags}
}

// LoadFile reads and validates a YAML catalog.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	seen := make(map[string]struct{}, len(f.Candidates))
	for i := range f.Candidates {
		c := &f.Candidates[i]
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		if _, dup := seen[c.Key()]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate candidate %s", i, c.Key())
		}
		seen[c.Key()] = struct{}{}
	}
	return &f, nil
}

// SaveFile writes a catalog as YAML.
func SaveFile(path string, f *File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return nil
}

// FileSource serves a YAML catalog file and can reload it when it changes.
type FileSource struct {
	path   string
	static *StaticSource
	mu     sync.RWMutex
	vocab  Vocabulary
}

// NewFileSource loads the catalog at path.
func NewFileSource(path string) (*FileSource, error) {
	fs := &FileSource{path: path, static: NewStaticSource(nil)}
	if err := fs.Reload(); err != nil {
		return nil, err
	}
	return fs, nil
}

// Path returns the catalog file path.
func (fs *FileSource) Path() string {
	return fs.path
}

// Reload re-reads the file. On error the previous catalog stays in place.
func (fs *FileSource) Reload() error {
	f, err := LoadFile(fs.path)
	if err != nil {
		return err
	}
	fs.static.Replace(f.Candidates)
	fs.mu.Lock()
	fs.vocab = f.Vocabulary()
	fs.mu.Unlock()
	return nil
}

// Vocabulary returns the vocabulary declared in the file.
func (fs *FileSource) Vocabulary() Vocabulary {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.vocab
}

// Fetch returns every candidate in the file.
func (fs *FileSource) Fetch(ctx context.Context, query string, filters models.QueryFilters) ([]models.Candidate, error) {
	return fs.static.Fetch(ctx, query, filters)
}

// Len returns the number of candidates.
func (fs *FileSource) Len() int {
	return fs.static.Len()
}
