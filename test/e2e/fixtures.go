package e2e

import (
	"path/filepath"

	"github.com/devansh3112/product-harmony-sphere/internal/catalog"
)

// CatalogFileName is the name of the YAML catalog written by WriteCatalogFile.
const CatalogFileName = "catalog.yaml"

// WriteCatalogFile writes the corpus as a YAML catalog file in dir and returns its path.
func WriteCatalogFile(dir string, c *Corpus) (string, error) {
	path := filepath.Join(dir, CatalogFileName)
	f := &catalog.File{
		Categories: c.Categories,
		Tags:       c.Tags,
		Candidates: c.Candidates,
	}
	if err := catalog.SaveFile(path, f); err != nil {
		return "", err
	}
	return path, nil
}
