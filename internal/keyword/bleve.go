package keyword

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/devansh3112/product-harmony-sphere/internal/models"
)

const (
	fieldType     = "type"
	fieldCategory = "category_lc"
	fieldTitleLC  = "title_lc"
	fieldTags     = "tags_lc"
	fieldSeq      = "seq"
	fieldPayload  = "payload"
)

// BleveIndex implements CandidateIndex using Bleve.
// Free text is left to the fuzzy matcher; the index only answers structured
// type and category lookups and returns candidates in insertion order.
type BleveIndex struct {
	index bleve.Index
	mu    sync.Mutex
	seq   uint64
}

var _ CandidateIndex = (*BleveIndex)(nil)

// NewBleveIndex creates or opens a Bleve index at path.
// An empty path creates an in-memory index.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im := candidateMapping()

	if path == "" {
		index, err := bleve.NewMemOnly(im)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory Bleve index: %w", err)
		}
		return &BleveIndex{index: index}, nil
	}

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		b := &BleveIndex{index: index}
		count, err := index.DocCount()
		if err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("failed to count Bleve documents: %w", err)
		}
		b.seq = count
		return b, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

func candidateMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt(fieldType, keywordFieldMapping)
	docMapping.AddFieldMappingsAt(fieldCategory, keywordFieldMapping)
	docMapping.AddFieldMappingsAt(fieldTitleLC, keywordFieldMapping)
	docMapping.AddFieldMappingsAt(fieldTags, keywordFieldMapping)

	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	docMapping.AddFieldMappingsAt("description", textFieldMapping)

	seqMapping := bleve.NewNumericFieldMapping()
	docMapping.AddFieldMappingsAt(fieldSeq, seqMapping)

	payloadMapping := bleve.NewTextFieldMapping()
	payloadMapping.Index = false
	payloadMapping.Store = true
	payloadMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt(fieldPayload, payloadMapping)

	im.AddDocumentMapping("candidate", docMapping)
	im.DefaultType = "candidate"
	im.DefaultMapping = docMapping
	return im
}

// Index adds or replaces candidates, keyed by Candidate.Key.
func (b *BleveIndex) Index(ctx context.Context, candidates []models.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	batch := b.index.NewBatch()
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to encode candidate %s: %w", c.Key(), err)
		}
		tags := make([]string, len(c.Tags))
		for i, t := range c.Tags {
			tags[i] = strings.ToLower(t)
		}
		b.seq++
		doc := map[string]interface{}{
			fieldType:     string(c.Type),
			fieldCategory: strings.ToLower(c.Category),
			fieldTitleLC:  strings.ToLower(c.Title),
			fieldTags:     tags,
			"title":       c.Title,
			"description": c.Description,
			fieldSeq:      float64(b.seq),
			fieldPayload:  string(payload),
		}
		if err := batch.Index(c.Key(), doc); err != nil {
			return fmt.Errorf("failed to add candidate %s to batch: %w", c.Key(), err)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("Bleve batch failed: %w", err)
	}
	return nil
}

// Fetch returns the candidates that can satisfy the type and category filters.
// Other filters and the free-text query are not applied here.
func (b *BleveIndex) Fetch(ctx context.Context, query string, filters models.QueryFilters) ([]models.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	total, err := b.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count Bleve documents: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	req := bleve.NewSearchRequest(narrowingQuery(filters))
	req.Size = int(total)
	req.Fields = []string{fieldPayload}
	req.SortBy([]string{fieldSeq})
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}

	out := make([]models.Candidate, 0, len(results.Hits))
	for _, hit := range results.Hits {
		raw, ok := hit.Fields[fieldPayload].(string)
		if !ok {
			continue
		}
		var c models.Candidate
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("failed to decode candidate %s: %w", hit.ID, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// narrowingQuery builds the structured part of a candidate lookup.
// category:<v> keeps candidates in that category and the category record titled v.
func narrowingQuery(filters models.QueryFilters) blevequery.Query {
	var must []blevequery.Query

	if t, ok := filters["type"]; ok && t != "" {
		must = append(must, termQuery(fieldType, strings.ToLower(t)))
	}
	if c, ok := filters["category"]; ok && c != "" {
		value := strings.ToLower(c)
		categoryRecord := bleve.NewConjunctionQuery(
			termQuery(fieldType, string(models.TypeCategory)),
			termQuery(fieldTitleLC, value),
		)
		must = append(must, bleve.NewDisjunctionQuery(termQuery(fieldCategory, value), categoryRecord))
	}

	if len(must) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(must) == 1 {
		return must[0]
	}
	return bleve.NewConjunctionQuery(must...)
}

func termQuery(field, value string) blevequery.Query {
	q := bleve.NewTermQuery(value)
	q.SetField(field)
	return q
}

// Delete removes a candidate by key.
func (b *BleveIndex) Delete(ctx context.Context, key string) error {
	return b.index.Delete(key)
}

// Clear removes every candidate from the index.
func (b *BleveIndex) Clear(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	total, err := b.index.DocCount()
	if err != nil {
		return fmt.Errorf("failed to count Bleve documents: %w", err)
	}
	if total == 0 {
		return nil
	}
	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = int(total)
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return fmt.Errorf("Bleve search failed: %w", err)
	}
	batch := b.index.NewBatch()
	for _, hit := range results.Hits {
		batch.Delete(hit.ID)
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("Bleve batch delete failed: %w", err)
	}
	b.seq = 0
	return nil
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

// DocCount returns the total number of candidates in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}
