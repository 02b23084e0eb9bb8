// Package search ranks catalog candidates for the command palette and the HTTP API.
package search

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/devansh3112/product-harmony-sphere/internal/catalog"
	"github.com/devansh3112/product-harmony-sphere/internal/config"
	"github.com/devansh3112/product-harmony-sphere/internal/keyword"
	"github.com/devansh3112/product-harmony-sphere/internal/models"
	"github.com/devansh3112/product-harmony-sphere/internal/ranking"
)

// Searcher runs one search. Engine implements it.
type Searcher interface {
	Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error)
}

// Engine runs the search pipeline: parse, fetch, filter, fuzzy match, score,
// sort, render and suggest. It is safe for concurrent use.
type Engine struct {
	source    catalog.Source
	scorer    *ranking.Scorer
	suggester *Suggester
	cache     *ResultCache
	config    config.SearchConfig
	logger    *zap.Logger

	vocabMu sync.RWMutex
	vocab   catalog.Vocabulary
}

var _ Searcher = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithScorer replaces the default scorer.
func WithScorer(s *ranking.Scorer) Option {
	return func(e *Engine) {
		if s != nil {
			e.scorer = s
		}
	}
}

// WithVocabulary sets the categories and tags used for suggestions.
func WithVocabulary(v catalog.Vocabulary) Option {
	return func(e *Engine) {
		e.vocab = v
	}
}

// NewEngine creates a search engine over source. A nil cfg uses defaults.
func NewEngine(source catalog.Source, cfg *config.SearchConfig, opts ...Option) (*Engine, error) {
	var searchCfg config.SearchConfig
	if cfg != nil {
		searchCfg = *cfg
	}
	defaults := config.Config{Search: searchCfg}
	config.ApplyDefaults(&defaults)
	searchCfg = defaults.Search

	cache, err := NewResultCache(searchCfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}
	e := &Engine{
		source:    source,
		scorer:    ranking.NewScorer(nil),
		suggester: NewSuggester(searchCfg.MaxSuggestions),
		cache:     cache,
		config:    searchCfg,
		logger:    zap.NewNop(),
		vocab:     catalog.ReferenceVocabulary(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the effective search configuration.
func (e *Engine) Config() config.SearchConfig {
	return e.config
}

// Vocabulary returns the current suggestion vocabulary.
func (e *Engine) Vocabulary() catalog.Vocabulary {
	e.vocabMu.RLock()
	defer e.vocabMu.RUnlock()
	return e.vocab
}

// SetVocabulary replaces the suggestion vocabulary.
func (e *Engine) SetVocabulary(v catalog.Vocabulary) {
	e.vocabMu.Lock()
	e.vocab = v
	e.vocabMu.Unlock()
}

// Invalidate drops cached rankings; call it whenever the catalog changes.
func (e *Engine) Invalidate() {
	e.cache.Purge()
	e.logger.Debug("search cache purged")
}

// CacheLen returns the number of cached rankings.
func (e *Engine) CacheLen() int {
	return e.cache.Len()
}

// Search runs the pipeline for req. Invalid requests (an unknown sort order)
// return an error; a failing or slow source does not: it is logged and the
// response carries zero results.
func (e *Engine) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error) {
	startTime := time.Now()
	if err := req.Validate(e.config.DefaultLimit, e.config.MaxLimit); err != nil {
		return nil, fmt.Errorf("invalid search request: %w", err)
	}

	parsed := ranking.ParseQuery(req.Query)
	terms := ranking.HighlightTerms(parsed.MainQuery)
	resp := &models.SearchResponse{
		Query:     req.Query,
		MainQuery: parsed.MainQuery,
		Filters:   parsed.Filters,
		Terms:     terms,
		Results:   []*models.SearchResult{},
		Groups:    []models.ResultGroup{},
	}
	if strings.TrimSpace(req.Query) == "" {
		resp.QueryTime = time.Since(startTime).Milliseconds()
		return resp, nil
	}

	key := NewCacheKey(parsed, req.Sort)
	ranked, cached := e.cache.Get(key)
	if !cached {
		candidates, err := e.fetch(ctx, req.Query, parsed.Filters)
		if err != nil {
			e.logger.Warn("candidate fetch failed",
				zap.String("query", req.Query),
				zap.Error(err))
		}
		ranked = e.Rank(candidates, parsed, req.Sort)
		if err == nil {
			e.cache.Add(key, ranked)
		}
	}
	resp.Cached = cached
	resp.Total = len(ranked)

	page := ranked
	if len(page) > req.Limit {
		page = page[:req.Limit]
	}
	for i, r := range page {
		resp.Results = append(resp.Results, e.render(r, i, terms))
	}
	resp.Groups = GroupByType(resp.Results)

	vocab := e.Vocabulary()
	resp.Suggestions = e.suggester.Suggest(req.Query, req.RecentQueries, vocab.Categories, mergeTags(vocab.Tags, resp.Tags()))
	resp.QueryTime = time.Since(startTime).Milliseconds()

	e.logger.Debug("search completed",
		zap.String("query", req.Query),
		zap.String("filters", parsed.Filters.Encode()),
		zap.Int("total", resp.Total),
		zap.Bool("cached", cached),
		zap.Int64("query_time_ms", resp.QueryTime))
	return resp, nil
}

// Suggest returns suggestions from the vocabulary and recent queries alone.
func (e *Engine) Suggest(query string, recent []string) []string {
	vocab := e.Vocabulary()
	return e.suggester.Suggest(query, recent, vocab.Categories, vocab.Tags)
}

func (e *Engine) fetch(ctx context.Context, query string, filters models.QueryFilters) ([]models.Candidate, error) {
	if timeout := e.config.FetchTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return e.source.Fetch(ctx, query, filters)
}

// Rank filters, fuzzy matches and scores candidates, then sorts them.
// Without free-text terms candidates keep their base relevance. With terms a
// candidate must fuzzy match on title, description or a tag and score above
// the configured minimum.
func (e *Engine) Rank(candidates []models.Candidate, parsed models.ParsedQuery, order models.SortOrder) []Ranked {
	filtered := ApplyFilters(candidates, parsed.Filters)
	terms := ranking.QueryTerms(parsed.MainQuery)

	out := make([]Ranked, 0, len(filtered))
	if len(terms) == 0 {
		for _, c := range filtered {
			score := math.Max(0, c.RelevanceScore)
			c.RelevanceScore = score
			out = append(out, Ranked{Candidate: c, Score: score})
		}
	} else {
		prepared := ranking.PrepareTerms(terms)
		for _, c := range filtered {
			if !e.fuzzyMatches(&c, parsed.MainQuery) {
				continue
			}
			score := e.scorer.ScoreCandidate(&c, prepared)
			if score <= e.config.MinScore {
				continue
			}
			c.RelevanceScore = score
			out = append(out, Ranked{Candidate: c, Score: score})
		}
	}
	SortRanked(out, order)
	return out
}

func (e *Engine) fuzzyMatches(c *models.Candidate, mainQuery string) bool {
	th := e.config.FuzzyThreshold
	if keyword.FuzzyMatch(c.Title, mainQuery, th) || keyword.FuzzyMatch(c.Description, mainQuery, th) {
		return true
	}
	return keyword.FuzzyMatchAny(mainQuery, th, c.Tags...)
}

func (e *Engine) render(r Ranked, position int, terms []string) *models.SearchResult {
	res := &models.SearchResult{
		Candidate:     r.Candidate,
		Score:         r.Score,
		Position:      position,
		TitleSegments: HighlightSegments(r.Candidate.Title, terms),
	}
	if r.Candidate.Description != "" {
		res.Snippet = ExtractSnippet(r.Candidate.Description, terms, e.config.SnippetLength)
		res.SnippetSegments = HighlightSegments(res.Snippet, terms)
	}
	return res
}

// SortRanked orders by descending score, ties in input order. Name and
// category orders then sort by that field, keeping relevance order within ties.
func SortRanked(ranked []Ranked, order models.SortOrder) {
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	switch order {
	case models.SortName:
		sort.SliceStable(ranked, func(i, j int) bool {
			return strings.ToLower(ranked[i].Candidate.Title) < strings.ToLower(ranked[j].Candidate.Title)
		})
	case models.SortCategory:
		sort.SliceStable(ranked, func(i, j int) bool {
			return strings.ToLower(ranked[i].Candidate.Category) < strings.ToLower(ranked[j].Candidate.Category)
		})
	}
}

// GroupByType buckets results by candidate type in display order, omitting empty groups.
func GroupByType(results []*models.SearchResult) []models.ResultGroup {
	groups := make([]models.ResultGroup, 0, len(models.CandidateTypes))
	for _, t := range models.CandidateTypes {
		var bucket []*models.SearchResult
		for _, r := range results {
			if r.Candidate.Type == t {
				bucket = append(bucket, r)
			}
		}
		if len(bucket) > 0 {
			groups = append(groups, models.ResultGroup{Type: t, Results: bucket})
		}
	}
	return groups
}

func mergeTags(known, found []string) []string {
	out := make([]string, 0, len(known)+len(found))
	seen := make(map[string]struct{}, len(known)+len(found))
	for _, list := range [][]string{known, found} {
		for _, t := range list {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
