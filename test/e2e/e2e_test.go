package e2e

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/devansh3112/product-harmony-sphere/internal/catalog"
	"github.com/devansh3112/product-harmony-sphere/internal/history"
	"github.com/devansh3112/product-harmony-sphere/internal/indexer"
	"github.com/devansh3112/product-harmony-sphere/internal/keyword"
	"github.com/devansh3112/product-harmony-sphere/internal/models"
	"github.com/devansh3112/product-harmony-sphere/internal/palette"
	"github.com/devansh3112/product-harmony-sphere/internal/search"
	"github.com/devansh3112/product-harmony-sphere/internal/storage"
)

const e2eTopN = 5

// corpusSources builds every candidate source over the same corpus.
func corpusSources(t *testing.T, c *Corpus) map[string]catalog.Source {
	t.Helper()
	dir := t.TempDir()
	ctx := context.Background()

	path, err := WriteCatalogFile(dir, c)
	if err != nil {
		t.Fatal(err)
	}
	fileSrc, err := catalog.NewFileSource(path)
	if err != nil {
		t.Fatal(err)
	}

	sqliteStore, err := storage.NewSQLiteStorage(filepath.Join(dir, "sqlite.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = sqliteStore.Close() })
	sqliteIdx := indexer.NewIndexer(sqliteStore, nil)
	if _, err := sqliteIdx.Import(ctx, c.Candidates); err != nil {
		t.Fatal(err)
	}

	bleveStore, err := storage.NewSQLiteStorage(filepath.Join(dir, "bleve.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = bleveStore.Close() })
	kw, err := keyword.NewBleveIndex(filepath.Join(dir, "bleve"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = kw.Close() })
	bleveIdx := indexer.NewIndexer(bleveStore, kw)
	if _, _, err := bleveIdx.ImportFile(ctx, path); err != nil {
		t.Fatal(err)
	}

	return map[string]catalog.Source{
		"static": catalog.NewStaticSource(c.Candidates),
		"file":   fileSrc,
		"sqlite": sqliteIdx,
		"bleve":  bleveIdx,
	}
}

func TestE2E_SearchReturnsCorrectResults(t *testing.T) {
	corpus := BuildCorpus()
	if corpus.TotalQueries == 0 {
		t.Fatal("corpus has no query test cases")
	}
	ctx := context.Background()

	for name, src := range corpusSources(t, corpus) {
		t.Run(name, func(t *testing.T) {
			engine, err := search.NewEngine(src, nil, search.WithVocabulary(catalog.Vocabulary{
				Categories: corpus.Categories,
				Tags:       corpus.Tags,
			}))
			if err != nil {
				t.Fatal(err)
			}
			for _, tc := range corpus.TestCases {
				t.Run(tc.Description, func(t *testing.T) {
					resp, err := engine.Search(ctx, &models.SearchRequest{Query: tc.Query, Limit: e2eTopN})
					if err != nil {
						t.Fatalf("search failed: %v", err)
					}
					got := resultKeys(resp)
					if !containsAny(got, tc.ExpectedKeys) {
						t.Errorf("query %q: expected one of %v in top %d, got %v", tc.Query, tc.ExpectedKeys, e2eTopN, got)
					}
					for i, r := range resp.Results {
						if r.Position != i {
							t.Errorf("result %d has position %d", i, r.Position)
						}
					}
				})
			}
		})
	}
}

func TestE2E_SourcesAgree(t *testing.T) {
	corpus := BuildCorpus()
	ctx := context.Background()
	queries := []string{"cloud", "data category:DLP", "gatewy", "reporting feature:encryption", "tag:servers", "guide docs:all"}

	var (
		baseline map[string][]string
		baseName string
	)
	for name, src := range corpusSources(t, corpus) {
		engine, err := search.NewEngine(src, nil)
		if err != nil {
			t.Fatal(err)
		}
		got := make(map[string][]string, len(queries))
		for _, q := range queries {
			resp, err := engine.Search(ctx, &models.SearchRequest{Query: q, Limit: 200})
			if err != nil {
				t.Fatal(err)
			}
			got[q] = resultKeys(resp)
		}
		if baseline == nil {
			baseline, baseName = got, name
			continue
		}
		for _, q := range queries {
			if strings.Join(got[q], ",") != strings.Join(baseline[q], ",") {
				t.Errorf("query %q: %s returned %v, %s returned %v", q, name, got[q], baseName, baseline[q])
			}
		}
	}
}

func TestE2E_TitleMatchScenario(t *testing.T) {
	engine, err := search.NewEngine(catalog.NewStaticSource(scenarioCandidates()), nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := engine.Search(context.Background(), &models.SearchRequest{Query: "black"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1 || resp.Results[0].Candidate.ID != "7" {
		t.Fatalf("expected only Carbon Black App Control, got %v", resultKeys(resp))
	}
	if resp.Results[0].Score <= 0 {
		t.Errorf("score = %v, want > 0", resp.Results[0].Score)
	}
	if got := search.RenderSegments(resp.Results[0].TitleSegments, search.MarkTag); got != "Carbon <mark>Black</mark> App Control" {
		t.Errorf("rendered title = %q", got)
	}
}

func TestE2E_CategoryFilterScenario(t *testing.T) {
	engine, err := search.NewEngine(catalog.NewStaticSource(scenarioCandidates()), nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := engine.Search(context.Background(), &models.SearchRequest{Query: "category:dlp"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.MainQuery != "" {
		t.Errorf("main query = %q, want empty", resp.MainQuery)
	}
	if resp.Total != 1 || resp.Results[0].Candidate.ID != "30" {
		t.Fatalf("expected only Endpoint DLP, got %v", resultKeys(resp))
	}
	if resp.Results[0].Score != 0.9 {
		t.Errorf("score = %v, want base relevance 0.9", resp.Results[0].Score)
	}
}

// slowSource delays each fetch by an amount that depends on the query so
// an older search can finish after a newer one.
type slowSource struct {
	inner  catalog.Source
	delays map[string]time.Duration
	calls  atomic.Int32
}

func (s *slowSource) Fetch(ctx context.Context, query string, filters models.QueryFilters) ([]models.Candidate, error) {
	s.calls.Add(1)
	select {
	case <-time.After(s.delays[query]):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.inner.Fetch(ctx, query, filters)
}

func TestE2E_PaletteTypingSession(t *testing.T) {
	corpus := BuildCorpus()
	src := &slowSource{
		inner:  catalog.NewStaticSource(corpus.Candidates),
		delays: map[string]time.Duration{"web": 300 * time.Millisecond, "vault": 10 * time.Millisecond},
	}
	engine, err := search.NewEngine(src, nil)
	if err != nil {
		t.Fatal(err)
	}
	hist := history.NewStore(storage.NewMemoryStore())
	var (
		mu        sync.Mutex
		navigated string
	)
	p := palette.New(engine,
		palette.WithDelay(40*time.Millisecond),
		palette.WithHistory(hist),
		palette.WithLogger(zap.NewNop()),
		palette.WithNavigator(palette.NavigatorFunc(func(url string) error {
			mu.Lock()
			navigated = url
			mu.Unlock()
			return nil
		})),
	)
	defer p.Shutdown()
	ready := make(chan palette.Snapshot, 8)
	p.Subscribe(func(s palette.Snapshot) {
		if s.State != palette.Ready {
			return
		}
		select {
		case ready <- s:
		default:
		}
	})

	p.Open()
	// Keystrokes inside the debounce window collapse into one search.
	for _, q := range []string{"w", "we", "web"} {
		p.Input(q)
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(80 * time.Millisecond)
	// "web" is now in flight; "vault" overtakes it.
	p.Input("vault")

	var snap palette.Snapshot
	select {
	case snap = <-ready:
	case <-time.After(3 * time.Second):
		t.Fatal("palette never became ready")
	}
	if snap.Query != "vault" {
		t.Fatalf("first ready snapshot is for %q, want vault", snap.Query)
	}
	time.Sleep(400 * time.Millisecond)
	if got := p.Snapshot(); got.Query != "vault" || got.State != palette.Ready {
		t.Fatalf("stale search replaced state: query=%q state=%v", got.Query, got.State)
	}
	if calls := src.calls.Load(); calls != 2 {
		t.Errorf("source fetched %d times, want 2 (web, vault)", calls)
	}

	if _, err := p.Submit(); err != nil {
		t.Fatal(err)
	}
	mu.Lock()
	defer mu.Unlock()
	if navigated != "/products/109" {
		t.Errorf("navigated to %q, want /products/109", navigated)
	}
	if q, _ := hist.MostRecent(); q != "vault" {
		t.Errorf("most recent search = %q", q)
	}
	if p.IsOpen() {
		t.Error("palette should close after selection")
	}
}

func scenarioCandidates() []models.Candidate {
	return []models.Candidate{
		{ID: "7", Title: "Carbon Black App Control", Type: models.TypeProduct, Category: "Carbon Black", Tags: []string{"security", "software"}, URL: "/products/7", RelevanceScore: 0.95},
		{ID: "30", Title: "Endpoint DLP", Type: models.TypeProduct, Category: "DLP", Tags: []string{"data", "endpoint"}, URL: "/products/30", RelevanceScore: 0.9},
	}
}

func resultKeys(resp *models.SearchResponse) []string {
	keys := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		keys = append(keys, r.Candidate.Key())
	}
	return keys
}

func containsAny(got []string, expected []string) bool {
	set := make(map[string]bool)
	for _, id := range got {
		set[id] = true
	}
	for _, id := range expected {
		if set[id] {
			return true
		}
	}
	return false
}
