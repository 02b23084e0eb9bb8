package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/devansh3112/product-harmony-sphere/internal/analytics"
	"github.com/devansh3112/product-harmony-sphere/internal/catalog"
	"github.com/devansh3112/product-harmony-sphere/internal/config"
	"github.com/devansh3112/product-harmony-sphere/internal/history"
	"github.com/devansh3112/product-harmony-sphere/internal/indexer"
	"github.com/devansh3112/product-harmony-sphere/internal/keyword"
	"github.com/devansh3112/product-harmony-sphere/internal/ranking"
	"github.com/devansh3112/product-harmony-sphere/internal/search"
	"github.com/devansh3112/product-harmony-sphere/internal/storage"
	"github.com/devansh3112/product-harmony-sphere/internal/watcher"
)

// Components holds initialized services.
type Components struct {
	Source       catalog.Source
	Editor       catalog.Editor
	FileSource   *catalog.FileSource
	Storage      *storage.SQLiteStorage
	KeywordIndex *keyword.BleveIndex
	Indexer      *indexer.Indexer
	Engine       *search.Engine
	History      *history.Store
	Tracker      *analytics.Tracker
	Watcher      *watcher.Watcher

	redisSink   *analytics.RedisStreamSink
	extras      []*catalog.FileSource
	logger      *zap.Logger
	watch       bool
	watchWait   time.Duration
	vocab       catalog.Vocabulary
	importVocab catalog.Vocabulary
}

// Close flushes analytics and releases storage. Safe to call on partially built components.
func (c *Components) Close() {
	if c.Watcher != nil {
		c.Watcher.Stop()
	}
	if c.Tracker != nil {
		c.Tracker.Close()
	}
	if c.redisSink != nil {
		_ = c.redisSink.Close()
	}
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

// Count returns the number of candidates in the configured sources.
func (c *Components) Count(ctx context.Context) (int64, error) {
	var n int64
	switch {
	case c.Indexer != nil:
		count, err := c.Indexer.Count(ctx)
		if err != nil {
			return 0, err
		}
		n = count
	case c.FileSource != nil:
		n = int64(c.FileSource.Len())
	default:
		if s, ok := c.Editor.(interface{ Len() int }); ok {
			n = int64(s.Len())
		}
	}
	for _, fs := range c.extras {
		n += int64(fs.Len())
	}
	return n, nil
}

// vocabulary combines the configured vocabulary, the catalog files' and the reference one.
func (c *Components) vocabulary() catalog.Vocabulary {
	files := c.importVocab
	if c.FileSource != nil {
		files = files.Merge(c.FileSource.Vocabulary())
	}
	for _, fs := range c.extras {
		files = files.Merge(fs.Vocabulary())
	}
	return c.vocab.Or(files).Or(catalog.ReferenceVocabulary())
}

// catalogFiles maps the absolute path of every served catalog file to its source.
func (c *Components) catalogFiles() map[string]*catalog.FileSource {
	files := make(map[string]*catalog.FileSource)
	add := func(fs *catalog.FileSource) {
		abs, err := filepath.Abs(fs.Path())
		if err != nil {
			abs = fs.Path()
		}
		files[filepath.Clean(abs)] = fs
	}
	if c.FileSource != nil {
		add(c.FileSource)
	}
	for _, fs := range c.extras {
		add(fs)
	}
	return files
}

// StartWatcher reloads catalog files on change when watching is enabled. It does
// nothing when no catalog file is served.
func (c *Components) StartWatcher(ctx context.Context) error {
	if !c.watch || c.Watcher != nil {
		return nil
	}
	files := c.catalogFiles()
	if len(files) == 0 {
		return nil
	}
	w := watcher.NewWatcher(nil,
		func(path string) {
			fs, ok := files[path]
			if !ok {
				return
			}
			if err := fs.Reload(); err != nil {
				c.logger.Warn("catalog reload failed, keeping previous catalog", zap.String("path", path), zap.Error(err))
				return
			}
			c.Engine.SetVocabulary(c.vocabulary())
			c.Engine.Invalidate()
			c.logger.Info("catalog reloaded", zap.String("path", path), zap.Int("candidates", fs.Len()))
		},
		func(path string) {
			c.logger.Warn("catalog file removed, serving last loaded catalog", zap.String("path", path))
		},
		watcher.WithLogger(c.logger),
		watcher.WithDebounce(c.watchWait),
	)
	for path := range files {
		if err := w.AddFile(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	c.logger.Debug("watching catalog files", zap.Strings("files", w.Files()))
	c.Watcher = w
	return nil
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (_ *Components, err error) {
	c := &Components{
		logger:    logger,
		watch:     cfg.Watch.EnabledOrDefault(),
		watchWait: time.Duration(cfg.Watch.DebounceMS) * time.Millisecond,
		vocab:     catalog.Vocabulary{Categories: cfg.Vocabulary.Categories, Tags: cfg.Vocabulary.Tags},
	}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()
	ctx := context.Background()

	needsStore := cfg.Search.Source == config.SourceSQLite || cfg.Search.Source == config.SourceBleve ||
		cfg.History.Backend == config.HistorySQLite
	if needsStore {
		c.Storage, err = storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
	}

	switch cfg.Search.Source {
	case config.SourceStatic:
		static := catalog.NewReferenceSource(
			catalog.WithLatency(time.Duration(cfg.Search.SimulatedLatencyMS) * time.Millisecond))
		c.Source, c.Editor = static, static
	case config.SourceFile:
		c.FileSource, err = catalog.NewFileSource(cfg.Storage.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog file: %w", err)
		}
		c.Source = c.FileSource
	case config.SourceSQLite, config.SourceBleve:
		if cfg.Search.Source == config.SourceBleve {
			c.KeywordIndex, err = keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
			}
		}
		idxOpts := []indexer.IndexerOption{}
		if debug {
			idxOpts = append(idxOpts, indexer.WithLogger(logger))
		}
		if c.KeywordIndex != nil {
			c.Indexer = indexer.NewIndexer(c.Storage, c.KeywordIndex, idxOpts...)
		} else {
			c.Indexer = indexer.NewIndexer(c.Storage, nil, idxOpts...)
		}
		c.importVocab, err = c.seedCatalog(ctx, cfg)
		if err != nil {
			return nil, err
		}
		c.Source, c.Editor = c.Indexer, c.Indexer
	default:
		return nil, fmt.Errorf("unknown search source %q", cfg.Search.Source)
	}

	if len(cfg.Storage.ExtraCatalogPaths) > 0 {
		sources := []catalog.Source{c.Source}
		for _, path := range cfg.Storage.ExtraCatalogPaths {
			fs, err := catalog.NewFileSource(path)
			if err != nil {
				return nil, fmt.Errorf("failed to load extra catalog: %w", err)
			}
			c.extras = append(c.extras, fs)
			sources = append(sources, fs)
		}
		c.Source = catalog.NewMultiSource(sources...)
	}

	c.Engine, err = search.NewEngine(c.Source, &cfg.Search,
		search.WithLogger(logger),
		search.WithScorer(ranking.NewScorer(&cfg.Ranking)),
		search.WithVocabulary(c.vocabulary()),
	)
	if err != nil {
		return nil, err
	}

	if c.History, err = c.newHistory(ctx, cfg); err != nil {
		return nil, err
	}
	if c.Tracker, err = c.newTracker(cfg); err != nil {
		return nil, err
	}

	logger.Debug("components initialized",
		zap.String("source", cfg.Search.Source),
		zap.Int("extra_catalogs", len(c.extras)),
		zap.String("history", cfg.History.Backend),
		zap.Strings("sinks", cfg.Analytics.Sinks),
		zap.String("session_id", c.Tracker.SessionID()),
	)
	return c, nil
}

// seedCatalog fills an empty store from catalog_path, or from the reference
// dataset when no catalog file is configured, and rebuilds a Bleve index that
// is out of step with the store. It returns the vocabulary of the imported file.
func (c *Components) seedCatalog(ctx context.Context, cfg *config.Config) (catalog.Vocabulary, error) {
	n, err := c.Indexer.Count(ctx)
	if err != nil {
		return catalog.Vocabulary{}, fmt.Errorf("failed to count catalog: %w", err)
	}
	if n == 0 {
		if cfg.Storage.CatalogPath != "" {
			imported, vocab, err := c.Indexer.ImportFile(ctx, cfg.Storage.CatalogPath)
			if err != nil {
				return catalog.Vocabulary{}, fmt.Errorf("failed to import catalog: %w", err)
			}
			c.logger.Info("catalog imported", zap.String("path", cfg.Storage.CatalogPath), zap.Int("candidates", imported))
			return vocab, nil
		}
		imported, err := c.Indexer.Import(ctx, catalog.ReferenceCandidates())
		if err != nil {
			return catalog.Vocabulary{}, fmt.Errorf("failed to seed reference catalog: %w", err)
		}
		c.logger.Info("empty catalog seeded with reference dataset", zap.Int("candidates", imported))
		return catalog.Vocabulary{}, nil
	}
	if c.KeywordIndex != nil {
		docs, err := c.KeywordIndex.DocCount()
		if err != nil {
			return catalog.Vocabulary{}, fmt.Errorf("failed to count keyword index: %w", err)
		}
		if int64(docs) != n {
			rebuilt, err := c.Indexer.Rebuild(ctx)
			if err != nil {
				return catalog.Vocabulary{}, err
			}
			c.logger.Info("keyword index rebuilt", zap.Uint64("indexed", docs), zap.Int("candidates", rebuilt))
		}
	}
	return catalog.Vocabulary{}, nil
}

func (c *Components) newHistory(ctx context.Context, cfg *config.Config) (*history.Store, error) {
	var kv storage.KeyValueStore
	switch cfg.History.Backend {
	case config.HistoryFile:
		fileStore, err := storage.NewFileStore(cfg.Storage.HistoryDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize history dir: %w", err)
		}
		kv = fileStore
	case config.HistorySQLite:
		kv = c.Storage.KV()
	case config.HistoryMemory:
		kv = storage.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.History.Backend)
	}
	h := history.NewStore(kv,
		history.WithKey(cfg.History.Key),
		history.WithMaxEntries(cfg.History.MaxEntries),
		history.WithLogger(c.logger),
	)
	if err := h.Load(ctx); err != nil {
		c.logger.Warn("recent searches unavailable", zap.Error(err))
	}
	return h, nil
}

func (c *Components) newTracker(cfg *config.Config) (*analytics.Tracker, error) {
	var sinks analytics.MultiSink
	for _, name := range cfg.Analytics.Sinks {
		switch strings.ToLower(name) {
		case config.SinkLog:
			sinks = append(sinks, analytics.NewLogSink(c.logger))
		case config.SinkPrometheus:
			sinks = append(sinks, analytics.NewPrometheusSink())
		case config.SinkRedis:
			sink, err := analytics.NewRedisStreamSinkFromURL(cfg.Analytics.RedisURL, cfg.Analytics.RedisStream)
			if err != nil {
				return nil, err
			}
			c.redisSink = sink
			sinks = append(sinks, sink)
		default:
			return nil, fmt.Errorf("unknown analytics sink %q", name)
		}
	}
	var sink analytics.Sink = analytics.Discard
	if len(sinks) > 0 {
		sink = sinks
	}
	return analytics.NewTracker(sink,
		analytics.WithLogger(c.logger),
		analytics.WithBufferSize(cfg.Analytics.BufferSize),
	), nil
}
