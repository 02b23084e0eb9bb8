// Package main is the portfolio search CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/devansh3112/product-harmony-sphere/internal/cli"
	"github.com/devansh3112/product-harmony-sphere/internal/config"
	"github.com/devansh3112/product-harmony-sphere/internal/models"
	"github.com/devansh3112/product-harmony-sphere/internal/palette"
	"github.com/devansh3112/product-harmony-sphere/internal/server"
	"github.com/devansh3112/product-harmony-sphere/internal/storage"
	"github.com/devansh3112/product-harmony-sphere/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/portfolio/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory so that running from a project dir picks up
// the project's config. A missing default config yields the built-in defaults.
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			cfg := &config.Config{}
			config.ApplyDefaults(cfg)
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "palette":
		runPalette()
	case "import":
		runImport()
	case "history":
		runHistory()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("portfolio version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup loads the config, builds a logger and initializes components. It exits on failure.
func setup(configPath string, debugFlag, cliLogger bool) (*config.Config, string, *zap.Logger, *Components) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debugFlag
	newLogger := utils.NewLogger
	if cliLogger {
		newLogger = utils.NewCLILogger
	}
	logger, err := newLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	return cfg, resolved, logger, components
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (catalog reloads, analytics events, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, logger, components := setup(*configPath, *debug, false)
	defer logger.Sync()
	defer components.Close()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.String("source", cfg.Search.Source),
		zap.Bool("debug", cfg.Debug || *debug),
	)

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := components.StartWatcher(watchCtx); err != nil {
		logger.Fatal("Failed to start catalog watcher", zap.Error(err))
	}

	opts := []server.Option{
		server.WithHistory(components.History),
		server.WithTracker(components.Tracker),
		server.WithCounter(components),
	}
	if components.Editor != nil {
		opts = append(opts, server.WithEditor(components.Editor))
	}
	srv := server.NewServer(components.Engine, cfg, logger, opts...)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// printSearchUsage prints search subcommand usage and query syntax hints.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: portfolio search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Results are grouped by type: products, categories, documentation and features.
  • Narrow with filters: category:<name>, tag:<tag>, type:<type>.
  • docs:<anything> adds documentation; feature:<text> adds matching features.
  • Typos within two edits still match (e.g. "endpiont").

Examples:
  portfolio search endpoint
  portfolio search "endpoint security"              # same as endpoint security
  portfolio search dlp category:DLP                 # filtered
  portfolio search --sort name --limit 5 security
  portfolio search --output json cloud              # structured JSON
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting (e.g. "endpoint security" vs endpoint security).
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument, so "portfolio search cloud -limit 5"
// would otherwise leave -limit unparsed.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", "", "server URL; empty searches the configured catalog directly")
	sortOrder := fs.String("sort", "relevance", "result order: relevance, name, or category")
	limit := fs.Int("limit", 0, "maximum number of results (0 = config default)")
	outputFormat := fs.String("output", "text", "output format: text (grouped), compact (one result per line), or json (parseable)")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	order, err := models.ParseSortOrder(*sortOrder)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	req := &models.SearchRequest{Query: queryStr, Sort: order, Limit: *limit}

	if *serverURL != "" {
		response, err := searchViaHTTP(*serverURL, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	_, _, logger, components := setup(*configPath, false, true)
	defer logger.Sync()
	defer components.Close()

	start := time.Now()
	req.RecentQueries = components.History.Queries()
	response, err := components.Engine.Search(context.Background(), req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	components.Tracker.RecordSearchPerformance(queryStr, time.Since(start), response.Total)
	components.Tracker.RecordSearch(queryStr, response.Total, response.Filters)
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL string, req *models.SearchRequest) (*models.SearchResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(strings.TrimRight(serverURL, "/")+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runPalette() {
	fs := flag.NewFlagSet("palette", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, _, logger, components := setup(*configPath, *debug, true)
	defer logger.Sync()
	defer components.Close()

	out := newSyncWriter(os.Stdout)
	p := palette.New(components.Engine,
		palette.WithHistory(components.History),
		palette.WithTracker(components.Tracker),
		palette.WithDelay(cfg.Search.DebounceDelay()),
		palette.WithFetchTimeout(cfg.Search.FetchTimeout()),
		palette.WithLogger(logger),
		palette.WithNavigator(palette.NavigatorFunc(func(url string) error {
			fmt.Fprintf(out, "Opening %s\n", url)
			return nil
		})),
	)
	defer p.Shutdown()

	fmt.Fprintln(out, "Type to search. Commands: :open [N], :enter, :tab, :use N, :close, :quit")
	wait := cfg.Search.DebounceDelay() + cfg.Search.FetchTimeout() + time.Second
	if err := runPaletteLoop(p, os.Stdin, out, wait); err != nil {
		fmt.Fprintf(os.Stderr, "Palette failed: %v\n", err)
		os.Exit(1)
	}
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: portfolio import [flags] <catalog.yaml>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg, _, logger, components := setup(*configPath, false, true)
	defer logger.Sync()
	defer components.Close()

	if components.Indexer == nil {
		fmt.Fprintf(os.Stderr, "Import needs search.source %q or %q (configured: %q)\n",
			config.SourceSQLite, config.SourceBleve, cfg.Search.Source)
		os.Exit(1)
	}
	n, _, err := components.Indexer.ImportFile(context.Background(), path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Imported %d candidate(s) from %s\n", n, path)
}

func runHistory() {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	clearAll := fs.Bool("clear", false, "remove all recent searches")
	_ = fs.Parse(os.Args[2:])

	_, _, logger, components := setup(*configPath, false, true)
	defer logger.Sync()
	defer components.Close()

	if *clearAll {
		if err := components.History.Clear(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Clear failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Recent searches cleared")
		return
	}
	cli.WriteHistory(os.Stdout, components.History.Entries())
}

// statusResponse is the shape of GET /api/v1/status.
type statusResponse struct {
	Source         string `json:"source"`
	Candidates     *int64 `json:"candidates,omitempty"`
	CachedQueries  int    `json:"cached_queries"`
	RecentSearches int    `json:"recent_searches"`
	Editable       bool   `json:"editable"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	DiskUsageBytes *int64 `json:"disk_usage_bytes,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", "", "server URL; empty reads the configured catalog directly")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, logger, components := setup(*configPath, false, true)
		defer logger.Sync()
		defer components.Close()
		n, err := components.Count(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count candidates failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Source:         cfg.Search.Source,
			Candidates:     &n,
			RecentSearches: len(components.History.Entries()),
			Editable:       components.Editor != nil,
		}
		st := cfg.Storage
		if diskBytes, err := storage.DiskUsageBytes(st.DatabasePath, st.BleveIndexPath, st.CatalogPath, st.HistoryDir); err == nil {
			status.DiskUsageBytes = &diskBytes
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		writeStatusText(os.Stdout, status)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func writeStatusText(w io.Writer, status statusResponse) {
	fmt.Fprintf(w, "source:            %s\n", status.Source)
	if status.Candidates != nil {
		fmt.Fprintf(w, "candidates:        %d\n", *status.Candidates)
	}
	fmt.Fprintf(w, "recent_searches:   %d\n", status.RecentSearches)
	fmt.Fprintf(w, "editable:          %t\n", status.Editable)
	if status.UptimeSeconds > 0 {
		fmt.Fprintf(w, "cached_queries:    %d\n", status.CachedQueries)
		fmt.Fprintf(w, "uptime_seconds:    %d\n", status.UptimeSeconds)
	}
	if status.DiskUsageBytes != nil {
		fmt.Fprintf(w, "disk_usage_bytes:  %d   # catalog, index and history on disk\n", *status.DiskUsageBytes)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(strings.TrimRight(serverURL, "/") + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

func printUsage() {
	fmt.Println(`portfolio - Product portfolio search

Usage:
  portfolio server [flags]           Start the HTTP server
  portfolio search [flags] <query>   Search the catalog
  portfolio palette [flags]          Interactive command palette
  portfolio import [flags] <file>    Import a YAML catalog into the SQLite store
  portfolio history [flags]          Show or clear recent searches
  portfolio status [flags]           Show catalog, history and storage status
  portfolio version                  Show version
  portfolio help                     Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/portfolio/config.yaml)
  --debug            Enable debug logging

Search Flags:
  --config string    Config file path (for direct mode)
  --server string    Server URL, e.g. http://localhost:8080 (default: search directly)
  --sort string      relevance, name, or category (default: relevance)
  --limit int        Maximum number of results (default from config)
  --output string    text, compact, or json (default: text)

Palette commands:
  <text>             Replace the query
  :open [N]          Open the palette, or select result N
  :enter             Select the first result
  :tab               Complete a command option (category:, tag:, docs:, feature:)
  :use N             Apply suggestion N
  :close             Close the palette
  :quit              Exit

History Flags:
  --clear            Remove all recent searches

Examples:
  portfolio server
  portfolio search endpoint security
  portfolio search --output json "dlp category:DLP"
  portfolio import catalog.yaml
  portfolio palette
  portfolio status --server http://localhost:8080`)
}
