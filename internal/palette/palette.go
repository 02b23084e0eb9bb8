// Package palette drives the interactive command palette: it debounces input,
// runs searches, keeps only the latest results and handles selection.
package palette

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/devansh3112/product-harmony-sphere/internal/analytics"
	"github.com/devansh3112/product-harmony-sphere/internal/debounce"
	"github.com/devansh3112/product-harmony-sphere/internal/history"
	"github.com/devansh3112/product-harmony-sphere/internal/models"
	"github.com/devansh3112/product-harmony-sphere/internal/search"
)

// Defaults for debouncing and fetching.
const (
	DefaultDelay        = 300 * time.Millisecond
	DefaultFetchTimeout = 2 * time.Second
)

var (
	// ErrClosed is returned by operations that need an open palette.
	ErrClosed = errors.New("palette is closed")
	// ErrNoResult is returned when a selection does not name a visible result.
	ErrNoResult = errors.New("no such result")
)

// Navigator receives the URL of a selected result.
type Navigator interface {
	Navigate(url string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(url string) error

// Navigate calls f.
func (f NavigatorFunc) Navigate(url string) error {
	return f(url)
}

type submission struct {
	seq   uint64
	query string
}

// Palette is safe for concurrent use. Subscribers are called synchronously
// and must not call back into the Palette.
type Palette struct {
	searcher  search.Searcher
	history   *history.Store
	tracker   *analytics.Tracker
	navigator Navigator
	commands  []search.Command
	delay     time.Duration
	timeout   time.Duration
	logger    *zap.Logger
	debouncer *debounce.Debouncer[submission]

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	alive bool
	open  bool
	state State
	query string
	seq   uint64
	resp  *models.SearchResponse

	emitMu sync.Mutex
	subsMu sync.Mutex
	subs   map[int]func(Snapshot)
	nextID int
}

// Option configures a Palette.
type Option func(*Palette)

// WithHistory sets the recent-search store.
func WithHistory(h *history.Store) Option {
	return func(p *Palette) { p.history = h }
}

// WithTracker sets the analytics tracker.
func WithTracker(t *analytics.Tracker) Option {
	return func(p *Palette) { p.tracker = t }
}

// WithNavigator sets where selected results are sent.
func WithNavigator(n Navigator) Option {
	return func(p *Palette) { p.navigator = n }
}

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(p *Palette) {
		if d >= 0 {
			p.delay = d
		}
	}
}

// WithFetchTimeout bounds each search. Zero disables the bound.
func WithFetchTimeout(d time.Duration) Option {
	return func(p *Palette) {
		if d >= 0 {
			p.timeout = d
		}
	}
}

// WithCommands replaces the Tab-completion commands.
func WithCommands(cmds []search.Command) Option {
	return func(p *Palette) { p.commands = cmds }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Palette) {
		if l != nil {
			p.logger = l
		}
	}
}

// New returns a closed palette searching with searcher.
func New(searcher search.Searcher, opts ...Option) *Palette {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Palette{
		searcher:  searcher,
		navigator: NavigatorFunc(func(string) error { return nil }),
		commands:  search.DefaultCommands,
		delay:     DefaultDelay,
		timeout:   DefaultFetchTimeout,
		logger:    zap.NewNop(),
		debouncer: debounce.New[submission](),
		ctx:       ctx,
		cancel:    cancel,
		alive:     true,
		subs:      make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Open shows the palette.
func (p *Palette) Open() {
	p.mu.Lock()
	if !p.alive || p.open {
		p.mu.Unlock()
		return
	}
	p.open = true
	p.mu.Unlock()
	p.emit()
}

// Close hides the palette and discards the query, results and suggestions.
// Pending timers are cancelled and in-flight searches are ignored when they finish.
func (p *Palette) Close() {
	p.mu.Lock()
	if !p.alive {
		p.mu.Unlock()
		return
	}
	p.closeLocked()
	p.mu.Unlock()
	p.emit()
}

func (p *Palette) closeLocked() {
	p.debouncer.Cancel()
	p.open = false
	p.seq++
	p.query = ""
	p.resp = nil
	p.state = Idle
}

// IsOpen reports whether the palette is shown.
func (p *Palette) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// Input replaces the query. It is ignored while the palette is closed.
func (p *Palette) Input(query string) {
	p.mu.Lock()
	if !p.alive || !p.open {
		p.mu.Unlock()
		return
	}
	p.debouncer.Cancel()
	p.seq++
	p.query = query
	if strings.TrimSpace(query) == "" {
		p.resp = nil
		p.state = Idle
		p.mu.Unlock()
		p.emit()
		return
	}
	p.state = Debouncing
	sub := submission{seq: p.seq, query: query}
	p.debouncer.Schedule(sub, p.delay, p.fire)
	p.mu.Unlock()
	p.emit()
}

// ApplySuggestion replaces the query with a suggestion or recent search.
func (p *Palette) ApplySuggestion(s string) {
	p.Input(s)
}

// CompleteCommand performs Tab completion on the current query and returns the
// new query. It reports false when nothing was completed.
func (p *Palette) CompleteCommand() (string, bool) {
	p.mu.Lock()
	if !p.alive || !p.open {
		p.mu.Unlock()
		return "", false
	}
	query := p.query
	p.mu.Unlock()

	completed, ok := search.CompleteCommand(query, p.commands)
	if ok {
		p.Input(completed)
	}
	return completed, ok
}

func (p *Palette) current(sub submission) bool {
	return p.alive && p.open && sub.seq == p.seq
}

func (p *Palette) fire(sub submission) {
	p.mu.Lock()
	if !p.current(sub) {
		p.mu.Unlock()
		return
	}
	p.state = Fetching
	p.mu.Unlock()
	p.emit()

	start := time.Now()
	resp := p.runSearch(sub.query)
	elapsed := time.Since(start)

	p.mu.Lock()
	if !p.current(sub) {
		p.mu.Unlock()
		p.logger.Debug("discarding stale search result", zap.String("query", sub.query))
		return
	}
	p.resp = resp
	p.state = Ready
	p.mu.Unlock()

	if p.tracker != nil {
		p.tracker.RecordSearchPerformance(sub.query, elapsed, resp.Total)
		p.tracker.RecordSearch(sub.query, resp.Total, resp.Filters)
	}
	p.emit()
}

// runSearch never fails: errors are logged and produce an empty response.
func (p *Palette) runSearch(query string) *models.SearchResponse {
	ctx := p.ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	req := &models.SearchRequest{Query: query, RecentQueries: p.recentQueries()}
	resp, err := p.searcher.Search(ctx, req)
	if err == nil && resp != nil {
		return resp
	}
	if err == nil {
		err = errors.New("searcher returned no response")
	}
	p.logger.Warn("search failed", zap.String("query", query), zap.Error(err))
	return &models.SearchResponse{
		Query:   query,
		Results: []*models.SearchResult{},
		Groups:  []models.ResultGroup{},
	}
}

// Select picks the result at position (0-based) of the current result list:
// the query is added to history, a click is recorded, the result URL is handed
// to the navigator and the palette closes.
func (p *Palette) Select(position int) (*models.SearchResult, error) {
	p.mu.Lock()
	if !p.alive || !p.open {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	if p.resp == nil || position < 0 || position >= len(p.resp.Results) {
		p.mu.Unlock()
		return nil, fmt.Errorf("%w at position %d", ErrNoResult, position)
	}
	// Results on screen may predate the typed query while it is debouncing or
	// fetching; the selection belongs to the query that produced them.
	query := p.resp.Query
	result := p.resp.Results[position]
	total := p.resp.Total
	p.closeLocked()
	p.mu.Unlock()

	if p.history != nil {
		if err := p.history.Add(p.ctx, query); err != nil {
			p.logger.Warn("failed to save recent search", zap.String("query", query), zap.Error(err))
		}
	}
	if p.tracker != nil {
		c := &result.Candidate
		p.tracker.RecordResultClick(query, c.Summary(position), c.Category, total)
	}
	var navErr error
	if err := p.navigator.Navigate(result.Candidate.URL); err != nil {
		p.logger.Warn("navigation failed", zap.String("url", result.Candidate.URL), zap.Error(err))
		navErr = fmt.Errorf("navigate to %s: %w", result.Candidate.URL, err)
	}
	p.emit()
	return result, navErr
}

// Submit selects the first result, as the Enter key does.
func (p *Palette) Submit() (*models.SearchResult, error) {
	p.mu.Lock()
	blank := strings.TrimSpace(p.query) == ""
	p.mu.Unlock()
	if blank {
		return nil, fmt.Errorf("%w: empty query", ErrNoResult)
	}
	return p.Select(0)
}

// Placeholder returns the input hint.
func (p *Palette) Placeholder() string {
	return search.Placeholder(p.recentQueries())
}

func (p *Palette) recentQueries() []string {
	if p.history == nil {
		return nil
	}
	return p.history.Queries()
}

// Snapshot returns a copy of the visible state.
func (p *Palette) Snapshot() Snapshot {
	p.mu.Lock()
	snap := Snapshot{
		Open:  p.open,
		State: p.state,
		Query: p.query,
	}
	if p.resp != nil {
		snap.MainQuery = p.resp.MainQuery
		snap.Filters = p.resp.Filters
		snap.Terms = p.resp.Terms
		snap.Results = append([]*models.SearchResult(nil), p.resp.Results...)
		snap.Groups = append([]models.ResultGroup(nil), p.resp.Groups...)
		snap.Suggestions = append([]string(nil), p.resp.Suggestions...)
		snap.Total = p.resp.Total
	}
	p.mu.Unlock()

	if p.history != nil {
		snap.Recent = p.history.Entries()
	}
	snap.Placeholder = p.Placeholder()
	if strings.TrimSpace(snap.Query) == "" {
		snap.Trending = append([]string(nil), search.TrendingSearches...)
	}
	return snap
}

// Subscribe registers fn to receive a Snapshot after every state change and
// returns a function that removes it.
func (p *Palette) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	p.subsMu.Lock()
	defer p.subsMu.Unlock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	return func() {
		p.subsMu.Lock()
		delete(p.subs, id)
		p.subsMu.Unlock()
	}
}

func (p *Palette) emit() {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	p.mu.Lock()
	alive := p.alive
	p.mu.Unlock()
	if !alive {
		return
	}

	p.subsMu.Lock()
	fns := make([]func(Snapshot), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.subsMu.Unlock()
	if len(fns) == 0 {
		return
	}

	snap := p.Snapshot()
	for _, fn := range fns {
		fn(snap)
	}
}

// Shutdown tears the palette down. Afterwards no state changes and no
// snapshots are emitted, and in-flight searches are cancelled.
func (p *Palette) Shutdown() {
	p.mu.Lock()
	if !p.alive {
		p.mu.Unlock()
		return
	}
	p.alive = false
	p.open = false
	p.seq++
	p.debouncer.Stop()
	p.mu.Unlock()
	p.cancel()

	p.subsMu.Lock()
	p.subs = make(map[int]func(Snapshot))
	p.subsMu.Unlock()
}
