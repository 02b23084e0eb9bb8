package palette

import "github.com/devansh3112/product-harmony-sphere/internal/models"

// State is the lifecycle phase of the current query.
type State int

const (
	// Idle means there is no query.
	Idle State = iota
	// Debouncing means input was received and the debounce timer is pending.
	Debouncing
	// Fetching means the search for the latest input is in flight.
	Fetching
	// Ready means results and suggestions for the latest input are available.
	Ready
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Debouncing:
		return "debouncing"
	case Fetching:
		return "fetching"
	case Ready:
		return "ready"
	}
	return "unknown"
}

// Snapshot is a copy of the palette's visible state.
type Snapshot struct {
	Open        bool
	State       State
	Query       string
	MainQuery   string
	Filters     models.QueryFilters
	Terms       []string
	Results     []*models.SearchResult
	Groups      []models.ResultGroup
	Suggestions []string
	Total       int
	Recent      []models.HistoryEntry
	Placeholder string
	// Trending is filled while the query is empty.
	Trending []string
}

// Loading reports whether a search is in flight.
func (s Snapshot) Loading() bool {
	return s.State == Fetching
}

// Empty reports whether a finished search found nothing.
func (s Snapshot) Empty() bool {
	return s.State == Ready && len(s.Results) == 0
}
