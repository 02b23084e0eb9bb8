package models

// HistoryEntry is one committed search, persisted as recent-search history.
type HistoryEntry struct {
	Query     string `json:"query"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
}
