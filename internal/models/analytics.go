package models

// SelectedResult summarizes the candidate a user picked.
type SelectedResult struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	Position int    `json:"position"`
}

// AnalyticsEvent is a write-only search telemetry record.
type AnalyticsEvent struct {
	Query          string            `json:"query"`
	Category       string            `json:"category,omitempty"`
	ResultsCount   int               `json:"resultsCount"`
	Timestamp      int64             `json:"timestamp"`
	SelectedResult *SelectedResult   `json:"selectedResult,omitempty"`
	Filters        map[string]string `json:"filters,omitempty"`
	// SearchDuration is wall-clock milliseconds.
	SearchDuration *float64 `json:"searchDuration,omitempty"`
	SessionID      string   `json:"sessionId,omitempty"`
}
