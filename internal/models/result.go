package models

// Segment is a run of text that either matched a query term or did not.
type Segment struct {
	Text  string `json:"text"`
	Match bool   `json:"match,omitempty"`
}

// SearchResult is a single ranked candidate with rendering helpers.
type SearchResult struct {
	Candidate       Candidate `json:"candidate"`
	Score           float64   `json:"score"`
	Position        int       `json:"position"`
	TitleSegments   []Segment `json:"title_segments"`
	Snippet         string    `json:"snippet,omitempty"`
	SnippetSegments []Segment `json:"snippet_segments,omitempty"`
}

// ResultGroup holds the results of one candidate type in ranked order.
type ResultGroup struct {
	Type    CandidateType   `json:"type"`
	Results []*SearchResult `json:"results"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Query       string          `json:"query"`
	MainQuery   string          `json:"main_query"`
	Filters     QueryFilters    `json:"filters,omitempty"`
	Terms       []string        `json:"terms,omitempty"`
	Results     []*SearchResult `json:"results"`
	Groups      []ResultGroup   `json:"groups"`
	Suggestions []string        `json:"suggestions,omitempty"`
	// Total counts ranked results before the limit is applied.
	Total     int   `json:"total"`
	QueryTime int64 `json:"query_time_ms"`
	Cached    bool  `json:"cached,omitempty"`
}

// Tags returns the distinct tags of all results in first-seen order.
func (r *SearchResponse) Tags() []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, res := range r.Results {
		for _, t := range res.Candidate.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	return tags
}
