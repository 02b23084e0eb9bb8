package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Search Prometheus metrics.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total number of completed searches",
		},
		[]string{"has_filters"},
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of results returned per search",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100, 200},
		},
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Search duration in seconds as measured by the caller",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	ResultClicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_clicks_total",
			Help:      "Total number of selected search results",
		},
		[]string{"type"},
	)
)

var registerSearchOnce sync.Once

// RegisterSearchMetrics registers the search collectors with the default registry.
// Calling it more than once is a no-op.
func RegisterSearchMetrics() {
	registerSearchOnce.Do(func() {
		prometheus.MustRegister(SearchesTotal)
		prometheus.MustRegister(SearchResults)
		prometheus.MustRegister(SearchDuration)
		prometheus.MustRegister(ResultClicksTotal)
	})
}

// ObserveSearch counts a search and its result count.
func ObserveSearch(resultsCount int, hasFilters bool) {
	SearchesTotal.WithLabelValues(strconv.FormatBool(hasFilters)).Inc()
	if resultsCount >= 0 {
		SearchResults.Observe(float64(resultsCount))
	}
}

// ObserveSearchDuration records how long a search took.
func ObserveSearchDuration(d time.Duration) {
	SearchDuration.Observe(d.Seconds())
}

// ObserveClick counts a selected result of the given candidate type.
func ObserveClick(candidateType string) {
	if candidateType == "" {
		candidateType = "unknown"
	}
	ResultClicksTotal.WithLabelValues(candidateType).Inc()
}
