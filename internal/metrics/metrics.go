package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Request metrics
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "citations_requests_total",
			Help: "Total number of citation API requests",
		},
		[]string{"endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "citations_request_duration_seconds",
			Help:    "Citation API request duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"endpoint"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "citations_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)

	// Extraction metrics
	CitationsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "citations_extracted_total",
			Help: "Canonical citations produced, by endpoint and origin",
		},
		[]string{"endpoint", "origin"}, // origin: annotations|markdown
	)

	DuplicatesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "citations_duplicates_dropped_total",
			Help: "Citations discarded because their URL was already seen",
		},
		[]string{"endpoint"},
	)

	CitationsPerMessage = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "citations_per_message",
			Help:    "Number of canonical citations per message",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
		[]string{"endpoint"},
	)
)

// RecordAggregation records the outcome of a single message aggregation served by endpoint.
// The same message sent to extract and render is counted once under each label.
func RecordAggregation(endpoint string, fromAnnotations, fromMarkdown, duplicates int) {
	CitationsExtracted.WithLabelValues(endpoint, "annotations").Add(float64(fromAnnotations))
	CitationsExtracted.WithLabelValues(endpoint, "markdown").Add(float64(fromMarkdown))
	DuplicatesDropped.WithLabelValues(endpoint).Add(float64(duplicates))
	CitationsPerMessage.WithLabelValues(endpoint).Observe(float64(fromAnnotations + fromMarkdown))
}

// RecordRequest records a finished API request.
func RecordRequest(endpoint, status string, seconds float64) {
	RequestsTotal.WithLabelValues(endpoint, status).Inc()
	RequestDuration.WithLabelValues(endpoint).Observe(seconds)
}
