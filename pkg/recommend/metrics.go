package recommend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thematic_recommend_requests_total",
			Help: "Total number of recommend calls",
		},
	)

	CandidatesScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thematic_recommend_candidates_scored_total",
			Help: "Candidate nodes scored against the query themes",
		},
	)

	CandidatesKept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thematic_recommend_candidates_kept_total",
			Help: "Candidate nodes that passed the threshold",
		},
	)

	QueryThemes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "thematic_recommend_query_themes",
			Help:    "Number of themes matched by a query text",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "thematic_recommend_duration_seconds",
			Help:    "Duration of recommend calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
