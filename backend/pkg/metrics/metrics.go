package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors are registered on the default registry through promauto and
// exposed by the server's /metrics endpoint.
var (
	// StoreOperations counts store calls, labeled by backend, operation and outcome.
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinship_store_operations_total",
			Help: "Total number of store operations",
		},
		[]string{"backend", "op", "outcome"},
	)

	// StoreLatency measures store call latency.
	StoreLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kinship_store_operation_duration_seconds",
			Help:    "Duration of store operations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"backend", "op"},
	)

	// MirrorWriteFailures counts index mirror writes that failed after the edge
	// row itself was written. These leave the by-source/by-target views lagging.
	MirrorWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinship_mirror_write_failures_total",
			Help: "Index mirror writes that failed and were tolerated",
		},
		[]string{"index", "op"},
	)

	// PathSearches counts FindPath calls by result.
	PathSearches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinship_path_searches_total",
			Help: "Total number of path searches",
		},
		[]string{"result"},
	)

	// SearchQueries counts fuzzy search queries.
	SearchQueries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kinship_search_queries_total",
			Help: "Total number of search index queries",
		},
	)

	// SearchCandidates observes the deduplicated candidate count per query.
	SearchCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kinship_search_candidates",
			Help:    "Deduplicated candidates scored per search query",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// CatalogSeedFailures counts vocabulary entries that failed to seed.
	CatalogSeedFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kinship_catalog_seed_failures_total",
			Help: "Relationship type entries that failed during seeding",
		},
	)
)
