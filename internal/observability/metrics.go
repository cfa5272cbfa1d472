package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ContentMutations counts create/update/delete operations by content kind.
	ContentMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "incognitor_content_mutations_total",
		Help: "Total number of content mutations by kind and operation",
	}, []string{"kind", "operation"})

	// SearchIndexLag counts search index projection events by outcome.
	SearchIndexEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "incognitor_search_index_events_total",
		Help: "Total number of search index projection events by outcome",
	}, []string{"kind", "outcome"})

	// SearchQueryLatency records search query latency per kind.
	SearchQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "incognitor_search_query_latency_seconds",
		Help:    "Search query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	// UploadBytes counts bytes written to the file store by category.
	UploadBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "incognitor_upload_bytes_total",
		Help: "Total bytes written to the file store",
	}, []string{"category"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "incognitor_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})
)
