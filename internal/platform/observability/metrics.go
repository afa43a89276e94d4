package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EmbeddingRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notefuse_embedding_requests_total",
		Help: "The total number of embedding provider requests",
	}, []string{"provider", "model", "status"})

	EmbeddingLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notefuse_embedding_request_duration_seconds",
		Help:    "Duration of embedding provider requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider", "model"})

	EmbeddingFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notefuse_embedding_fallbacks_total",
		Help: "The total number of embedding provider fallback events",
	}, []string{"from", "to"})

	EmbeddingProviderAvailable = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "notefuse_embedding_provider_available",
		Help: "Whether an embedding provider is currently available (1) or not (0)",
	}, []string{"provider"})

	EmbeddingCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notefuse_embedding_cache_hits_total",
		Help: "The total number of embedding cache hits",
	})

	EmbeddingCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notefuse_embedding_cache_misses_total",
		Help: "The total number of embedding cache misses",
	})

	NotesLoaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notefuse_notes_loaded_total",
		Help: "The total number of note files loaded",
	})

	SectionsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notefuse_sections_skipped_total",
		Help: "The total number of malformed sections skipped during ingest",
	})

	HeaderClusters = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notefuse_header_clusters_total",
		Help: "The total number of header clusters formed",
	})

	BulletsRetained = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notefuse_bullets_retained_total",
		Help: "The total number of bullets retained after deduplication",
	})

	BulletsConflicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notefuse_bullets_conflicted_total",
		Help: "The total number of bullets recorded as conflicts",
	})

	MergeRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notefuse_merge_runs_total",
		Help: "The total number of merge runs",
	}, []string{"status"})
)
