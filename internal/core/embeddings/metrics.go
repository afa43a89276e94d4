package embeddings

import (
	"time"

	"github.com/notefuse/notefuse/internal/platform/observability"
)

// Metric status constants.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// metricsModel labels embedding metrics; the registry does not track the
// per-provider model, so the provider name doubles as the model label.
func metricsModel(provider string) string {
	return provider
}

// RecordEmbeddingRequest records an embedding request metric.
func RecordEmbeddingRequest(provider string, success bool) {
	status := StatusSuccess
	if !success {
		status = StatusError
	}

	observability.EmbeddingRequests.WithLabelValues(provider, metricsModel(provider), status).Inc()
}

// RecordEmbeddingLatency records embedding request latency.
func RecordEmbeddingLatency(provider string, duration time.Duration) {
	observability.EmbeddingLatency.WithLabelValues(provider, metricsModel(provider)).Observe(duration.Seconds())
}

// RecordEmbeddingFallback records a fallback event.
func RecordEmbeddingFallback(fromProvider, toProvider string) {
	observability.EmbeddingFallbacks.WithLabelValues(fromProvider, toProvider).Inc()
}

// SetEmbeddingProviderAvailable sets the availability status of a provider.
func SetEmbeddingProviderAvailable(provider string, available bool) {
	value := 0.0
	if available {
		value = 1.0
	}

	observability.EmbeddingProviderAvailable.WithLabelValues(provider).Set(value)
}
