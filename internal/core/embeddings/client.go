// Package embeddings provides text embedding generation for the merge
// pipeline.
//
// Providers are registered behind a Registry with priority ordering, a
// circuit breaker per provider, and transport-failure fallback. Vectors are
// contracted to be unit-norm with a fixed dimension; violations abort the
// run. A per-run Cache on top of the registry deduplicates embedding work.
package embeddings

import (
	"github.com/rs/zerolog"
)

// Config holds configuration for creating an embedding client.
type Config struct {
	// OpenAI settings
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIRateLimit int

	// Target dimensions for output vectors
	Dimensions int

	// Circuit breaker settings
	CircuitBreakerConfig CircuitBreakerConfig
}

// NewClient creates an embedding client with the configured providers. With
// no usable API key the mock provider serves deterministic vectors, which
// keeps offline runs and tests working end to end.
func NewClient(cfg Config, logger *zerolog.Logger) Client {
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	registry := NewRegistry(cfg.Dimensions, logger)

	if cfg.OpenAIAPIKey != "" && cfg.OpenAIAPIKey != mockAPIKey {
		registry.Register(NewOpenAIProvider(OpenAIConfig{
			APIKey:     cfg.OpenAIAPIKey,
			Model:      cfg.OpenAIModel,
			Dimensions: cfg.Dimensions,
			RateLimit:  cfg.OpenAIRateLimit,
		}), cfg.CircuitBreakerConfig)
	}

	if registry.ProviderCount() == 0 {
		logger.Warn().Msg("no embedding providers configured, using mock provider")

		registry.Register(NewMockProviderWithDimensions(cfg.Dimensions), cfg.CircuitBreakerConfig)
	}

	return registry
}
