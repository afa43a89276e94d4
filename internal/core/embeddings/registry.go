package embeddings

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Registry errors.
var (
	ErrNoProvidersAvailable = errors.New("no embedding providers available")
	ErrAllProvidersFailed   = errors.New("all embedding providers failed")
	ErrWrongDimension       = errors.New("embedding has wrong dimension")
	ErrNotUnitNorm          = errors.New("embedding is not unit-norm")
)

// Log key constants.
const logKeyProvider = "provider"

// unitNormTolerance is the allowed deviation of ||v|| from 1. Providers are
// contracted to return unit-norm vectors; anything outside this band is a
// contract violation, not a transient failure.
const unitNormTolerance = 1e-3

// Client defines the interface for embedding operations. Implementations
// return one unit-norm vector per input text, in input order.
type Client interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the dimension of the vectors this client produces.
	Dimensions() int
}

// Ensure Registry implements Client interface.
var _ Client = (*Registry)(nil)

// Registry manages embedding providers with fallback support.
type Registry struct {
	mu              sync.RWMutex
	providers       map[ProviderName]Provider
	order           []ProviderName // Priority order (highest first)
	circuitBreakers map[ProviderName]*CircuitBreaker
	targetDimension int
	logger          *zerolog.Logger
}

// NewRegistry creates a new provider registry.
func NewRegistry(targetDimension int, logger *zerolog.Logger) *Registry {
	return &Registry{
		providers:       make(map[ProviderName]Provider),
		order:           make([]ProviderName, 0),
		circuitBreakers: make(map[ProviderName]*CircuitBreaker),
		targetDimension: targetDimension,
		logger:          logger,
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(p Provider, cfg CircuitBreakerConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	r.providers[name] = p
	r.order = append(r.order, name)
	r.circuitBreakers[name] = NewCircuitBreaker(cfg, r.logger)

	// Sort by priority (descending)
	sort.SliceStable(r.order, func(a, b int) bool {
		return r.providers[r.order[a]].Priority() > r.providers[r.order[b]].Priority()
	})

	SetEmbeddingProviderAvailable(string(name), p.IsAvailable())

	r.logger.Info().
		Str(logKeyProvider, string(name)).
		Int("priority", p.Priority()).
		Int("dimensions", p.Dimensions()).
		Msg("registered embedding provider")
}

// Dimensions returns the target dimension of this registry.
func (r *Registry) Dimensions() int {
	return r.targetDimension
}

// ProviderCount returns the number of registered providers.
func (r *Registry) ProviderCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.providers)
}

// EmbedBatch attempts to embed a batch using available providers in priority
// order. Transport failures fall through to the next provider; a vector that
// violates the dimension or unit-norm contract aborts the run.
func (r *Registry) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	r.mu.RLock()
	providers := r.getActiveProviders()
	r.mu.RUnlock()

	if len(providers) == 0 {
		return nil, ErrNoProvidersAvailable
	}

	var lastErr error

	previousProvider := ""

	for _, p := range providers {
		cb := r.getCircuitBreaker(p.Name())
		providerName := string(p.Name())

		if !cb.CanAttempt() {
			r.logger.Debug().
				Str(logKeyProvider, providerName).
				Msg("skipping provider - circuit breaker open")
			SetEmbeddingProviderAvailable(providerName, false)

			continue
		}

		if previousProvider != "" {
			RecordEmbeddingFallback(previousProvider, providerName)
		}

		start := time.Now()
		vectors, err := p.EmbedBatch(ctx, texts)
		duration := time.Since(start)

		RecordEmbeddingLatency(providerName, duration)

		if err != nil {
			cb.RecordFailure(p.Name())
			RecordEmbeddingRequest(providerName, false)

			lastErr = err
			previousProvider = providerName

			r.logger.Warn().
				Err(err).
				Str(logKeyProvider, providerName).
				Msg("embedding provider failed, trying fallback")

			continue
		}

		if err := r.validateBatch(vectors, len(texts)); err != nil {
			// Contract violation by the provider, not a transient failure.
			return nil, fmt.Errorf("provider %s: %w", providerName, err)
		}

		cb.RecordSuccess()
		RecordEmbeddingRequest(providerName, true)

		return vectors, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrAllProvidersFailed, lastErr)
	}

	return nil, ErrAllProvidersFailed
}

func (r *Registry) validateBatch(vectors [][]float32, want int) error {
	if len(vectors) != want {
		return fmt.Errorf("%w: got %d vectors, want %d", ErrWrongDimension, len(vectors), want)
	}

	for i, vec := range vectors {
		if len(vec) != r.targetDimension {
			return fmt.Errorf("%w: vector %d has %d dimensions, want %d",
				ErrWrongDimension, i, len(vec), r.targetDimension)
		}

		var sum float64
		for _, v := range vec {
			sum += float64(v) * float64(v)
		}

		if math.Abs(math.Sqrt(sum)-1) > unitNormTolerance {
			return fmt.Errorf("%w: vector %d has norm %f", ErrNotUnitNorm, i, math.Sqrt(sum))
		}
	}

	return nil
}

func (r *Registry) getActiveProviders() []Provider {
	active := make([]Provider, 0, len(r.order))

	for _, name := range r.order {
		p := r.providers[name]
		if p.IsAvailable() {
			active = append(active, p)
		}
	}

	return active
}

func (r *Registry) getCircuitBreaker(name ProviderName) *CircuitBreaker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.circuitBreakers[name]
}
