package embeddings

import (
	"context"
	"hash/fnv"
	"math"
)

// Mock provider constants.
const (
	// LCG (Linear Congruential Generator) constants for deterministic
	// pseudo-random generation. Standard PCG/LCG values.
	lcgMultiplier = 6364136223846793005
	lcgIncrement  = 1442695040888963407

	// Constants for float conversion.
	seedShift  = 33
	floatScale = 0x40000000
)

// MockProvider implements the embedding Provider interface for offline runs
// and tests. It generates deterministic unit-norm embeddings based on the
// input text hash: equal texts always embed identically, distinct texts are
// almost surely far apart.
type MockProvider struct {
	dimensions int
}

// NewMockProvider creates a new mock embedding provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		dimensions: DefaultDimensions,
	}
}

// NewMockProviderWithDimensions creates a mock provider with custom dimensions.
func NewMockProviderWithDimensions(dims int) *MockProvider {
	return &MockProvider{
		dimensions: dims,
	}
}

// Name returns the provider identifier.
func (p *MockProvider) Name() ProviderName {
	return ProviderMock
}

// Priority returns the provider priority.
func (p *MockProvider) Priority() int {
	return PriorityMock
}

// Dimensions returns the output dimensions.
func (p *MockProvider) Dimensions() int {
	return p.dimensions
}

// IsAvailable returns true (mock is always available).
func (p *MockProvider) IsAvailable() bool {
	return true
}

// EmbedBatch generates one deterministic embedding per input text.
func (p *MockProvider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = p.embed(text)
	}

	return vectors, nil
}

func (p *MockProvider) embed(text string) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text)) // fnv.Write never returns an error
	seed := h.Sum64()

	vec := make([]float32, p.dimensions)
	for i := range vec {
		// Pseudo-random values between -1 and 1 from an LCG seeded by the hash.
		seed = seed*lcgMultiplier + lcgIncrement
		//nolint:gosec // intentional uint64->int64 conversion for pseudo-random generation
		vec[i] = float32(int64(seed>>seedShift)-floatScale) / float32(floatScale)
	}

	return normalizeVector(vec)
}

// normalizeVector normalizes a vector to unit length.
func normalizeVector(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}

	if sum == 0 {
		return vec
	}

	length := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= length
	}

	return vec
}
