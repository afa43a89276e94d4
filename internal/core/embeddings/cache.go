package embeddings

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/notefuse/notefuse/internal/platform/observability"
)

// ErrCacheInconsistent indicates a cache hit whose vector does not match the
// client dimension, or a keyed request whose key and text counts differ.
// Either can only happen through a programming error and aborts the run.
var ErrCacheInconsistent = errors.New("embedding cache returned inconsistent vector")

// Cache memoizes embeddings for the duration of one merge run. It is owned
// by the orchestrator and passed to components by reference; nothing
// survives the run.
//
// Cache keys must distinguish contexts: headers are keyed per note so
// provenance grouping assumptions hold, bullets are keyed by their
// normalized form so equal bullets across notes share one embedding.
type Cache struct {
	client  Client
	logger  *zerolog.Logger
	vectors map[string][]float32
}

// NewCache creates an empty per-run cache on top of the given client.
func NewCache(client Client, logger *zerolog.Logger) *Cache {
	return &Cache{
		client:  client,
		logger:  logger,
		vectors: make(map[string][]float32),
	}
}

// HeaderKey builds the cache key for a header embedding.
func HeaderKey(noteNum int, headerName string) string {
	return fmt.Sprintf("%d_%s", noteNum, headerName)
}

// Dimensions returns the dimension of the underlying client.
func (c *Cache) Dimensions() int {
	return c.client.Dimensions()
}

// Embed returns the embedding for text, computing it at most once per key.
func (c *Cache) Embed(ctx context.Context, key, text string) ([]float32, error) {
	vectors, err := c.EmbedKeyed(ctx, []string{key}, []string{text})
	if err != nil {
		return nil, err
	}

	return vectors[0], nil
}

// EmbedKeyed returns one embedding per (key, text) pair. Cached keys are
// served from memory; the remaining texts go to the client in one batch.
func (c *Cache) EmbedKeyed(ctx context.Context, keys, texts []string) ([][]float32, error) {
	if len(keys) != len(texts) {
		return nil, fmt.Errorf("%w: %d keys for %d texts", ErrCacheInconsistent, len(keys), len(texts))
	}

	vectors := make([][]float32, len(keys))

	var (
		missKeys  []string
		missTexts []string
		missAt    []int
	)

	seen := make(map[string]int)

	for i, key := range keys {
		if vec, ok := c.vectors[key]; ok {
			if len(vec) != c.client.Dimensions() {
				return nil, fmt.Errorf("%w: key %q has %d dimensions, want %d",
					ErrCacheInconsistent, key, len(vec), c.client.Dimensions())
			}

			observability.EmbeddingCacheHits.Inc()

			vectors[i] = vec

			continue
		}

		observability.EmbeddingCacheMisses.Inc()

		// A key can repeat within one batch; embed it once.
		if _, dup := seen[key]; !dup {
			seen[key] = len(missKeys)
			missKeys = append(missKeys, key)
			missTexts = append(missTexts, texts[i])
		}

		missAt = append(missAt, i)
	}

	if len(missKeys) == 0 {
		return vectors, nil
	}

	fresh, err := c.client.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, fmt.Errorf("embed batch: %w", err)
	}

	for j, key := range missKeys {
		c.vectors[key] = fresh[j]
	}

	for _, i := range missAt {
		vectors[i] = c.vectors[keys[i]]
	}

	c.logger.Debug().
		Int("requested", len(keys)).
		Int("embedded", len(missKeys)).
		Msg("embedding cache filled")

	return vectors, nil
}
