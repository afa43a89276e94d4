// Package index provides an append-only flat vector index over unit-norm
// vectors. Search is an exhaustive inner-product scan; for unit-norm vectors
// the inner product equals cosine similarity. The collections handled here
// are small (hundreds to low thousands), so a linear scan beats any
// approximate structure on both simplicity and exactness.
package index

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDimensionMismatch indicates a vector of the wrong dimension.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Flat is an append-only inner-product index. The i-th Add is searchable at
// index i for all subsequent searches; entries are never renumbered or
// removed. NTotal counts insertions, not logical validity: a caller that
// overwrites an entry's payload elsewhere still searches against the vector
// added here.
type Flat struct {
	dim     int
	vectors [][]float32
}

// NewFlat creates a flat index for vectors of the given dimension.
func NewFlat(dim int) *Flat {
	return &Flat{dim: dim}
}

// Add appends a vector to the index.
func (f *Flat) Add(vec []float32) error {
	if len(vec) != f.dim {
		return fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, f.dim, len(vec))
	}

	stored := make([]float32, len(vec))
	copy(stored, vec)
	f.vectors = append(f.vectors, stored)

	return nil
}

// NTotal returns the number of vectors added to the index.
func (f *Flat) NTotal() int {
	return len(f.vectors)
}

// Search returns the k highest-inner-product entries for the query as
// parallel slices: similarities in descending order and the insertion
// indices they belong to. Ties are broken by insertion order. k is clamped
// to the index size.
func (f *Flat) Search(query []float32, k int) ([]float32, []int, error) {
	if len(query) != f.dim {
		return nil, nil, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, f.dim, len(query))
	}

	if k > len(f.vectors) {
		k = len(f.vectors)
	}

	if k <= 0 {
		return []float32{}, []int{}, nil
	}

	type scored struct {
		idx int
		sim float32
	}

	scores := make([]scored, len(f.vectors))
	for i, vec := range f.vectors {
		scores[i] = scored{idx: i, sim: dot(query, vec)}
	}

	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].sim > scores[b].sim
	})

	sims := make([]float32, k)
	indices := make([]int, k)

	for i := 0; i < k; i++ {
		sims[i] = scores[i].sim
		indices[i] = scores[i].idx
	}

	return sims, indices, nil
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}

	return sum
}
