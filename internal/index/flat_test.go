package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatAddAndNTotal(t *testing.T) {
	f := NewFlat(3)

	assert.Equal(t, 0, f.NTotal())

	require.NoError(t, f.Add([]float32{1, 0, 0}))
	require.NoError(t, f.Add([]float32{0, 1, 0}))

	assert.Equal(t, 2, f.NTotal())
}

func TestFlatAddDimensionMismatch(t *testing.T) {
	f := NewFlat(3)

	err := f.Add([]float32{1, 0})
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestFlatSearchOrdering(t *testing.T) {
	f := NewFlat(2)

	require.NoError(t, f.Add([]float32{0, 1}))     // orthogonal to query
	require.NoError(t, f.Add([]float32{1, 0}))     // identical to query
	require.NoError(t, f.Add([]float32{0.6, 0.8})) // partial match

	sims, indices, err := f.Search([]float32{1, 0}, 3)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 0}, indices)
	assert.InDelta(t, 1.0, sims[0], 1e-6)
	assert.InDelta(t, 0.6, sims[1], 1e-6)
	assert.InDelta(t, 0.0, sims[2], 1e-6)
}

func TestFlatSearchTiesByInsertionOrder(t *testing.T) {
	f := NewFlat(2)

	require.NoError(t, f.Add([]float32{1, 0}))
	require.NoError(t, f.Add([]float32{1, 0}))
	require.NoError(t, f.Add([]float32{1, 0}))

	_, indices, err := f.Search([]float32{1, 0}, 3)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, indices)
}

func TestFlatSearchClampsK(t *testing.T) {
	f := NewFlat(2)

	require.NoError(t, f.Add([]float32{1, 0}))

	sims, indices, err := f.Search([]float32{1, 0}, 10)
	require.NoError(t, err)

	assert.Len(t, sims, 1)
	assert.Len(t, indices, 1)
}

func TestFlatSearchEmptyIndex(t *testing.T) {
	f := NewFlat(2)

	sims, indices, err := f.Search([]float32{1, 0}, 5)
	require.NoError(t, err)

	assert.Empty(t, sims)
	assert.Empty(t, indices)
}

func TestFlatSearchQueryDimensionMismatch(t *testing.T) {
	f := NewFlat(2)

	_, _, err := f.Search([]float32{1, 0, 0}, 1)
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestFlatStableIndices(t *testing.T) {
	f := NewFlat(2)

	require.NoError(t, f.Add([]float32{1, 0}))

	_, first, err := f.Search([]float32{1, 0}, 1)
	require.NoError(t, err)

	require.NoError(t, f.Add([]float32{0, 1}))

	_, second, err := f.Search([]float32{1, 0}, 1)
	require.NoError(t, err)

	assert.Equal(t, first[0], second[0])
}
