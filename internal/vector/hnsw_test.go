package vector

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agrama-dev/agrama/internal/apperr"
)

func randomUnitVector(rng *rand.Rand, dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = rng.Float32()*2 - 1
	}
	n := norm(v)
	if n == 0 {
		n = 1
	}
	for i := range v {
		v[i] /= n
	}
	return v
}

func TestHNSWRecallOfExactMatch(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	idx := New(128, DefaultParams())

	vStar := randomUnitVector(rng, 128)
	for i := uint32(0); i < 1000; i++ {
		v := randomUnitVector(rng, 128)
		require.NoError(t, idx.Insert(i, v))
	}
	const starID = 999999
	require.NoError(t, idx.Insert(starID, vStar))

	results, err := idx.Query(vStar, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, uint32(starID), results[0].ID)
	require.InDelta(t, 0, results[0].Distance, 1e-4)
}

func TestHNSWDimensionMismatch(t *testing.T) {
	idx := New(4, DefaultParams())
	err := idx.Insert(1, []float32{1, 2, 3})
	require.True(t, apperr.Is(err, apperr.DimensionMismatchKind))

	require.NoError(t, idx.Insert(1, []float32{1, 2, 3, 4}))
	_, err = idx.Query([]float32{1, 2}, 1)
	require.True(t, apperr.Is(err, apperr.DimensionMismatchKind))
}

func TestHNSWEmptyIndexReturnsEmptyNotError(t *testing.T) {
	idx := New(4, DefaultParams())
	results, err := idx.Query([]float32{1, 2, 3, 4}, 5)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestHNSWReinsertIsIdempotent(t *testing.T) {
	idx := New(4, DefaultParams())
	require.NoError(t, idx.Insert(1, []float32{1, 0, 0, 0}))
	require.NoError(t, idx.Insert(1, []float32{0, 1, 0, 0}))

	results, err := idx.Query([]float32{0, 1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, uint32(1), results[0].ID)
	require.InDelta(t, 0, results[0].Distance, 1e-4)
}

func TestCosineDistanceIdenticalVectorsIsZero(t *testing.T) {
	v := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}
	require.InDelta(t, 0, cosineDistance(v, v), 1e-5)
}
