package lexical

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBM25Ranking(t *testing.T) {
	idx := New()
	idx.IndexPath(1, []byte("the quick brown fox"))
	idx.IndexPath(2, []byte("the quick brown dog jumps"))
	idx.IndexPath(3, []byte("lazy cat"))

	results := idx.Query("quick fox", 10)
	require.Len(t, results, 2)
	require.Equal(t, uint32(1), results[0].PathID)
	require.Equal(t, uint32(2), results[1].PathID)
}

func TestBM25ReindexReplacesPriorPostings(t *testing.T) {
	idx := New()
	idx.IndexPath(1, []byte("apple banana"))
	idx.IndexPath(1, []byte("cherry"))

	require.Empty(t, idx.Query("apple", 10))
	results := idx.Query("cherry", 10)
	require.Len(t, results, 1)
	require.Equal(t, uint32(1), results[0].PathID)
}

func TestBM25RemoveDropsPostings(t *testing.T) {
	idx := New()
	idx.IndexPath(1, []byte("apple banana"))
	idx.Remove(1)
	require.Empty(t, idx.Query("apple", 10))
}

func TestBM25EmptyQueryOrIndex(t *testing.T) {
	idx := New()
	require.Empty(t, idx.Query("anything", 10))

	idx.IndexPath(1, []byte("content"))
	require.Empty(t, idx.Query("", 10))
}

func TestBM25StableTieBreakOnPathID(t *testing.T) {
	idx := New()
	idx.IndexPath(5, []byte("same same"))
	idx.IndexPath(2, []byte("same same"))

	results := idx.Query("same", 10)
	require.Len(t, results, 2)
	require.Equal(t, uint32(2), results[0].PathID)
	require.Equal(t, uint32(5), results[1].PathID)
}
