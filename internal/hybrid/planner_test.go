package hybrid

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agrama-dev/agrama/internal/apperr"
	"github.com/agrama-dev/agrama/internal/graphidx"
	"github.com/agrama-dev/agrama/internal/lexical"
	"github.com/agrama-dev/agrama/internal/store"
	"github.com/agrama-dev/agrama/internal/vector"
)

func newTestPlanner(t *testing.T) (*Planner, *store.Store) {
	t.Helper()
	st := store.New()
	lex := lexical.New()
	vec := vector.New(4, vector.DefaultParams())
	gr := graphidx.New(graphidx.DijkstraFallbackMaxNodes)

	st.Subscribe(lexical.Subscriber{Index: lex})
	st.Subscribe(vector.Subscriber{Index: vec})
	st.Subscribe(graphidx.Subscriber{Index: gr})

	return New(st, lex, vec, gr, 4), st
}

func TestHybridLexicalOnlyMatchesLexicalRanking(t *testing.T) {
	p, st := newTestPlanner(t)
	_, _ = st.Put(1, "p1", []byte("the quick brown fox"))
	_, _ = st.Put(2, "p2", []byte("the quick brown dog jumps"))
	_, _ = st.Put(3, "p3", []byte("lazy cat"))

	results, err := p.Search(context.Background(), Query{
		Text: "quick fox", MaxResults: 10, Alpha: 1, Beta: 0, Gamma: 0,
	}, time.Time{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, store.Path("p1"), results[0].Path)
	require.Equal(t, store.Path("p2"), results[1].Path)
}

func TestHybridBlendOfDisjointLexicalAndSemanticMatches(t *testing.T) {
	p, st := newTestPlanner(t)
	_, _ = st.Put(1, "lex-match", []byte("unique keyword zzyzx"))
	_, _ = st.Put(2, "vec-match", []byte("unrelated text"))
	vecID, ok := st.IDOf("vec-match")
	require.True(t, ok)
	require.NoError(t, p.vec.Insert(vecID, []float32{1, 0, 0, 0}))

	results, err := p.Search(context.Background(), Query{
		Text: "zzyzx", Embedding: []float32{1, 0, 0, 0},
		MaxResults: 10, Alpha: 0.5, Beta: 0.5, Gamma: 0,
	}, time.Time{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		require.InDelta(t, 0.5, r.Score, 1e-4)
	}
}

func TestHybridRejectsOverBudgetWeights(t *testing.T) {
	p, _ := newTestPlanner(t)
	_, err := p.Search(context.Background(), Query{Alpha: 0.6, Beta: 0.6, Gamma: 0.2}, time.Time{})
	require.Error(t, err)
}

func TestHybridExpiredDeadlineReturnsTimeout(t *testing.T) {
	p, st := newTestPlanner(t)
	_, _ = st.Put(1, "p1", []byte("content"))

	_, err := p.Search(context.Background(), Query{Text: "content", MaxResults: 10, Alpha: 1}, time.Now().Add(-time.Hour))
	require.True(t, apperr.Is(err, apperr.Timeout))
}
