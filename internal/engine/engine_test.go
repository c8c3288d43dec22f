package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agrama-dev/agrama/internal/apperr"
	"github.com/agrama-dev/agrama/internal/config"
	"github.com/agrama-dev/agrama/internal/graphidx"
	"github.com/agrama-dev/agrama/internal/hybrid"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := config.Default()
	cfg.VectorDim = 64
	cfg.Pool.MaxTotalMB = 64
	e, err := New(cfg, WithDebug(true))
	require.NoError(t, err)
	return e
}

func vec64(first float32) []float32 {
	v := make([]float32, 64)
	v[0] = first
	return v
}

func TestPutGetHistoryDelete(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Put("a.go", []byte("package a"))
	require.NoError(t, err)

	content, err := e.Get("a.go")
	require.NoError(t, err)
	require.Equal(t, []byte("package a"), content)

	_, err = e.Put("a.go", []byte("package a\n\nfunc F() {}"))
	require.NoError(t, err)

	hist, err := e.History("a.go", 0)
	require.NoError(t, err)
	require.Len(t, hist, 2)

	require.NoError(t, e.Delete("a.go"))
	_, err = e.Get("a.go")
	require.True(t, apperr.Is(err, apperr.NotFound))
}

func TestLinkUnlinkShortestPathAndImpact(t *testing.T) {
	e := newTestEngine(t)
	for _, p := range []string{"a.go", "b.go", "c.go"} {
		_, err := e.Put(p, []byte("x"))
		require.NoError(t, err)
	}
	require.NoError(t, e.Link("a.go", "b.go", 1, graphidx.Calls))
	require.NoError(t, e.Link("b.go", "c.go", 1, graphidx.Calls))

	res, err := e.ShortestPath("a.go", "c.go")
	require.NoError(t, err)
	require.Equal(t, 2.0, res.Distance)

	impact, err := e.Impact("c.go")
	require.NoError(t, err)
	require.Len(t, impact, 2)

	require.NoError(t, e.Unlink("a.go", "b.go", graphidx.Calls))
	_, err = e.ShortestPath("a.go", "c.go")
	require.True(t, apperr.Is(err, apperr.Unreachable))
}

func TestUnknownPathOperationsReturnNotFound(t *testing.T) {
	e := newTestEngine(t)
	require.True(t, apperr.Is(e.Link("missing", "also-missing", 1, graphidx.Imports), apperr.NotFound))
	_, err := e.ShortestPath("missing", "also-missing")
	require.True(t, apperr.Is(err, apperr.NotFound))
}

func TestEmbedAndHybridSearch(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Put("a.go", []byte("unique token zzyzx"))
	require.NoError(t, err)
	require.NoError(t, e.Embed("a.go", vec64(1)))

	results, err := e.Search(context.Background(), hybrid.Query{
		Text: "zzyzx", MaxResults: 10, Alpha: 1,
	}, time.Time{})
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestEmbedUnknownPathFails(t *testing.T) {
	e := newTestEngine(t)
	err := e.Embed("missing", vec64(1))
	require.True(t, apperr.Is(err, apperr.NotFound))
}

func TestArchiveHidesFromDefaultSearchUntilIncluded(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Put("old.go", []byte("legacy token quux"))
	require.NoError(t, err)

	node, err := e.Archive([]string{"old.go"}, "superseded by new.go", nil, "test-model")
	require.NoError(t, err)
	require.NotEmpty(t, node.ID)

	results, err := e.Search(context.Background(), hybrid.Query{Text: "quux", MaxResults: 10, Alpha: 1}, time.Time{})
	require.NoError(t, err)
	require.Empty(t, results)

	results, err = e.Search(context.Background(), hybrid.Query{
		Text: "quux", MaxResults: 10, Alpha: 1, IncludeArchived: true,
	}, time.Time{})
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Content and history survive archiving.
	content, err := e.Get("old.go")
	require.NoError(t, err)
	require.Equal(t, []byte("legacy token quux"), content)
}

func TestArchiveUnknownPathFails(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Archive([]string{"missing"}, "summary", nil, "model")
	require.True(t, apperr.Is(err, apperr.NotFound))
}

func TestCompactReturnsJobID(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Put("a.go", []byte("x"))
	require.NoError(t, err)
	require.NoError(t, e.Embed("a.go", vec64(1)))

	jobID, err := e.Compact([]string{"a.go"})
	require.NoError(t, err)
	require.NotEmpty(t, jobID)
}

func TestUpdateEntityWeightNodeAndEdge(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Put("a.go", []byte("x"))
	require.NoError(t, err)
	_, err = e.Put("b.go", []byte("y"))
	require.NoError(t, err)
	require.NoError(t, e.Link("a.go", "b.go", 1, graphidx.Calls))

	require.NoError(t, e.UpdateEntityWeight(EntityEdge, "a.go", "b.go", graphidx.Calls, 0.9))
	require.NoError(t, e.UpdateEntityWeight(EntityNode, "a.go", "", graphidx.Calls, 0.5))
	w, ok := e.NodeWeight("a.go")
	require.True(t, ok)
	require.Equal(t, float32(0.5), w)

	err = e.UpdateEntityWeight(EntityNode, "a.go", "", graphidx.Calls, float32(nanValue()))
	require.True(t, apperr.Is(err, apperr.InvalidArgument))
}

func nanValue() float64 {
	var zero float64
	return zero / zero
}
