package hybrid

import (
	"context"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agrama-dev/agrama/internal/apperr"
	"github.com/agrama-dev/agrama/internal/graphidx"
	"github.com/agrama-dev/agrama/internal/lexical"
	"github.com/agrama-dev/agrama/internal/logging"
	"github.com/agrama-dev/agrama/internal/store"
	"github.com/agrama-dev/agrama/internal/vector"
)

// Result is one path's blended score in a hybrid search response.
type Result struct {
	Path  store.Path
	Score float32
}

// Planner runs the three component indexes, normalizes their scores, and
// blends them by the query's alpha/beta/gamma weights (spec.md §4.6). It
// holds no state of its own beyond references to the indexes and store it
// was constructed with.
type Planner struct {
	st      *store.Store
	lex     *lexical.Index
	vec     *vector.Index
	graph   *graphidx.Index
	workers int
}

// New constructs a Planner wired to the engine's shared indexes. workers
// bounds the concurrency used to run the three components (spec.md §5's
// "small fixed pool of workers").
func New(st *store.Store, lex *lexical.Index, vec *vector.Index, graph *graphidx.Index, workers int) *Planner {
	if workers <= 0 {
		workers = 1
	}
	return &Planner{st: st, lex: lex, vec: vec, graph: graph, workers: workers}
}

// Search executes the hybrid query and returns its blended, truncated
// result list. deadline zero means no deadline.
func (p *Planner) Search(ctx context.Context, q Query, deadline time.Time) ([]Result, error) {
	if q.weightSum() > 1.0+epsilon {
		return nil, apperr.Newf(apperr.InvalidArgument, "alpha+beta+gamma = %f exceeds 1.0 + epsilon", q.weightSum())
	}
	if !deadline.IsZero() && time.Now().After(deadline) {
		logging.Log.Warn("hybrid search: deadline already expired before dispatch")
		return nil, apperr.New(apperr.Timeout, "search deadline already expired")
	}

	maxResults := int(q.MaxResults)
	if maxResults <= 0 {
		maxResults = 20
	}
	candidateWidth := maxResults * 2

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(p.workers)

	var lexRaw, vecRaw, graphRaw map[store.Path]float32

	group.Go(func() error {
		lexRaw = p.runLexical(q, candidateWidth)
		return gctx.Err()
	})
	group.Go(func() error {
		v, err := p.runVector(q, candidateWidth)
		if err != nil {
			return err
		}
		vecRaw = v
		return gctx.Err()
	})
	group.Go(func() error {
		graphRaw = p.runGraph(q, candidateWidth)
		return gctx.Err()
	})

	if err := group.Wait(); err != nil {
		if !deadline.IsZero() && time.Now().After(deadline) {
			logging.Log.Warn("hybrid search: deadline exceeded waiting on components")
			return nil, apperr.New(apperr.Timeout, "search deadline exceeded")
		}
		return nil, err
	}
	if !deadline.IsZero() && time.Now().After(deadline) {
		logging.Log.Warn("hybrid search: deadline exceeded after components completed")
		return nil, apperr.New(apperr.Timeout, "search deadline exceeded")
	}

	lexNorm := minMaxNormalize(lexRaw)
	vecNorm := minMaxNormalize(vecRaw)
	graphNorm := minMaxNormalize(graphRaw)

	combined := make(map[store.Path]float32)
	for path, s := range lexNorm {
		combined[path] += q.Alpha * s
	}
	for path, s := range vecNorm {
		combined[path] += q.Beta * s
	}
	for path, s := range graphNorm {
		combined[path] += q.Gamma * s
	}

	out := make([]Result, 0, len(combined))
	for path, s := range combined {
		out = append(out, Result{Path: path, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Path < out[j].Path
	})
	if len(out) > maxResults {
		out = out[:maxResults]
	}
	return out, nil
}

func (p *Planner) runLexical(q Query, width int) map[store.Path]float32 {
	raw := make(map[store.Path]float32)
	if q.Text == "" {
		return raw
	}
	for _, r := range p.lex.Query(q.Text, width) {
		if path, ok := p.st.PathOf(r.PathID); ok {
			raw[path] = float32(r.Score)
		}
	}
	return raw
}

func (p *Planner) runVector(q Query, width int) (map[store.Path]float32, error) {
	raw := make(map[store.Path]float32)
	if len(q.Embedding) == 0 {
		return raw, nil
	}
	results, err := p.vec.Query(q.Embedding, width)
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		if path, ok := p.st.PathOf(r.ID); ok {
			// Distance is lower-is-better; flip so higher is better before
			// normalizing, consistent with the lexical/graph components.
			raw[path] = -r.Distance
		}
	}
	return raw, nil
}

func (p *Planner) runGraph(q Query, width int) map[store.Path]float32 {
	raw := make(map[store.Path]float32)
	if len(q.StartingNodes) == 0 {
		return raw
	}
	best := make(map[store.Path]float64)
	for _, startPath := range q.StartingNodes {
		id, ok := p.st.IDOf(startPath)
		if !ok {
			continue
		}
		for _, nb := range p.graph.NeighborsWithin(id, math.MaxFloat64, width) {
			path, ok := p.st.PathOf(nb.ID)
			if !ok {
				continue
			}
			if cur, exists := best[path]; !exists || nb.Distance < cur {
				best[path] = nb.Distance
			}
		}
	}
	for path, d := range best {
		raw[path] = float32(1 / (1 + d))
	}
	return raw
}
