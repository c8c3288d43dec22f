package engine

import (
	"math"

	"github.com/agrama-dev/agrama/internal/apperr"
	"github.com/agrama-dev/agrama/internal/graphidx"
	"github.com/agrama-dev/agrama/internal/store"
)

// Link creates a directed edge between two existing paths. Idempotent:
// relinking the same (from, to, kind) triple leaves a single edge (spec.md
// §8 link/unlink/link scenario), and the existing edge keeps its original
// weight.
func (e *Engine) Link(from, to string, weight float32, kind graphidx.Kind) error {
	fromID, ok := e.store.IDOf(store.Path(from))
	if !ok {
		return apperr.Newf(apperr.NotFound, "path %q not found", from)
	}
	toID, ok := e.store.IDOf(store.Path(to))
	if !ok {
		return apperr.Newf(apperr.NotFound, "path %q not found", to)
	}
	return e.graph.AddEdge(fromID, toID, weight, kind)
}

// Unlink removes a directed edge, if present.
func (e *Engine) Unlink(from, to string, kind graphidx.Kind) error {
	fromID, ok := e.store.IDOf(store.Path(from))
	if !ok {
		return apperr.Newf(apperr.NotFound, "path %q not found", from)
	}
	toID, ok := e.store.IDOf(store.Path(to))
	if !ok {
		return apperr.Newf(apperr.NotFound, "path %q not found", to)
	}
	e.graph.RemoveEdge(fromID, toID, kind)
	return nil
}

// ShortestPath returns the distance, predecessor chain, and exploration
// count for the shortest path between two paths.
func (e *Engine) ShortestPath(from, to string) (graphidx.PathResult, error) {
	fromID, ok := e.store.IDOf(store.Path(from))
	if !ok {
		return graphidx.PathResult{}, apperr.Newf(apperr.NotFound, "path %q not found", from)
	}
	toID, ok := e.store.IDOf(store.Path(to))
	if !ok {
		return graphidx.PathResult{}, apperr.Newf(apperr.NotFound, "path %q not found", to)
	}
	return e.graph.ShortestPath(fromID, toID)
}

// Impact returns every ancestor of path ordered by ascending distance,
// i.e. everything that would be affected by a change to path.
func (e *Engine) Impact(path string) ([]graphidx.DistanceResult, error) {
	id, ok := e.store.IDOf(store.Path(path))
	if !ok {
		return nil, apperr.Newf(apperr.NotFound, "path %q not found", path)
	}
	return e.graph.Impact(id), nil
}

// EntityKind distinguishes the two addressable entities UpdateEntityWeight
// can target (spec.md §4.7).
type EntityKind int

const (
	// EntityNode targets a path's node-level learned weight, readable via
	// NodeWeight.
	EntityNode EntityKind = iota
	// EntityEdge targets a specific (from, to, kind) edge's learned
	// weight.
	EntityEdge
)

// UpdateEntityWeight stores a learned weight that is never used by
// shortest-path routing. The hybrid planner's graph score is computed from
// structural edge weights only and reads neither the edge nor the node
// learned weight. For EntityEdge, from/to/kind identify the edge; for
// EntityNode, to and kind are ignored.
func (e *Engine) UpdateEntityWeight(kind EntityKind, from, to string, edgeKind graphidx.Kind, weight float32) error {
	if math.IsNaN(float64(weight)) {
		return apperr.New(apperr.InvalidArgument, "entity weight must not be NaN")
	}
	switch kind {
	case EntityEdge:
		fromID, ok := e.store.IDOf(store.Path(from))
		if !ok {
			return apperr.Newf(apperr.NotFound, "path %q not found", from)
		}
		toID, ok := e.store.IDOf(store.Path(to))
		if !ok {
			return apperr.Newf(apperr.NotFound, "path %q not found", to)
		}
		e.graph.SetLearnedWeight(fromID, toID, edgeKind, weight)
		return nil
	case EntityNode:
		if _, ok := e.store.IDOf(store.Path(from)); !ok {
			return apperr.Newf(apperr.NotFound, "path %q not found", from)
		}
		e.mu.Lock()
		e.nodeWeights[store.Path(from)] = weight
		e.mu.Unlock()
		return nil
	default:
		return apperr.New(apperr.InvalidArgument, "unknown entity kind")
	}
}

// NodeWeight returns the learned node-level weight last set via
// UpdateEntityWeight(EntityNode, ...), if any. This is a placeholder
// counterpart to edge LearnedWeight (spec.md's supplemented features note:
// "a node-level learned weight placeholder"); hybrid scoring does not read
// it.
func (e *Engine) NodeWeight(path string) (float32, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	w, ok := e.nodeWeights[store.Path(path)]
	return w, ok
}
