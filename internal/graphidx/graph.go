package graphidx

import (
	"sort"
	"sync"
	"time"

	"github.com/agrama-dev/agrama/internal/apperr"
)

// DijkstraFallbackMaxNodes is the |V| threshold below which shortest_path
// uses plain Dijkstra instead of the bucketed BMSSP frontier (spec.md
// §4.5): pure Dijkstra is cheaper to run correctly at small n and the
// complexity guarantee only needs to hold above this size.
const DijkstraFallbackMaxNodes = 1024

// Index is the directed weighted graph index: adjacency list plus a
// bidirectional path<->node id map maintained by the temporal store
// (spec.md §4.5, §9 — the index holds only ids, never owns a reference
// back into the store).
type Index struct {
	mu                       sync.RWMutex
	adj                      map[uint32][]Edge
	radj                     map[uint32][]Edge // reverse adjacency, for impact()
	nodeSeen                 map[uint32]bool
	dijkstraFallbackMaxNodes int
}

// New constructs an empty graph index.
func New(dijkstraFallbackMaxNodes int) *Index {
	if dijkstraFallbackMaxNodes <= 0 {
		dijkstraFallbackMaxNodes = DijkstraFallbackMaxNodes
	}
	return &Index{
		adj:                      make(map[uint32][]Edge),
		radj:                     make(map[uint32][]Edge),
		nodeSeen:                 make(map[uint32]bool),
		dijkstraFallbackMaxNodes: dijkstraFallbackMaxNodes,
	}
}

// RegisterNode records id as a graph node, counted toward |V| when
// runSSSP chooses between Dijkstra and BMSSP. It is called when the
// temporal store introduces a new path; it creates no adjacency entry.
func (idx *Index) RegisterNode(id uint32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.nodeSeen[id] = true
}

// AddEdge inserts a directed edge. Weight must be non-negative.
func (idx *Index) AddEdge(from, to uint32, weight float32, kind Kind) error {
	if weight < 0 {
		return apperr.New(apperr.InvalidArgument, "edge weight must be non-negative")
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.nodeSeen[from] = true
	idx.nodeSeen[to] = true

	for _, e := range idx.adj[from] {
		if e.To == to && e.Kind == kind {
			return nil // link(a,b) is idempotent per spec.md §8
		}
	}
	e := Edge{From: from, To: to, Weight: weight, Kind: kind}
	idx.adj[from] = append(idx.adj[from], e)
	idx.radj[to] = append(idx.radj[to], Edge{From: to, To: from, Weight: weight, Kind: kind})
	return nil
}

// RemoveEdge deletes the from->to edge of the given kind, if present.
func (idx *Index) RemoveEdge(from, to uint32, kind Kind) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.adj[from] = removeEdge(idx.adj[from], to, kind)
	idx.radj[to] = removeEdge(idx.radj[to], from, kind)
}

func removeEdge(list []Edge, to uint32, kind Kind) []Edge {
	for i, e := range list {
		if e.To == to && e.Kind == kind {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// SetLearnedWeight sets the optional learned weight on every edge between
// from and to of the given kind. It is separate from the structural weight
// and does not affect routing; the reverse adjacency used by Impact keeps
// its copies unchanged.
func (idx *Index) SetLearnedWeight(from, to uint32, kind Kind, w float32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for i, e := range idx.adj[from] {
		if e.To == to && e.Kind == kind {
			idx.adj[from][i].LearnedWeight = w
			idx.adj[from][i].HasLearned = true
		}
	}
}

// PathResult is the outcome of a successful ShortestPath query.
type PathResult struct {
	Distance      float64
	Predecessors  map[uint32]uint32
	NodesExplored int
}

// ShortestPath computes the shortest path from source to target, choosing
// plain Dijkstra or the bucketed BMSSP frontier based on |V| (spec.md
// §4.5).
func (idx *Index) ShortestPath(source, target uint32) (PathResult, error) {
	return idx.ShortestPathWithDeadline(source, target, time.Time{})
}

// ShortestPathWithDeadline is ShortestPath with a caller-supplied deadline,
// honored at every loop boundary of the underlying SSSP run (spec.md §5).
// A zero deadline means no deadline.
func (idx *Index) ShortestPathWithDeadline(source, target uint32, deadline time.Time) (PathResult, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if source == target {
		return PathResult{Distance: 0, Predecessors: map[uint32]uint32{}, NodesExplored: 1}, nil
	}

	dist, pred, explored, err := idx.runSSSP(idx.adj, map[uint32]float64{source: 0}, 0, deadline)
	if err != nil {
		return PathResult{NodesExplored: explored}, err
	}
	d, ok := dist[target]
	if !ok {
		return PathResult{}, apperr.Newf(apperr.Unreachable, "no path from %d to %d", source, target)
	}
	return PathResult{Distance: d, Predecessors: pred, NodesExplored: explored}, nil
}

// NeighborsWithin returns every node reachable from source within radius,
// sorted ascending by distance, truncated to kMax.
func (idx *Index) NeighborsWithin(source uint32, radius float64, kMax int) []DistanceResult {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	dist, _, _, _ := idx.runSSSP(idx.adj, map[uint32]float64{source: 0}, radius, time.Time{})
	out := make([]DistanceResult, 0, len(dist))
	for id, d := range dist {
		if id == source || d > radius {
			continue
		}
		out = append(out, DistanceResult{ID: id, Distance: d})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if kMax > 0 && len(out) > kMax {
		out = out[:kMax]
	}
	return out
}

// DistanceResult pairs a node id with its distance from a query's source.
type DistanceResult struct {
	ID       uint32
	Distance float64
}

// Impact runs SSSP on the reverse graph from target, returning every
// ancestor ordered by ascending distance (spec.md §4.5).
func (idx *Index) Impact(target uint32) []DistanceResult {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	dist, _, _, _ := idx.runSSSP(idx.radj, map[uint32]float64{target: 0}, 0, time.Time{})
	out := make([]DistanceResult, 0, len(dist))
	for id, d := range dist {
		if id == target {
			continue
		}
		out = append(out, DistanceResult{ID: id, Distance: d})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}

// runSSSP picks Dijkstra or BMSSP based on node count. bound of 0 means
// unbounded.
func (idx *Index) runSSSP(adj map[uint32][]Edge, sources map[uint32]float64, bound float64, deadline time.Time) (map[uint32]float64, map[uint32]uint32, int, error) {
	n := len(idx.nodeSeen)
	if n <= idx.dijkstraFallbackMaxNodes {
		return dijkstra(adj, sources, deadline)
	}
	return bmssp(adj, n, sources, bound, deadline)
}
