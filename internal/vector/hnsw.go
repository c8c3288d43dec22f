// Package vector implements the HNSW approximate nearest-neighbor index
// over fixed-dimensional embeddings (spec.md §4.4).
package vector

import (
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/agrama-dev/agrama/internal/apperr"
)

// Params configures an Index (spec.md §4.4).
type Params struct {
	M              int
	EfConstruction int
	EfSearch       int
}

// DefaultParams returns the spec's documented defaults.
func DefaultParams() Params {
	return Params{M: 16, EfConstruction: 200, EfSearch: 100}
}

type node struct {
	id          uint32
	vec         []float32
	connections [][]uint32 // connections[layer] -> neighbor node ids
}

// Index is the multi-layer HNSW graph. Safe for concurrent use; all
// mutation holds the write lock for the duration of the insert/remove
// algorithm, matching the "each index has its own readers-writer lock"
// policy of spec.md §5.
type Index struct {
	mu sync.RWMutex

	dim    int
	m      int
	mMax0  int
	efCons int
	efSear int
	mL     float64
	rng    *rand.Rand

	nodes      map[uint32]*node
	entryPoint uint32
	topLayer   int
	hasEntry   bool
}

// New constructs an empty HNSW index over vectors of the given dimension.
func New(dim int, p Params) *Index {
	return &Index{
		dim:    dim,
		m:      p.M,
		mMax0:  2 * p.M,
		efCons: p.EfConstruction,
		efSear: p.EfSearch,
		mL:     1 / math.Log(float64(p.M)),
		rng:    rand.New(rand.NewSource(1)),
		nodes:  make(map[uint32]*node),
	}
}

// Result is one scored hit from Query.
type Result struct {
	ID       uint32
	Distance float32
}

func (idx *Index) checkDim(v []float32) error {
	if len(v) != idx.dim {
		return apperr.DimensionMismatch(idx.dim, len(v))
	}
	return nil
}

// Insert adds or replaces id's embedding. A prior embedding for id (if any)
// is removed first, so Insert also implements idempotent re-embedding.
func (idx *Index) Insert(id uint32, vec []float32) error {
	if err := idx.checkDim(vec); err != nil {
		return err
	}
	cp := append([]float32(nil), vec...)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, exists := idx.nodes[id]; exists {
		idx.removeLocked(id)
	}

	level := idx.drawLevel()
	n := &node{id: id, vec: cp, connections: make([][]uint32, level+1)}
	idx.nodes[id] = n

	if !idx.hasEntry {
		idx.entryPoint = id
		idx.topLayer = level
		idx.hasEntry = true
		return nil
	}

	cur := idx.entryPoint
	curDist := cosineDistance(idx.nodes[cur].vec, cp)
	for layer := idx.topLayer; layer > level; layer-- {
		cur, curDist = idx.greedyDescend(cur, curDist, cp, layer)
	}

	for layer := min(level, idx.topLayer); layer >= 0; layer-- {
		candidates := idx.searchLayer(cp, cur, idx.efCons, layer)
		cap := idx.m
		if layer == 0 {
			cap = idx.mMax0
		}
		selected := idx.heuristicSelect(cp, candidates, cap)
		for _, s := range selected {
			idx.connect(id, s.ID, layer)
			idx.connect(s.ID, id, layer)
			idx.pruneIfNeeded(s.ID, layer)
		}
		if len(selected) > 0 {
			cur = selected[0].ID
		}
	}

	if level > idx.topLayer {
		idx.topLayer = level
		idx.entryPoint = id
	}
	return nil
}

// Remove deletes id's embedding and every edge referencing it.
func (idx *Index) Remove(id uint32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(id)
}

func (idx *Index) removeLocked(id uint32) {
	n, ok := idx.nodes[id]
	if !ok {
		return
	}
	for layer, neighbors := range n.connections {
		for _, nb := range neighbors {
			idx.disconnect(nb, id, layer)
		}
	}
	delete(idx.nodes, id)

	if idx.entryPoint == id {
		idx.hasEntry = false
		idx.topLayer = 0
		for other, on := range idx.nodes {
			if !idx.hasEntry || len(on.connections)-1 > idx.topLayer {
				idx.entryPoint = other
				idx.topLayer = len(on.connections) - 1
				idx.hasEntry = true
			}
		}
	}
}

// Compact re-applies the heuristic neighbor selector to each of the given
// node ids at every layer where the node's degree exceeds the layer cap,
// pruning the connections that selection does not keep; neighbor lists
// within the cap are left unchanged. It is synchronous and
// intended for the engine's explicit compaction operation rather than any
// per-insert hot path.
func (idx *Index) Compact(ids []uint32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, id := range ids {
		n, ok := idx.nodes[id]
		if !ok {
			continue
		}
		for layer := range n.connections {
			idx.pruneIfNeeded(id, layer)
		}
	}
}

// Query returns the k nearest neighbors to vec. An empty index returns an
// empty list, not an error.
func (idx *Index) Query(vec []float32, k int) ([]Result, error) {
	if err := idx.checkDim(vec); err != nil {
		return nil, err
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if !idx.hasEntry {
		return nil, nil
	}

	cur := idx.entryPoint
	curDist := cosineDistance(idx.nodes[cur].vec, vec)
	for layer := idx.topLayer; layer > 0; layer-- {
		cur, curDist = idx.greedyDescend(cur, curDist, vec, layer)
	}
	_ = curDist

	candidates := idx.searchLayer(vec, cur, idx.efSear, 0)
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Distance < candidates[j].Distance })
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// drawLevel implements floor(-ln(U(0,1)) * mL).
func (idx *Index) drawLevel() int {
	u := idx.rng.Float64()
	for u == 0 {
		u = idx.rng.Float64()
	}
	return int(math.Floor(-math.Log(u) * idx.mL))
}

func (idx *Index) greedyDescend(cur uint32, curDist float32, target []float32, layer int) (uint32, float32) {
	for {
		improved := false
		for _, nb := range idx.neighborsAt(cur, layer) {
			d := cosineDistance(idx.nodes[nb].vec, target)
			if d < curDist {
				cur, curDist = nb, d
				improved = true
			}
		}
		if !improved {
			return cur, curDist
		}
	}
}

func (idx *Index) neighborsAt(id uint32, layer int) []uint32 {
	n := idx.nodes[id]
	if layer >= len(n.connections) {
		return nil
	}
	return n.connections[layer]
}

// searchLayer is the bounded best-first search of width ef (spec.md §4.4
// step 3 / query algorithm).
func (idx *Index) searchLayer(target []float32, entry uint32, ef int, layer int) []Result {
	visited := map[uint32]bool{entry: true}
	entryDist := cosineDistance(idx.nodes[entry].vec, target)

	candidates := &resultHeap{{ID: entry, Distance: entryDist}}
	found := &resultHeap{{ID: entry, Distance: entryDist}}

	for candidates.Len() > 0 {
		c := candidates.popMin()
		if c.Distance > found.max() && found.Len() >= ef {
			break
		}

		for _, nb := range idx.neighborsAt(c.ID, layer) {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			d := cosineDistance(idx.nodes[nb].vec, target)
			if found.Len() < ef || d < found.max() {
				candidates.pushMin(Result{ID: nb, Distance: d})
				found.pushMax(Result{ID: nb, Distance: d})
				if found.Len() > ef {
					found.popMax()
				}
			}
		}
	}
	return append([]Result(nil), (*found)...)
}

// heuristicSelect favors candidates not yet covered by the selection:
// a candidate is kept only if it is closer to the query than to every
// already-selected neighbor, which keeps connections diverse instead of
// clustering around the single nearest direction (spec.md §4.4 step 3).
func (idx *Index) heuristicSelect(target []float32, candidates []Result, cap int) []Result {
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Distance < candidates[j].Distance })
	var selected []Result
	for _, c := range candidates {
		if len(selected) >= cap {
			break
		}
		good := true
		for _, s := range selected {
			if cosineDistance(idx.nodes[c.ID].vec, idx.nodes[s.ID].vec) < c.Distance {
				good = false
				break
			}
		}
		if good {
			selected = append(selected, c)
		}
	}
	return selected
}

func (idx *Index) connect(from, to uint32, layer int) {
	n := idx.nodes[from]
	for len(n.connections) <= layer {
		n.connections = append(n.connections, nil)
	}
	for _, existing := range n.connections[layer] {
		if existing == to {
			return
		}
	}
	n.connections[layer] = append(n.connections[layer], to)
}

func (idx *Index) disconnect(from, to uint32, layer int) {
	n, ok := idx.nodes[from]
	if !ok || layer >= len(n.connections) {
		return
	}
	list := n.connections[layer]
	for i, v := range list {
		if v == to {
			n.connections[layer] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// pruneIfNeeded re-applies the heuristic selector to a neighbor whose
// degree at layer now exceeds its cap (spec.md §4.4 step 4).
func (idx *Index) pruneIfNeeded(id uint32, layer int) {
	n := idx.nodes[id]
	cap := idx.m
	if layer == 0 {
		cap = idx.mMax0
	}
	if len(n.connections[layer]) <= cap {
		return
	}
	candidates := make([]Result, 0, len(n.connections[layer]))
	for _, nb := range n.connections[layer] {
		candidates = append(candidates, Result{ID: nb, Distance: cosineDistance(n.vec, idx.nodes[nb].vec)})
	}
	selected := idx.heuristicSelect(n.vec, candidates, cap)
	kept := make([]uint32, len(selected))
	for i, s := range selected {
		kept[i] = s.ID
	}
	dropped := make(map[uint32]bool)
	for _, nb := range n.connections[layer] {
		dropped[nb] = true
	}
	for _, k := range kept {
		delete(dropped, k)
	}
	n.connections[layer] = kept
	for nb := range dropped {
		idx.disconnect(nb, id, layer)
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
