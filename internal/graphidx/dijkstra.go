package graphidx

import (
	"container/heap"
	"time"

	"github.com/agrama-dev/agrama/internal/apperr"
	"github.com/agrama-dev/agrama/internal/logging"
)

// deadlineCheckInterval bounds how often a long SSSP run checks a
// caller-supplied deadline (spec.md §5: "at least every 1024 iterations").
const deadlineCheckInterval = 1024

type pqItem struct {
	id   uint32
	dist float64
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// dijkstra is the plain-Dijkstra fallback permitted when n ≤
// dijkstraFallbackMaxNodes (spec.md §4.5). adj maps a node id to its
// outgoing edges. A zero deadline means no deadline.
func dijkstra(adj map[uint32][]Edge, sources map[uint32]float64, deadline time.Time) (dist map[uint32]float64, pred map[uint32]uint32, explored int, err error) {
	dist = make(map[uint32]float64, len(sources))
	pred = make(map[uint32]uint32)
	visited := make(map[uint32]bool)

	pq := &priorityQueue{}
	heap.Init(pq)
	for s, d := range sources {
		dist[s] = d
		heap.Push(pq, pqItem{id: s, dist: d})
	}

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pqItem)
		if visited[cur.id] {
			continue
		}
		if cur.dist > dist[cur.id] {
			continue
		}
		visited[cur.id] = true
		explored++
		if !deadline.IsZero() && explored%deadlineCheckInterval == 0 && time.Now().After(deadline) {
			logging.Log.WithField("explored", explored).Warn("dijkstra: deadline exceeded")
			return dist, pred, explored, apperr.New(apperr.Timeout, "shortest_path deadline exceeded")
		}

		for _, e := range adj[cur.id] {
			nd := cur.dist + float64(e.Weight)
			if d, ok := dist[e.To]; !ok || nd < d {
				dist[e.To] = nd
				pred[e.To] = cur.id
				heap.Push(pq, pqItem{id: e.To, dist: nd})
			}
		}
	}
	return dist, pred, explored, nil
}
