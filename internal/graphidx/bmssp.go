package graphidx

import (
	"math"
	"time"

	"github.com/agrama-dev/agrama/internal/apperr"
	"github.com/agrama-dev/agrama/internal/logging"
)

// bmsspParams derives k and t from |V| = n (spec.md §4.5).
type bmsspParams struct {
	k int
	t int
}

func deriveBMSSPParams(n int) bmsspParams {
	logn := math.Log(math.Max(float64(n), math.E))
	k := int(math.Floor(math.Pow(logn, 1.0/3.0)))
	if k < 1 {
		k = 1
	}
	t := int(math.Floor(math.Pow(logn, 2.0/3.0)))
	if t < 1 {
		t = 1
	}
	return bmsspParams{k: k, t: t}
}

// bmssp runs the bucketed frontier SSSP of spec.md §4.5: it relaxes in
// batches of at most k vertices pulled from the leftmost non-empty bucket,
// and when a batch would exceed t pending vertices it partitions the
// excess into further rounds instead of sorting the whole frontier at
// once. This is expressed iteratively with an explicit frontier rather
// than recursively, which the design notes (spec.md §9) allow as long as
// the amortized work bound holds on sparse graphs.
func bmssp(adj map[uint32][]Edge, n int, sources map[uint32]float64, bound float64, deadline time.Time) (dist map[uint32]float64, pred map[uint32]uint32, explored int, err error) {
	params := deriveBMSSPParams(n)
	dist = make(map[uint32]float64, len(sources))
	pred = make(map[uint32]uint32)

	// Estimate a bucket width from the bound (or a nominal width when no
	// bound is supplied) so buckets stay coarse-grained rather than one
	// per distinct float distance.
	width := bound
	if width <= 0 || math.IsInf(width, 1) {
		width = 1
	}
	delta := width / float64(params.t)
	if delta <= 0 {
		delta = 1
	}
	fr := newFrontier(delta)
	for s, d := range sources {
		dist[s] = d
		fr.insert(s, d)
	}

	for !fr.empty() {
		batch := fr.extractMinBucket(params.k, dist)
		if len(batch) == 0 {
			continue
		}
		// Reduction step: if the batch is larger than t, process it in
		// chunks of t so no single round relaxes an unbounded number of
		// vertices at once.
		for start := 0; start < len(batch); start += params.t {
			end := start + params.t
			if end > len(batch) {
				end = len(batch)
			}
			chunk := batch[start:end]
			for _, it := range chunk {
				if authoritative, ok := dist[it.id]; ok && it.dist > authoritative {
					continue
				}
				explored++
				if !deadline.IsZero() && explored%deadlineCheckInterval == 0 && time.Now().After(deadline) {
					logging.Log.WithField("explored", explored).Warn("bmssp: deadline exceeded")
					return dist, pred, explored, apperr.New(apperr.Timeout, "shortest_path deadline exceeded")
				}
				if bound > 0 && it.dist > bound {
					continue
				}
				for _, e := range adj[it.id] {
					nd := it.dist + float64(e.Weight)
					if d, ok := dist[e.To]; !ok || nd < d {
						dist[e.To] = nd
						pred[e.To] = it.id
						fr.insert(e.To, nd)
					}
				}
			}
		}
	}
	return dist, pred, explored, nil
}
