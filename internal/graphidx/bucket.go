package graphidx

import "sort"

type bucketItem struct {
	id   uint32
	dist float64
}

// bucket holds candidate vertices whose distance falls in one width-delta
// range. It is lazily sorted: insert never sorts, extractMinBucket sorts
// once on first access to that bucket (spec.md §4.5).
type bucket struct {
	items  []bucketItem
	sorted bool
}

// frontier is the bucketed priority structure BMSSP pops from. Re-insertion
// with a smaller distance is allowed; stale entries are filtered on pop by
// comparing against the caller-supplied authoritative best[v] map.
type frontier struct {
	delta   float64
	buckets map[int]*bucket
}

func newFrontier(delta float64) *frontier {
	if delta <= 0 {
		delta = 1
	}
	return &frontier{delta: delta, buckets: make(map[int]*bucket)}
}

func (f *frontier) bucketIndex(d float64) int {
	return int(d / f.delta)
}

// insert appends v at distance d to the bucket covering d, marking it
// unsorted.
func (f *frontier) insert(v uint32, d float64) {
	idx := f.bucketIndex(d)
	b, ok := f.buckets[idx]
	if !ok {
		b = &bucket{}
		f.buckets[idx] = b
	}
	b.items = append(b.items, bucketItem{id: v, dist: d})
	b.sorted = false
}

// empty reports whether every bucket is empty.
func (f *frontier) empty() bool {
	for _, b := range f.buckets {
		if len(b.items) > 0 {
			return false
		}
	}
	return true
}

// extractMinBucket finds the leftmost non-empty bucket, sorts it on first
// access, and pops up to k vertices with the smallest distance, leaving any
// remainder for a later extraction. best supplies the authoritative
// distance for a vertex so stale (superseded) entries are dropped rather
// than returned.
func (f *frontier) extractMinBucket(k int, best map[uint32]float64) []bucketItem {
	minIdx := -1
	for idx, b := range f.buckets {
		if len(b.items) == 0 {
			continue
		}
		if minIdx == -1 || idx < minIdx {
			minIdx = idx
		}
	}
	if minIdx == -1 {
		return nil
	}
	b := f.buckets[minIdx]
	if !b.sorted {
		sort.Slice(b.items, func(i, j int) bool { return b.items[i].dist < b.items[j].dist })
		b.sorted = true
	}

	var out []bucketItem
	var remaining []bucketItem
	for _, it := range b.items {
		if len(out) >= k {
			remaining = append(remaining, it)
			continue
		}
		if authoritative, ok := best[it.id]; ok && it.dist > authoritative {
			continue // stale: a cheaper path was already found
		}
		out = append(out, it)
	}
	b.items = remaining
	return out
}
