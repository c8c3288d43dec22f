package vector

// resultHeap is a small candidate set used by searchLayer. Correctness, not
// asymptotic heap performance, is what the bounded best-first search
// depends on here: ef is always small (tens to low hundreds), so linear
// scans over it are simpler to get right than a textbook binary heap and
// cost nothing observable at that width.
type resultHeap []Result

// popMin removes and returns the candidate with the smallest distance.
func (h *resultHeap) popMin() Result {
	list := *h
	minIdx := 0
	for i := 1; i < len(list); i++ {
		if list[i].Distance < list[minIdx].Distance {
			minIdx = i
		}
	}
	r := list[minIdx]
	list[minIdx] = list[len(list)-1]
	*h = list[:len(list)-1]
	return r
}

// pushMin appends a candidate; ordering is resolved lazily by popMin/popMax.
func (h *resultHeap) pushMin(r Result) {
	*h = append(*h, r)
}

// pushMax is an alias of pushMin: the same slice serves both the
// best-first candidate queue and the bounded "found" set, which differ
// only in which end callers extract from.
func (h *resultHeap) pushMax(r Result) {
	*h = append(*h, r)
}

// popMax removes and returns the candidate with the largest distance.
func (h *resultHeap) popMax() Result {
	list := *h
	maxIdx := 0
	for i := 1; i < len(list); i++ {
		if list[i].Distance > list[maxIdx].Distance {
			maxIdx = i
		}
	}
	r := list[maxIdx]
	list[maxIdx] = list[len(list)-1]
	*h = list[:len(list)-1]
	return r
}

// max returns the largest distance currently held, or 2^30 (far above any
// cosine distance) if empty so comparisons against it never spuriously
// stop the search early.
func (h *resultHeap) max() float32 {
	list := *h
	if len(list) == 0 {
		return float32(1 << 30)
	}
	m := list[0].Distance
	for _, r := range list[1:] {
		if r.Distance > m {
			m = r.Distance
		}
	}
	return m
}

// Len reports the number of candidates currently held.
func (h *resultHeap) Len() int { return len(*h) }
