// Package lexical implements the BM25 keyword index over stored path
// content (spec.md §4.3). It subscribes to the temporal store's write
// events and maintains per-term posting lists incrementally.
package lexical

import (
	"math"
	"sort"
	"sync"
)

// K1 and B are the BM25 tuning constants spec.md §4.3 fixes.
const (
	K1 = 1.2
	B  = 0.75
)

type posting struct {
	pathID uint32
	tf     int
}

// Index is the BM25 inverted index. Safe for concurrent use.
type Index struct {
	mu sync.RWMutex

	postings map[string][]posting // term -> postings, sorted by pathID
	docLen   map[uint32]int       // pathID -> token count
	terms    map[uint32][]string  // pathID -> distinct terms indexed, for Remove

	totalDocLen int
}

// New constructs an empty BM25 index.
func New() *Index {
	return &Index{
		postings: make(map[string][]posting),
		docLen:   make(map[uint32]int),
		terms:    make(map[uint32][]string),
	}
}

// IndexPath tokenizes content and merges it into the posting lists. If
// pathID was previously indexed, its prior postings are removed first, so
// a re-index (on Put of an existing path) behaves as a replace.
func (idx *Index) IndexPath(pathID uint32, content []byte) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(pathID)

	tokens := tokenize(content)
	if len(tokens) == 0 {
		return
	}
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	distinct := make([]string, 0, len(counts))
	for term, tf := range counts {
		idx.postings[term] = insertPosting(idx.postings[term], posting{pathID: pathID, tf: tf})
		distinct = append(distinct, term)
	}
	idx.terms[pathID] = distinct
	idx.docLen[pathID] = len(tokens)
	idx.totalDocLen += len(tokens)
}

// Remove drops pathID's postings from the index.
func (idx *Index) Remove(pathID uint32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(pathID)
}

func (idx *Index) removeLocked(pathID uint32) {
	terms, ok := idx.terms[pathID]
	if !ok {
		return
	}
	for _, term := range terms {
		list := idx.postings[term]
		for i, p := range list {
			if p.pathID == pathID {
				idx.postings[term] = append(list[:i], list[i+1:]...)
				break
			}
		}
		if len(idx.postings[term]) == 0 {
			delete(idx.postings, term)
		}
	}
	idx.totalDocLen -= idx.docLen[pathID]
	delete(idx.docLen, pathID)
	delete(idx.terms, pathID)
}

// Result is one scored hit from Query.
type Result struct {
	PathID uint32
	Score  float64
}

// Query tokenizes text and scores every candidate document with BM25,
// returning the topK results sorted by descending score with a stable
// tie-break on ascending pathID.
func (idx *Index) Query(text string, topK int) []Result {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	qterms := tokenize([]byte(text))
	if len(qterms) == 0 || len(idx.docLen) == 0 {
		return nil
	}
	avgdl := float64(idx.totalDocLen) / float64(len(idx.docLen))

	scores := make(map[uint32]float64)
	seen := make(map[string]bool)
	for _, term := range qterms {
		if seen[term] {
			continue
		}
		seen[term] = true
		list := idx.postings[term]
		if len(list) == 0 {
			continue
		}
		n := len(list)
		idf := idfScore(n, len(idx.docLen))
		for _, p := range list {
			dl := float64(idx.docLen[p.pathID])
			tf := float64(p.tf)
			denom := tf + K1*(1-B+B*dl/avgdl)
			scores[p.pathID] += idf * (tf * (K1 + 1) / denom)
		}
	}

	out := make([]Result, 0, len(scores))
	for id, s := range scores {
		out = append(out, Result{PathID: id, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].PathID < out[j].PathID
	})
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}

func idfScore(docsWithTerm, totalDocs int) float64 {
	// Standard Robertson-Sparck Jones BM25 idf, floored at a small positive
	// value so a term present in every document does not drive the score
	// negative.
	n := float64(totalDocs)
	df := float64(docsWithTerm)
	v := math.Log((n-df+0.5)/(df+0.5) + 1)
	if v < 0 {
		v = 0.0001
	}
	return v
}

func insertPosting(list []posting, p posting) []posting {
	i := sort.Search(len(list), func(i int) bool { return list[i].pathID >= p.pathID })
	list = append(list, posting{})
	copy(list[i+1:], list[i:])
	list[i] = p
	return list
}
