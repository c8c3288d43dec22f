// Package store implements the engine's temporal key-value store: path to
// current content, and path to an append-only, anchor+delta-compressed
// change log (spec.md §4.2). It is the engine's only write sink; the
// lexical, vector, and graph indexes subscribe to its writes.
package store

import (
	"sort"
	"sync"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/agrama-dev/agrama/internal/apperr"
)

// MaxContentBytes bounds a single Change's content (spec.md §4.2
// ContentTooLarge), matching the pool subsystem's large page class.
const MaxContentBytes = 2_097_152

// Store is the temporal key-value store. All of its exported methods are
// safe for concurrent use; put and delete take the write lock, the
// remaining accessors take the read lock (spec.md §5).
type Store struct {
	mu   sync.RWMutex
	dmp  *diffmatchpatch.DiffMatchPatch
	subs []Subscriber

	history  map[Path]*pathHistory
	idOfPath map[Path]uint32
	pathByID []Path

	summaries *summaries
}

// New constructs an empty temporal store.
func New() *Store {
	return &Store{
		dmp:       diffmatchpatch.New(),
		history:   make(map[Path]*pathHistory),
		idOfPath:  make(map[Path]uint32),
		summaries: newSummaries(),
	}
}

// Subscribe registers an index to receive future write and tombstone
// events, in the order subscribers were registered. Engine init registers
// lexical, then vector, then graph, per spec.md §4.2's fixed fan-out order.
func (s *Store) Subscribe(sub Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, sub)
}

// idFor returns the dense id for path, assigning a new one on first
// reference. Must be called with the write lock held.
func (s *Store) idFor(p Path) uint32 {
	if id, ok := s.idOfPath[p]; ok {
		return id
	}
	id := uint32(len(s.pathByID))
	s.idOfPath[p] = id
	s.pathByID = append(s.pathByID, p)
	return id
}

// Put validates path and content, appends a Change, and fans the write out
// to subscribers before returning, so a caller observing Put's return has
// already observed index consistency.
func (s *Store) Put(ts int64, path Path, content []byte) (Change, error) {
	if err := ValidatePath(path); err != nil {
		return Change{}, err
	}
	if len(content) > MaxContentBytes {
		return Change{}, apperr.Newf(apperr.InvalidArgument, "content exceeds %d bytes", MaxContentBytes)
	}

	s.mu.Lock()
	id := s.idFor(path)
	h, ok := s.history[path]
	if !ok {
		h = newPathHistory(ts, content)
		s.history[path] = h
	} else {
		h.append(s.dmp, ts, content)
	}
	subs := append([]Subscriber(nil), s.subs...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.OnPut(id, path, content)
	}

	return Change{Timestamp: ts, Path: path, Content: append([]byte(nil), content...)}, nil
}

// Get returns a path's current content.
func (s *Store) Get(path Path) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.history[path]
	if !ok {
		return nil, apperr.Newf(apperr.NotFound, "path %q not found", path)
	}
	return append([]byte(nil), h.current...), nil
}

// History returns up to limit Changes for path in reverse chronological
// order. Fails with NotFound if the path has no live history: it was never
// written, or it has been deleted (a re-created path starts a fresh
// history; the store only remembers live paths).
func (s *Store) History(path Path, limit int) ([]Change, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.history[path]
	if !ok {
		return nil, apperr.Newf(apperr.NotFound, "path %q not found", path)
	}
	n := len(h.entries)
	if limit > n || limit <= 0 {
		limit = n
	}
	out := make([]Change, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, Change{
			Timestamp: h.entries[i].ts,
			Path:      path,
			Content:   h.contentAt(s.dmp, i),
		})
	}
	return out, nil
}

// SnapshotAsOf returns the content whose timestamp is the greatest ≤ ts, or
// ok=false if every recorded timestamp exceeds ts. Lookup is a binary
// search over the path's timestamp sequence.
func (s *Store) SnapshotAsOf(path Path, ts int64) (content []byte, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, exists := s.history[path]
	if !exists {
		return nil, false, apperr.Newf(apperr.NotFound, "path %q not found", path)
	}
	times := h.timestamps()
	// sort.Search finds the first index whose timestamp > ts; the entry we
	// want is the one just before it.
	idx := sort.Search(len(times), func(i int) bool { return times[i] > ts })
	if idx == 0 {
		return nil, false, nil
	}
	return h.contentAt(s.dmp, idx-1), true, nil
}

// Delete removes path's current content and history, emitting a tombstone
// event to subscribers. Deleting an unknown path is not an error.
func (s *Store) Delete(path Path) error {
	s.mu.Lock()
	id, hadID := s.idOfPath[path]
	_, existed := s.history[path]
	delete(s.history, path)
	subs := append([]Subscriber(nil), s.subs...)
	s.mu.Unlock()

	s.summaries.Unarchive(path)

	if !existed || !hadID {
		return nil
	}
	for _, sub := range subs {
		sub.OnDelete(id, path)
	}
	return nil
}

// CreateSummaryNode records a SummaryNode and marks archivedPaths archived
// (spec.md §3 "Summary node", §4.7 archive operation). It does not delete
// the archived paths' content or history.
func (s *Store) CreateSummaryNode(text string, originalPathIDs []uint32, generatingModel string, archivedPaths []Path) SummaryNode {
	return s.summaries.CreateSummaryNode(text, originalPathIDs, generatingModel, archivedPaths)
}

// IsArchived reports whether path is currently archived.
func (s *Store) IsArchived(path Path) bool {
	return s.summaries.IsArchived(path)
}

// SummaryNodeByID returns a previously created SummaryNode by id.
func (s *Store) SummaryNodeByID(id string) (SummaryNode, bool) {
	return s.summaries.SummaryNodeByID(id)
}

// IDOf returns the dense id assigned to path, if one has ever been
// assigned (paths keep their id across delete, so a re-created path
// reuses its original id and indexes do not leak stale node references).
func (s *Store) IDOf(path Path) (uint32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.idOfPath[path]
	return id, ok
}

// PathOf is the inverse of IDOf.
func (s *Store) PathOf(id uint32) (Path, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(id) >= len(s.pathByID) {
		return "", false
	}
	return s.pathByID[id], true
}
