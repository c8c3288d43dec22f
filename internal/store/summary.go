package store

import (
	"sync"

	"github.com/google/uuid"
)

// SummaryNode is the optional compaction artifact spec.md §3 describes: a
// generated summary standing in for a set of original paths, which are
// marked archived rather than deleted so their full history survives.
type SummaryNode struct {
	ID              string
	SummaryText     string
	OriginalPathIDs []uint32
	GeneratingModel string
	ArchivedPaths   []Path
}

// summaries holds the archive() operation's bookkeeping: created summary
// nodes and the set of paths they archived. It is separate from Store so
// the hot Put/Get/History path never touches this lock.
type summaries struct {
	mu       sync.RWMutex
	nodes    map[string]SummaryNode
	archived map[Path]bool
}

func newSummaries() *summaries {
	return &summaries{
		nodes:    make(map[string]SummaryNode),
		archived: make(map[Path]bool),
	}
}

// CreateSummaryNode records a new SummaryNode with a generated id and marks
// every path it summarizes as archived.
func (s *summaries) CreateSummaryNode(text string, originalPathIDs []uint32, generatingModel string, archivedPaths []Path) SummaryNode {
	node := SummaryNode{
		ID:              uuid.NewString(),
		SummaryText:     text,
		OriginalPathIDs: append([]uint32(nil), originalPathIDs...),
		GeneratingModel: generatingModel,
		ArchivedPaths:   append([]Path(nil), archivedPaths...),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[node.ID] = node
	for _, p := range archivedPaths {
		s.archived[p] = true
	}
	return node
}

// IsArchived reports whether path has been archived by some SummaryNode.
func (s *summaries) IsArchived(p Path) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.archived[p]
}

// Unarchive clears path's archived flag, called when the path is deleted
// outright so a later re-created path at the same name starts unarchived.
func (s *summaries) Unarchive(p Path) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.archived, p)
}

// SummaryNodeByID returns the summary node with the given id, if any.
func (s *summaries) SummaryNodeByID(id string) (SummaryNode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	return n, ok
}
