package graphidx

import "github.com/agrama-dev/agrama/internal/store"

// Subscriber adapts Index to store.Subscriber: on Put it pre-registers the
// path's node id so later link()/unlink() calls always have a node to
// attach edges to (spec.md §4.2). Deletes leave existing edges alone; a
// deleted path's history is gone but its graph position, if already
// linked, is a structural fact the store's delete does not undo.
type Subscriber struct {
	Index *Index
}

func (s Subscriber) OnPut(id uint32, _ store.Path, _ []byte) {
	s.Index.RegisterNode(id)
}

func (s Subscriber) OnDelete(_ uint32, _ store.Path) {}
