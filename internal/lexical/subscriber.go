package lexical

import "github.com/agrama-dev/agrama/internal/store"

// Subscriber adapts Index to the store.Subscriber interface so the engine
// façade can register it directly with the temporal store (spec.md §4.2).
type Subscriber struct {
	Index *Index
}

func (s Subscriber) OnPut(id uint32, _ store.Path, content []byte) {
	s.Index.IndexPath(id, content)
}

func (s Subscriber) OnDelete(id uint32, _ store.Path) {
	s.Index.Remove(id)
}
