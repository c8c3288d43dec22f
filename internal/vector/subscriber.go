package vector

import "github.com/agrama-dev/agrama/internal/store"

// Subscriber adapts Index to store.Subscriber. Embeddings are supplied
// separately through the engine's embed() operation, so OnPut is a no-op;
// the vector index only needs to react to deletes, dropping any embedding
// the deleted path had (spec.md §4.2's subscriber list names all three
// indexes, but only the ones with content to react to do real work on a
// given event).
type Subscriber struct {
	Index *Index
}

func (s Subscriber) OnPut(_ uint32, _ store.Path, _ []byte) {}

func (s Subscriber) OnDelete(id uint32, _ store.Path) {
	s.Index.Remove(id)
}
