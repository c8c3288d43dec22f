package store

// Change is one recorded write to a path (spec.md §3). Content is immutable
// once stored; the store never mutates a Change after it is appended.
type Change struct {
	Timestamp int64
	Path      Path
	Content   []byte
}

// Subscriber receives write and tombstone events from the temporal store in
// the order the store's indexes must stay consistent with (spec.md §4.2,
// §9): lexical, then vector, then graph. Indexes hold only the dense id the
// store assigns a path; they never own a reference back into the store.
type Subscriber interface {
	OnPut(id uint32, path Path, content []byte)
	OnDelete(id uint32, path Path)
}
