package store

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// entry is one element of a path's history. full is non-nil (possibly
// empty) for the first entry and for any entry whose content, or whose
// predecessor's content, is not valid UTF-8 (diffmatchpatch operates on
// runes, so binary content is stored as a fresh anchor rather than risk a
// lossy delta). Otherwise delta reconstructs this entry's content from the
// previous entry's content.
type entry struct {
	ts    int64
	full  []byte
	delta string
}

// pathHistory is the anchor+delta history for one path (spec.md §4.2,
// optional compression). snapshot_as_of and history() both replay forward
// from the nearest preceding anchor; current is cached so get() stays O(1).
type pathHistory struct {
	entries []entry
	current []byte
}

func newPathHistory(ts int64, content []byte) *pathHistory {
	cp := append([]byte{}, content...)
	return &pathHistory{
		entries: []entry{{ts: ts, full: cp}},
		current: cp,
	}
}

func (h *pathHistory) append(dmp *diffmatchpatch.DiffMatchPatch, ts int64, content []byte) {
	cp := append([]byte{}, content...)
	prev := h.current
	if utf8.Valid(prev) && utf8.Valid(content) {
		diffs := dmp.DiffMain(string(prev), string(content), false)
		delta := dmp.DiffToDelta(diffs)
		h.entries = append(h.entries, entry{ts: ts, delta: delta})
	} else {
		h.entries = append(h.entries, entry{ts: ts, full: cp})
	}
	h.current = cp
}

// contentAt reconstructs the content of entries[idx] by replaying deltas
// forward from the nearest preceding anchor.
func (h *pathHistory) contentAt(dmp *diffmatchpatch.DiffMatchPatch, idx int) []byte {
	anchor := idx
	for h.entries[anchor].full == nil {
		anchor--
	}
	text := string(h.entries[anchor].full)
	for i := anchor + 1; i <= idx; i++ {
		diffs, err := dmp.DiffFromDelta(text, h.entries[i].delta)
		if err != nil {
			// Corrupt delta is an invariant violation, not a user error;
			// callers treat contentAt as infallible, so fall back to the
			// cached current content rather than panic mid-reconstruction.
			return h.current
		}
		text = dmp.DiffText2(diffs)
	}
	return []byte(text)
}

// timestamps returns the history's ordered timestamp slice for
// snapshot_as_of's binary search, without reconstructing any content.
func (h *pathHistory) timestamps() []int64 {
	ts := make([]int64, len(h.entries))
	for i, e := range h.entries {
		ts[i] = e.ts
	}
	return ts
}
