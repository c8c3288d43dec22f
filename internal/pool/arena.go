package pool

import (
	"sync/atomic"

	"github.com/agrama-dev/agrama/internal/logging"
)

// Arena is a scoped bump allocator: it hands out byte slices carved off one
// contiguous backing buffer and is reset in a single operation rather than
// object-by-object (spec.md §4.1 "acquire_arena / alloc(arena, n) /
// release_arena"). An Arena is not safe for concurrent use by multiple
// goroutines; callers scope one to a single request the way the façade
// scopes one per inbound call (spec.md §7).
type Arena struct {
	pool   *ArenaPool
	buf    []byte
	offset int
}

// Alloc carves n bytes off the arena's backing buffer and returns them
// zeroed. It never frees individual allocations; the whole arena is
// reclaimed at once by ArenaPool.Release.
func (a *Arena) Alloc(n int) ([]byte, error) {
	if a.offset+n > len(a.buf) {
		return nil, ErrResourceExhausted
	}
	b := a.buf[a.offset : a.offset+n]
	a.offset += n
	return b, nil
}

// Used reports how many bytes of the arena's buffer are currently carved out.
func (a *Arena) Used() int { return a.offset }

// Cap reports the arena's total backing capacity in bytes.
func (a *Arena) Cap() int { return len(a.buf) }

func (a *Arena) reset() {
	for i := range a.buf {
		a.buf[i] = 0
	}
	a.offset = 0
}

// arenaNode links free Arenas on ArenaPool's lock-free stack.
type arenaNode struct {
	arena *Arena
	next  atomic.Pointer[arenaNode]
}

// ArenaPool hands out fixed-capacity Arenas, reusing their backing buffers
// across requests instead of letting every request's scratch allocations
// hit the Go heap directly.
type ArenaPool struct {
	parent     *Pools
	arenaBytes int64
	free       atomic.Pointer[arenaNode]
	capacity   atomic.Int64
}

// NewArenaPool constructs a pool of arenas, each arenaBytes in size.
func NewArenaPool(parent *Pools, arenaBytes int) *ArenaPool {
	return &ArenaPool{parent: parent, arenaBytes: int64(arenaBytes)}
}

// Acquire returns a reset, zeroed arena, growing the pool if none are free.
func (p *ArenaPool) Acquire() (*Arena, error) {
	for {
		top := p.free.Load()
		if top == nil {
			break
		}
		next := top.next.Load()
		if p.free.CompareAndSwap(top, next) {
			p.parent.totalAcquired.Add(1)
			return top.arena, nil
		}
	}
	if err := p.grow(); err != nil {
		return nil, err
	}
	return p.Acquire()
}

func (p *ArenaPool) grow() error {
	cur := p.capacity.Load()
	n := (cur + 1) / 2
	if n < 1 {
		n = 1
	}
	if err := p.parent.reserve(n * p.arenaBytes); err != nil {
		logging.Log.WithError(err).WithField("requested", n).Warn("arena pool: growth denied by memory cap")
		return err
	}
	p.capacity.Add(n)
	for i := int64(0); i < n; i++ {
		a := &Arena{pool: p, buf: make([]byte, p.arenaBytes)}
		nd := &arenaNode{arena: a}
		for {
			top := p.free.Load()
			nd.next.Store(top)
			if p.free.CompareAndSwap(top, nd) {
				break
			}
		}
	}
	logging.Log.WithField("added", n).Warn("arena pool: grew free list")
	return nil
}

// Release resets the arena's bump offset and returns it to the free list.
// The backing buffer is reused, not freed: this is the "release_arena"
// operation of spec.md §4.1, O(1) in the number of allocations it held.
func (p *ArenaPool) Release(a *Arena) {
	a.reset()
	nd := &arenaNode{arena: a}
	for {
		top := p.free.Load()
		nd.next.Store(top)
		if p.free.CompareAndSwap(top, nd) {
			return
		}
	}
}
