// Package pool implements the engine's fixed-size object pools, aligned
// vector blocks, and scoped arenas (spec.md §4.1). Every pool is owned by a
// Pools instance rather than held in package-global state, so multiple
// engines can coexist in one process (spec.md §9 "Global mutable state").
package pool

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/agrama-dev/agrama/internal/logging"
)

// Page size classes used to bucket object pools (spec.md §4.1).
const (
	SmallPage  = 4096
	MediumPage = 65_536
	LargePage  = 2_097_152
)

// GrowthFactor is the multiplicative expansion that each pool's growth rule
// amounts to: a growth adds ceil(capacity/2) blocks. The growth code applies
// that rule directly and does not read this constant.
const GrowthFactor = 1.5

// Pools is the engine-scoped owner of every object pool, vector-block pool,
// and arena pool. It enforces the process-wide memory cap: any pool growth
// that would push total reserved bytes past MaxTotalBytes fails with
// ErrResourceExhausted instead of growing.
type Pools struct {
	maxTotalBytes int64
	reserved      atomic.Int64
	totalAcquired atomic.Uint64
	peakUsage     atomic.Int64
	debug         bool
}

// New constructs a Pools instance with the given process-wide memory cap (in
// megabytes) and debug mode toggle. In debug mode, release() tracks issued
// handles per typed pool and treats a double release as a fatal invariant
// violation, as spec.md §4.1 requires.
func New(maxTotalMemoryMB int, debug bool) *Pools {
	return &Pools{
		maxTotalBytes: int64(maxTotalMemoryMB) * 1024 * 1024,
		debug:         debug,
	}
}

// reserve attempts to account n additional bytes against the cap. It is
// lock-free: a CAS loop so concurrent growers never overshoot the cap.
func (p *Pools) reserve(n int64) error {
	for {
		cur := p.reserved.Load()
		next := cur + n
		if p.maxTotalBytes > 0 && next > p.maxTotalBytes {
			return ErrResourceExhausted
		}
		if p.reserved.CompareAndSwap(cur, next) {
			for {
				peak := p.peakUsage.Load()
				if next <= peak || p.peakUsage.CompareAndSwap(peak, next) {
					break
				}
			}
			return nil
		}
	}
}

// TotalAcquired returns the monotonic count of successful acquires across
// every typed pool that shares this Pools instance.
func (p *Pools) TotalAcquired() uint64 { return p.totalAcquired.Load() }

// PeakUsageBytes returns the high-water mark of bytes reserved across every
// typed pool that shares this Pools instance.
func (p *Pools) PeakUsageBytes() int64 { return p.peakUsage.Load() }

// node is one entry in a pool's lock-free free-list stack.
type node[T any] struct {
	val  T
	next atomic.Pointer[node[T]]
}

// Pool is a fixed-size free-list pool for values of type T. Acquire/release
// are O(1) amortized and lock-free on the hot path; growth takes the slow
// path of allocating ceil(capacity/2) new blocks (spec.md §4.1).
type Pool[T any] struct {
	parent   *Pools
	free     atomic.Pointer[node[T]]
	capacity atomic.Int64
	objSize  int64

	mu     sync.Mutex
	issued map[*T]struct{} // debug mode only
}

// NewTyped creates a Pool[T] that accounts objSize bytes per instance
// against the parent Pools' memory cap.
func NewTyped[T any](parent *Pools, objSize int64) *Pool[T] {
	p := &Pool[T]{parent: parent, objSize: objSize}
	if parent.debug {
		p.issued = make(map[*T]struct{})
	}
	return p
}

// Acquire pops a value from the free list, growing the pool first if it is
// empty. Never fails unless growth would exceed the process-wide memory cap.
func (p *Pool[T]) Acquire() (*T, error) {
	for {
		top := p.free.Load()
		if top == nil {
			break
		}
		next := top.next.Load()
		if p.free.CompareAndSwap(top, next) {
			p.parent.totalAcquired.Add(1)
			p.markIssued(&top.val)
			return &top.val, nil
		}
	}
	if err := p.grow(); err != nil {
		return nil, err
	}
	return p.Acquire()
}

// grow allocates ceil(capacity/2) new blocks (minimum 1) and pushes them
// onto the free list.
func (p *Pool[T]) grow() error {
	cur := p.capacity.Load()
	n := (cur + 1) / 2
	if n < 1 {
		n = 1
	}
	if err := p.parent.reserve(n * p.objSize); err != nil {
		logging.Log.WithError(err).WithField("requested", n).Warn("pool: growth denied by memory cap")
		return err
	}
	p.capacity.Add(n)
	for i := int64(0); i < n; i++ {
		nd := &node[T]{}
		for {
			top := p.free.Load()
			nd.next.Store(top)
			if p.free.CompareAndSwap(top, nd) {
				break
			}
		}
	}
	logging.Log.WithField("added", n).Warn("pool: grew free list")
	return nil
}

// Release zeroes the value and returns it to the free list. Releasing a
// handle this pool never issued is a programming error; in debug mode it is
// detected and returns ErrDoubleRelease instead of silently corrupting the
// free list.
func (p *Pool[T]) Release(v *T) error {
	if p.parent.debug {
		p.mu.Lock()
		if _, ok := p.issued[v]; !ok {
			p.mu.Unlock()
			return ErrDoubleRelease
		}
		delete(p.issued, v)
		p.mu.Unlock()
	}
	*v = *new(T)
	// val is node[T]'s first field, so the address of v is the address of
	// its containing node: recover it without a fresh allocation, keeping
	// release a true O(1) return to the free list rather than a grow.
	nd := (*node[T])(unsafe.Pointer(v))
	for {
		top := p.free.Load()
		nd.next.Store(top)
		if p.free.CompareAndSwap(top, nd) {
			return nil
		}
	}
}

func (p *Pool[T]) markIssued(v *T) {
	if !p.parent.debug {
		return
	}
	p.mu.Lock()
	p.issued[v] = struct{}{}
	p.mu.Unlock()
}
