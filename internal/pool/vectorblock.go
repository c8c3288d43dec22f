package pool

import (
	"sync/atomic"
	"unsafe"

	"github.com/agrama-dev/agrama/internal/logging"
)

const vectorAlignment = 32

// VectorBlock is a 32-byte-aligned buffer sized for one dim-float32 vector,
// as spec.md §4.1 requires for wide-SIMD loads. Vec views the aligned
// portion of raw as a []float32; raw is kept so the same backing array is
// recycled by Release instead of reallocated.
type VectorBlock struct {
	raw  []byte
	Vec  []float32
	next atomic.Pointer[VectorBlock]
}

// VectorBlockPool hands out 32-byte-aligned, dim*4 byte buffers for a fixed
// dim (the store-wide constant set at engine creation, spec.md §3).
type VectorBlockPool struct {
	parent   *Pools
	dim      int
	free     atomic.Pointer[VectorBlock]
	capacity atomic.Int64
}

// NewVectorBlockPool constructs a pool of aligned vector buffers for the
// given dimension.
func NewVectorBlockPool(parent *Pools, dim int) *VectorBlockPool {
	return &VectorBlockPool{parent: parent, dim: dim}
}

func alignedView(raw []byte, dim int) []float32 {
	addr := uintptr(unsafe.Pointer(&raw[0]))
	offset := (vectorAlignment - addr%vectorAlignment) % vectorAlignment
	aligned := raw[offset : offset+dim*4]
	return unsafe.Slice((*float32)(unsafe.Pointer(&aligned[0])), dim)
}

func newVectorBlock(dim int) *VectorBlock {
	raw := make([]byte, dim*4+vectorAlignment-1)
	return &VectorBlock{raw: raw, Vec: alignedView(raw, dim)}
}

// Acquire returns a zeroed, 32-byte-aligned vector buffer of dim*4 bytes.
func (p *VectorBlockPool) Acquire() (*VectorBlock, error) {
	for {
		top := p.free.Load()
		if top == nil {
			break
		}
		next := top.next.Load()
		if p.free.CompareAndSwap(top, next) {
			p.parent.totalAcquired.Add(1)
			return top, nil
		}
	}
	if err := p.grow(); err != nil {
		return nil, err
	}
	return p.Acquire()
}

func (p *VectorBlockPool) grow() error {
	cur := p.capacity.Load()
	n := (cur + 1) / 2
	if n < 1 {
		n = 1
	}
	blockBytes := int64(p.dim*4 + vectorAlignment - 1)
	if err := p.parent.reserve(n * blockBytes); err != nil {
		logging.Log.WithError(err).WithField("requested", n).Warn("vector block pool: growth denied by memory cap")
		return err
	}
	p.capacity.Add(n)
	for i := int64(0); i < n; i++ {
		vb := newVectorBlock(p.dim)
		for {
			top := p.free.Load()
			vb.next.Store(top)
			if p.free.CompareAndSwap(top, vb) {
				break
			}
		}
	}
	logging.Log.WithField("added", n).Warn("vector block pool: grew free list")
	return nil
}

// Release zeroes the vector and returns the block to the free list.
func (p *VectorBlockPool) Release(vb *VectorBlock) {
	for i := range vb.Vec {
		vb.Vec[i] = 0
	}
	for {
		top := p.free.Load()
		vb.next.Store(top)
		if p.free.CompareAndSwap(top, vb) {
			return
		}
	}
}
