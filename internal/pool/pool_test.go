package pool

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

type widget struct {
	A int
	B string
}

func TestPoolAcquireReleaseReuse(t *testing.T) {
	pools := New(64, true)
	p := NewTyped[widget](pools, 64)

	w, err := p.Acquire()
	require.NoError(t, err)
	w.A = 7
	w.B = "x"

	require.NoError(t, p.Release(w))
	require.Equal(t, widget{}, *w, "release must zero the value")

	w2, err := p.Acquire()
	require.NoError(t, err)
	require.Same(t, w, w2, "release must return the same backing node for reuse")
}

func TestPoolGrowsOnDemand(t *testing.T) {
	pools := New(64, false)
	p := NewTyped[widget](pools, 64)

	seen := make(map[*widget]bool)
	for i := 0; i < 5; i++ {
		w, err := p.Acquire()
		require.NoError(t, err)
		require.False(t, seen[w], "acquire must not hand out a live handle twice")
		seen[w] = true
	}
	require.EqualValues(t, 5, pools.TotalAcquired())
}

func TestPoolDoubleReleaseDetectedInDebugMode(t *testing.T) {
	pools := New(64, true)
	p := NewTyped[widget](pools, 64)

	w, err := p.Acquire()
	require.NoError(t, err)
	require.NoError(t, p.Release(w))
	require.ErrorIs(t, p.Release(w), ErrDoubleRelease)
}

func TestPoolResourceExhausted(t *testing.T) {
	pools := New(0, false)
	pools.maxTotalBytes = 32
	p := NewTyped[widget](pools, 64)

	_, err := p.Acquire()
	require.ErrorIs(t, err, ErrResourceExhausted)
}

func TestVectorBlockAlignment(t *testing.T) {
	pools := New(64, false)
	vp := NewVectorBlockPool(pools, 128)

	vb, err := vp.Acquire()
	require.NoError(t, err)
	require.Len(t, vb.Vec, 128)
	addr := uintptr(unsafe.Pointer(&vb.Vec[0]))
	require.EqualValues(t, 0, addr%vectorAlignment)

	vb.Vec[0] = 1.5
	vp.Release(vb)
	require.Equal(t, float32(0), vb.Vec[0], "release must zero the vector")
}

func TestArenaAllocAndRelease(t *testing.T) {
	pools := New(64, false)
	ap := NewArenaPool(pools, 1024)

	a, err := ap.Acquire()
	require.NoError(t, err)

	b, err := a.Alloc(100)
	require.NoError(t, err)
	require.Len(t, b, 100)
	require.Equal(t, 100, a.Used())

	_, err = a.Alloc(1000)
	require.ErrorIs(t, err, ErrResourceExhausted)

	ap.Release(a)
	require.Equal(t, 0, a.Used())
}
