package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agrama-dev/agrama/internal/apperr"
)

type recordingSubscriber struct {
	puts    []string
	deletes []string
}

func (r *recordingSubscriber) OnPut(id uint32, path Path, content []byte) {
	r.puts = append(r.puts, string(path))
}

func (r *recordingSubscriber) OnDelete(id uint32, path Path) {
	r.deletes = append(r.deletes, string(path))
}

func TestTemporalReplay(t *testing.T) {
	s := New()
	_, err := s.Put(1, "foo.zig", []byte("A"))
	require.NoError(t, err)
	_, err = s.Put(2, "foo.zig", []byte("B"))
	require.NoError(t, err)
	_, err = s.Put(3, "foo.zig", []byte("C"))
	require.NoError(t, err)

	hist, err := s.History("foo.zig", 10)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	require.Equal(t, "C", string(hist[0].Content))
	require.EqualValues(t, 3, hist[0].Timestamp)
	require.Equal(t, "B", string(hist[1].Content))
	require.Equal(t, "A", string(hist[2].Content))

	content, ok, err := s.SnapshotAsOf("foo.zig", 2)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "B", string(content))

	_, ok, err = s.SnapshotAsOf("foo.zig", 0)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHistoryNonEmptyAndLastEqualsCurrent(t *testing.T) {
	s := New()
	_, err := s.Put(1, "a.go", []byte("hello"))
	require.NoError(t, err)
	_, err = s.Put(2, "a.go", []byte("world"))
	require.NoError(t, err)

	hist, err := s.History("a.go", 10)
	require.NoError(t, err)
	require.NotEmpty(t, hist)

	cur, err := s.Get("a.go")
	require.NoError(t, err)
	require.Equal(t, string(cur), string(hist[0].Content))
}

func TestTimestampsNonDecreasing(t *testing.T) {
	s := New()
	_, _ = s.Put(5, "p", []byte("x"))
	_, _ = s.Put(5, "p", []byte("y"))
	_, _ = s.Put(9, "p", []byte("z"))

	hist, err := s.History("p", 10)
	require.NoError(t, err)
	for i := 1; i < len(hist); i++ {
		require.LessOrEqual(t, hist[i].Timestamp, hist[i-1].Timestamp)
	}
}

func TestDeleteRemovesGetAndHistory(t *testing.T) {
	s := New()
	_, _ = s.Put(1, "p", []byte("x"))
	require.NoError(t, s.Delete("p"))

	_, err := s.Get("p")
	require.True(t, apperr.Is(err, apperr.NotFound))

	_, err = s.History("p", 10)
	require.True(t, apperr.Is(err, apperr.NotFound))
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := New()
	_, _ = s.Put(1, "p", []byte("x"))
	require.NoError(t, s.Delete("p"))
	require.NoError(t, s.Delete("p"))
}

func TestPutGetRoundTripByteExact(t *testing.T) {
	s := New()
	raw := []byte{0x00, 0x01, 0xFF, 0xFE, 'h', 'i'}
	_, err := s.Put(1, "bin", raw)
	require.NoError(t, err)

	got, err := s.Get("bin")
	require.NoError(t, err)
	require.Equal(t, raw, got)
}

func TestSubscribersNotifiedInOrderBeforePutReturns(t *testing.T) {
	s := New()
	lex := &recordingSubscriber{}
	vec := &recordingSubscriber{}
	graph := &recordingSubscriber{}
	s.Subscribe(lex)
	s.Subscribe(vec)
	s.Subscribe(graph)

	_, err := s.Put(1, "p", []byte("x"))
	require.NoError(t, err)
	require.Equal(t, []string{"p"}, lex.puts)
	require.Equal(t, []string{"p"}, vec.puts)
	require.Equal(t, []string{"p"}, graph.puts)
}

func TestDeleteEmitsTombstoneOnlyIfExisted(t *testing.T) {
	s := New()
	lex := &recordingSubscriber{}
	s.Subscribe(lex)

	require.NoError(t, s.Delete("never-existed"))
	require.Empty(t, lex.deletes)

	_, _ = s.Put(1, "p", []byte("x"))
	require.NoError(t, s.Delete("p"))
	require.Equal(t, []string{"p"}, lex.deletes)
}

func TestInvalidPathRejected(t *testing.T) {
	s := New()
	_, err := s.Put(1, "", []byte("x"))
	require.True(t, apperr.Is(err, apperr.InvalidArgument))

	_, err = s.Put(1, "/abs", []byte("x"))
	require.True(t, apperr.Is(err, apperr.InvalidArgument))

	_, err = s.Put(1, "a/../b", []byte("x"))
	require.True(t, apperr.Is(err, apperr.InvalidArgument))
}

func TestIDOfIsStableAcrossDelete(t *testing.T) {
	s := New()
	_, _ = s.Put(1, "p", []byte("x"))
	id, ok := s.IDOf("p")
	require.True(t, ok)

	require.NoError(t, s.Delete("p"))
	_, _ = s.Put(2, "p", []byte("y"))
	id2, ok := s.IDOf("p")
	require.True(t, ok)
	require.Equal(t, id, id2)
}
