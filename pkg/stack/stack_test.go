package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushPop(t *testing.T) {
	s := New()
	s.Push(1)
	s.Push(2)
	s.Push(3)

	v, ok := s.Pop()
	require.True(t, ok)
	assert.Equal(t, int64(3), v)
	assert.Equal(t, 2, s.Len())
}

func TestPopEmpty(t *testing.T) {
	s := New()
	_, ok := s.Pop()
	assert.False(t, ok)
}

func TestPeekDoesNotRemove(t *testing.T) {
	s := New()
	s.Push(42)
	v, ok := s.Peek()
	require.True(t, ok)
	assert.Equal(t, int64(42), v)
	assert.Equal(t, 1, s.Len())
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New()
	s.Push(1)
	s.Push(2)
	snap := s.Snapshot()
	assert.Equal(t, []int64{1, 2}, snap)

	s.Push(3)
	assert.Equal(t, []int64{1, 2}, snap, "snapshot must not observe later mutations")
}

func TestReset(t *testing.T) {
	s := New()
	s.Push(1)
	s.Push(2)
	s.Reset()
	assert.Equal(t, 0, s.Len())
}

func TestHandleRoundTrip(t *testing.T) {
	s := New()
	s.Push(7)

	h := s.Handle()
	recovered := FromHandle(h)
	assert.Same(t, s, recovered)

	v, ok := recovered.Pop()
	require.True(t, ok)
	assert.Equal(t, int64(7), v)
}
