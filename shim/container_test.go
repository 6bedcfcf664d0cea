package shim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"statalloc"
)

func TestArenaReserveGrowsAndPreservesContent(t *testing.T) {
	a, err := statalloc.New(32, 8)
	require.NoError(t, err)

	arena := NewArena(a, 8)
	buf, err := arena.Reserve(10)
	require.NoError(t, err)
	copy(buf, []byte("0123456789"))

	buf, err = arena.Reserve(40)
	require.NoError(t, err)
	require.Equal(t, []byte("0123456789"), buf[:10])
	require.Equal(t, 40, arena.Len())

	arena.Release()
	require.True(t, a.IsEmpty())
}

func TestArenaTruncateReleasesTail(t *testing.T) {
	a, err := statalloc.New(32, 8)
	require.NoError(t, err)

	arena := NewArena(a, 8)
	_, err = arena.Reserve(64)
	require.NoError(t, err)

	arena.Truncate(8)
	require.Equal(t, 8, arena.Len())

	arena.Release()
	require.True(t, a.IsEmpty())
}

func TestMultipleArenasShareOneAllocator(t *testing.T) {
	a, err := statalloc.New(32, 8)
	require.NoError(t, err)

	arena1 := NewArena(a, 8)
	arena2 := NewArena(a, 8)

	_, err = arena1.Reserve(16)
	require.NoError(t, err)
	_, err = arena2.Reserve(16)
	require.NoError(t, err)
	require.False(t, a.IsEmpty())

	arena1.Release()
	arena2.Release()
	require.True(t, a.IsEmpty())
}
