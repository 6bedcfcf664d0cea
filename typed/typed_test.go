package typed

import (
	"testing"

	"github.com/stretchr/testify/require"

	"statalloc"
)

type point struct {
	X, Y int32
}

func TestNewFreeRoundTrip(t *testing.T) {
	a, err := statalloc.New(8, 16)
	require.NoError(t, err)

	p, err := New[point](a, 8)
	require.NoError(t, err)
	require.Equal(t, point{}, *p)

	p.X, p.Y = 3, 4
	require.Equal(t, point{3, 4}, *p)

	Free(a, p, 8)
	require.True(t, a.IsEmpty())
}

func TestNewRejectsPointerBearingTypes(t *testing.T) {
	a, err := statalloc.New(8, 16)
	require.NoError(t, err)

	_, err = New[[]byte](a, 8)
	require.Error(t, err)
}
