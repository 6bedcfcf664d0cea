//go:build unix

package backing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapAnonymousIsZeroedAndWritable(t *testing.T) {
	m, err := MapAnonymous(4096)
	require.NoError(t, err)
	defer m.Close()

	buf := m.Bytes()
	require.Len(t, buf, 4096)
	for i, b := range buf {
		require.Equalf(t, byte(0), b, "byte %d not zeroed", i)
	}

	buf[0] = 1
	buf[4095] = 2
	require.Equal(t, byte(1), m.Bytes()[0])
	require.Equal(t, byte(2), m.Bytes()[4095])
}

func TestMapAnonymousCloseUnmaps(t *testing.T) {
	m, err := MapAnonymous(4096)
	require.NoError(t, err)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close(), "Close must be idempotent")
}
