package statalloc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSafeConcurrentAllocateDeallocate(t *testing.T) {
	base, err := New(64, 16)
	require.NoError(t, err)
	safe := NewSafe(base)

	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				p, err := safe.Allocate(24, 8)
				if err != nil {
					continue
				}
				p[0] = 1
				safe.Deallocate(p, 24, 8)
			}
		}()
	}
	wg.Wait()

	require.True(t, safe.IsEmpty(), "every allocation was paired with a deallocation")
}

func TestSafeSerializesAccess(t *testing.T) {
	base, err := New(4, 4)
	require.NoError(t, err)
	safe := NewSafe(base)

	var wg sync.WaitGroup
	held := make(chan []byte, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := safe.Allocate(4, 0)
			if err == nil {
				held <- p
			}
		}()
	}
	wg.Wait()
	close(held)

	var got [][]byte
	for p := range held {
		got = append(got, p)
	}
	require.Len(t, got, 4, "exactly four single-block allocations should fit in a 4-block allocator")
	require.True(t, safe.IsOOM())
}
