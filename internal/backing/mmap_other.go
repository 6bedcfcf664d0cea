//go:build !unix

package backing

import "errors"

// ErrMmapUnsupported is returned by MapAnonymous on platforms without a
// unix-style mmap, matching the teacher's windows mmap shim.
var ErrMmapUnsupported = errors.New("backing: anonymous mmap not supported on this platform")

// Mmap is an unusable placeholder outside unix; see mmap_unix.go.
type Mmap struct{}

func MapAnonymous(n uint32) (*Mmap, error) {
	return nil, ErrMmapUnsupported
}

func (m *Mmap) Bytes() []byte { return nil }

func (m *Mmap) Close() error { return nil }
