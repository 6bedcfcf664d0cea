//go:build !statalloc_debug

package statalloc

// assertf is a no-op outside the statalloc_debug build tag; see assert.go.
func assertf(cond bool, format string, args ...any) {}
