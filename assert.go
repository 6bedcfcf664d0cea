//go:build statalloc_debug

package statalloc

import "fmt"

// assertf checks a precondition in debug builds only, matching §7's
// "implementations may assert in debug builds but must not pay for checks
// in release builds." Building with -tags statalloc_debug turns every
// precondition violation into a panic instead of silent undefined
// behavior.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
