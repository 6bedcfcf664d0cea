// Package typed adapts the allocator's raw byte interface to single
// fixed-layout values, the way a caller who doesn't want to deal with
// byte slices and manual alignment math would. T must contain no
// pointers: the whole point of a fixed-capacity allocator is that
// nothing it hands out survives a Close, so anything a pointer could
// reach would dangle.
package typed

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Allocator is the subset of statalloc.Allocator (or Safe, or Chain)
// that New/Free need.
type Allocator interface {
	Allocate(size, align uint32) ([]byte, error)
	Deallocate(p []byte, size, align uint32)
}

func assertNoPointers[T any]() error {
	var zero T
	return typeNoPointers(reflect.TypeOf(zero))
}

func typeNoPointers(t reflect.Type) error {
	switch t.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return nil
	case reflect.Array:
		return typeNoPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if err := typeNoPointers(t.Field(i).Type); err != nil {
				return fmt.Errorf("field %s: %w", t.Field(i).Name, err)
			}
		}
		return nil
	case reflect.String, reflect.Slice, reflect.Map, reflect.Pointer,
		reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return fmt.Errorf("type %s contains pointer-like data", t.String())
	default:
		return fmt.Errorf("unsupported kind %s (%s)", t.Kind(), t.String())
	}
}

// New reserves space for one T in a, zeroes it, and returns a pointer
// into the allocator's backing buffer. The pointer is valid until the
// matching Free call or until a is closed, whichever comes first.
func New[T any](a Allocator, align uint32) (*T, error) {
	if err := assertNoPointers[T](); err != nil {
		return nil, err
	}
	var zero T
	size := uint32(unsafe.Sizeof(zero))
	buf, err := a.Allocate(size, align)
	if err != nil {
		return nil, err
	}
	p := (*T)(unsafe.Pointer(unsafe.SliceData(buf)))
	*p = zero
	return p, nil
}

// Free returns the value at p to a. T and align must match the call to
// New that produced p.
func Free[T any](a Allocator, p *T, align uint32) {
	var zero T
	size := uint32(unsafe.Sizeof(zero))
	buf := unsafe.Slice((*byte)(unsafe.Pointer(p)), size)
	a.Deallocate(buf, size, align)
}
