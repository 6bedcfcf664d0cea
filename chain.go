package statalloc

import (
	"sync"
	"unsafe"
)

// Provider is anything the fallback chain (component E) can route
// requests to: the core Allocator, its spinlock-guarded Safe wrapper, an
// OS-backed fallback, or another Chain (chains nest).
type Provider interface {
	Allocate(size, align uint32) ([]byte, error)
	Deallocate(p []byte, size, align uint32)
	Grow(p []byte, oldSize, newSize, align uint32) ([]byte, error)
	Shrink(p []byte, oldSize, newSize, align uint32) []byte
	addrInBounds(addr uintptr) bool
}

func addrOf(p []byte) uintptr {
	data := unsafe.SliceData(p)
	if data == nil {
		return 0
	}
	return uintptr(unsafe.Pointer(data))
}

// Chain composes two Providers: try the primary, fall back to the
// secondary on OOM. Deallocate/Grow/Shrink route to whichever provider's
// buffer range contains the pointer — the "pointer-range test" — so no
// per-allocation tagging is needed. Chains of arbitrary depth are formed
// by nesting, since *Chain itself satisfies Provider.
type Chain struct {
	primary, secondary Provider
}

// NewChain builds a fallback chain: primary is tried first.
func NewChain(primary, secondary Provider) *Chain {
	return &Chain{primary: primary, secondary: secondary}
}

func (c *Chain) route(p []byte) Provider {
	if c.primary.addrInBounds(addrOf(p)) {
		return c.primary
	}
	return c.secondary
}

func (c *Chain) other(prov Provider) Provider {
	if prov == c.primary {
		return c.secondary
	}
	return c.primary
}

func (c *Chain) Allocate(size, align uint32) ([]byte, error) {
	p, err := c.primary.Allocate(size, align)
	if err == nil {
		return p, nil
	}
	return c.secondary.Allocate(size, align)
}

func (c *Chain) AllocateZeroed(size, align uint32) ([]byte, error) {
	p, err := c.Allocate(size, align)
	if err != nil {
		return nil, err
	}
	for i := range p {
		p[i] = 0
	}
	return p, nil
}

func (c *Chain) Deallocate(p []byte, size, align uint32) {
	c.route(p).Deallocate(p, size, align)
}

func (c *Chain) Grow(p []byte, oldSize, newSize, align uint32) ([]byte, error) {
	prov := c.route(p)
	grown, err := prov.Grow(p, oldSize, newSize, align)
	if err == nil {
		return grown, nil
	}

	// prov is entirely exhausted, including its own allocate-copy-free
	// fallback; move the allocation to the other provider in the chain.
	other := c.other(prov)
	moved, err := other.Allocate(newSize, align)
	if err != nil {
		return nil, err
	}
	copy(moved, p[:oldSize])
	prov.Deallocate(p, oldSize, align)
	return moved, nil
}

func (c *Chain) Shrink(p []byte, oldSize, newSize, align uint32) []byte {
	return c.route(p).Shrink(p, oldSize, newSize, align)
}

func (c *Chain) addrInBounds(addr uintptr) bool {
	return c.primary.addrInBounds(addr) || c.secondary.addrInBounds(addr)
}

// OSProvider is a Provider backed directly by the Go heap, used as the
// ultimate fallback in a chain — the Go analogue of chaining to the
// platform's System allocator. Deallocate lets the garbage collector
// reclaim the memory; it only needs to forget the bookkeeping entry.
type OSProvider struct {
	mu   sync.Mutex
	live map[uintptr]uint32
}

// NewOSProvider creates an empty OS-backed provider.
func NewOSProvider() *OSProvider {
	return &OSProvider{live: make(map[uintptr]uint32)}
}

func (o *OSProvider) Allocate(size, align uint32) ([]byte, error) {
	_ = align
	buf := make([]byte, size)
	o.mu.Lock()
	o.live[addrOf(buf)] = size
	o.mu.Unlock()
	return buf, nil
}

func (o *OSProvider) AllocateZeroed(size, align uint32) ([]byte, error) {
	return o.Allocate(size, align)
}

func (o *OSProvider) Deallocate(p []byte, size, align uint32) {
	_ = size
	_ = align
	o.mu.Lock()
	delete(o.live, addrOf(p))
	o.mu.Unlock()
}

func (o *OSProvider) Grow(p []byte, oldSize, newSize, align uint32) ([]byte, error) {
	buf, _ := o.Allocate(newSize, align)
	copy(buf, p[:oldSize])
	o.Deallocate(p, oldSize, align)
	return buf, nil
}

func (o *OSProvider) Shrink(p []byte, oldSize, newSize, align uint32) []byte {
	_ = oldSize
	_ = align
	return p[:newSize]
}

func (o *OSProvider) addrInBounds(addr uintptr) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.live[addr]
	return ok
}
