// Package kmem implements the kernel's first-fit free-list heap allocator
// over a fixed address window, grounded on the original
// library/libc/kmem.c. There is no coalescing in the base design (see
// spec.md §9); regions returned by Free are pushed onto the head of the
// free list as-is.
//
// The allocator is not safe for concurrent use: spec.md §4.1 assumes
// callers hold the kernel-wide "one trap at a time" property.
package kmem

import (
	"unsafe"

	"grasskernel/kernelerr"
)

// headerSize is the in-band bookkeeping cost charged against every
// region, mirroring sizeof(struct memregion_info) in the original.
const headerSize = 16

type region struct {
	size int // data-area capacity in bytes, excluding the header
	next *region
	data []byte // backing storage for this region's data area
}

// Heap is a first-fit free-list allocator over a fixed-size byte window.
// The zero value is "uninitialized": the first Alloc/Zalloc lazily
// installs a single region spanning the whole window, matching
// __freelist_setup in the original.
type Heap struct {
	windowSize int
	freeList   *region
	started    bool

	// live maps a returned data slice's base address back to the region
	// that owns it, standing in for the original's "subtract
	// sizeof(header) from p" pointer trick — Go has no pointer
	// arithmetic on byte slices, so Free looks the region up instead of
	// recomputing its address.
	live map[unsafe.Pointer]*region
}

// New returns a heap over a window of windowSize bytes. Initialization of
// the free list is deferred to the first Alloc/Zalloc call, matching the
// original's MAGIC-sentinel lazy setup.
func New(windowSize int) *Heap {
	return &Heap{windowSize: windowSize, live: make(map[unsafe.Pointer]*region)}
}

func (h *Heap) setup() {
	h.freeList = &region{
		size: h.windowSize - headerSize,
		data: make([]byte, h.windowSize-headerSize),
	}
	h.started = true
}

// split carves a region of exactly n data bytes off the high end of r,
// shrinking r in place, matching __memregion_split's contract in
// spec.md §4.1. Fatal if r has no room for the new region's header.
func split(r *region, n int) *region {
	if r.size <= n+headerSize {
		kernelerr.Halt(kernelerr.New(kernelerr.KindInvariant, "__memregion_split", "not enough space to split region"))
	}

	newData := r.data[r.size-n:]
	r.size = r.size - n - headerSize
	r.data = r.data[:r.size]

	return &region{size: n, data: newData}
}

// find walks the free list for a region that can satisfy n data bytes,
// splitting when there's room left over for another region's header,
// taking the whole region otherwise. Fatal if nothing fits.
func (h *Heap) find(n int) *region {
	if !h.started {
		h.setup()
	}

	prevLink := &h.freeList
	for r := *prevLink; r != nil; r = *prevLink {
		if headerSize+n < r.size {
			return split(r, n)
		}
		if n <= r.size {
			*prevLink = r.next
			r.next = nil
			return r
		}
		prevLink = &r.next
	}

	kernelerr.Halt(kernelerr.New(kernelerr.KindOOM, "__freelist_find", "could not find region"))
	return nil // unreachable
}

// Alloc returns a byte slice of at least n bytes backed by a free-list
// region. Fatal (via kernelerr.Halt) if no region is large enough.
func (h *Heap) Alloc(n int) []byte {
	r := h.find(n)
	p := r.data[:n:n]
	h.live[h.key(r, p)] = r
	return p
}

// key returns the lookup key used by h.live for a region's data slice. A
// zero-length allocation has no addressable first element, so it is keyed
// on the region itself instead.
func (h *Heap) key(r *region, p []byte) unsafe.Pointer {
	if len(p) == 0 {
		return unsafe.Pointer(r)
	}
	return unsafe.Pointer(&p[0])
}

// Zalloc is Alloc followed by zeroing the data area.
func (h *Heap) Zalloc(n int) []byte {
	p := h.Alloc(n)
	for i := range p {
		p[i] = 0
	}
	return p
}

// Free returns the region backing p to the head of the free list. p must
// be a non-empty slice previously returned by Alloc/Zalloc on this heap
// and not already freed. Freeing a zero-length or unrecognized slice is
// fatal (KindInvariant) here; the original kernel cannot detect it (it
// only subtracts a fixed header offset from the pointer).
func (h *Heap) Free(p []byte) {
	var key unsafe.Pointer
	if len(p) == 0 {
		kernelerr.Halt(kernelerr.New(kernelerr.KindInvariant, "free", "cannot free a zero-length slice without its region"))
	}
	key = unsafe.Pointer(&p[0])

	r, ok := h.live[key]
	if !ok {
		kernelerr.Halt(kernelerr.New(kernelerr.KindInvariant, "free", "pointer does not belong to this heap"))
	}
	delete(h.live, key)

	r.next = h.freeList
	h.freeList = r
}

// FreeListLength returns the number of regions currently on the free
// list, used by the split-chain (E5) test and the heap reports.
func (h *Heap) FreeListLength() int {
	n := 0
	for r := h.freeList; r != nil; r = r.next {
		n++
	}
	return n
}

// FreeBytes returns the total data-area bytes available across the free
// list (excluding headers), used for the byte-conservation property test
// and for the CLI's human-readable heap report.
func (h *Heap) FreeBytes() int {
	total := 0
	for r := h.freeList; r != nil; r = r.next {
		total += r.size
	}
	return total
}

// WindowSize returns HEAP_END - HEAP_START.
func (h *Heap) WindowSize() int { return h.windowSize }
