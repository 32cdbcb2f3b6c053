package kmem

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintptrOf(p *byte) uintptr { return uintptr(unsafe.Pointer(p)) }

func TestAllocatorConservation(t *testing.T) {
	const window = 64 * 1024
	h := New(window)

	a := h.Alloc(1024)
	b := h.Alloc(2048)

	// Property 4: free list bytes + live allocation bytes + headers == window.
	live := len(a) + len(b)
	headers := 3 * headerSize // initial region's header was already subtracted at setup; two splits added two more
	total := h.FreeBytes() + live + headers
	assert.Equal(t, window, total)
}

func TestAllocatorDisjointness(t *testing.T) {
	h := New(8192)
	a := h.Alloc(256)
	b := h.Alloc(256)
	c := h.Alloc(256)

	ranges := [][]byte{a, b, c}
	for i := range ranges {
		for j := range ranges {
			if i == j {
				continue
			}
			assert.False(t, overlap(ranges[i], ranges[j]), "allocations %d and %d overlap", i, j)
		}
	}
}

func overlap(a, b []byte) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	aStart := &a[0]
	aEnd := &a[len(a)-1]
	bStart := &b[0]
	bEnd := &b[len(b)-1]
	return ptrLE(aStart, bEnd) && ptrLE(bStart, aEnd)
}

func ptrLE(a, b *byte) bool {
	return uintptrOf(a) <= uintptrOf(b)
}

func TestRoundTripAllocFree(t *testing.T) {
	h := New(4096)
	p := h.Alloc(100)
	h.Free(p)

	// Property 5: free(alloc(n)) must allow alloc(n) to succeed again.
	assert.NotPanics(t, func() {
		h.Alloc(100)
	})
}

func TestSplitChainE5(t *testing.T) {
	// E5: 64 KiB heap, 1024-byte requests x4, free the 2nd and 4th.
	h := New(64 * 1024)
	regions := make([][]byte, 4)
	for i := range regions {
		regions[i] = h.Alloc(1024)
	}

	h.Free(regions[1])
	h.Free(regions[3])

	require.Equal(t, 3, h.FreeListLength(), "free list should hold the remaining big region plus the two freed ones")

	// Subsequent alloc(1024) must succeed via the head of the free list
	// (one of the two just-freed regions) without another split.
	before := h.FreeListLength()
	h.Alloc(1024)
	assert.Equal(t, before-1, h.FreeListLength())
}

func TestAllocFatalWhenExhausted(t *testing.T) {
	h := New(64)
	assert.Panics(t, func() {
		h.Alloc(1000)
	})
}
