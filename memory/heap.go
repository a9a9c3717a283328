package memory

import (
	"unsafe"

	"github.com/eel-lang/eel/values"
)

// Heap is the contiguous register heap call frames are allocated from
// (spec.md §4.2 "Heap resize"). It grows by doubling and, whenever the
// underlying slice is replaced, hands the address change to the
// RelocationWalker supplied by the caller.
type Heap struct {
	slots []values.Value
	top   int // index of the first free slot
}

// NewHeap allocates a heap with the given initial capacity (spec.md §6
// default `heap-initial`: 256 values).
func NewHeap(initial int) *Heap {
	if initial <= 0 {
		initial = 256
	}
	return &Heap{slots: make([]values.Value, initial)}
}

// Len returns the current top-of-heap index.
func (h *Heap) Len() int { return h.top }

// Cap returns the current backing capacity.
func (h *Heap) Cap() int { return len(h.slots) }

// Slots exposes the live backing slice for direct register addressing
// by package vm (register N is &h.Slots()[base+N]).
func (h *Heap) Slots() []values.Value { return h.slots }

// RelocationWalker is supplied by package vm: given the old and new base
// addresses of the slots slice, it walks the call-frame chain and
// relocates every stored limbo-list head and any other heap-interior
// pointer the frame holds.
type RelocationWalker func(oldBase, newBase *values.Value, delta int)

// Reserve ensures the heap can hold size more values above the current
// top, doubling the backing array until it fits (spec.md §4.2: "the heap
// is doubled until it fits"). If the backing array is replaced, walk is
// invoked with the address delta so callers can fix up any pointers
// into the old slice.
func (h *Heap) Reserve(size int, walk RelocationWalker) {
	required := h.top + size
	if required <= len(h.slots) {
		return
	}
	newCap := len(h.slots)
	if newCap == 0 {
		newCap = 1
	}
	for newCap < required {
		newCap *= 2
	}
	oldBase := &h.slots[0]
	grown := make([]values.Value, newCap)
	copy(grown, h.slots)
	h.slots = grown
	newBase := &h.slots[0]
	if walk != nil {
		delta := int(uintptr(unsafe.Pointer(newBase)) - uintptr(unsafe.Pointer(oldBase)))
		walk(oldBase, newBase, delta)
	}
}

// PushFrame reserves size slots above the current top and returns the
// base index of the new window, advancing top (spec.md §4.2
// "push_frame").
func (h *Heap) PushFrame(size int, walk RelocationWalker) int {
	h.Reserve(size, walk)
	base := h.top
	h.top += size
	return base
}

// PopFrame retracts top by size, the inverse of PushFrame.
func (h *Heap) PopFrame(size int) {
	h.top -= size
	if h.top < 0 {
		h.top = 0
	}
}
