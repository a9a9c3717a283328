// Package vm implements the register-based bytecode virtual machine of
// spec.md §4.6/§4.7: the register heap, call frames, the instruction
// dispatch loop, and the try/catch/retry exception scheduler. Exception
// handling lives inside this package rather than a separate one, the
// way the teacher's own exception-adjacent bookkeeping (CallStackManager,
// VMError) lives inside package vm rather than split out.
package vm

import (
	"github.com/eel-lang/eel/memory"
	"github.com/eel-lang/eel/registry"
	"github.com/eel-lang/eel/values"
)

// CallFrame is the per-invocation bookkeeping record of spec.md §4.6:
// "Lives on the heap immediately below its register window." Here it is
// a separate Go struct rather than literally co-resident with the
// register slots, since Go does not let us address "the N bytes before
// this slice" — the register window is instead addressed via Base into
// the shared Heap.
type CallFrame struct {
	// Base is the index into the VM's register heap where this frame's
	// register window begins; register r is Heap.Slots()[Base+r].
	Base int
	Size int // register window width

	Fn *registry.Function

	// Caller return info.
	CallerBase int
	ReturnPC   int

	// Limbo is this frame's limbo list (spec.md §4.2).
	Limbo memory.LimboList
	// Clean is this frame's clean-table (spec.md §4.2).
	Clean memory.CleanTable

	ArgBase int // index of argv[0] on the argument stack
	Argc    int

	ResultSlot int // register index in the caller's window, or -1

	UpvaluesBase int
	UpvalCount   int

	TryBlock bool
	Catcher  *registry.Function
	Untry    bool
	// TryPC is the byte offset of the TRY instruction that armed
	// TryBlock/Catcher, so OP_RETRY can rewind execution back to it
	// (spec.md §4.6/§4.7 "RETRY ... rewind to the originating TRY").
	TryPC int

	// SavedConstants is the caller's active constant pool, restored to
	// Machine.Constants when this frame is popped (machine.go's
	// PushFrame/PopFrame swap the pool in and out per call).
	SavedConstants []values.Value

	PC int
}

// Registers returns this frame's register window.
func (f *CallFrame) Registers(heap *memory.Heap) []values.Value {
	return heap.Slots()[f.Base : f.Base+f.Size]
}

// CallStack is the frame-chain the try/catch scheduler walks outward
// over (spec.md §4.7 "Propagation"). Grounded on the teacher's
// CallStackManager: a mutex-guarded slice with push/pop/current/depth,
// generalized from PHP's opcode-indexed frames to EEL's register-window
// frames.
type CallStack struct {
	frames []*CallFrame
}

// NewCallStack returns an empty call stack with reasonable initial
// capacity.
func NewCallStack() *CallStack {
	return &CallStack{frames: make([]*CallFrame, 0, 8)}
}

func (cs *CallStack) Push(f *CallFrame) { cs.frames = append(cs.frames, f) }

func (cs *CallStack) Pop() *CallFrame {
	if len(cs.frames) == 0 {
		return nil
	}
	idx := len(cs.frames) - 1
	f := cs.frames[idx]
	cs.frames = cs.frames[:idx]
	return f
}

func (cs *CallStack) Current() *CallFrame {
	if len(cs.frames) == 0 {
		return nil
	}
	return cs.frames[len(cs.frames)-1]
}

func (cs *CallStack) Depth() int { return len(cs.frames) }

// Frames exposes the live stack, outermost (root) first, for the
// scheduler's outward walk.
func (cs *CallStack) Frames() []*CallFrame { return cs.frames }

// TruncateTo pops frames until the stack's depth equals depth, draining
// each popped frame's clean-table and limbo list. This is the unwind
// step of spec.md §4.7: "the frames above the catcher's caller are
// unwound (clean-tables drained, limbo lists drained, argument stacks
// cleared)" — i.e. every register a popped frame's clean-table still
// names gets disowned, the same way Machine.PopFrame drains an
// ordinary returning frame, and the frame's heap window (and upvalue
// window, if any) is then retracted.
func (cs *CallStack) TruncateTo(depth int, heap *memory.Heap, disown func(values.Value)) {
	for len(cs.frames) > depth {
		f := cs.Pop()
		f.Clean.DrainAll(func(idx uint8) {
			regs := f.Registers(heap)
			if int(idx) < len(regs) {
				disown(regs[idx])
			}
		})
		f.Limbo.DrainAll(disown)
		if f.UpvaluesBase >= 0 {
			heap.PopFrame(f.UpvalCount)
		}
		heap.PopFrame(f.Size)
	}
}
