package vm

import (
	"fmt"

	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/memory"
	"github.com/eel-lang/eel/registry"
	"github.com/eel-lang/eel/values"
)

// Machine is the per-open virtual machine: the register heap, the call-
// frame stack, the shared argument stack consumed by PUSH*/CALL*, and
// the memory manager the dispatch loop delegates ownership bookkeeping
// to. It implements registry.CallContext so metamethods and native
// functions registered by the embedding API can call back into it
// without package registry importing package vm.
type Machine struct {
	Heap    *memory.Heap
	Manager *memory.Manager
	Stack   *CallStack

	// Args is the shared argument stack PUSH*/PHVAR/PHARGS push onto and
	// CALL*/CCALL* consume (spec.md §4.6 "Argument stack").
	Args []values.Value

	// Constants is the active function's constant pool, swapped in by
	// PushFrame and restored when the frame is popped or unwound.
	Constants []values.Value

	// Globals holds module-level variable bindings by slot index; the
	// excluded compiler collaborator assigns these slots.
	Globals []values.Value

	// thrown is the exception most recently recorded through Throw, until
	// ClearThrown resets it.
	thrown *exception.Thrown
}

// New opens a virtual machine bound to reg, with a heap of the given
// initial size (spec.md §6 config default `heap-initial`).
func New(reg *registry.Registry, heapInitial int) *Machine {
	return &Machine{
		Heap:    memory.NewHeap(heapInitial),
		Manager: memory.NewManager(reg),
		Stack:   NewCallStack(),
	}
}

// Registry implements registry.CallContext.
func (m *Machine) Registry() *registry.Registry { return m.Manager.Registry }

// Own implements registry.CallContext.
func (m *Machine) Own(obj *values.Object) { m.Manager.Own(obj) }

// Disown implements registry.CallContext.
func (m *Machine) Disown(v values.Value) { m.Manager.Disown(m, v) }

// Receive implements the receive discipline of spec.md §4.2: if obj is
// already on the current frame's limbo list it is taken off limbo
// without a refcount change; otherwise it is placed onto limbo.
func (m *Machine) Receive(obj *values.Object) {
	if obj == nil {
		return
	}
	f := m.Stack.Current()
	if f == nil {
		return
	}
	f.Limbo.Receive(obj)
}

// Throw implements registry.CallContext: it records t as the VM's
// in-flight exception, readable through Thrown. The dispatch loop does
// not consult it; exceptions propagate as the error a step returns.
func (m *Machine) Throw(t *exception.Thrown) { m.thrown = t }

// Thrown returns the VM's current in-flight exception, or nil.
func (m *Machine) Thrown() *exception.Thrown { return m.thrown }

// ClearThrown resets the in-flight exception once a catcher has
// consumed it.
func (m *Machine) ClearThrown() { m.thrown = nil }

// pushArgs pushes vs onto the shared argument stack (PUSH family).
func (m *Machine) pushArg(v values.Value) { m.Args = append(m.Args, v) }

// popArgs pops the top n values off the argument stack in call order
// (argv[0]..argv[n-1]).
func (m *Machine) popArgs(n int) []values.Value {
	if n > len(m.Args) {
		n = len(m.Args)
	}
	start := len(m.Args) - n
	argv := make([]values.Value, n)
	copy(argv, m.Args[start:])
	m.Args = m.Args[:start]
	return argv
}

// PushArgPublic exposes pushArg to package eelapi, which arms a call by
// pushing arguments before invoking Call (spec.md §6 "call(VM, function):
// runs a pre-armed call, arguments already pushed").
func (m *Machine) PushArgPublic(v values.Value) { m.pushArg(v) }

// PopArgsPublic exposes popArgs to package eelapi for the same reason.
func (m *Machine) PopArgsPublic(n int) []values.Value { return m.popArgs(n) }

// PushFrame allocates a register window for fn and pushes a new call
// frame, returning it. argv is the already-popped argument vector; it is
// copied into the window's low registers per spec.md §4.6 calling
// convention (argument i lands in register i).
func (m *Machine) PushFrame(fn *registry.Function, argv []values.Value, resultSlot int) (*CallFrame, error) {
	if err := checkArity(fn, len(argv)); err != nil {
		return nil, err
	}
	base := m.Heap.PushFrame(fn.FrameSize, m.relocateFrames)
	f := &CallFrame{
		Base:           base,
		Size:           fn.FrameSize,
		Fn:             fn,
		Argc:           len(argv),
		ResultSlot:     resultSlot,
		ArgBase:        len(m.Args),
		SavedConstants: m.Constants,
	}
	regs := f.Registers(m.Heap)
	for i, v := range argv {
		if i >= len(regs) {
			break
		}
		regs[i] = v
	}
	m.Stack.Push(f)
	m.Constants = fn.Constants
	return f, nil
}

// checkArity enforces spec.md §4.6's tuple-args contract: argc must be
// at least Required, and any argument count past Required must be a
// multiple of Tuple when Tuple is non-zero.
func checkArity(fn *registry.Function, argc int) error {
	if argc < fn.Required {
		return exception.New(exception.TupleArgs, fmt.Sprintf("%s: requires at least %d arguments, got %d", fn.Name, fn.Required, argc))
	}
	extra := argc - fn.Required
	if fn.Tuple > 0 && extra%fn.Tuple != 0 {
		return exception.New(exception.TupleArgs, fmt.Sprintf("%s: trailing arguments must come in groups of %d", fn.Name, fn.Tuple))
	}
	return nil
}

// PopFrame retracts the current frame's register window and drains its
// clean-table and limbo list, the unwind step every return path (normal
// RETURN or exception) performs.
func (m *Machine) PopFrame() *CallFrame {
	f := m.Stack.Pop()
	if f == nil {
		return nil
	}
	f.Clean.DrainAll(func(idx uint8) {
		regs := f.Registers(m.Heap)
		if int(idx) < len(regs) {
			m.Disown(regs[idx])
		}
	})
	f.Limbo.DrainAll(m.Disown)
	m.Heap.PopFrame(f.Size)
	m.Constants = f.SavedConstants
	return f
}

// relocateFrames is the memory.RelocationWalker the heap invokes when it
// regrows: call frames only ever address the heap through Base (an
// integer offset), so relocation here is a no-op — generalizing
// spec.md §4.2's "limbo-head relocation" requirement into "nothing to
// relocate" since Go slices of values.Value (unlike raw C pointers) are
// addressed relative to the slice header, not by a pointer baked into
// each frame.
func (m *Machine) relocateFrames(oldBase, newBase *values.Value, delta int) {}
