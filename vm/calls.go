package vm

import (
	"github.com/eel-lang/eel/builtin"
	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/values"
)

// execCall implements CALL/CALLR: the callee closure is the top of the
// argument stack (pushed after its arguments, then CALL), and its argc
// arguments sit directly below it. argc==-1
// means "all remaining pushed values are arguments" is not used by this
// encoding; argc is always explicit in the decoded instruction's operand
// in the real compiler output, so here it is passed down from step().
func (m *Machine) execCall(caller *CallFrame, argc int, resultSlot int) error {
	if len(m.Args) < argc+1 {
		return exception.New(exception.Internal, "call with missing callee or arguments on argument stack")
	}
	callee := m.Args[len(m.Args)-1]
	m.Args = m.Args[:len(m.Args)-1]
	argv := m.popArgs(argc)

	closure, err := m.resolveCallable(callee)
	if err != nil {
		return err
	}
	return m.invoke(caller, closure, argv, resultSlot)
}

// execCCall implements CCALL/CCALLR: like CALL/CALLR, but the callee is
// addressed directly through the active function's constant pool
// (constIdx) rather than popped off the top of the argument stack — the
// original's EEL_ICCALL/EEL_ICCALLR (e_vm.c) reach the callee the same
// way TRY reaches its catcher and try-block.
func (m *Machine) execCCall(caller *CallFrame, constIdx uint16, argc int, resultSlot int) error {
	if int(constIdx) >= len(m.Constants) {
		return exception.New(exception.Internal, "CCALL: constant index out of range")
	}
	closure, err := m.resolveCallable(m.Constants[constIdx])
	if err != nil {
		return err
	}
	argv := m.popArgs(argc)
	return m.invoke(caller, closure, argv, resultSlot)
}

// callConstantFunction invokes, with no arguments, the function held at
// m.Constants[constIdx] — the shape OP_TRY and OP_UNTRY call their
// try-block through (e_vm.c's EEL_ITRY/EEL_IUNTRY: `call_eel(vm,
// f->e.constants[B].objref.v, CALLFRAME->result, 0)`).
func (m *Machine) callConstantFunction(caller *CallFrame, constIdx uint16, resultSlot int) error {
	if int(constIdx) >= len(m.Constants) {
		return exception.New(exception.Internal, "TRY: constant index out of range")
	}
	closure, err := m.resolveCallable(m.Constants[constIdx])
	if err != nil {
		return err
	}
	return m.invoke(caller, closure, nil, resultSlot)
}

// invoke drives closure to completion with argv, either through its
// native implementation or by pushing a nested bytecode frame and
// recursing through Run1. CALL/CALLR, CCALL/CCALLR and the TRY/UNTRY
// try-block invocation all share this mechanism; only how the callee
// and its arguments were located differs between them.
func (m *Machine) invoke(caller *CallFrame, closure *builtin.Function, argv []values.Value, resultSlot int) error {
	fn := closure.Def
	if fn.IsNative() {
		result, err := fn.Native(m, argv)
		if err != nil {
			return wrapThrown(err)
		}
		if resultSlot >= 0 {
			regs := caller.Registers(m.Heap)
			if resultSlot < len(regs) {
				values.Copy(&regs[resultSlot], result)
			}
		}
		return nil
	}

	f, err := m.PushFrame(fn, argv, resultSlot)
	if err != nil {
		return err
	}
	f.UpvaluesBase = -1
	if len(closure.Upvalues) > 0 {
		base := m.Heap.PushFrame(len(closure.Upvalues), m.relocateFrames)
		copy(m.Heap.Slots()[base:base+len(closure.Upvalues)], closure.Upvalues)
		f.UpvaluesBase = base
		f.UpvalCount = len(closure.Upvalues)
	}
	return m.Run1(f)
}

// Run1 recursively drives f (and anything it calls) to completion,
// returning once f itself has returned or the call unwound through an
// uncaught exception. The dispatch loop is otherwise iterative (Run);
// nested bytecode calls recurse through Go's own call stack, one Go
// frame per EEL call frame — the same recursive-descent shape the
// teacher's own instruction executors use for nested sub-evaluation.
func (m *Machine) Run1(f *CallFrame) error {
	for {
		if m.Stack.Current() != f {
			return nil
		}
		if err := m.step(f); err != nil {
			t, ok := err.(*exception.Thrown)
			if !ok {
				t = exception.New(exception.Other, err.Error())
			}
			if t.Kind == exception.Return {
				m.finishReturn(f, t.Payload)
				return nil
			}
			if t.Kind == exception.Retry {
				m.finishRetry(f)
				return nil
			}
			if handled := m.dispatchException(t); handled {
				if m.Stack.Current() != f {
					return nil
				}
				continue
			}
			return t
		}
	}
}

func (m *Machine) resolveCallable(callee values.Value) (*builtin.Function, error) {
	if callee.IsObjRef() {
		obj := callee.Object()
		if obj != nil {
			if fn, ok := obj.Payload.(*builtin.Function); ok {
				return fn, nil
			}
		}
	}
	return nil, exception.New(exception.NeedObject, "call target is not a function")
}

// execReturn implements RETURN/RETURNR by raising the Return-kind
// Thrown that both ordinary returns and RETX/RETXR use to unwind to the
// nearest real function frame (spec.md §4.7: "return is modeled as an
// exception").
func (m *Machine) execReturn(f *CallFrame, result values.Value) error {
	return exception.Retval(result)
}

func (m *Machine) finishReturn(f *CallFrame, payload any) {
	result, _ := payload.(values.Value)
	if f.UpvaluesBase >= 0 {
		m.Heap.PopFrame(f.UpvalCount)
	}
	m.PopFrame()
	caller := m.Stack.Current()
	if caller != nil && f.ResultSlot >= 0 {
		regs := caller.Registers(m.Heap)
		if f.ResultSlot < len(regs) {
			values.Copy(&regs[f.ResultSlot], result)
		}
	}
}

// finishRetry implements OP_RETRY's unwind: f (the bytecode catcher
// currently running) is popped like any returning frame, but instead of
// delivering a result it rewinds the new current frame — the frame that
// armed the TRY being retried — back to that TRY instruction and
// re-arms it, so the retried try-block runs as though TRY had just
// executed again (e_vm.c's EEL_IRETRY: "Back up and rerun the TRY!").
func (m *Machine) finishRetry(f *CallFrame) {
	if f.UpvaluesBase >= 0 {
		m.Heap.PopFrame(f.UpvalCount)
	}
	m.PopFrame()
	parent := m.Stack.Current()
	if parent == nil {
		return
	}
	parent.PC = parent.TryPC
	m.RetryCurrent()
}

func wrapThrown(err error) error {
	if t, ok := err.(*exception.Thrown); ok {
		return t
	}
	return exception.New(exception.Other, err.Error())
}
