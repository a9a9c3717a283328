package vm

import (
	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/opcodes"
	"github.com/eel-lang/eel/registry"
	"github.com/eel-lang/eel/values"
)

// step decodes and executes exactly one instruction in frame f,
// advancing its PC (or leaving PC at a jump target). A returned error is
// always a *exception.Thrown; ordinary Go errors from a metamethod are
// wrapped into exception.Other before being returned.
func (m *Machine) step(f *CallFrame) error {
	inst, n, err := opcodes.Decode(f.Fn.Code, f.PC)
	if err != nil {
		return exception.New(exception.Internal, err.Error())
	}
	f.PC += n
	regs := f.Registers(m.Heap)

	switch inst.Opcode {
	case opcodes.OP_NOP:
		return nil

	case opcodes.OP_JUMP:
		f.PC += int(inst.SAx)
		return nil
	case opcodes.OP_JUMPZ:
		if !regs[inst.A].ToBool() {
			f.PC += int(inst.SBx)
		}
		return nil
	case opcodes.OP_JUMPNZ:
		if regs[inst.A].ToBool() {
			f.PC += int(inst.SBx)
		}
		return nil
	case opcodes.OP_SWITCH:
		return m.execSwitch(f, inst, regs)
	case opcodes.OP_PRELOOP:
		return m.execPreloop(f, inst, regs)
	case opcodes.OP_LOOP:
		return m.execLoop(f, inst, regs)

	case opcodes.OP_PUSH:
		m.pushArg(regs[0])
		return nil
	case opcodes.OP_PUSH2:
		m.pushArg(regs[1])
		return nil
	case opcodes.OP_PUSH3:
		m.pushArg(regs[2])
		return nil
	case opcodes.OP_PUSH4:
		m.pushArg(regs[3])
		return nil
	case opcodes.OP_PUSHI:
		m.pushArg(values.Integer(int32(inst.SAx)))
		return nil
	case opcodes.OP_PHTRUE:
		m.pushArg(values.Bool(true))
		return nil
	case opcodes.OP_PHFALSE:
		m.pushArg(values.Bool(false))
		return nil
	case opcodes.OP_PUSHNIL:
		m.pushArg(values.Nil())
		return nil
	case opcodes.OP_PUSHC:
		m.pushArg(m.Constants[inst.Ax])
		return nil
	case opcodes.OP_PHVAR:
		m.pushArg(regs[inst.Ax])
		return nil
	case opcodes.OP_PHUVAL:
		m.pushArg(m.upvalue(f, int(inst.B)))
		return nil
	case opcodes.OP_PHARGS:
		for _, v := range regs[:f.Argc] {
			m.pushArg(v)
		}
		return nil
	case opcodes.OP_PUSHTUP:
		// Push the variadic tuple tail: every argument register past
		// Required, through the last supplied argument (e_vm.c's
		// EEL_IPUSHTUP — "args = heap + argv + reqargs").
		for i := f.Fn.Required; i < f.Argc; i++ {
			m.pushArg(regs[i])
		}
		return nil

	case opcodes.OP_CALL:
		return m.execCall(f, int(inst.A), -1)
	case opcodes.OP_CALLR:
		return m.execCall(f, int(inst.A), int(inst.B))
	case opcodes.OP_CCALL:
		return m.execCCall(f, inst.Bx, int(inst.A), -1)
	case opcodes.OP_CCALLR:
		return m.execCCall(f, inst.Cx, int(inst.A), int(inst.Bx))
	case opcodes.OP_RETURN:
		return m.execReturn(f, values.Nil())
	case opcodes.OP_RETURNR:
		return m.execReturn(f, regs[inst.A])

	// INIT-family variants declare a fresh register variable and record
	// it on the frame's clean-table so scope exit disowns it
	// (e_vm.c's ADDCLEAN(A)); ASSIGN-family variants write to an
	// already-declared register and must not register it again.
	case opcodes.OP_INIT:
		f.Clean.Append(inst.A)
		return nil
	case opcodes.OP_ASSIGN:
		return nil
	case opcodes.OP_INITI:
		values.Copy(&regs[inst.A], values.Integer(int32(inst.SBx)))
		f.Clean.Append(inst.A)
		return nil
	case opcodes.OP_ASSIGNI:
		values.Copy(&regs[inst.A], values.Integer(int32(inst.SBx)))
		return nil
	case opcodes.OP_INITNIL:
		m.Disown(regs[inst.A])
		regs[inst.A] = values.Nil()
		f.Clean.Append(inst.A)
		return nil
	case opcodes.OP_ASNNIL:
		m.Disown(regs[inst.A])
		regs[inst.A] = values.Nil()
		return nil
	case opcodes.OP_INITC:
		values.Copy(&regs[inst.A], m.Constants[inst.B])
		f.Clean.Append(inst.A)
		return nil
	case opcodes.OP_ASSIGNC:
		values.Copy(&regs[inst.A], m.Constants[inst.B])
		return nil
	case opcodes.OP_CLEAN:
		f.Clean.Truncate(inst.A, func(idx uint8) {
			if int(idx) < len(regs) {
				m.Disown(regs[idx])
			}
		})
		return nil

	case opcodes.OP_GETUVAL:
		regs[inst.A] = m.upvalue(f, int(inst.B))
		return nil
	case opcodes.OP_SETUVAL:
		m.setUpvalue(f, int(inst.B), regs[inst.A])
		return nil

	case opcodes.OP_INDGET, opcodes.OP_INDGETI, opcodes.OP_INDGETC:
		return m.execIndexGet(f, inst, regs)
	case opcodes.OP_INDSET, opcodes.OP_INDSETI, opcodes.OP_INDSETC:
		return m.execIndexSet(f, inst, regs)

	case opcodes.OP_ADD, opcodes.OP_SUB, opcodes.OP_MUL, opcodes.OP_DIV, opcodes.OP_MOD, opcodes.OP_POWER:
		return m.execArith(inst, regs)
	case opcodes.OP_PHADD, opcodes.OP_PHSUB, opcodes.OP_PHMUL:
		return m.execPushArith(inst, regs)
	case opcodes.OP_BOP, opcodes.OP_IPBOP, opcodes.OP_BOPS, opcodes.OP_BOPI, opcodes.OP_BOPC:
		return m.execBop(f, inst, regs)

	case opcodes.OP_CASTR:
		values.Copy(&regs[inst.A], values.Real(regs[inst.A].ToReal()))
		return nil
	case opcodes.OP_CASTI:
		values.Copy(&regs[inst.A], values.Integer(regs[inst.A].ToInteger()))
		return nil
	case opcodes.OP_CASTB:
		values.Copy(&regs[inst.A], values.Bool(regs[inst.A].ToBool()))
		return nil
	case opcodes.OP_CAST:
		return m.execCastClass(inst, regs)
	case opcodes.OP_TYPEOF:
		regs[inst.A] = m.typeOf(regs[inst.B])
		return nil
	case opcodes.OP_SIZEOF:
		return m.execSizeof(inst, regs)
	case opcodes.OP_WEAKREF:
		return m.execWeakref(inst, regs)

	case opcodes.OP_NEW:
		return m.execNew(inst, regs)
	case opcodes.OP_CLONE:
		return m.execClone(inst, regs)

	case opcodes.OP_TRY:
		// TRY Ax,Bx: constants[Ax] is the catcher, constants[Bx] the
		// try-block. The catcher is armed before the try-block runs
		// (rather than after, as the original's trampoline dispatcher
		// does it) so that an exception raised anywhere within the
		// nested try-block call is caught by this frame (e_vm.c's
		// EEL_ITRY).
		tryPC := f.PC - n
		catcher, err := m.resolveCallable(m.Constants[inst.Ax])
		if err != nil {
			return err
		}
		f.Catcher = catcher.Def
		f.TryBlock = true
		f.Untry = false
		f.TryPC = tryPC
		return m.callConstantFunction(f, inst.Bx, f.ResultSlot)
	case opcodes.OP_UNTRY:
		// UNTRY Ax: re-runs the try-block at constants[Ax] (e.g. a
		// retried tail region) and disables further catching on this
		// frame once it returns (e_vm.c's EEL_IUNTRY).
		if err := m.callConstantFunction(f, inst.Ax, f.ResultSlot); err != nil {
			return err
		}
		f.Untry = true
		return nil
	case opcodes.OP_THROW:
		return exception.New(exception.Other, regs[inst.A])
	case opcodes.OP_RETRY:
		return exception.RetryRequest()
	case opcodes.OP_RETX:
		return exception.Retval(values.Nil())
	case opcodes.OP_RETXR:
		return exception.Retval(regs[inst.A])

	case opcodes.OP_ARGC:
		regs[inst.A] = values.Integer(int32(f.Argc))
		return nil
	case opcodes.OP_TUPC:
		tupc := 0
		if f.Fn.Tuple > 0 {
			tupc = (f.Argc - f.Fn.Required) / f.Fn.Tuple
		}
		regs[inst.A] = values.Integer(int32(tupc))
		return nil
	case opcodes.OP_SPEC:
		regs[inst.A] = values.Bool(f.Argc > int(inst.A))
		return nil
	case opcodes.OP_TSPEC:
		regs[inst.A] = values.Bool(f.Fn.Tuple > 0 && f.Argc > f.Fn.Required)
		return nil

	default:
		return exception.New(exception.Internal, "unimplemented opcode")
	}
}

func (m *Machine) upvalue(f *CallFrame, idx int) values.Value {
	heap := m.Heap.Slots()
	pos := f.UpvaluesBase + idx
	if pos < 0 || pos >= len(heap) {
		return values.Nil()
	}
	return heap[pos]
}

func (m *Machine) setUpvalue(f *CallFrame, idx int, v values.Value) {
	heap := m.Heap.Slots()
	pos := f.UpvaluesBase + idx
	if pos < 0 || pos >= len(heap) {
		return
	}
	values.Copy(&heap[pos], v)
}

func (m *Machine) typeOf(v values.Value) values.Value {
	if v.IsObjRef() || v.IsWeakRef() {
		obj := v.Object()
		if obj == nil {
			return values.Nil()
		}
		return values.ClassID(obj.ClassID)
	}
	return values.Nil()
}

// execSwitch implements SWITCH A,Bx,sCx: constants[Bx] is a jump table
// (any object answering `getindex`) keyed by regs[A]. A hit sets PC to
// the table's integer result directly (an absolute target, the way the
// compiler lays out jump tables); a miss falls through to the default
// case at PC+sCx instead of raising an exception (e_vm.c's EEL_ISWITCH
// treats "not found" as the ordinary default-case path, not an error).
func (m *Machine) execSwitch(f *CallFrame, inst opcodes.Instruction, regs []values.Value) error {
	def, obj, err := m.classOf(m.Constants[inst.Bx])
	if err != nil {
		return err
	}
	result, err := def.Metamethods[registry.Getindex](m, obj, []values.Value{regs[inst.A]})
	if err != nil {
		f.PC += int(inst.SCx)
		return nil
	}
	f.PC = int(result.AsInteger())
	return nil
}

// execPreloop implements spec.md §4.6's PRELOOP contract: casts the
// index/limit/step registers to real exactly once before the loop
// begins, per the "cast-to-real-once" semantics that keeps a mutating
// loop body from re-triggering truncation each iteration.
func (m *Machine) execPreloop(f *CallFrame, inst opcodes.Instruction, regs []values.Value) error {
	values.Copy(&regs[inst.A], values.Real(regs[inst.A].ToReal()))
	values.Copy(&regs[inst.B], values.Real(regs[inst.B].ToReal()))
	values.Copy(&regs[inst.C], values.Real(regs[inst.C].ToReal()))
	return nil
}

// execLoop implements LOOP A,sBx: register A holds the loop index,
// A+1 the limit, A+2 the step (set up by the matching PRELOOP), and
// A+3 receives the visible loop variable for the iteration body —
// the same index/limit/step/var register convention register-based
// for-loops use throughout the pack.
func (m *Machine) execLoop(f *CallFrame, inst opcodes.Instruction, regs []values.Value) error {
	a := int(inst.A)
	step := regs[a+2].AsReal()
	idx := regs[a].AsReal() + step
	values.Copy(&regs[a], values.Real(idx))
	cont := idx <= regs[a+1].AsReal()
	if step < 0 {
		cont = idx >= regs[a+1].AsReal()
	}
	if cont {
		f.PC += int(inst.SBx)
		values.Copy(&regs[a+3], values.Real(idx))
	}
	return nil
}
