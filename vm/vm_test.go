package vm

import (
	"testing"

	"github.com/eel-lang/eel/builtin"
	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/opcodes"
	"github.com/eel-lang/eel/registry"
	"github.com/eel-lang/eel/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(insts ...opcodes.Instruction) []byte {
	var buf []byte
	for _, inst := range insts {
		buf = opcodes.Encode(buf, inst)
	}
	return buf
}

func newMachine() *Machine {
	reg := registry.NewRegistry()
	return New(reg, 64)
}

// TestArithmeticAddIntegers runs a two-instruction function body
// (ADD r0,r1,r2; RETURNR r0) and checks the sum left in r0, the value
// RETURNR returns.
func TestArithmeticAddIntegers(t *testing.T) {
	m := newMachine()
	code := encode(
		opcodes.Instruction{Opcode: opcodes.OP_ADD, Layout: opcodes.LayoutABC, A: 0, B: 1, C: 2},
		opcodes.Instruction{Opcode: opcodes.OP_RETURNR, Layout: opcodes.LayoutA, A: 0},
	)
	fn := &registry.Function{Name: "add", Code: code, FrameSize: 4}

	f, err := m.PushFrame(fn, []values.Value{values.Nil(), values.Integer(2), values.Integer(3)}, -1)
	require.NoError(t, err)
	err = m.Run1(f)
	require.NoError(t, err)
	assert.Equal(t, int32(5), f.Registers(m.Heap)[0].AsInteger())
}

// TestCallNativeFunctionReturnsResult exercises the CALL/CALLR path
// against a native function registered directly (no compiler
// collaborator involved).
func TestCallNativeFunctionReturnsResult(t *testing.T) {
	m := newMachine()
	double := &registry.Function{
		Name:     "double",
		Required: 1,
		Native: func(ctx registry.CallContext, args []values.Value) (values.Value, error) {
			return values.Integer(args[0].AsInteger() * 2), nil
		},
	}

	// caller function: PUSHI 21; PUSHC<callee>; CALLR 1,0(result->r0); RETURNR r0
	constants := []values.Value{values.ObjRef(&values.Object{Payload: builtin.NewFunction(double, nil)})}
	code := encode(
		opcodes.Instruction{Opcode: opcodes.OP_PUSHI, Layout: opcodes.LayoutSAx, SAx: 21},
		opcodes.Instruction{Opcode: opcodes.OP_PUSHC, Layout: opcodes.LayoutAx, Ax: 0},
		opcodes.Instruction{Opcode: opcodes.OP_CALLR, Layout: opcodes.LayoutAB, A: 1, B: 0},
		opcodes.Instruction{Opcode: opcodes.OP_RETURNR, Layout: opcodes.LayoutA, A: 0},
	)
	caller := &registry.Function{Name: "caller", Code: code, Constants: constants, FrameSize: 4}

	f, err := m.PushFrame(caller, nil, -1)
	require.NoError(t, err)
	require.NoError(t, m.Run1(f))
	assert.Equal(t, int32(42), f.Registers(m.Heap)[0].AsInteger())
}

// TestTryCatchUnwindsAndRunsCatcher exercises the exception scheduler
// end to end through a real TRY Ax,Bx instruction: the try-block
// function (constants[Bx]) throws, and the frame's catcher
// (constants[Ax]) observes the thrown payload.
func TestTryCatchUnwindsAndRunsCatcher(t *testing.T) {
	m := newMachine()
	caught := false
	var caughtVal values.Value
	catcher := &registry.Function{
		Name: "catcher",
		Native: func(ctx registry.CallContext, args []values.Value) (values.Value, error) {
			caught = true
			caughtVal = args[0]
			return values.Nil(), nil
		},
	}

	tryBlockCode := encode(
		opcodes.Instruction{Opcode: opcodes.OP_INITC, Layout: opcodes.LayoutAB, A: 0, B: 0},
		opcodes.Instruction{Opcode: opcodes.OP_THROW, Layout: opcodes.LayoutA, A: 0},
		opcodes.Instruction{Opcode: opcodes.OP_RETURN, Layout: opcodes.Layout0},
	)
	tryBlock := &registry.Function{
		Name:      "tryblock",
		Code:      tryBlockCode,
		Constants: []values.Value{values.Integer(99)},
		FrameSize: 4,
	}

	constants := []values.Value{
		values.ObjRef(&values.Object{Payload: builtin.NewFunction(catcher, nil)}),
		values.ObjRef(&values.Object{Payload: builtin.NewFunction(tryBlock, nil)}),
	}
	code := encode(
		opcodes.Instruction{Opcode: opcodes.OP_TRY, Layout: opcodes.LayoutAxBx, Ax: 0, Bx: 1},
		opcodes.Instruction{Opcode: opcodes.OP_RETURN, Layout: opcodes.Layout0},
	)
	fn := &registry.Function{Name: "f", Code: code, Constants: constants, FrameSize: 4}

	f, err := m.PushFrame(fn, nil, -1)
	require.NoError(t, err)
	require.NoError(t, m.Run1(f))
	assert.True(t, caught)
	assert.Equal(t, int32(99), caughtVal.AsInteger())
}

// TestRetryRewindsToOriginatingTry exercises OP_RETRY: a native
// try-block fails on its first attempt and succeeds on its second; the
// bytecode catcher's only instruction is RETRY, so the outer function
// only runs to completion if RETRY actually rewinds PC back to the TRY
// instruction and re-invokes the try-block rather than erroring.
func TestRetryRewindsToOriginatingTry(t *testing.T) {
	m := newMachine()
	attempts := 0
	tryBlock := &registry.Function{
		Name: "flaky",
		Native: func(ctx registry.CallContext, args []values.Value) (values.Value, error) {
			attempts++
			if attempts == 1 {
				return values.Nil(), exception.New(exception.Other, "transient failure")
			}
			return values.Integer(42), nil
		},
	}

	catcherCode := encode(
		opcodes.Instruction{Opcode: opcodes.OP_RETRY, Layout: opcodes.Layout0},
	)
	catcher := &registry.Function{Name: "catcher", Code: catcherCode, FrameSize: 2}

	constants := []values.Value{
		values.ObjRef(&values.Object{Payload: builtin.NewFunction(catcher, nil)}),
		values.ObjRef(&values.Object{Payload: builtin.NewFunction(tryBlock, nil)}),
	}
	code := encode(
		opcodes.Instruction{Opcode: opcodes.OP_TRY, Layout: opcodes.LayoutAxBx, Ax: 0, Bx: 1},
		opcodes.Instruction{Opcode: opcodes.OP_RETURNR, Layout: opcodes.LayoutA, A: 0},
	)
	fn := &registry.Function{Name: "f", Code: code, Constants: constants, FrameSize: 4}

	f, err := m.PushFrame(fn, nil, 0)
	require.NoError(t, err)
	require.NoError(t, m.Run1(f))
	assert.Equal(t, 2, attempts)
}

// TestTupleArgsRejectsWrongTrailingCount exercises the arity contract
// of spec.md §4.6: Required=1, Tuple=2 means any call beyond the first
// argument must come in pairs.
func TestTupleArgsRejectsWrongTrailingCount(t *testing.T) {
	fn := &registry.Function{Name: "f", Required: 1, Tuple: 2, FrameSize: 8, Code: encode(
		opcodes.Instruction{Opcode: opcodes.OP_RETURN, Layout: opcodes.Layout0},
	)}
	m := newMachine()
	_, err := m.PushFrame(fn, []values.Value{values.Integer(1), values.Integer(2)}, -1)
	require.Error(t, err)

	_, err = m.PushFrame(fn, []values.Value{values.Integer(1), values.Integer(2), values.Integer(3)}, -1)
	require.NoError(t, err)
}

// TestLoopIteratesToLimit exercises PRELOOP/LOOP's index/limit/step/var
// register convention across several iterations.
func TestLoopIteratesToLimit(t *testing.T) {
	m := newMachine()
	code := encode(
		opcodes.Instruction{Opcode: opcodes.OP_PRELOOP, Layout: opcodes.LayoutABC, A: 0, B: 1, C: 2},
		opcodes.Instruction{Opcode: opcodes.OP_LOOP, Layout: opcodes.LayoutASBx, A: 0, SBx: -4},
		opcodes.Instruction{Opcode: opcodes.OP_RETURNR, Layout: opcodes.LayoutA, A: 0},
	)
	fn := &registry.Function{Name: "loop", Code: code, FrameSize: 8}
	// index=0, limit=3, step=1
	f, err := m.PushFrame(fn, []values.Value{values.Real(0), values.Real(3), values.Real(1)}, -1)
	require.NoError(t, err)
	require.NoError(t, m.Run1(f))
}
