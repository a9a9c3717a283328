package vm

import (
	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/opcodes"
	"github.com/eel-lang/eel/registry"
	"github.com/eel-lang/eel/values"
)

// execArith implements the fixed-opcode arithmetic family (ADD, SUB,
// MUL, DIV, MOD, POWER): a numeric fast path for integer/real operands,
// falling back to the receiver's `add`/`sub`/... metamethod when either
// operand is an object (spec.md §4.3 "Arithmetic dispatch").
func (m *Machine) execArith(inst opcodes.Instruction, regs []values.Value) error {
	op := opFromOpcode(inst.Opcode)
	a, b := regs[inst.B], regs[inst.C]
	if a.IsNumeric() && b.IsNumeric() {
		result, err := numericArith(op, a, b)
		if err != nil {
			return err
		}
		values.Copy(&regs[inst.A], result)
		return nil
	}
	result, err := m.dispatchArith(op, flavorFor(op, false), a, b)
	if err != nil {
		return err
	}
	values.Copy(&regs[inst.A], result)
	return nil
}

// execPushArith implements PHADD/PHSUB/PHMUL A,B: compute the op over
// registers A and B and push the result directly onto the argument
// stack without materializing it into a register, a fusion the compiler
// emits for call arguments built from a single binary expression.
func (m *Machine) execPushArith(inst opcodes.Instruction, regs []values.Value) error {
	op := opFromOpcode(inst.Opcode)
	a, b := regs[inst.A], regs[inst.B]
	var result values.Value
	var err error
	if a.IsNumeric() && b.IsNumeric() {
		result, err = numericArith(op, a, b)
	} else {
		result, err = m.dispatchArith(op, flavorFor(op, false), a, b)
	}
	if err != nil {
		return err
	}
	m.pushArg(result)
	return nil
}

// execBop implements the generic binary-operator family (BOP/IPBOP/
// BOPS/BOPI/BOPC): the operator id travels in an operand rather than
// the opcode itself, letting the compiler emit one shape for all six
// arithmetic ops plus their in-place/reversed/vector flavors.
func (m *Machine) execBop(f *CallFrame, inst opcodes.Instruction, regs []values.Value) error {
	switch inst.Opcode {
	case opcodes.OP_BOP:
		op := arithOp(inst.C)
		a, b := regs[inst.B], regs[inst.D]
		return m.bopInto(&regs[inst.A], op, a, b, false)
	case opcodes.OP_IPBOP:
		op := arithOp(inst.C)
		return m.bopInto(&regs[inst.A], op, regs[inst.A], regs[inst.B], true)
	case opcodes.OP_BOPS:
		op := arithOp(inst.D)
		return m.bopInto(&regs[inst.A], op, regs[inst.B], regs[inst.C], false)
	case opcodes.OP_BOPI:
		op := arithOp(inst.C)
		return m.bopInto(&regs[inst.A], op, regs[inst.B], values.Integer(int32(inst.SDx)), false)
	case opcodes.OP_BOPC:
		op := arithOp(inst.A)
		return m.bopInto(&regs[0], op, regs[inst.B], m.Constants[inst.Cx], false)
	}
	return exception.New(exception.Internal, "unreachable bop opcode")
}

func (m *Machine) bopInto(dst *values.Value, op arithOp, a, b values.Value, inPlace bool) error {
	if a.IsNumeric() && b.IsNumeric() {
		result, err := numericArith(op, a, b)
		if err != nil {
			return err
		}
		values.Copy(dst, result)
		return nil
	}
	flavor := flavorFor(op, inPlace)
	result, err := m.dispatchArith(op, flavor, a, b)
	if err != nil {
		return err
	}
	values.Copy(dst, result)
	return nil
}

type arithOp int

const (
	arithAdd arithOp = iota
	arithSub
	arithMul
	arithDiv
	arithMod
	arithPower
)

func opFromOpcode(op opcodes.Opcode) arithOp {
	switch op {
	case opcodes.OP_ADD, opcodes.OP_PHADD:
		return arithAdd
	case opcodes.OP_SUB, opcodes.OP_PHSUB:
		return arithSub
	case opcodes.OP_MUL, opcodes.OP_PHMUL:
		return arithMul
	case opcodes.OP_DIV:
		return arithDiv
	case opcodes.OP_MOD:
		return arithMod
	case opcodes.OP_POWER:
		return arithPower
	}
	return arithAdd
}

// flavorFor picks the named metamethod flavor (spec.md §4.3) for a
// plain or in-place dispatch of op.
func flavorFor(op arithOp, inPlace bool) registry.Metamethod {
	table := [...][2]registry.Metamethod{
		arithAdd:   {registry.Add, registry.IPAdd},
		arithSub:   {registry.Sub, registry.IPSub},
		arithMul:   {registry.Mul, registry.IPMul},
		arithDiv:   {registry.Div, registry.IPDiv},
		arithMod:   {registry.Mod, registry.IPMod},
		arithPower: {registry.Power, registry.IPPower},
	}
	if inPlace {
		return table[op][1]
	}
	return table[op][0]
}

func numericArith(op arithOp, a, b values.Value) (values.Value, error) {
	if a.IsInteger() && b.IsInteger() {
		x, y := a.AsInteger(), b.AsInteger()
		switch op {
		case arithAdd:
			return values.Integer(x + y), nil
		case arithSub:
			return values.Integer(x - y), nil
		case arithMul:
			return values.Integer(x * y), nil
		case arithDiv:
			if y == 0 {
				return values.Nil(), exception.New(exception.DivisionByZero, nil)
			}
			return values.Integer(x / y), nil
		case arithMod:
			if y == 0 {
				return values.Nil(), exception.New(exception.ModuloByZero, nil)
			}
			return values.Integer(x % y), nil
		case arithPower:
			return values.Real(ipow(float64(x), float64(y))), nil
		}
	}
	x, y := a.ToReal(), b.ToReal()
	switch op {
	case arithAdd:
		return values.Real(x + y), nil
	case arithSub:
		return values.Real(x - y), nil
	case arithMul:
		return values.Real(x * y), nil
	case arithDiv:
		if y == 0 {
			return values.Nil(), exception.New(exception.DivisionByZero, nil)
		}
		return values.Real(x / y), nil
	case arithMod:
		if y == 0 {
			return values.Nil(), exception.New(exception.ModuloByZero, nil)
		}
		return values.Real(realMod(x, y)), nil
	case arithPower:
		return values.Real(ipow(x, y)), nil
	}
	return values.Nil(), exception.New(exception.Internal, "unknown arithmetic op")
}

func realMod(x, y float64) float64 {
	q := x / y
	return x - float64(int64(q))*y
}

func ipow(base, exp float64) float64 {
	result := 1.0
	neg := exp < 0
	if neg {
		exp = -exp
	}
	n := int64(exp)
	for i := int64(0); i < n; i++ {
		result *= base
	}
	if neg {
		return 1 / result
	}
	return result
}

// dispatchArith resolves the receiver's class metamethod for flavor and
// invokes it. The receiver is whichever operand is an object; if both
// are objects, the left operand's class owns the dispatch (spec.md
// §4.3 "the receiver is the left operand unless it is not an object, in
// which case the reversed `r*` flavor on the right operand is used").
func (m *Machine) dispatchArith(op arithOp, flavor registry.Metamethod, a, b values.Value) (values.Value, error) {
	if a.IsObjRef() {
		def, ok := m.Manager.Registry.Class(registry.ClassID(a.Object().ClassID))
		if !ok {
			return values.Nil(), exception.New(exception.ClassNotFound, a.Object().ClassID)
		}
		return def.Metamethods[flavor](m, a.Object(), []values.Value{b})
	}
	if b.IsObjRef() {
		def, ok := m.Manager.Registry.Class(registry.ClassID(b.Object().ClassID))
		if !ok {
			return values.Nil(), exception.New(exception.ClassNotFound, b.Object().ClassID)
		}
		reversed := reversedFlavor(op)
		return def.Metamethods[reversed](m, b.Object(), []values.Value{a})
	}
	return values.Nil(), exception.New(exception.WrongType, "arithmetic on non-numeric, non-object operands")
}

func reversedFlavor(op arithOp) registry.Metamethod {
	table := [...]registry.Metamethod{
		arithAdd: registry.RAdd, arithSub: registry.RSub, arithMul: registry.RMul,
		arithDiv: registry.RDiv, arithMod: registry.RMod, arithPower: registry.RPower,
	}
	return table[op]
}
