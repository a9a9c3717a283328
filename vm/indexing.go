package vm

import (
	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/opcodes"
	"github.com/eel-lang/eel/registry"
	"github.com/eel-lang/eel/values"
)

// execIndexGet implements INDGET/INDGETI/INDGETC by dispatching the
// receiver's `getindex` metamethod (spec.md §4.3). INDGETI supplies an
// immediate index, INDGETC a constant-pool index, INDGET a register
// index.
func (m *Machine) execIndexGet(f *CallFrame, inst opcodes.Instruction, regs []values.Value) error {
	var recv values.Value
	var key values.Value
	switch inst.Opcode {
	case opcodes.OP_INDGETI:
		recv = regs[inst.B]
		key = values.Integer(int32(inst.C))
	case opcodes.OP_INDGETC:
		recv = regs[inst.A]
		key = m.Constants[inst.Bx]
	default: // OP_INDGET
		recv = regs[inst.A]
		key = regs[inst.B]
	}
	def, obj, err := m.classOf(recv)
	if err != nil {
		return err
	}
	result, err := def.Metamethods[registry.Getindex](m, obj, []values.Value{key})
	if err != nil {
		return wrapThrown(err)
	}
	values.Copy(&regs[inst.A], result)
	return nil
}

// execIndexSet implements INDSET/INDSETI/INDSETC analogously, dispatching
// `setindex`.
func (m *Machine) execIndexSet(f *CallFrame, inst opcodes.Instruction, regs []values.Value) error {
	var recv values.Value
	var key, val values.Value
	switch inst.Opcode {
	case opcodes.OP_INDSETI:
		recv = regs[inst.A]
		key = values.Integer(int32(inst.B))
		val = regs[inst.C]
	case opcodes.OP_INDSETC:
		recv = regs[inst.A]
		key = m.Constants[inst.Bx]
		val = regs[inst.Cx]
	default: // OP_INDSET
		recv = regs[inst.A]
		key = regs[inst.B]
		val = regs[inst.C]
	}
	def, obj, err := m.classOf(recv)
	if err != nil {
		return err
	}
	_, err = def.Metamethods[registry.Setindex](m, obj, []values.Value{key, val})
	if err != nil {
		return wrapThrown(err)
	}
	return nil
}

func (m *Machine) classOf(v values.Value) (*registry.ClassDef, *values.Object, error) {
	if !v.IsObjRef() {
		return nil, nil, exception.New(exception.NeedObject, "indexing requires an object operand")
	}
	obj := v.Object()
	def, ok := m.Manager.Registry.Class(registry.ClassID(obj.ClassID))
	if !ok {
		return nil, nil, exception.New(exception.ClassNotFound, obj.ClassID)
	}
	return def, obj, nil
}
