package vm

import (
	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/opcodes"
	"github.com/eel-lang/eel/registry"
	"github.com/eel-lang/eel/values"
)

// execNew implements NEW A,B: construct a fresh instance of the class
// named by the classid in register B, consuming every value currently
// on the argument stack as constructor arguments (the compiler pushes
// them immediately before NEW via the ordinary PUSH family, the same
// convention CALL uses for its argument list). The result lands in
// register A already owned (refcount 1, per memory.Manager.Construct)
// and is handed to Receive so it enters limbo if nothing else claims it
// before the current statement ends.
func (m *Machine) execNew(inst opcodes.Instruction, regs []values.Value) error {
	classVal := regs[inst.B]
	if !classVal.IsClassID() {
		return exception.New(exception.WrongType, "NEW requires a classid operand")
	}
	cid := registry.ClassID(classVal.AsClassID())
	args := m.popArgs(len(m.Args))
	obj, err := m.Manager.Construct(m, cid, args)
	if err != nil {
		return wrapThrown(err)
	}
	m.Receive(obj)
	values.Copy(&regs[inst.A], values.ObjRef(obj))
	return nil
}

// execClone implements CLONE A,B: dispatch the `copy` metamethod on the
// object in B, producing a new owned object in A (spec.md §4.3 "copy").
func (m *Machine) execClone(inst opcodes.Instruction, regs []values.Value) error {
	def, obj, err := m.classOf(regs[inst.B])
	if err != nil {
		return err
	}
	result, err := def.Metamethods[registry.Copy](m, obj, nil)
	if err != nil {
		return wrapThrown(err)
	}
	if result.IsObjRef() {
		m.Receive(result.Object())
	}
	values.Copy(&regs[inst.A], result)
	return nil
}

// execCastClass implements CAST A,B: dispatch the source object's class
// `cast` metamethod, or consult the registry's cast matrix when that
// class has none of its own (spec.md §4.3 "Cast matrix").
func (m *Machine) execCastClass(inst opcodes.Instruction, regs []values.Value) error {
	src := regs[inst.A]
	targetVal := regs[inst.B]
	if !targetVal.IsClassID() {
		return exception.New(exception.WrongType, "CAST requires a classid operand")
	}
	target := registry.ClassID(targetVal.AsClassID())

	if src.IsObjRef() {
		srcDef, ok := m.Manager.Registry.Class(registry.ClassID(src.Object().ClassID))
		if ok && srcDef.Has(registry.Cast) {
			result, err := srcDef.Metamethods[registry.Cast](m, src.Object(), []values.Value{targetVal})
			if err != nil {
				return wrapThrown(err)
			}
			values.Copy(&regs[inst.A], result)
			return nil
		}
		if fn := m.Manager.Registry.Casts.Lookup(registry.ClassID(src.Object().ClassID), target); fn != nil {
			result, err := fn(m, src)
			if err != nil {
				return wrapThrown(err)
			}
			values.Copy(&regs[inst.A], result)
			return nil
		}
	}
	return exception.New(exception.WrongType, "no cast registered for this class pair")
}

// execSizeof implements SIZEOF A,B: dispatch `length`.
func (m *Machine) execSizeof(inst opcodes.Instruction, regs []values.Value) error {
	def, obj, err := m.classOf(regs[inst.B])
	if err != nil {
		return err
	}
	result, err := def.Metamethods[registry.Length](m, obj, nil)
	if err != nil {
		return wrapThrown(err)
	}
	regs[inst.A] = result
	return nil
}

// execWeakref implements WEAKREF A,B: produce an unwired weakref
// targeting the object in B, which becomes wired (attached) the moment
// it is next Copy'd into a persistent cell (spec.md §4.1 glossary
// "unwired weakref").
func (m *Machine) execWeakref(inst opcodes.Instruction, regs []values.Value) error {
	src := regs[inst.B]
	if !src.IsObjRef() {
		return exception.New(exception.NeedObject, "WEAKREF requires an object operand")
	}
	regs[inst.A] = values.UnwiredWeakRef(src.Object())
	return nil
}
