// Package memory implements the reference-counted memory manager of
// spec.md §3/§4.1/§4.2/§4.4: strong-reference ownership tied to class
// destructors and a per-VM deadlist for refused destructions, the
// per-call-frame limbo list and clean-table resource-discipline
// primitives, register-heap growth with limbo-head relocation, and the
// interned string pool with its LIFO resurrection cache.
//
// The teacher repo has no equivalent package — PHP code in that corpus
// runs under Go's garbage collector — so this package is grounded
// instead on the teacher's concurrency idioms (mutex-guarded bookkeeping
// structures in vm/call_stack.go) and on spec.md's own prose plus
// original_source/'s e_util.c calcresize heuristic (see DESIGN.md).
package memory

import (
	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/registry"
	"github.com/eel-lang/eel/values"
)

// Manager owns the per-VM memory bookkeeping: the class registry needed
// to dispatch destructors, and the deadlist of objects whose destructor
// refused to run (spec.md §3: "destructor may refuse ... the object
// enters a per-VM deadlist for later retry").
type Manager struct {
	Registry *registry.Registry
	Deadlist []*values.Object
}

// NewManager returns a memory manager bound to reg.
func NewManager(reg *registry.Registry) *Manager {
	return &Manager{Registry: reg}
}

// Own records a new strong reference to obj. It does not itself touch
// limbo membership; callers implementing the "receive discipline" of
// spec.md §4.2 should call Receive instead when taking ownership of a
// value that may already be on limbo.
func (m *Manager) Own(obj *values.Object) {
	if obj == nil {
		return
	}
	obj.Refcount++
}

// Disown releases v's ownership stake via values.Disown and, if the
// target's refcount reached zero, invokes its class destructor. A
// destructor that refuses (returns false) pushes the object onto the
// deadlist instead of recycling it; NilAllWeakrefs is only called once
// the destructor has actually accepted the destruction, since a refused
// object is still logically alive.
func (m *Manager) Disown(ctx registry.CallContext, v values.Value) {
	result := values.Disown(v)
	if result.Object == nil || !result.ReachedZero {
		return
	}
	m.destroy(ctx, result.Object)
}

func (m *Manager) destroy(ctx registry.CallContext, obj *values.Object) {
	def, ok := m.Registry.Class(registry.ClassID(obj.ClassID))
	if !ok || def.Destructor == nil {
		obj.NilAllWeakrefs()
		return
	}
	if ok2 := def.Destructor(ctx, obj); !ok2 {
		m.Deadlist = append(m.Deadlist, obj)
		return
	}
	obj.NilAllWeakrefs()
}

// RetryDeadlist re-attempts destruction of every object currently on the
// deadlist, keeping whichever still refuse. Returns the number of
// objects successfully destroyed this pass.
func (m *Manager) RetryDeadlist(ctx registry.CallContext) int {
	if len(m.Deadlist) == 0 {
		return 0
	}
	pending := m.Deadlist
	m.Deadlist = nil
	destroyed := 0
	for _, obj := range pending {
		before := len(m.Deadlist)
		m.destroy(ctx, obj)
		if len(m.Deadlist) == before {
			destroyed++
		}
	}
	return destroyed
}

// Construct allocates a fresh object of class cid via its registered
// constructor and sets its initial refcount to 1 (the caller's own
// reference). Returns a ClassNotFound exception if cid is not
// registered, and an AbstractClass exception if the class has no
// registered constructor.
func (m *Manager) Construct(ctx registry.CallContext, cid registry.ClassID, args []values.Value) (*values.Object, error) {
	def, ok := m.Registry.Class(cid)
	if !ok {
		return nil, exception.New(exception.ClassNotFound, cid)
	}
	if def.Constructor == nil {
		return nil, exception.New(exception.AbstractClass, def.Name)
	}
	payload, err := def.Constructor(ctx, args)
	if err != nil {
		return nil, err
	}
	return &values.Object{ClassID: int32(cid), Refcount: 1, Payload: payload}, nil
}
