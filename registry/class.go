package registry

import (
	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/values"
)

// ClassID indexes the dense class vector (spec.md §4.3).
type ClassID int32

// Two pseudo-classes participate in the cast matrix's bulk-registration
// rule (spec.md §4.3 "Cast matrix"): `any` matches every concrete class,
// `any-indexable` matches every concrete class that registers `getindex`
// and/or `setindex`. Neither is ever the classid of a real object.
const (
	AnyClassID         ClassID = -1
	AnyIndexableClassID ClassID = -2
)

// CallContext exposes the minimal VM services a metamethod or native
// function implementation needs, without creating an import cycle back
// to package vm (the same dependency-inversion the teacher uses for
// registry.BuiltinCallContext).
type CallContext interface {
	// Own accounts for a new strong reference to obj (refcount++); it
	// does not change limbo membership (see Receive).
	Own(obj *values.Object)
	// Disown releases a strong reference, invoking the class destructor
	// if the refcount reaches zero; releasing the object's contents is
	// left to that destructor.
	Disown(v values.Value)
	// Receive implements the "receive discipline" of spec.md §4.2: takes
	// obj off limbo if it is already there, otherwise places it on the
	// current frame's limbo list.
	Receive(obj *values.Object)
	// Registry returns the class/function registry this VM was opened
	// with, letting a metamethod look up another class (e.g. the string
	// class to build an error message).
	Registry() *Registry
	// Throw raises t as the VM's current exception.
	Throw(t *exception.Thrown)
}

// MetamethodFunc is the callback signature stored in a ClassDef's
// dispatch vector. self is the receiving object; args holds any
// additional operands (the other operand of a binary arithmetic
// metamethod, the index for getindex/setindex, and so on).
type MetamethodFunc func(ctx CallContext, self *values.Object, args []values.Value) (values.Value, error)

// ConstructorFunc builds a fresh Payload for a newly allocated object of
// this class from constructor arguments.
type ConstructorFunc func(ctx CallContext, args []values.Value) (any, error)

// DestructorFunc tears down a Payload before the Object header is
// recycled. Returning false implements the "destructor may refuse"
// escape hatch of spec.md §3: the object is pushed onto the VM's
// deadlist instead of being freed.
type DestructorFunc func(ctx CallContext, obj *values.Object) (ok bool)

// ClassDef is the class-ids vector's element type (spec.md §4.3).
type ClassDef struct {
	ID       ClassID
	Name     values.Value // an objref to a string instance; see Bootstrap
	Ancestor ClassID

	Constructor ConstructorFunc
	Destructor  DestructorFunc

	// Metamethods is the fixed callback vector indexed by Metamethod.
	// Every slot is non-nil after registration: unset slots are filled
	// with noMetamethodTrap so the dispatch loop never has to null-check
	// (spec.md §6 "Dynamic dispatch": "enforce this 'no null metamethods'
	// invariant at class construction").
	Metamethods [NumMetamethods]MetamethodFunc

	// Unregister runs when the class is removed from the registry
	// (module unload); it exists so a domain module can release class-
	// level resources it holds outside of any single object's Payload.
	Unregister func()

	// implemented tracks which slots were explicitly given a real
	// callback via Set, independent of whether the slot currently holds
	// the no-metamethod trap or a real function — used by the cast
	// matrix's any-indexable bulk registration to find classes that
	// expose getindex/setindex (spec.md §4.3).
	implemented [NumMetamethods]bool

	registered bool
}

func noMetamethodTrap(kind Metamethod) MetamethodFunc {
	return func(ctx CallContext, self *values.Object, args []values.Value) (values.Value, error) {
		t := exception.New(exception.NoMetamethod, kind.String())
		if ctx != nil {
			ctx.Throw(t)
		}
		return values.Nil(), t
	}
}

// NewClassDef constructs a class-def with every metamethod slot filled
// by the no-metamethod trap; callers then overwrite the slots their
// class actually implements via Set.
func NewClassDef(name values.Value, ancestor ClassID) *ClassDef {
	cd := &ClassDef{Name: name, Ancestor: ancestor}
	for m := Metamethod(0); int(m) < NumMetamethods; m++ {
		cd.Metamethods[m] = noMetamethodTrap(m)
	}
	return cd
}

// Set installs fn as the callback for metamethod m. Passing a nil fn
// restores the no-metamethod trap.
func (cd *ClassDef) Set(m Metamethod, fn MetamethodFunc) {
	if fn == nil {
		cd.Metamethods[m] = noMetamethodTrap(m)
		cd.implemented[m] = false
		return
	}
	cd.Metamethods[m] = fn
	cd.implemented[m] = true
}

// Has reports whether m has been given a real implementation (as
// opposed to still pointing at the no-metamethod trap). This is how the
// cast matrix's any-indexable bulk registration decides which concrete
// classes qualify.
func (cd *ClassDef) Has(m Metamethod) bool { return cd.implemented[m] }
