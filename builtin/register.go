package builtin

import (
	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/registry"
	"github.com/eel-lang/eel/values"
)

// ClassIDs collects the dense ids the runtime assigns to the built-in
// classes during Register, so package vm (and domain-module
// collaborators) can refer to "the array class" without a name lookup
// on every allocation.
type ClassIDs struct {
	Class, StringClass                     registry.ClassID
	DString, Array, Table                  registry.ClassID
	Vector                                  registry.ClassID
	VectorKinds                            [8]registry.ClassID
	Function, Module                       registry.ClassID
}

// Register installs every built-in class's ClassDef, in the order the
// bootstrap/un-strap cycle requires (class and string first), and wires
// the metamethods spec.md §4.5 names. newString mints a fresh interned
// string Object, used both for the bootstrap names and by classes that
// need to materialize a string result (e.g. `cast`-to-string).
func Register(reg *registry.Registry, newString func(text string) *values.Object) ClassIDs {
	reg.Bootstrap(newString)
	classID, _ := reg.ClassClassID()
	stringID, _ := reg.StringClassID()

	ids := ClassIDs{Class: classID, StringClass: stringID}

	if sd, ok := reg.Class(stringID); ok {
		sd.Set(registry.Length, func(ctx registry.CallContext, self *values.Object, args []values.Value) (values.Value, error) {
			s := self.Payload.(*String)
			return values.Integer(int32(s.Len())), nil
		})
		sd.Set(registry.Eq, func(ctx registry.CallContext, self *values.Object, args []values.Value) (values.Value, error) {
			other := args[0].Object()
			if other == nil {
				return values.Bool(false), nil
			}
			// Interned strings compare by identity (spec.md §4.5).
			return values.Bool(self == other), nil
		})
	}

	ids.DString = registerDString(reg, newString)
	ids.Array = registerArray(reg)
	ids.Table = registerTable(reg)
	ids.Vector, ids.VectorKinds = registerVectors(reg)
	ids.Function = registerFunction(reg)
	ids.Module = registerModule(reg)

	return ids
}

func registerDString(reg *registry.Registry, newString func(string) *values.Object) registry.ClassID {
	def := registry.NewClassDef(values.Nil(), registry.AnyClassID)
	def.Constructor = func(ctx registry.CallContext, args []values.Value) (any, error) {
		return NewDString(), nil
	}
	def.Set(registry.Length, func(ctx registry.CallContext, self *values.Object, args []values.Value) (values.Value, error) {
		return values.Integer(int32(self.Payload.(*DString).Len())), nil
	})
	def.Set(registry.Cast, func(ctx registry.CallContext, self *values.Object, args []values.Value) (values.Value, error) {
		obj := newString(self.Payload.(*DString).String())
		return values.ObjRef(obj), nil
	})
	id, _ := reg.RegisterClass(def, "dstring")
	return id
}

func registerArray(reg *registry.Registry) registry.ClassID {
	def := registry.NewClassDef(values.Nil(), registry.AnyClassID)
	def.Constructor = func(ctx registry.CallContext, args []values.Value) (any, error) {
		return NewArray(), nil
	}
	def.Set(registry.Length, func(ctx registry.CallContext, self *values.Object, args []values.Value) (values.Value, error) {
		return values.Integer(int32(self.Payload.(*Array).Len())), nil
	})
	def.Set(registry.Getindex, func(ctx registry.CallContext, self *values.Object, args []values.Value) (values.Value, error) {
		i := int(args[0].ToInteger())
		return self.Payload.(*Array).Get(i)
	})
	def.Set(registry.Setindex, func(ctx registry.CallContext, self *values.Object, args []values.Value) (values.Value, error) {
		i := int(args[0].ToInteger())
		return values.Nil(), self.Payload.(*Array).SetIndex(i, args[1])
	})
	def.Set(registry.Insert, func(ctx registry.CallContext, self *values.Object, args []values.Value) (values.Value, error) {
		i := int(args[0].ToInteger())
		return values.Nil(), self.Payload.(*Array).Insert(i, args[1])
	})
	def.Set(registry.Delete, func(ctx registry.CallContext, self *values.Object, args []values.Value) (values.Value, error) {
		i := int(args[0].ToInteger())
		return self.Payload.(*Array).Delete(i)
	})
	def.Set(registry.Add, func(ctx registry.CallContext, self *values.Object, args []values.Value) (values.Value, error) {
		self.Payload.(*Array).Append(args[0])
		return values.ObjRef(self), nil
	})
	def.Set(registry.IPAdd, func(ctx registry.CallContext, self *values.Object, args []values.Value) (values.Value, error) {
		self.Payload.(*Array).Append(args[0])
		return values.ObjRef(self), nil
	})
	id, _ := reg.RegisterClass(def, "array")
	return id
}

func registerTable(reg *registry.Registry) registry.ClassID {
	def := registry.NewClassDef(values.Nil(), registry.AnyClassID)
	def.Constructor = func(ctx registry.CallContext, args []values.Value) (any, error) {
		return NewTable(), nil
	}
	def.Set(registry.Length, func(ctx registry.CallContext, self *values.Object, args []values.Value) (values.Value, error) {
		return values.Integer(int32(self.Payload.(*Table).Len())), nil
	})
	def.Set(registry.Getindex, func(ctx registry.CallContext, self *values.Object, args []values.Value) (values.Value, error) {
		key := args[0]
		hash := values.Hash(key, nil)
		v, found, err := self.Payload.(*Table).Get(hash, key, IdentityKeyEqual)
		if err != nil {
			return values.Nil(), err
		}
		if !found {
			return values.Nil(), exception.New(exception.LowIndex, key)
		}
		return v, nil
	})
	def.Set(registry.Setindex, func(ctx registry.CallContext, self *values.Object, args []values.Value) (values.Value, error) {
		key, val := args[0], args[1]
		hash := values.Hash(key, nil)
		return values.Nil(), self.Payload.(*Table).Set(hash, key, val, IdentityKeyEqual)
	})
	def.Set(registry.Delete, func(ctx registry.CallContext, self *values.Object, args []values.Value) (values.Value, error) {
		key := args[0]
		hash := values.Hash(key, nil)
		v, _, err := self.Payload.(*Table).Delete(hash, key, IdentityKeyEqual)
		return v, err
	})
	id, _ := reg.RegisterClass(def, "table")
	return id
}

func registerVectors(reg *registry.Registry) (registry.ClassID, [8]registry.ClassID) {
	kinds := [8]VectorKind{KindU8, KindS8, KindU16, KindS16, KindU32, KindS32, KindF32, KindF64}
	var ids [8]registry.ClassID
	for i, kind := range kinds {
		k := kind
		def := registry.NewClassDef(values.Nil(), registry.AnyClassID)
		def.Constructor = func(ctx registry.CallContext, args []values.Value) (any, error) {
			return NewVector(k), nil
		}
		def.Set(registry.Length, func(ctx registry.CallContext, self *values.Object, args []values.Value) (values.Value, error) {
			return values.Integer(int32(self.Payload.(*Vector).Len())), nil
		})
		def.Set(registry.Getindex, func(ctx registry.CallContext, self *values.Object, args []values.Value) (values.Value, error) {
			return self.Payload.(*Vector).Get(int(args[0].ToInteger()))
		})
		def.Set(registry.Setindex, func(ctx registry.CallContext, self *values.Object, args []values.Value) (values.Value, error) {
			return values.Nil(), self.Payload.(*Vector).Set(int(args[0].ToInteger()), args[1])
		})
		def.Set(registry.Add, func(ctx registry.CallContext, self *values.Object, args []values.Value) (values.Value, error) {
			return values.ObjRef(self), self.Payload.(*Vector).Append(args[0])
		})
		id, _ := reg.RegisterClass(def, k.String())
		ids[i] = id
	}

	// Virtual base `vector` constructs the default subclass.
	base := registry.NewClassDef(values.Nil(), registry.AnyClassID)
	base.Constructor = func(ctx registry.CallContext, args []values.Value) (any, error) {
		return NewVector(DefaultVectorKind), nil
	}
	baseID, _ := reg.RegisterClass(base, "vector")
	return baseID, ids
}

func registerFunction(reg *registry.Registry) registry.ClassID {
	def := registry.NewClassDef(values.Nil(), registry.AnyClassID)
	id, _ := reg.RegisterClass(def, "function")
	return id
}

func registerModule(reg *registry.Registry) registry.ClassID {
	def := registry.NewClassDef(values.Nil(), registry.AnyClassID)
	def.Set(registry.Getindex, func(ctx registry.CallContext, self *values.Object, args []values.Value) (values.Value, error) {
		name, ok := args[0].Object().Payload.(*String)
		if !ok {
			return values.Nil(), exception.New(exception.WrongType, "module index must be a string")
		}
		v, found := self.Payload.(*Module).Lookup(name.Text())
		if !found {
			return values.Nil(), exception.New(exception.PropertyNotFound, name.Text())
		}
		return v, nil
	})
	def.Set(registry.Setindex, func(ctx registry.CallContext, self *values.Object, args []values.Value) (values.Value, error) {
		name, _ := args[0].Object().Payload.(*String)
		key := ""
		if name != nil {
			key = name.Text()
		}
		return values.Nil(), self.Payload.(*Module).SetIndex(key, args[1])
	})
	id, _ := reg.RegisterClass(def, "module")
	return id
}
