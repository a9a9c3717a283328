// Package values implements the EEL tagged value union (spec.md §4.1) and
// the object header every reference-counted object carries (spec.md §3).
//
// A Value is exactly one of seven variants: nil, real, integer, boolean,
// classid, objref, weakref. The variant set is closed by design (spec.md
// §9 "Value tagging") — do not add an eighth.
package values

import (
	"fmt"
	"math"
)

// Tag discriminates the active Value variant.
type Tag byte

const (
	TagNil Tag = iota
	TagReal
	TagInteger
	TagBoolean
	TagClassID
	TagObjRef
	TagWeakRef
)

func (t Tag) String() string {
	switch t {
	case TagNil:
		return "nil"
	case TagReal:
		return "real"
	case TagInteger:
		return "integer"
	case TagBoolean:
		return "boolean"
	case TagClassID:
		return "classid"
	case TagObjRef:
		return "objref"
	case TagWeakRef:
		return "weakref"
	default:
		return fmt.Sprintf("tag(%d)", byte(t))
	}
}

// Value is the tagged union described by spec.md §3. Only the field(s)
// relevant to Tag are meaningful.
//
// For TagWeakRef, obj is the (non-owning) target, attached reports
// whether this cell's address has been recorded in obj's weakref
// vector, and index is the back-index into that vector when attached.
// A freshly produced, not-yet-attached weakref (the "unwired weakref" of
// the glossary) has attached=false and index=-1.
type Value struct {
	Tag Tag

	real    float64
	integer int32
	boolean bool
	classid int32

	obj      *Object
	attached bool
	index    int
}

// Nil returns the nil value.
func Nil() Value { return Value{Tag: TagNil} }

// Real returns a real (double) value.
func Real(f float64) Value { return Value{Tag: TagReal, real: f} }

// Integer returns a 32-bit signed integer value.
func Integer(i int32) Value { return Value{Tag: TagInteger, integer: i} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{Tag: TagBoolean, boolean: b} }

// ClassID returns a classid value referring to class cid.
func ClassID(cid int32) Value { return Value{Tag: TagClassID, classid: cid} }

// ObjRef returns an owning reference to obj. The caller is responsible
// for having already accounted for the additional strong reference (see
// memory.Own); ObjRef itself does not touch obj's refcount.
func ObjRef(obj *Object) Value {
	if obj == nil {
		return Nil()
	}
	return Value{Tag: TagObjRef, obj: obj}
}

// UnwiredWeakRef produces a fresh, not-yet-attached weakref placeholder
// targeting obj. Per the glossary, copying this value into a destination
// cell is what performs the attachment (see Copy).
func UnwiredWeakRef(obj *Object) Value {
	return Value{Tag: TagWeakRef, obj: obj, attached: false, index: -1}
}

// IsNil reports whether v holds the nil variant.
func (v Value) IsNil() bool { return v.Tag == TagNil }

// IsReal reports whether v holds a real.
func (v Value) IsReal() bool { return v.Tag == TagReal }

// IsInteger reports whether v holds an integer.
func (v Value) IsInteger() bool { return v.Tag == TagInteger }

// IsBoolean reports whether v holds a boolean.
func (v Value) IsBoolean() bool { return v.Tag == TagBoolean }

// IsClassID reports whether v holds a classid.
func (v Value) IsClassID() bool { return v.Tag == TagClassID }

// IsObjRef reports whether v holds an owning object reference.
func (v Value) IsObjRef() bool { return v.Tag == TagObjRef }

// IsWeakRef reports whether v holds a weak reference.
func (v Value) IsWeakRef() bool { return v.Tag == TagWeakRef }

// IsNumeric reports whether v is real or integer.
func (v Value) IsNumeric() bool { return v.Tag == TagReal || v.Tag == TagInteger }

// AsReal returns the real payload; valid only when IsReal.
func (v Value) AsReal() float64 { return v.real }

// AsInteger returns the integer payload; valid only when IsInteger.
func (v Value) AsInteger() int32 { return v.integer }

// AsBoolean returns the boolean payload; valid only when IsBoolean.
func (v Value) AsBoolean() bool { return v.boolean }

// AsClassID returns the classid payload; valid only when IsClassID.
func (v Value) AsClassID() int32 { return v.classid }

// Object returns the referenced object for TagObjRef and TagWeakRef, or
// nil otherwise.
func (v Value) Object() *Object { return v.obj }

// WeakAttached reports whether a TagWeakRef value has been attached to
// its target's weakref vector.
func (v Value) WeakAttached() bool { return v.Tag == TagWeakRef && v.attached }

// WeakIndex returns the back-index of an attached weakref, or -1.
func (v Value) WeakIndex() int { return v.index }

// ToReal converts v's payload to a float64 following EEL's numeric cast
// rules: real and integer convert directly, boolean converts to 0/1,
// everything else is 0.
func (v Value) ToReal() float64 {
	switch v.Tag {
	case TagReal:
		return v.real
	case TagInteger:
		return float64(v.integer)
	case TagBoolean:
		if v.boolean {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// ToInteger converts v's payload to int32, truncating reals toward zero
// (the conversion CASTI and integer index operands use).
func (v Value) ToInteger() int32 {
	switch v.Tag {
	case TagInteger:
		return v.integer
	case TagReal:
		if math.IsNaN(v.real) || math.IsInf(v.real, 0) {
			return 0
		}
		return int32(v.real)
	case TagBoolean:
		if v.boolean {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// ToBool applies EEL truthiness: nil and zero-valued primitives are
// false, everything else (including any object reference) is true.
func (v Value) ToBool() bool {
	switch v.Tag {
	case TagNil:
		return false
	case TagBoolean:
		return v.boolean
	case TagInteger:
		return v.integer != 0
	case TagReal:
		return v.real != 0
	default:
		return true
	}
}

// Equal implements the identity-level equality used for primitives and
// object identity; class 'eq' metamethod dispatch (spec.md §4.3) layers
// on top of this for object values and is implemented in package vm.
func (v Value) Equal(other Value) bool {
	if v.Tag != other.Tag {
		if v.IsNumeric() && other.IsNumeric() {
			return v.ToReal() == other.ToReal()
		}
		return false
	}
	switch v.Tag {
	case TagNil:
		return true
	case TagReal:
		return v.real == other.real
	case TagInteger:
		return v.integer == other.integer
	case TagBoolean:
		return v.boolean == other.boolean
	case TagClassID:
		return v.classid == other.classid
	case TagObjRef, TagWeakRef:
		return v.obj == other.obj
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.Tag {
	case TagNil:
		return "nil"
	case TagReal:
		return fmt.Sprintf("%g", v.real)
	case TagInteger:
		return fmt.Sprintf("%d", v.integer)
	case TagBoolean:
		if v.boolean {
			return "true"
		}
		return "false"
	case TagClassID:
		return fmt.Sprintf("classid(%d)", v.classid)
	case TagObjRef:
		return fmt.Sprintf("objref(%p)", v.obj)
	case TagWeakRef:
		return fmt.Sprintf("weakref(%p,attached=%v)", v.obj, v.attached)
	default:
		return "<invalid value>"
	}
}
