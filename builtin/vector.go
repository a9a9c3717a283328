package builtin

import (
	"encoding/binary"
	"math"

	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/memory"
	"github.com/eel-lang/eel/values"
)

// VectorKind identifies one of the eight packed numeric element types
// (spec.md §4.5), plus the virtual default (F64) the bare `vector`
// constructor produces.
type VectorKind byte

const (
	KindU8 VectorKind = iota
	KindS8
	KindU16
	KindS16
	KindU32
	KindS32
	KindF32
	KindF64
)

// DefaultVectorKind is what the virtual `vector` base class constructs
// (spec.md §4.5: "a virtual base `vector` that constructs the default
// subclass (`f64`)").
const DefaultVectorKind = KindF64

var elementSizes = [...]int{KindU8: 1, KindS8: 1, KindU16: 2, KindS16: 2, KindU32: 4, KindS32: 4, KindF32: 4, KindF64: 8}

func (k VectorKind) Size() int { return elementSizes[k] }

func (k VectorKind) String() string {
	switch k {
	case KindU8:
		return "u8"
	case KindS8:
		return "s8"
	case KindU16:
		return "u16"
	case KindS16:
		return "s16"
	case KindU32:
		return "u32"
	case KindS32:
		return "s32"
	case KindF32:
		return "f32"
	case KindF64:
		return "f64"
	default:
		return "vector?"
	}
}

// Vector is a packed array of one numeric element type (spec.md §4.5
// "Typed vectors"). Reads convert up to integer or real; writes convert
// down by truncation (floor for real → integer types).
type Vector struct {
	Kind VectorKind
	buf  []byte
}

// NewVector returns an empty vector of the given kind.
func NewVector(kind VectorKind) *Vector { return &Vector{Kind: kind} }

// Len returns the element count.
func (v *Vector) Len() int {
	size := v.Kind.Size()
	if size == 0 {
		return 0
	}
	return len(v.buf) / size
}

func (v *Vector) ensure(elemCount int) {
	size := v.Kind.Size()
	required := elemCount * size
	if required <= cap(v.buf) {
		return
	}
	newCap := memory.Calcresize(cap(v.buf), required)
	grown := make([]byte, len(v.buf), newCap)
	copy(grown, v.buf)
	v.buf = grown
}

// Get reads element i, converting it to `real` or `integer` per kind
// (spec.md: "Read converts up to integer or real").
func (v *Vector) Get(i int) (values.Value, error) {
	size := v.Kind.Size()
	if i < 0 {
		return values.Nil(), exception.New(exception.LowIndex, i)
	}
	if i >= v.Len() {
		return values.Nil(), exception.New(exception.HighIndex, i)
	}
	off := i * size
	slot := v.buf[off : off+size]
	switch v.Kind {
	case KindU8:
		return values.Integer(int32(slot[0])), nil
	case KindS8:
		return values.Integer(int32(int8(slot[0]))), nil
	case KindU16:
		return values.Integer(int32(binary.LittleEndian.Uint16(slot))), nil
	case KindS16:
		return values.Integer(int32(int16(binary.LittleEndian.Uint16(slot)))), nil
	case KindU32:
		return values.Real(float64(binary.LittleEndian.Uint32(slot))), nil
	case KindS32:
		return values.Integer(int32(binary.LittleEndian.Uint32(slot))), nil
	case KindF32:
		return values.Real(float64(math.Float32frombits(binary.LittleEndian.Uint32(slot)))), nil
	case KindF64:
		return values.Real(math.Float64frombits(binary.LittleEndian.Uint64(slot))), nil
	default:
		return values.Nil(), exception.New(exception.Internal, "unknown vector kind")
	}
}

// Set writes value into element i. Integer element types take a real
// value by floor (so -1.5 is stored as -2), then wrap to the element
// width; f32/f64 elements store the value's real conversion.
func (v *Vector) Set(i int, value values.Value) error {
	size := v.Kind.Size()
	if i < 0 {
		return exception.New(exception.LowIndex, i)
	}
	if i >= v.Len() {
		v.ensure(i + 1)
		v.buf = v.buf[:(i+1)*size]
	}
	off := i * size
	slot := v.buf[off : off+size]
	n := value.ToInteger()
	if value.IsReal() {
		n = values.Real(math.Floor(value.AsReal())).ToInteger()
	}
	switch v.Kind {
	case KindU8:
		slot[0] = byte(n)
	case KindS8:
		slot[0] = byte(int8(n))
	case KindU16:
		binary.LittleEndian.PutUint16(slot, uint16(n))
	case KindS16:
		binary.LittleEndian.PutUint16(slot, uint16(int16(n)))
	case KindU32:
		binary.LittleEndian.PutUint32(slot, uint32(int64(math.Floor(value.ToReal()))))
	case KindS32:
		binary.LittleEndian.PutUint32(slot, uint32(n))
	case KindF32:
		binary.LittleEndian.PutUint32(slot, math.Float32bits(float32(value.ToReal())))
	case KindF64:
		binary.LittleEndian.PutUint64(slot, math.Float64bits(value.ToReal()))
	default:
		return exception.New(exception.Internal, "unknown vector kind")
	}
	return nil
}

// Append implements `add`/`ipadd`.
func (v *Vector) Append(value values.Value) error {
	n := v.Len()
	v.ensure(n + 1)
	v.buf = v.buf[:(n+1)*v.Kind.Size()]
	return v.Set(n, value)
}

// Broadcast applies fn(element, scalar) to every element in place,
// implementing the scalar-broadcast arithmetic metamethods.
func (v *Vector) Broadcast(scalar values.Value, fn func(elem, scalar float64) float64) error {
	for i := 0; i < v.Len(); i++ {
		elem, err := v.Get(i)
		if err != nil {
			return err
		}
		result := fn(elem.ToReal(), scalar.ToReal())
		if err := v.Set(i, values.Real(result)); err != nil {
			return err
		}
	}
	return nil
}

// Combine element-wise combines v and other (which must share Kind and
// Len) via fn, writing the result into v in place.
func (v *Vector) Combine(other *Vector, fn func(a, b float64) float64) error {
	if other.Kind != v.Kind || other.Len() != v.Len() {
		return exception.New(exception.WrongType, "vector element-wise op requires matching subclass and length")
	}
	for i := 0; i < v.Len(); i++ {
		a, err := v.Get(i)
		if err != nil {
			return err
		}
		b, err := other.Get(i)
		if err != nil {
			return err
		}
		if err := v.Set(i, values.Real(fn(a.ToReal(), b.ToReal()))); err != nil {
			return err
		}
	}
	return nil
}
