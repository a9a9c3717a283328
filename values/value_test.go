package values

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagPredicates(t *testing.T) {
	assert.True(t, Nil().IsNil())
	assert.True(t, Real(1.5).IsReal())
	assert.True(t, Integer(3).IsInteger())
	assert.True(t, Bool(true).IsBoolean())
	assert.True(t, ClassID(7).IsClassID())
	obj := &Object{}
	assert.True(t, ObjRef(obj).IsObjRef())
	assert.True(t, UnwiredWeakRef(obj).IsWeakRef())

	assert.True(t, Real(1).IsNumeric())
	assert.True(t, Integer(1).IsNumeric())
	assert.False(t, Bool(true).IsNumeric())
}

func TestObjRefOfNilIsNilValue(t *testing.T) {
	assert.True(t, ObjRef(nil).IsNil())
}

func TestToReal(t *testing.T) {
	assert.Equal(t, 2.5, Real(2.5).ToReal())
	assert.Equal(t, 4.0, Integer(4).ToReal())
	assert.Equal(t, 1.0, Bool(true).ToReal())
	assert.Equal(t, 0.0, Bool(false).ToReal())
	assert.Equal(t, 0.0, Nil().ToReal())
}

func TestToInteger(t *testing.T) {
	assert.Equal(t, int32(4), Integer(4).ToInteger())
	assert.Equal(t, int32(2), Real(2.9).ToInteger())
	assert.Equal(t, int32(-2), Real(-2.9).ToInteger())
	assert.Equal(t, int32(1), Bool(true).ToInteger())
	assert.Equal(t, int32(0), Nil().ToInteger())
}

func TestToIntegerOfNaNAndInf(t *testing.T) {
	assert.Equal(t, int32(0), Real(math.NaN()).ToInteger())
	assert.Equal(t, int32(0), Real(math.Inf(1)).ToInteger())
}

func TestToBoolTruthiness(t *testing.T) {
	assert.False(t, Nil().ToBool())
	assert.False(t, Integer(0).ToBool())
	assert.False(t, Real(0).ToBool())
	assert.False(t, Bool(false).ToBool())
	assert.True(t, Integer(-1).ToBool())
	assert.True(t, Real(0.1).ToBool())
	assert.True(t, ClassID(0).ToBool())
	assert.True(t, ObjRef(&Object{}).ToBool())
}

func TestEqualCrossNumericTags(t *testing.T) {
	assert.True(t, Integer(2).Equal(Real(2.0)))
	assert.False(t, Integer(2).Equal(Real(2.5)))
	assert.False(t, Integer(2).Equal(Bool(true)))
}

func TestEqualObjectIdentity(t *testing.T) {
	a := &Object{}
	b := &Object{}
	assert.True(t, ObjRef(a).Equal(ObjRef(a)))
	assert.False(t, ObjRef(a).Equal(ObjRef(b)))
}

func TestStringRendering(t *testing.T) {
	assert.Equal(t, "nil", Nil().String())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "42", Integer(42).String())
}
