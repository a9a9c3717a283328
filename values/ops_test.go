package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyOfObjRefReportsOwnOwed(t *testing.T) {
	obj := &Object{Refcount: 1}
	var dst Value
	needsOwn := Copy(&dst, ObjRef(obj))
	assert.True(t, needsOwn)
	assert.True(t, dst.IsObjRef())
	assert.Same(t, obj, dst.Object())
}

func TestCopyOfUnwiredWeakrefAttachesDst(t *testing.T) {
	obj := &Object{}
	src := UnwiredWeakRef(obj)
	var dst Value
	needsOwn := Copy(&dst, src)
	assert.False(t, needsOwn)
	require.True(t, dst.IsWeakRef())
	assert.True(t, dst.WeakAttached())
	assert.Same(t, &dst, obj.Weakrefs[dst.WeakIndex()])
}

func TestCopyOfWiredWeakrefPromotesToObjRef(t *testing.T) {
	obj := &Object{}
	var wired Value
	idx := obj.AttachWeakref(&wired)
	wired = Value{Tag: TagWeakRef, obj: obj, attached: true, index: idx}

	var dst Value
	needsOwn := Copy(&dst, wired)
	assert.True(t, needsOwn)
	assert.True(t, dst.IsObjRef())
	assert.Same(t, obj, dst.Object())
}

func TestCopyOfPrimitiveIsPlainAssignment(t *testing.T) {
	var dst Value
	needsOwn := Copy(&dst, Integer(9))
	assert.False(t, needsOwn)
	assert.Equal(t, int32(9), dst.AsInteger())
}

func TestCloneOfWiredWeakrefAlwaysReattaches(t *testing.T) {
	obj := &Object{}
	var wired Value
	idx := obj.AttachWeakref(&wired)
	wired = Value{Tag: TagWeakRef, obj: obj, attached: true, index: idx}

	var dst Value
	needsOwn := Clone(&dst, wired)
	assert.False(t, needsOwn)
	assert.True(t, dst.WeakAttached())
	assert.Same(t, &dst, obj.Weakrefs[dst.WeakIndex()])
	// The original wired cell is still separately attached.
	assert.Same(t, &wired, obj.Weakrefs[wired.WeakIndex()])
}

func TestMoveTransfersAndFixesBackIndex(t *testing.T) {
	obj := &Object{}
	src := UnwiredWeakRef(obj)
	var attached Value
	Copy(&attached, src) // attaches `attached` into obj.Weakrefs

	var dst Value
	Move(&dst, &attached)

	assert.True(t, dst.WeakAttached())
	assert.Same(t, &dst, obj.Weakrefs[dst.WeakIndex()])
	assert.True(t, attached.IsNil(), "src cell must be zeroed after Move")
}

func TestMoveOfPrimitiveZeroesSource(t *testing.T) {
	src := Integer(5)
	var dst Value
	Move(&dst, &src)
	assert.Equal(t, int32(5), dst.AsInteger())
	assert.True(t, src.IsNil())
}

func TestQCopyDoesNotOwnAndDegradesWeakref(t *testing.T) {
	obj := &Object{}
	wired := UnwiredWeakRef(obj)
	var attached Value
	Copy(&attached, wired)

	var dst Value
	QCopy(&dst, attached)
	assert.True(t, dst.IsObjRef())
	assert.Same(t, obj, dst.Object())

	// The original weakref's attachment is untouched by QCopy.
	assert.True(t, attached.WeakAttached())
}

func TestDisownObjRefReportsZeroOnLastRelease(t *testing.T) {
	obj := &Object{Refcount: 1}
	result := Disown(ObjRef(obj))
	assert.Same(t, obj, result.Object)
	assert.True(t, result.ReachedZero)
	assert.Equal(t, int32(0), obj.Refcount)
}

func TestDisownObjRefNotYetZero(t *testing.T) {
	obj := &Object{Refcount: 2}
	result := Disown(ObjRef(obj))
	assert.False(t, result.ReachedZero)
	assert.Equal(t, int32(1), obj.Refcount)
}

func TestDisownAttachedWeakrefDetaches(t *testing.T) {
	obj := &Object{}
	var cell Value
	obj.AttachWeakref(&cell)
	cell = Value{Tag: TagWeakRef, obj: obj, attached: true, index: 0}

	result := Disown(cell)
	assert.Nil(t, result.Object)
	assert.Empty(t, obj.Weakrefs)
}

func TestDisownPrimitiveIsNoop(t *testing.T) {
	result := Disown(Integer(1))
	assert.Nil(t, result.Object)
	assert.False(t, result.ReachedZero)
}

func TestHashNilIsFixedSeed(t *testing.T) {
	assert.Equal(t, nilHashSeed, Hash(Nil(), nil))
}

func TestHashNumericDistinguishesByTagAndValue(t *testing.T) {
	h1 := Hash(Integer(1), nil)
	h2 := Hash(Integer(2), nil)
	h3 := Hash(Real(1), nil)
	assert.NotEqual(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Equal(t, h1, Hash(Integer(1), nil), "hash must be stable across calls")
}

func TestHashObjectPrefersStringHashCallback(t *testing.T) {
	obj := &Object{}
	const want uint64 = 0xABCD
	got := Hash(ObjRef(obj), func(o *Object) (uint64, bool) {
		if o == obj {
			return want, true
		}
		return 0, false
	})
	assert.Equal(t, want, got)
}

func TestHashObjectFallsBackToIdentity(t *testing.T) {
	a := &Object{}
	b := &Object{}
	assert.NotEqual(t, Hash(ObjRef(a), nil), Hash(ObjRef(b), nil))
	assert.Equal(t, Hash(ObjRef(a), nil), Hash(ObjRef(a), nil))
}
