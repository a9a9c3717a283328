package memory

import (
	"testing"

	"github.com/eel-lang/eel/registry"
	"github.com/eel-lang/eel/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnIncrementsRefcount(t *testing.T) {
	m := NewManager(registry.NewRegistry())
	obj := &values.Object{Refcount: 1}
	m.Own(obj)
	assert.Equal(t, int32(2), obj.Refcount)
}

func TestDisownDestroysOnZeroRefcount(t *testing.T) {
	reg := registry.NewRegistry()
	destroyed := false
	def := registry.NewClassDef(values.Nil(), registry.AnyClassID)
	def.Destructor = func(ctx registry.CallContext, obj *values.Object) bool {
		destroyed = true
		return true
	}
	cid, err := reg.RegisterClass(def, "widget")
	require.NoError(t, err)

	m := NewManager(reg)
	obj := &values.Object{ClassID: int32(cid), Refcount: 1}
	m.Disown(nil, values.ObjRef(obj))
	assert.True(t, destroyed)
}

func TestDisownRefusalGoesToDeadlist(t *testing.T) {
	reg := registry.NewRegistry()
	def := registry.NewClassDef(values.Nil(), registry.AnyClassID)
	def.Destructor = func(ctx registry.CallContext, obj *values.Object) bool { return false }
	cid, err := reg.RegisterClass(def, "stubborn")
	require.NoError(t, err)

	m := NewManager(reg)
	obj := &values.Object{ClassID: int32(cid), Refcount: 1}
	m.Disown(nil, values.ObjRef(obj))
	require.Len(t, m.Deadlist, 1)
	assert.Same(t, obj, m.Deadlist[0])
}

func TestRetryDeadlistDrainsAcceptedObjects(t *testing.T) {
	reg := registry.NewRegistry()
	attempts := 0
	def := registry.NewClassDef(values.Nil(), registry.AnyClassID)
	def.Destructor = func(ctx registry.CallContext, obj *values.Object) bool {
		attempts++
		return attempts > 1
	}
	cid, _ := reg.RegisterClass(def, "retryable")

	m := NewManager(reg)
	obj := &values.Object{ClassID: int32(cid), Refcount: 1}
	m.Disown(nil, values.ObjRef(obj))
	require.Len(t, m.Deadlist, 1)

	destroyed := m.RetryDeadlist(nil)
	assert.Equal(t, 1, destroyed)
	assert.Empty(t, m.Deadlist)
}

func TestConstructRejectsMissingClass(t *testing.T) {
	m := NewManager(registry.NewRegistry())
	_, err := m.Construct(nil, registry.ClassID(99), nil)
	assert.Error(t, err)
}

func TestLimboPlaceReceiveDrain(t *testing.T) {
	var l LimboList
	a, b := &values.Object{}, &values.Object{}
	l.Place(a)
	l.Place(b)
	assert.False(t, l.Empty())

	l.Receive(a) // a is already in limbo -> unlinked without disown
	assert.False(t, a.InLimbo())

	var disowned []values.Value
	l.DrainAll(func(v values.Value) { disowned = append(disowned, v) })
	require.Len(t, disowned, 1)
	assert.Same(t, b, disowned[0].Object())
	assert.True(t, l.Empty())
}

func TestCleanTableTruncateDisownsAboveK(t *testing.T) {
	var c CleanTable
	c.Append(1)
	c.Append(2)
	c.Append(3)
	var disowned []uint8
	c.Truncate(1, func(idx uint8) { disowned = append(disowned, idx) })
	assert.Equal(t, []uint8{2, 3}, disowned)
	assert.Equal(t, []uint8{1}, c.Entries())
}

func TestCleanTableDrainAllEmpties(t *testing.T) {
	var c CleanTable
	c.Append(5)
	c.Append(6)
	var disowned []uint8
	c.DrainAll(func(idx uint8) { disowned = append(disowned, idx) })
	assert.Equal(t, []uint8{5, 6}, disowned)
	assert.Equal(t, 0, c.Len())
}

func TestHeapReserveDoublesAndWalks(t *testing.T) {
	h := NewHeap(4)
	h.PushFrame(4, nil) // fills initial capacity

	walked := false
	h.Reserve(4, func(oldBase, newBase *values.Value, delta int) {
		walked = true
		assert.NotEqual(t, oldBase, newBase)
	})
	assert.True(t, walked)
	assert.GreaterOrEqual(t, h.Cap(), 8)
}

func TestHeapPushPopFrame(t *testing.T) {
	h := NewHeap(16)
	base1 := h.PushFrame(4, nil)
	base2 := h.PushFrame(4, nil)
	assert.Equal(t, 0, base1)
	assert.Equal(t, 4, base2)
	h.PopFrame(4)
	assert.Equal(t, 4, h.Len())
}

func TestStringPoolInternsAndReuses(t *testing.T) {
	p := NewStringPool(2)
	minted := 0
	newObj := func(hash uint32, text string) *values.Object {
		minted++
		return &values.Object{Refcount: 1}
	}
	a := p.Intern("hello", newObj)
	b := p.Intern("hello", newObj)
	assert.Same(t, a, b)
	assert.Equal(t, 1, minted)
	assert.Equal(t, int32(2), a.Refcount)
}

func TestStringPoolReleaseAndResurrect(t *testing.T) {
	p := NewStringPool(2)
	newObj := func(hash uint32, text string) *values.Object { return &values.Object{Refcount: 1} }
	a := p.Intern("cached", newObj)

	freed := false
	p.Release(a, func(o *values.Object) { freed = true })
	assert.False(t, freed)
	assert.Equal(t, 1, p.CacheLen())
	assert.Equal(t, 0, p.LiveCount())

	b := p.Intern("cached", newObj)
	assert.Same(t, a, b)
	assert.Equal(t, int32(1), b.Refcount)
	assert.Equal(t, 0, p.CacheLen())
	assert.Equal(t, 1, p.LiveCount())
}

func TestStringPoolCacheEvictsOldestBeyondMax(t *testing.T) {
	p := NewStringPool(1)
	newObj := func(hash uint32, text string) *values.Object { return &values.Object{Refcount: 1} }
	first := p.Intern("a", newObj)
	second := p.Intern("b", newObj)

	var freedOrder []*values.Object
	free := func(o *values.Object) { freedOrder = append(freedOrder, o) }
	p.Release(first, free)
	p.Release(second, free)

	require.Len(t, freedOrder, 1)
	assert.Same(t, first, freedOrder[0])
	assert.Equal(t, 1, p.CacheLen())
}

func TestStringPoolFlushCacheIsLIFO(t *testing.T) {
	p := NewStringPool(10)
	newObj := func(hash uint32, text string) *values.Object { return &values.Object{Refcount: 1} }
	a := p.Intern("a", newObj)
	b := p.Intern("b", newObj)
	p.Release(a, nil)
	p.Release(b, nil)

	var order []*values.Object
	p.FlushCache(func(o *values.Object) { order = append(order, o) })
	assert.Equal(t, []*values.Object{b, a}, order)
}

func TestCalcresizeGrowsByThreeHalvesWithFloor(t *testing.T) {
	assert.Equal(t, 16, Calcresize(0, 1))
	grown := Calcresize(16, 20)
	assert.GreaterOrEqual(t, grown, 20)
	assert.Less(t, grown, 40)
}

func TestCalcresizeShrinksOnlyPastDoubleOccupancyWithHysteresis(t *testing.T) {
	// capacity 100, length 10: 100 > 2*10, so this shrinks...
	shrunk := Calcresize(100, 10)
	assert.Less(t, shrunk, 100)
	assert.GreaterOrEqual(t, shrunk, 10)

	// ...but capacity 19, length 10: 19 is not > 2*10=20, so no shrink.
	assert.Equal(t, 19, Calcresize(19, 10))
}
