package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachDetachWeakrefBackIndexInvariant(t *testing.T) {
	obj := &Object{}
	var cells [6]Value
	for i := range cells {
		idx := obj.AttachWeakref(&cells[i])
		assert.Equal(t, i, idx)
		assert.Same(t, &cells[i], obj.Weakrefs[idx])
	}
	require.Len(t, obj.Weakrefs, 6)

	// Detach the middle entry (swap-remove pulls the last element, &cells[5],
	// into slot 2); the invariant is that its back-index is fixed up to match.
	obj.DetachWeakref(2)
	require.Len(t, obj.Weakrefs, 5)
	assert.Same(t, &cells[5], obj.Weakrefs[2])
	assert.Equal(t, 2, cells[5].index)
	for i, cell := range obj.Weakrefs {
		assert.Equal(t, i, cell.index, "back-index invariant violated at slot %d", i)
	}
}

func TestDetachWeakrefOutOfRangeIsNoop(t *testing.T) {
	obj := &Object{}
	var cell Value
	obj.AttachWeakref(&cell)
	obj.DetachWeakref(5)
	assert.Len(t, obj.Weakrefs, 1)
	obj.DetachWeakref(-1)
	assert.Len(t, obj.Weakrefs, 1)
}

func TestRelocateWeakrefUpdatesCellPointer(t *testing.T) {
	obj := &Object{}
	var oldCell, newCell Value
	idx := obj.AttachWeakref(&oldCell)
	obj.RelocateWeakref(idx, &newCell)
	assert.Same(t, &newCell, obj.Weakrefs[idx])
}

func TestNilAllWeakrefsOverwritesEveryAttachedCell(t *testing.T) {
	obj := &Object{}
	a := Integer(1)
	b := Integer(2)
	obj.AttachWeakref(&a)
	obj.AttachWeakref(&b)

	obj.NilAllWeakrefs()

	assert.True(t, a.IsNil())
	assert.True(t, b.IsNil())
	assert.Empty(t, obj.Weakrefs)
}

func TestLimboLinks(t *testing.T) {
	a, b, c := &Object{}, &Object{}, &Object{}
	assert.False(t, a.InLimbo())

	b.SetLimboLinks(a, c)
	assert.True(t, b.InLimbo())
	prev, next := b.LimboLinks()
	assert.Same(t, a, prev)
	assert.Same(t, c, next)

	b.SetLimboLinks(nil, nil)
	assert.False(t, b.InLimbo())

	// A single-element list has both links nil but is still "in limbo".
	a.MarkInLimbo(true)
	assert.True(t, a.InLimbo())
}

func TestWeakrefVectorGrowsPastInitialCapacity(t *testing.T) {
	obj := &Object{}
	cells := make([]Value, weakrefInitialCapacity+1)
	for i := range cells {
		obj.AttachWeakref(&cells[i])
	}
	assert.Len(t, obj.Weakrefs, weakrefInitialCapacity+1)
	assert.GreaterOrEqual(t, cap(obj.Weakrefs), weakrefInitialCapacity+1)
}
