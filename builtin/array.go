package builtin

import (
	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/memory"
	"github.com/eel-lang/eel/values"
)

// Array is the vector-of-values container of spec.md §4.5. Elements are
// stored in a single contiguous slice; any mutation that can move an
// element's address (growth, or a shift from Insert/Delete) re-walks the
// affected range and fixes up the back-index of any attached weakref
// pointing into it, since a weakref's recorded cell is a raw *Value.
type Array struct {
	elems []values.Value
}

// NewArray returns an empty array.
func NewArray() *Array { return &Array{} }

// Len returns the element count.
func (a *Array) Len() int { return len(a.elems) }

func (a *Array) ensure(required int) {
	if required <= cap(a.elems) {
		return
	}
	newCap := memory.Calcresize(cap(a.elems), required)
	grown := make([]values.Value, len(a.elems), newCap)
	copy(grown, a.elems)
	a.elems = grown
	relocateWeakrefs(a.elems)
}

// relocateWeakrefs fixes up every attached weakref in s to point at its
// (possibly moved) current cell address.
func relocateWeakrefs(s []values.Value) {
	for i := range s {
		if s[i].WeakAttached() {
			s[i].Object().RelocateWeakref(s[i].WeakIndex(), &s[i])
		}
	}
}

// Get returns the element at i, or a LowIndex/HighIndex exception if out
// of range.
func (a *Array) Get(i int) (values.Value, error) {
	if i < 0 {
		return values.Nil(), exception.New(exception.LowIndex, i)
	}
	if i >= len(a.elems) {
		return values.Nil(), exception.New(exception.HighIndex, i)
	}
	return a.elems[i], nil
}

// SetIndex overwrites index i with ownership transfer; if i is beyond
// the current length, intermediate slots are zero-filled with nil and
// the array extends to hold i (spec.md §4.5: "if i ≥ length, zero-fill
// intermediate slots to nil, extend; overwrite with ownership transfer").
func (a *Array) SetIndex(i int, v values.Value) error {
	if i < 0 {
		return exception.New(exception.LowIndex, i)
	}
	if i >= len(a.elems) {
		a.ensure(i + 1)
		a.elems = a.elems[:i+1]
	}
	a.elems[i] = v
	if v.WeakAttached() {
		v.Object().RelocateWeakref(v.WeakIndex(), &a.elems[i])
	}
	return nil
}

// Insert splices v into position i, shifting subsequent elements right
// and relocating their weakref back-indices.
func (a *Array) Insert(i int, v values.Value) error {
	if i < 0 || i > len(a.elems) {
		return exception.New(exception.HighIndex, i)
	}
	a.ensure(len(a.elems) + 1)
	a.elems = a.elems[:len(a.elems)+1]
	copy(a.elems[i+1:], a.elems[i:len(a.elems)-1])
	a.elems[i] = v
	relocateWeakrefs(a.elems[i:])
	return nil
}

// Delete removes the element at i, shifting subsequent elements left and
// relocating their weakref back-indices. The removed value is returned
// so the caller can Disown it.
func (a *Array) Delete(i int) (values.Value, error) {
	if i < 0 || i >= len(a.elems) {
		return values.Nil(), exception.New(exception.HighIndex, i)
	}
	removed := a.elems[i]
	copy(a.elems[i:], a.elems[i+1:])
	a.elems = a.elems[:len(a.elems)-1]
	relocateWeakrefs(a.elems[i:])
	return removed, nil
}

// Append implements the `add`/`ipadd` metamethods (spec.md §4.5).
func (a *Array) Append(v values.Value) {
	a.ensure(len(a.elems) + 1)
	a.elems = append(a.elems, v)
	if v.WeakAttached() {
		last := len(a.elems) - 1
		v.Object().RelocateWeakref(v.WeakIndex(), &a.elems[last])
	}
}

// Elements exposes the live backing slice, e.g. for an iteration
// builtin or a `copy` metamethod that needs to clone every element.
func (a *Array) Elements() []values.Value { return a.elems }
