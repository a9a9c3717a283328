package values

// Object is the common header every reference-counted object carries
// (spec.md §3). Payload holds the per-class instance data (an
// *builtin.Array, *builtin.Table, ... — values never imports the classes
// that use it, so Payload is opaque here).
type Object struct {
	ClassID  int32
	Refcount int32

	// Weakrefs holds a pointer to every Value cell currently attached as
	// a weak reference to this object. Entry i's back-index is i; the
	// invariant "O.weakrefs[W.index] == &W" (spec.md §8) is what Attach,
	// Detach and Relocate maintain.
	Weakrefs []*Value

	// VMOwner identifies the VM instance this object belongs to. It is
	// an opaque comparable token (see vm.Owner) rather than a pointer to
	// avoid values depending on package vm; it exists purely so
	// higher layers can assert objects are never shared across VMs
	// (spec.md §5 "Shared resources").
	VMOwner uint64

	// limboPrev/limboNext link this object into exactly one call frame's
	// limbo list (spec.md §4.2), or are both nil when the object is not
	// currently in limbo.
	limboPrev, limboNext *Object
	inLimbo              bool

	Payload any
}

const weakrefInitialCapacity = 4

// AttachWeakref records cell as a weak reference to o, growing the
// backing vector per the §4.1 "Weakref protocol" policy (initial
// capacity 4, grow factor 3/2) and returns the assigned back-index.
func (o *Object) AttachWeakref(cell *Value) int {
	if cap(o.Weakrefs) == len(o.Weakrefs) {
		newCap := weakrefInitialCapacity
		if cap(o.Weakrefs) > 0 {
			newCap = cap(o.Weakrefs) * 3 / 2
		}
		grown := make([]*Value, len(o.Weakrefs), newCap)
		copy(grown, o.Weakrefs)
		o.Weakrefs = grown
	}
	o.Weakrefs = append(o.Weakrefs, cell)
	return len(o.Weakrefs) - 1
}

// DetachWeakref removes the weakref recorded at index via swap-remove,
// fixing up the back-index of whichever entry moves into the vacated
// slot, then shrinks the backing vector once occupancy drops below half
// of capacity.
func (o *Object) DetachWeakref(index int) {
	n := len(o.Weakrefs)
	if index < 0 || index >= n {
		return
	}
	last := n - 1
	if index != last {
		o.Weakrefs[index] = o.Weakrefs[last]
		moved := o.Weakrefs[index]
		if moved != nil {
			moved.index = index
		}
	}
	o.Weakrefs[last] = nil
	o.Weakrefs = o.Weakrefs[:last]

	if cap(o.Weakrefs) > weakrefInitialCapacity && len(o.Weakrefs) < cap(o.Weakrefs)/2 {
		shrunk := make([]*Value, len(o.Weakrefs))
		copy(shrunk, o.Weakrefs)
		o.Weakrefs = shrunk
	}
}

// RelocateWeakref updates the recorded cell pointer at index in place.
// This is invoked whenever a container's backing store moves the Value
// cell a weakref points into (e.g. a register-heap resize, or an array
// growing past its allocation) so that attached weakrefs keep pointing
// at the live cell rather than a stale address.
func (o *Object) RelocateWeakref(index int, newCell *Value) {
	if index < 0 || index >= len(o.Weakrefs) {
		return
	}
	o.Weakrefs[index] = newCell
}

// NilAllWeakrefs overwrites every attached weakref cell with Nil. Called
// when o is about to be destroyed (spec.md §4.1: "When an object is
// destroyed, every recorded cell is overwritten with nil.").
func (o *Object) NilAllWeakrefs() {
	for _, cell := range o.Weakrefs {
		if cell != nil {
			*cell = Nil()
		}
	}
	o.Weakrefs = nil
}

// InLimbo reports whether o is currently enqueued on a limbo list.
func (o *Object) InLimbo() bool { return o.inLimbo }

// LimboLinks exposes the raw links for package memory's limbo-list
// implementation, which lives outside this package to keep Object free
// of any notion of "call frame".
func (o *Object) LimboLinks() (prev, next *Object) { return o.limboPrev, o.limboNext }

// SetLimboLinks is the companion setter used by package memory.
func (o *Object) SetLimboLinks(prev, next *Object) {
	o.limboPrev, o.limboNext = prev, next
	o.inLimbo = prev != nil || next != nil
}

// MarkInLimbo records membership explicitly for the case of a
// single-element limbo list (where prev == next == nil even though the
// object is enqueued as the sole head).
func (o *Object) MarkInLimbo(in bool) { o.inLimbo = in }
