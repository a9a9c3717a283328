package registry

import "github.com/eel-lang/eel/values"

// CastFunc converts a value of the matrix row's class into one of the
// matrix column's class.
type CastFunc func(ctx CallContext, v values.Value) (values.Value, error)

type castKey struct {
	from, to ClassID
}

// CastMatrix is the 2-D `(from-cid, to-cid)` cast table of spec.md §4.3.
// Lookup is O(1) via a Go map rather than a dense 2-D array: the EEL
// implementation's matrix is sized to the live classid space, which a Go
// program would otherwise have to pre-size or grow in lockstep with
// class registration — a map keyed by the (from, to) pair gets the same
// O(1) expected lookup without that bookkeeping.
type CastMatrix struct {
	cells map[castKey]CastFunc
}

// NewCastMatrix returns an empty cast matrix.
func NewCastMatrix() *CastMatrix {
	return &CastMatrix{cells: make(map[castKey]CastFunc)}
}

// Register installs fn as the cast from `from` to `to`, overwriting any
// existing entry for that pair.
func (m *CastMatrix) Register(from, to ClassID, fn CastFunc) {
	m.cells[castKey{from, to}] = fn
}

// RegisterAny installs fn for every `(from, to)` pair where from == AnyClassID
// or to == AnyClassID is the pseudo-class actually meant; in practice Any
// bulk-registration targets a single concrete `to` from every class not
// already holding an entry (spec.md: "fills empty cells").
func (m *CastMatrix) RegisterAny(to ClassID, fn CastFunc, knownClasses []ClassID) {
	for _, from := range knownClasses {
		key := castKey{from, to}
		if _, exists := m.cells[key]; !exists {
			m.cells[key] = fn
		}
	}
}

// RegisterAnyIndexable installs fn for every class in indexableClasses
// that does not already have an explicit `(from, to)` entry — the
// any-indexable pseudo-class of spec.md §4.3, which "fills empty cells
// whose concrete class exposes getindex and/or setindex".
func (m *CastMatrix) RegisterAnyIndexable(to ClassID, fn CastFunc, indexableClasses []ClassID) {
	m.RegisterAny(to, fn, indexableClasses)
}

// Lookup returns the cast function for (from, to), or nil if no cast is
// registered for that pair.
func (m *CastMatrix) Lookup(from, to ClassID) CastFunc {
	return m.cells[castKey{from, to}]
}
