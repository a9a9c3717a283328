package builtin

import (
	"sort"

	"github.com/eel-lang/eel/values"
)

// tableEntry is one (hash, key, value) triple (spec.md §4.5).
type tableEntry struct {
	hash  uint64
	key   values.Value
	value values.Value
}

// KeyEqual decides whether two keys with the same hash are actually
// equal. Primitives, classids and interned strings compare by identity
// (see values.Value.Equal / pointer equality); general objects dispatch
// through the class's `compare` metamethod, which is why this is
// injected rather than hard-coded here (package builtin does not know
// about registry.CallContext's metamethod dispatch).
type KeyEqual func(a, b values.Value) (bool, error)

// Table is the ordered key/value container of spec.md §4.5: entries are
// kept sorted by hash to allow binary search for the hash band, then a
// linear scan within the band for key equality.
type Table struct {
	entries []tableEntry
}

// NewTable returns an empty table.
func NewTable() *Table { return &Table{} }

// Len returns the number of stored pairs.
func (t *Table) Len() int { return len(t.entries) }

// bandStart returns the index of the first entry whose hash is >= h.
func (t *Table) bandStart(h uint64) int {
	return sort.Search(len(t.entries), func(i int) bool { return t.entries[i].hash >= h })
}

// Get looks up key (whose hash the caller has already computed via
// values.Hash), scanning the hash band for equality via eq.
func (t *Table) Get(hash uint64, key values.Value, eq KeyEqual) (values.Value, bool, error) {
	for i := t.bandStart(hash); i < len(t.entries) && t.entries[i].hash == hash; i++ {
		ok, err := eq(t.entries[i].key, key)
		if err != nil {
			return values.Nil(), false, err
		}
		if ok {
			return t.entries[i].value, true, nil
		}
	}
	return values.Nil(), false, nil
}

// Set inserts or overwrites the pair for key, preserving the hash-order
// invariant (spec.md §4.5: "Insert preserves the hash order invariant").
func (t *Table) Set(hash uint64, key, value values.Value, eq KeyEqual) error {
	start := t.bandStart(hash)
	i := start
	for ; i < len(t.entries) && t.entries[i].hash == hash; i++ {
		ok, err := eq(t.entries[i].key, key)
		if err != nil {
			return err
		}
		if ok {
			t.entries[i].value = value
			return nil
		}
	}
	// No existing entry in this hash band matched; insert at i, which is
	// the first position with hash > target (or == target but key
	// distinct), keeping the array hash-ordered.
	t.entries = append(t.entries, tableEntry{})
	copy(t.entries[i+1:], t.entries[i:len(t.entries)-1])
	t.entries[i] = tableEntry{hash: hash, key: key, value: value}
	return nil
}

// Delete removes the pair for key if present, shifting subsequent
// entries down (spec.md §4.5: "Delete shifts subsequent entries down").
func (t *Table) Delete(hash uint64, key values.Value, eq KeyEqual) (values.Value, bool, error) {
	for i := t.bandStart(hash); i < len(t.entries) && t.entries[i].hash == hash; i++ {
		ok, err := eq(t.entries[i].key, key)
		if err != nil {
			return values.Nil(), false, err
		}
		if ok {
			removed := t.entries[i].value
			copy(t.entries[i:], t.entries[i+1:])
			t.entries = t.entries[:len(t.entries)-1]
			return removed, true, nil
		}
	}
	return values.Nil(), false, nil
}

// Entries exposes the live (hash-ordered) backing slice for iteration.
func (t *Table) Entries() []struct {
	Key   values.Value
	Value values.Value
} {
	out := make([]struct {
		Key   values.Value
		Value values.Value
	}, len(t.entries))
	for i, e := range t.entries {
		out[i] = struct {
			Key   values.Value
			Value values.Value
		}{e.key, e.value}
	}
	return out
}

// IdentityKeyEqual is the KeyEqual used for keys that never need the
// `compare` metamethod: nil, numeric primitives, classid, and interned
// strings (fast-pathed by object pointer identity per spec.md §4.5:
// "strings (fast path: pointer identity, since strings are interned)").
func IdentityKeyEqual(a, b values.Value) (bool, error) {
	return a.Equal(b), nil
}
