// Package builtin implements the container and string classes the VM
// depends on (spec.md §4.4/§4.5): the interned immutable string class,
// the mutable growable dstring, array, table, the typed-vector family,
// the function object, and the module object. Each type here is the
// shape stored in a values.Object's Payload field; the metamethod
// callbacks that dispatch to them are wired into registry.ClassDef
// vectors by Register (register.go).
//
// Grounded on the teacher's values.Value rendering helpers
// (VarDump/PrintR-style recursive formatting) for String() methods, and
// on spec.md §4.4/§4.5 for the container semantics PHP's single dynamic
// array/object pair never needed to distinguish.
package builtin

// String is the immutable, interned string payload (spec.md §4.4). The
// byte content never changes after construction — mutation goes through
// DString instead, which is why this type exposes no setters.
type String struct {
	hash uint32
	text string
}

// NewString constructs an interned string payload. hash is supplied by
// the pool (memory.StringPool.Hash) rather than recomputed here, since
// interning already had to compute it to find the bucket.
func NewString(hash uint32, text string) *String {
	return &String{hash: hash, text: text}
}

// Text returns the string's content.
func (s *String) Text() string { return s.text }

// Hash returns the precomputed pool hash, reused by builtin.Table for
// string keys and by values.Hash's stringHash callback.
func (s *String) Hash() uint32 { return s.hash }

// Len returns the byte length.
func (s *String) Len() int { return len(s.text) }

func (s *String) String() string { return s.text }
