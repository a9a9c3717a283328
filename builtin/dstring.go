package builtin

import "github.com/eel-lang/eel/memory"

// DString is the mutable, growable byte buffer counterpart to String
// (spec.md §4.4: "Dstrings (mutable) are separate: they own a growable
// byte buffer with length and capacity."). Growth and shrink follow the
// memory.Calcresize heuristic.
type DString struct {
	buf []byte
}

// NewDString returns an empty dstring with no pre-allocated capacity.
func NewDString() *DString { return &DString{} }

// NewDStringFrom copies text into a fresh dstring.
func NewDStringFrom(text string) *DString {
	d := &DString{}
	d.Write(text)
	return d
}

// Len returns the current content length.
func (d *DString) Len() int { return len(d.buf) }

// Bytes returns the live backing slice; callers must not retain it past
// the next mutation.
func (d *DString) Bytes() []byte { return d.buf }

func (d *DString) String() string { return string(d.buf) }

func (d *DString) ensure(required int) {
	if required <= cap(d.buf) {
		return
	}
	newCap := memory.Calcresize(cap(d.buf), required)
	grown := make([]byte, len(d.buf), newCap)
	copy(grown, d.buf)
	d.buf = grown
}

// Write appends text to the buffer.
func (d *DString) Write(text string) {
	required := len(d.buf) + len(text)
	d.ensure(required)
	d.buf = append(d.buf, text...)
}

// Insert splices text into the buffer at byte offset pos, following the
// memmove pattern spec.md §4.4 describes.
func (d *DString) Insert(pos int, text string) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(d.buf) {
		pos = len(d.buf)
	}
	required := len(d.buf) + len(text)
	d.ensure(required)
	d.buf = d.buf[:required]
	copy(d.buf[pos+len(text):], d.buf[pos:required-len(text)])
	copy(d.buf[pos:pos+len(text)], text)
}

// Delete removes n bytes starting at offset pos, shrinking the buffer
// per Calcresize's hysteresis rule once the resulting occupancy drops
// low enough.
func (d *DString) Delete(pos, n int) {
	if pos < 0 || n <= 0 || pos >= len(d.buf) {
		return
	}
	end := pos + n
	if end > len(d.buf) {
		end = len(d.buf)
	}
	copy(d.buf[pos:], d.buf[end:])
	d.buf = d.buf[:len(d.buf)-(end-pos)]

	newCap := memory.Calcresize(cap(d.buf), len(d.buf))
	if newCap < cap(d.buf) {
		shrunk := make([]byte, len(d.buf), newCap)
		copy(shrunk, d.buf)
		d.buf = shrunk
	}
}

// Clear empties the buffer without releasing its capacity.
func (d *DString) Clear() { d.buf = d.buf[:0] }
