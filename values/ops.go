package values

import "unsafe"

// Copy, Clone, Move, QCopy, Disown and Hash implement the Value-model
// operations of spec.md §4.1. dst and src are addresses of Value cells;
// the weakref-attachment side effects are what require dst to be a
// stable, already-allocated cell (register slot, local, constant table
// entry) rather than a transient copy.

// Copy clones src into *dst, adjusting ownership:
//   - objref: increments the target's refcount (caller must already hold
//     an AttachWeakref-free reference; the actual increment is done by
//     the caller via memory.Own, since Object has no owning VM to call
//     back into here — Copy only shapes *dst and reports whether an Own
//     is now owed).
//   - weakref: if src is unwired (not yet attached), the copy performs
//     the attachment into dst and becomes the wired weakref. If src is
//     already wired, the weakref is promoted to an owning objref (the
//     caller must Own the target).
//   - primitives: bitwise copy, no ownership effects.
//
// needsOwn reports whether the caller must call memory.Own(result.Object())
// after Copy returns (true for a fresh objref and for weakref promotion).
func Copy(dst *Value, src Value) (needsOwn bool) {
	switch src.Tag {
	case TagObjRef:
		*dst = src
		return true
	case TagWeakRef:
		if !src.attached {
			idx := src.obj.AttachWeakref(dst)
			*dst = Value{Tag: TagWeakRef, obj: src.obj, attached: true, index: idx}
			return false
		}
		*dst = ObjRef(src.obj)
		return true
	default:
		*dst = src
		return false
	}
}

// Clone behaves like Copy except a weakref source always produces a
// fresh attached weakref, regardless of whether src was already wired.
func Clone(dst *Value, src Value) (needsOwn bool) {
	switch src.Tag {
	case TagObjRef:
		*dst = src
		return true
	case TagWeakRef:
		idx := src.obj.AttachWeakref(dst)
		*dst = Value{Tag: TagWeakRef, obj: src.obj, attached: true, index: idx}
		return false
	default:
		*dst = src
		return false
	}
}

// Move bitwise-transfers src into *dst and, for an attached weakref,
// fixes up the target's recorded back-pointer to point at dst instead of
// src's old cell. src is considered invalid after Move and must not be
// read again.
func Move(dst *Value, src *Value) {
	*dst = *src
	if dst.Tag == TagWeakRef && dst.attached {
		dst.obj.RelocateWeakref(dst.index, dst)
	}
	*src = Value{}
}

// QCopy performs a "quick" ownership-free copy for short-lived
// intermediates: an objref is copied without incrementing the target's
// refcount, and a weakref (wired or not) degrades to a non-owning objref
// shape pointing at the same target. The result must not be Disown'd by
// the caller — it is a borrowed view, valid only as long as the original
// owning reference is.
func QCopy(dst *Value, src Value) {
	switch src.Tag {
	case TagObjRef, TagWeakRef:
		*dst = Value{Tag: TagObjRef, obj: src.obj}
	default:
		*dst = src
	}
}

// DisownResult reports what the caller must do after Disown.
type DisownResult struct {
	// Object is non-nil when v held an objref whose refcount reached
	// zero and must now be handed to the memory manager for
	// destruction.
	Object *Object
	// ReachedZero is true iff Object's refcount just reached zero.
	ReachedZero bool
}

// Disown releases v's ownership stake: for an objref it decrements the
// target's refcount (reporting if it reached zero, in which case the
// caller — package memory — must invoke the class destructor); for an
// attached weakref it detaches from the target's weakref vector; for
// primitives it is a no-op.
func Disown(v Value) DisownResult {
	switch v.Tag {
	case TagObjRef:
		if v.obj == nil {
			return DisownResult{}
		}
		v.obj.Refcount--
		return DisownResult{Object: v.obj, ReachedZero: v.obj.Refcount == 0}
	case TagWeakRef:
		if v.attached {
			v.obj.DetachWeakref(v.index)
		}
		return DisownResult{}
	default:
		return DisownResult{}
	}
}

// nilHashSeed is the fixed seed spec.md §4.1 specifies for the nil hash.
const nilHashSeed uint64 = 0x9e3779b97f4a7c15

// Hash computes the stable hash described in spec.md §4.1: a fixed seed
// for nil, XOR of the seed with a type-shifted payload for numeric
// types, the precomputed string hash for strings (stringHash, supplied
// by the caller since values does not know about the string class), and
// an identity-pointer hash for other objects.
func Hash(v Value, stringHash func(*Object) (uint64, bool)) uint64 {
	switch v.Tag {
	case TagNil:
		return nilHashSeed
	case TagInteger:
		return nilHashSeed ^ (uint64(uint32(v.integer)) << 1)
	case TagReal:
		return nilHashSeed ^ (floatBits(v.real) << 2)
	case TagBoolean:
		b := uint64(0)
		if v.boolean {
			b = 1
		}
		return nilHashSeed ^ (b << 3)
	case TagClassID:
		return nilHashSeed ^ (uint64(uint32(v.classid)) << 4)
	case TagObjRef, TagWeakRef:
		if stringHash != nil {
			if h, ok := stringHash(v.obj); ok {
				return h
			}
		}
		return identityHash(v.obj)
	default:
		return nilHashSeed
	}
}

func floatBits(f float64) uint64 {
	return uint64(int64(f*1e6)) // stable enough for hashing purposes; exactness is not required
}

func identityHash(o *Object) uint64 {
	// Pointer identity hash: fold the pointer's bit pattern (fmix64 from
	// MurmurHash3) rather than relying on an address-dependent fmt
	// conversion.
	h := uint64(uintptr(unsafe.Pointer(o)))
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	return h
}
