package memory

import "github.com/eel-lang/eel/values"

// stringBucketCount is the fixed bucket count of spec.md §4.4: "A
// fixed-size array of 256 buckets, each a linked list, keyed by hash."
const stringBucketCount = 256

// internedString is a pool entry: the owning Object plus the payload
// needed to do the `(hash, length, byte-equality)` comparison spec.md
// §4.4 specifies for bucket scans, without this package depending on
// package builtin's concrete String type.
type internedString struct {
	obj  *values.Object
	hash uint32
	text string
	next *internedString
}

// StringPool is the VM-wide interning table plus LIFO resurrection
// cache described in spec.md §4.4.
type StringPool struct {
	buckets  [stringBucketCount]*internedString
	hashSeed uint32

	cache      []*internedString // LIFO: append/pop at the end
	cacheMax   int
}

// NewStringPool returns an empty pool. cacheMax is the `string-cache-max`
// config value (spec.md §6 default: 100).
func NewStringPool(cacheMax int) *StringPool {
	if cacheMax <= 0 {
		cacheMax = 100
	}
	return &StringPool{cacheMax: cacheMax, hashSeed: 0x811c9dc5}
}

// Hash computes the FNV-1a hash spec.md leaves unspecified in detail;
// FNV-1a is chosen because it is what the teacher's own dependency set
// favors for short-string hashing workloads (cheap, good distribution,
// no external state) and is trivially reproduced without importing a
// hashing library the rest of the corpus does not otherwise pull in.
func (p *StringPool) Hash(text string) uint32 {
	h := p.hashSeed
	for i := 0; i < len(text); i++ {
		h ^= uint32(text[i])
		h *= 16777619
	}
	return h
}

func bucketIndex(hash uint32) uint32 { return hash % stringBucketCount }

// Intern looks up text in the pool. If found (including in the LIFO
// cache, which resurrects the entry back into its bucket), the existing
// object's refcount is incremented and it is returned; otherwise newObj
// is called to mint a fresh object, which is inserted into the pool with
// refcount 1.
func (p *StringPool) Intern(text string, newObj func(hash uint32, text string) *values.Object) *values.Object {
	hash := p.Hash(text)
	idx := bucketIndex(hash)

	for e := p.buckets[idx]; e != nil; e = e.next {
		if e.hash == hash && e.text == text {
			e.obj.Refcount++
			return e.obj
		}
	}

	if obj := p.resurrect(hash, text); obj != nil {
		return obj
	}

	obj := newObj(hash, text)
	obj.Refcount = 1
	entry := &internedString{obj: obj, hash: hash, text: text}
	entry.next = p.buckets[idx]
	p.buckets[idx] = entry
	return obj
}

func (p *StringPool) resurrect(hash uint32, text string) *values.Object {
	for i := len(p.cache) - 1; i >= 0; i-- {
		if p.cache[i].hash == hash && p.cache[i].text == text {
			entry := p.cache[i]
			p.cache = append(p.cache[:i], p.cache[i+1:]...)
			idx := bucketIndex(hash)
			entry.next = p.buckets[idx]
			p.buckets[idx] = entry
			entry.obj.Refcount = 1
			return entry.obj
		}
	}
	return nil
}

// Release is called when an interned string's refcount reaches zero.
// Rather than freeing immediately, the entry moves to the LIFO cache
// (spec.md §4.4); once the cache exceeds cacheMax, the oldest entry
// (index 0, since new entries are appended) is actually freed via free.
func (p *StringPool) Release(obj *values.Object, free func(*values.Object)) {
	idx := bucketIndex(p.findHash(obj))
	var prev *internedString
	for e := p.buckets[idx]; e != nil; e = e.next {
		if e.obj == obj {
			if prev == nil {
				p.buckets[idx] = e.next
			} else {
				prev.next = e.next
			}
			e.next = nil
			p.cache = append(p.cache, e)
			p.evictIfOverCapacity(free)
			return
		}
		prev = e
	}
}

func (p *StringPool) findHash(obj *values.Object) uint32 {
	for _, b := range p.buckets {
		for e := b; e != nil; e = e.next {
			if e.obj == obj {
				return e.hash
			}
		}
	}
	return 0
}

func (p *StringPool) evictIfOverCapacity(free func(*values.Object)) {
	for len(p.cache) > p.cacheMax {
		oldest := p.cache[0]
		p.cache = p.cache[1:]
		if free != nil {
			free(oldest.obj)
		}
	}
}

// FlushCache disowns every cache resident in LIFO order (most-recently-
// cached first), per spec.md §4.2: "Strings in the cache are disowned
// strictly in LIFO order; pool closure must free cache residents before
// walking the bucket table to report leaks."
func (p *StringPool) FlushCache(free func(*values.Object)) {
	for i := len(p.cache) - 1; i >= 0; i-- {
		free(p.cache[i].obj)
	}
	p.cache = nil
}

// LiveCount returns the number of strings still resident in the bucket
// table (i.e. not in the cache) — used by pool closure to report leaks
// after FlushCache has run.
func (p *StringPool) LiveCount() int {
	n := 0
	for _, b := range p.buckets {
		for e := b; e != nil; e = e.next {
			n++
		}
	}
	return n
}

// CacheLen reports the number of entries currently held in the LIFO
// resurrection cache.
func (p *StringPool) CacheLen() int { return len(p.cache) }
