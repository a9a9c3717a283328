package memory

import "github.com/eel-lang/eel/values"

// LimboList is a call frame's doubly-linked list of objects "owned by
// pending computation" (spec.md §4.2). An object returned from an
// operator, cast, or constructor is placed here until the caller
// consumes it; on frame exit, whatever remains is disowned.
type LimboList struct {
	head *values.Object
}

// Place appends obj to the list (the "callee puts it there" half of the
// receive discipline). A no-op if obj is already on this list.
func (l *LimboList) Place(obj *values.Object) {
	if obj == nil || obj.InLimbo() {
		return
	}
	if l.head == nil {
		obj.SetLimboLinks(nil, nil)
		obj.MarkInLimbo(true)
		l.head = obj
		return
	}
	obj.SetLimboLinks(nil, l.head)
	l.head.SetLimboLinks(obj, selectNext(l.head))
	l.head = obj
}

func selectNext(o *values.Object) *values.Object {
	_, next := o.LimboLinks()
	return next
}

// Receive implements spec.md §4.2's "receive discipline": if obj is
// already on this list, it is unlinked without adjusting refcount
// (ownership transfers from limbo to the caller's explicit reference);
// otherwise obj is placed onto this list (the caller is choosing to
// defer consuming it).
func (l *LimboList) Receive(obj *values.Object) {
	if obj == nil {
		return
	}
	if obj.InLimbo() {
		l.unlink(obj)
		return
	}
	l.Place(obj)
}

// unlink removes obj from the list without touching its refcount.
func (l *LimboList) unlink(obj *values.Object) {
	prev, next := obj.LimboLinks()
	if prev != nil {
		prevPrev, _ := prev.LimboLinks()
		prev.SetLimboLinks(prevPrev, next)
		prev.MarkInLimbo(true)
	} else {
		l.head = next
	}
	if next != nil {
		_, nextNext := next.LimboLinks()
		next.SetLimboLinks(prev, nextNext)
		next.MarkInLimbo(true)
	}
	obj.SetLimboLinks(nil, nil)
	obj.MarkInLimbo(false)
}

// DrainAll disowns every object still on the list — called on frame
// exit, normal or exceptional (spec.md §4.2).
func (l *LimboList) DrainAll(disown func(values.Value)) {
	for l.head != nil {
		obj := l.head
		_, next := obj.LimboLinks()
		obj.SetLimboLinks(nil, nil)
		obj.MarkInLimbo(false)
		l.head = next
		disown(values.ObjRef(obj))
	}
}

// Empty reports whether the list currently holds no objects.
func (l *LimboList) Empty() bool { return l.head == nil }

// Head exposes the list head, mainly so the heap-resize relocation walk
// (spec.md §4.2 "Heap resize") can adjust pointers stored in call frames
// without this package needing to know about call frames itself.
func (l *LimboList) Head() *values.Object { return l.head }

// SetHead overwrites the head pointer directly; used by the relocation
// walk when the frame holding this list has itself moved.
func (l *LimboList) SetHead(obj *values.Object) { l.head = obj }
