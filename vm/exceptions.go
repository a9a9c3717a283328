package vm

import (
	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/values"
)

// dispatchException implements the try/catch/retry scheduler of
// spec.md §4.7 "Propagation": walk the frame chain outward from the
// current frame looking for the nearest frame with TryBlock set and no
// Untry recorded since; unwind every frame above it (draining clean-
// tables, limbo lists, and the shared argument stack back to that
// frame's call boundary) and invoke its Catcher with the thrown value.
// Returns true if a catcher ran (dispatch should resume at the catching
// frame), false if the exception reached the root frame uncaught.
func (m *Machine) dispatchException(t *exception.Thrown) bool {
	if t.Kind.IsSpecial() {
		return false
	}

	frames := m.Stack.Frames()
	catchDepth := -1
	for i := len(frames) - 1; i >= 0; i-- {
		fr := frames[i]
		if fr.TryBlock && !fr.Untry {
			catchDepth = i
			break
		}
	}
	if catchDepth < 0 {
		return false
	}

	argBase := frames[catchDepth].ArgBase
	m.Stack.TruncateTo(catchDepth+1, m.Heap, m.Disown)
	m.Constants = frames[catchDepth].Fn.Constants
	if argBase < len(m.Args) {
		for _, v := range m.Args[argBase:] {
			m.Disown(v)
		}
		m.Args = m.Args[:argBase]
	}

	catcher := frames[catchDepth]
	catcher.TryBlock = false
	if catcher.Catcher == nil {
		return false
	}
	payload, _ := t.Payload.(values.Value)

	if catcher.Catcher.IsNative() {
		result, err := catcher.Catcher.Native(m, []values.Value{payload})
		if err != nil {
			return m.dispatchException(wrapThrownKind(err))
		}
		regs := catcher.Registers(m.Heap)
		if catcher.ResultSlot >= 0 && catcher.ResultSlot < len(regs) {
			values.Copy(&regs[catcher.ResultSlot], result)
		}
		return true
	}

	// A bytecode catcher runs as its own nested call frame, one register
	// for the caught value, driven to completion before dispatch resumes
	// here at the (now truncated) catching frame.
	cf, err := m.PushFrame(catcher.Catcher, []values.Value{payload}, -1)
	if err != nil {
		return m.dispatchException(wrapThrownKind(err))
	}
	if err := m.Run1(cf); err != nil {
		return m.dispatchException(wrapThrownKind(err))
	}
	return true
}

func wrapThrownKind(err error) *exception.Thrown {
	if t, ok := err.(*exception.Thrown); ok {
		return t
	}
	return exception.New(exception.Other, err.Error())
}

// RetryCurrent re-arms the nearest enclosing try-block's protected
// region, clearing Untry, once Machine.finishRetry has rewound the
// frame's PC back to its originating TRY — so a subsequent exception
// raised by the retried try-block is still catchable.
func (m *Machine) RetryCurrent() {
	f := m.Stack.Current()
	if f == nil {
		return
	}
	f.TryBlock = true
	f.Untry = false
}
