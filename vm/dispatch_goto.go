//go:build eel_gotodispatch

package vm

import "github.com/eel-lang/eel/exception"

// Run is the `eel_gotodispatch` build's dispatcher. Go has no
// label-as-value/computed-goto construct, so this cannot literally
// thread control through a jump table the way the original's
// goto-dispatch build does; it is kept as a distinct switch-based
// dispatcher (see step in step.go) so the *selectable* dispatcher
// structure spec.md §4.6/§9 asks for still exists as two build-tag
// variants, with the difference documented here rather than silently
// collapsed into one file.
func (m *Machine) Run() error {
	for {
		f := m.Stack.Current()
		if f == nil {
			return nil
		}
		if err := m.step(f); err != nil {
			if t, ok := err.(*exception.Thrown); ok {
				if t.Kind == exception.End {
					return nil
				}
				if t.Kind == exception.Return {
					m.finishReturn(f, t.Payload)
					continue
				}
				if handled := m.dispatchException(t); handled {
					continue
				}
				return t
			}
			return err
		}
	}
}
