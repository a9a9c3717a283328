//go:build !eel_gotodispatch

package vm

import "github.com/eel-lang/eel/exception"

// Run drives the dispatch loop from the current frame's PC until the
// call stack empties (spec.md §4.7 "end": "raised when the root frame
// returns; the VM has no more work"). This is the default dispatcher,
// selected whenever build tag `eel_gotodispatch` is absent; the
// alternate in dispatch_goto.go selects under that tag (spec.md §4.6/§9
// asks for the dispatcher strategy to be selectable at build time —
// see DESIGN.md's Open Question resolution for why both variants are
// switch-based rather than one being a literal computed-goto).
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
