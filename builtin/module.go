package builtin

import (
	"github.com/google/uuid"

	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/values"
)

// Module is the object produced by `load`/`load-buffer` (spec.md §6):
// a compiled unit's export table plus the bookkeeping the embedding API
// needs to tear it down in `close`. ID is a process-unique identifier
// (google/uuid) assigned at construction; no module-GC pass reads it.
//
// Per the Open Question resolution in DESIGN.md ("`src/` vs `src/core/`"),
// Module's `setindex` metamethod always rejects: export tables are
// populated exclusively through register-class/register-cfunction/
// export-* during module construction, never through ordinary indexed
// assignment from script code.
type Module struct {
	ID      uuid.UUID
	Name    string
	Exports map[string]values.Value

	// RefSum is a snapshot of the combined refcount of every exported
	// object, recomputed by Snapshot each time an export is added through
	// the embedding API. `close` runs no module-GC pass and never compares
	// it against a fresh snapshot.
	RefSum int64
}

// NewModule returns an empty module named name.
func NewModule(name string) *Module {
	return &Module{ID: uuid.New(), Name: name, Exports: make(map[string]values.Value)}
}

// ExportValue records a plain value under name.
func (m *Module) ExportValue(name string, v values.Value) {
	m.Exports[name] = v
}

// ExportFunction records a callable under name. The caller constructs
// the Function payload and wraps it in an objref before calling this;
// Module itself does not know about class-ids.
func (m *Module) ExportFunction(name string, fn values.Value) {
	m.Exports[name] = fn
}

// Lookup retrieves an export by name.
func (m *Module) Lookup(name string) (values.Value, bool) {
	v, ok := m.Exports[name]
	return v, ok
}

// SetIndex always rejects (see type doc comment): module export tables
// are not writable from script code.
func (m *Module) SetIndex(name string, v values.Value) error {
	return exception.New(exception.PropertyNotFound, name)
}

// Snapshot recomputes RefSum from the current export table, summing
// each exported object's live refcount.
func (m *Module) Snapshot() {
	var sum int64
	for _, v := range m.Exports {
		if obj := v.Object(); obj != nil {
			sum += int64(obj.Refcount)
		}
	}
	m.RefSum = sum
}
