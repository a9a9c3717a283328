package eelapi

import (
	"github.com/eel-lang/eel/builtin"
	"github.com/eel-lang/eel/registry"
	"github.com/eel-lang/eel/values"
)

// RegisterClass installs a natively-defined class into the VM's
// registry (spec.md §6 "register-class ... extend a module with native
// definitions"), returning the assigned dense classid.
func (v *VM) RegisterClass(def *registry.ClassDef, name string) (registry.ClassID, error) {
	return v.Registry.RegisterClass(def, name)
}

// RegisterFunction installs a native Go function under name, callable
// from script code without going through a module's export table
// (spec.md §6 "register-cfunction").
func (v *VM) RegisterFunction(fn *registry.Function) error {
	return v.Registry.RegisterFunction(fn)
}

// ExportFunction wraps fn as a callable object and records it under name
// in mod's export table (spec.md §6 "export-*"). The object is wholly
// owned by the module, and Module.Snapshot is refreshed to count it.
func (v *VM) ExportFunction(mod *builtin.Module, name string, fn *registry.Function) {
	obj := &values.Object{
		ClassID:  int32(v.ClassIDs.Function),
		Refcount: 1,
		VMOwner:  v.owner,
		Payload:  builtin.NewFunction(fn, nil),
	}
	mod.ExportFunction(name, values.ObjRef(obj))
	mod.Snapshot()
}

// ExportValue records a plain value under name in mod's export table.
func (v *VM) ExportValue(mod *builtin.Module, name string, val values.Value) {
	mod.ExportValue(name, val)
	mod.Snapshot()
}
