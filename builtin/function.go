package builtin

import (
	"github.com/eel-lang/eel/registry"
	"github.com/eel-lang/eel/values"
)

// Function is the object payload backing a callable value: a shared
// Def (bytecode body or native implementation, registered once per
// module) plus this particular closure's captured upvalues (spec.md
// §4.6 call frame field "upvalues base").
type Function struct {
	Def      *registry.Function
	Upvalues []values.Value
}

// NewFunction returns a closure over def with the given captured
// upvalues (nil for a function with no free variables).
func NewFunction(def *registry.Function, upvalues []values.Value) *Function {
	return &Function{Def: def, Upvalues: upvalues}
}

// IsNative reports whether this closure wraps a Go implementation
// rather than a bytecode body.
func (f *Function) IsNative() bool { return f.Def != nil && f.Def.IsNative() }

func (f *Function) String() string {
	if f.Def == nil {
		return "function(?)"
	}
	return "function(" + f.Def.Name + ")"
}
