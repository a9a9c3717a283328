package registry

import (
	"github.com/eel-lang/eel/opcodes"
	"github.com/eel-lang/eel/values"
)

// NativeFunc is a function implemented in Go and callable from EEL code
// (installed by `register-cfunction`, spec.md §6).
type NativeFunc func(ctx CallContext, args []values.Value) (values.Value, error)

// Function describes a callable entity attached to a module: either a
// compiled bytecode body (supplied by the external compiler collaborator)
// or a native Go implementation.
type Function struct {
	Name string

	// Bytecode body, present when Native == nil.
	Code       []byte
	Constants  []values.Value
	FrameSize  int // register window width
	CleanTableSize int

	// Required/Tuple describe the argument-count contract of spec.md
	// §4.6 ("tuple-args" exception): Required is the minimum fixed
	// argument count; Tuple, when non-zero, is the arity of a trailing
	// repeated group (argc beyond Required must be a multiple of Tuple).
	Required int
	Tuple    int

	Native NativeFunc
}

// IsNative reports whether fn is implemented in Go rather than bytecode.
func (fn *Function) IsNative() bool { return fn.Native != nil }

// Instructions decodes fn's bytecode body using package opcodes, mainly
// for disassembly (`listasm`, spec.md §6).
func (fn *Function) Instructions() ([]opcodes.Instruction, error) {
	var out []opcodes.Instruction
	offset := 0
	for offset < len(fn.Code) {
		inst, n, err := opcodes.Decode(fn.Code, offset)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
		offset += n
	}
	return out, nil
}
