// Package eelapi is the embedding API of spec.md §6: the boundary a host
// program links against to open a VM, load compiled modules into it, and
// call back into script-defined functions. It deliberately knows nothing
// about lexing, parsing, or codegen — those remain external collaborators
// injected through the ModuleLoader interface, the same
// injection-to-avoid-cycle shape the teacher's vmfactory.CompilerFactory
// uses to keep its VM package independent of the concrete compiler.
package eelapi

// Config collects the compile/runtime flags of spec.md §6, mirroring the
// teacher's cli.Command flag surface (cmd/hey/main.go) field-for-field
// rather than inventing a parallel options style.
type Config struct {
	// NoCompile skips compilation and expects Load/LoadBuffer to be
	// handed already-compiled bytecode (§6 "-n no-compile").
	NoCompile bool

	// NoInit skips running the loaded module's top-level init code,
	// leaving only its exports populated (§6 "-I no-init").
	NoInit bool

	// List prints the compiled bytecode's source listing before running.
	List bool

	// ListAsm prints the disassembled bytecode before running.
	ListAsm bool

	// WError promotes compile warnings to errors.
	WError bool

	// NoPrecedence disables operator-precedence parsing, requiring fully
	// parenthesized expressions from the loader's collaborator.
	NoPrecedence bool

	// StringCacheMax bounds the interned-string LIFO resurrection cache
	// (spec.md §4.4); default 100.
	StringCacheMax int

	// HeapInitial is the register heap's starting capacity; default 256.
	HeapInitial int

	// StackMin is the minimum stack reserve setting; default 32. It is
	// carried in Config only: neither Open nor package vm reads it, and
	// the register heap grows on demand from HeapInitial.
	StackMin int
}

// DefaultConfig returns a Config populated with spec.md §6's documented
// defaults.
func DefaultConfig() Config {
	return Config{
		StringCacheMax: 100,
		HeapInitial:    256,
		StackMin:       32,
	}
}
