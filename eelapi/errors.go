package eelapi

import (
	"fmt"

	"github.com/eel-lang/eel/exception"
)

// CompileError is tier (b) of spec.md §7's three-tier error model: a
// diagnostic from the excluded compiler collaborator, carried across the
// Load/LoadBuffer boundary but never raised by this package itself.
type CompileError struct {
	File    string
	Line    int
	Message string
}

func (e *CompileError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("compile error: %s", e.Message)
	}
	return fmt.Sprintf("compile error: %s:%d: %s", e.File, e.Line, e.Message)
}

// InternalError is tier (c): an assertion-style failure that should
// never occur in a correct program, mirroring the teacher's VMError
// wrap-and-Is pattern (vm/errors.go) rather than panicking outright.
// It wraps the distinguished exception.Internal kind so callers can
// still exception.As/errors.Is through to the underlying Thrown.
type InternalError struct {
	Thrown *exception.Thrown
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %s", e.Thrown.Error())
}

func (e *InternalError) Unwrap() error { return e.Thrown }

func newInternalError(t *exception.Thrown) *InternalError {
	return &InternalError{Thrown: t}
}
