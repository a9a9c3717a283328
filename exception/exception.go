// Package exception implements the dense, contiguous exception-kind
// enumeration of spec.md §4.7/§6 and the Thrown wrapper that carries a
// thrown Value around the VM's frame-chain scheduler.
//
// The taxonomy here covers only tier (a) of §6's three-tier model — VM
// exceptions, catchable by script-level try/catch. Compiler errors and
// internal errors are tiers (b) and (c); they are not represented as
// Kind values because they never reach the try/catch scheduler (a
// compiler error aborts load before a VM exists to catch it, and an
// internal error in a release build throws the distinguished Kind
// Internal below rather than carrying its own taxonomy).
package exception

import "fmt"

// Kind identifies the category of a thrown value. The set is closed and
// contiguous by design (spec.md §6 "Exception names": "the enumeration
// is dense and contiguous, fixed at build time") — do not leave gaps
// when adding a kind.
type Kind byte

const (
	// Other is the catch-all for a thrown value that is not one of the
	// named primitive-integer kinds below (spec.md §4.7: "Non-integer
	// throws become the `other` kind.").
	Other Kind = iota
	WrongType
	LowIndex
	HighIndex
	Memory
	NeedObject
	NoMetamethod
	Constructor
	Overflow
	TupleArgs
	DivisionByZero
	ModuloByZero
	ClassNotFound
	FunctionNotFound
	PropertyNotFound
	AbstractClass
	Internal

	// Return, Retry, End and Yield are the "special kinds" of spec.md
	// §4.7: modeled as exceptions so the scheduler's single unwind path
	// handles both error propagation and ordinary control flow, but
	// never surfaced to script-level try/catch (the scheduler treats
	// them as internal sentinels and strips them before a catcher would
	// otherwise see them).
	Return
	Retry
	End
	Yield

	numKinds
)

type kindInfo struct {
	name string
	desc string
}

var kindTable = [numKinds]kindInfo{
	Other:            {"other", "a thrown value that is not a named exception kind"},
	WrongType:        {"wrong-type", "an operand's class does not match the operation's requirement"},
	LowIndex:         {"low-index", "an index fell below the container's valid range"},
	HighIndex:        {"high-index", "an index exceeded the container's valid range"},
	Memory:           {"memory", "allocation failed or a memory invariant was violated"},
	NeedObject:       {"need-object", "an operation requires an object reference but received a primitive"},
	NoMetamethod:     {"no-metamethod", "the receiving class has no callback registered for the dispatched metamethod"},
	Constructor:      {"constructor", "a class constructor rejected its arguments"},
	Overflow:         {"overflow", "an arithmetic or indexing operation overflowed its representable range"},
	TupleArgs:        {"tuple-args", "the call's trailing argument count is not a multiple of the declared tuple arity"},
	DivisionByZero:   {"division-by-zero", "integer or real division by zero"},
	ModuloByZero:     {"modulo-by-zero", "modulo by zero"},
	ClassNotFound:    {"class-not-found", "no class is registered under the requested name or id"},
	FunctionNotFound: {"function-not-found", "no function is registered under the requested name"},
	PropertyNotFound: {"property-not-found", "the requested export or property does not exist on its module"},
	AbstractClass:    {"abstract-class", "attempted to construct a class with no registered constructor"},
	Internal:         {"internal", "an internal invariant failed; this indicates a bug in the core"},
	Return:           {"return", "RETX/RETXR unwinding to the nearest real function frame"},
	Retry:            {"retry", "RETRY unwinding a catcher back to its originating TRY"},
	End:              {"end", "the root frame was reached; VM work is exhausted"},
	Yield:            {"yield", "a voluntary reschedule point; a no-op in the single-threaded dispatcher"},
}

// Name returns the kind's queryable textual name (spec.md §6).
func (k Kind) Name() string {
	if k < numKinds {
		return kindTable[k].name
	}
	return fmt.Sprintf("kind(%d)", byte(k))
}

// Description returns the kind's one-line queryable description.
func (k Kind) Description() string {
	if k < numKinds {
		return kindTable[k].desc
	}
	return "unknown exception kind"
}

func (k Kind) String() string { return k.Name() }

// IsSpecial reports whether k is one of the scheduler-internal kinds
// (Return, Retry, End, Yield) that never surface to a script-level catcher.
func (k Kind) IsSpecial() bool {
	return k == Return || k == Retry || k == End || k == Yield
}

// NumKinds returns the number of kinds in the dense enumeration,
// letting callers (e.g. a `kind-name(i)` builtin) iterate 0..NumKinds-1.
func NumKinds() int { return int(numKinds) }

// Thrown carries a thrown value through the frame-chain scheduler.
// Payload is a values.Value in practice; it is typed any here to avoid
// this package depending on package values, matching the teacher's
// dependency-injection style for breaking layering cycles (see
// vmfactory.CompilerFactory for the analogous pattern at the compiler
// boundary).
type Thrown struct {
	Kind    Kind
	Payload any
}

// Error implements the error interface so a Thrown can be carried
// through ordinary Go error-returning signatures (e.g. a native
// function implemented in Go that wants to raise an EEL exception).
func (t *Thrown) Error() string {
	return fmt.Sprintf("eel exception %s: %v", t.Kind, t.Payload)
}

// New constructs a Thrown of the given kind carrying payload.
func New(kind Kind, payload any) *Thrown {
	return &Thrown{Kind: kind, Payload: payload}
}

// Retval wraps a function's result as a Return-kind Thrown, the
// mechanism RETX/RETXR use to force a return from inside nested
// try/catch frames (spec.md §4.6 "Exceptions").
func Retval(result any) *Thrown { return &Thrown{Kind: Return, Payload: result} }

// RetryRequest wraps OP_RETRY's unwind as a Retry-kind Thrown: the
// mechanism a bytecode catcher uses to rewind execution back to its
// originating TRY instruction instead of returning a value.
func RetryRequest() *Thrown { return &Thrown{Kind: Retry} }

// EndOfWork is the sentinel Thrown raised when the root frame is
// reached and there is no more VM work to dispatch.
func EndOfWork() *Thrown { return &Thrown{Kind: End} }

// YieldRequest is the cooperative reschedule sentinel. The single-
// threaded dispatcher treats catching it as a no-op continue.
func YieldRequest() *Thrown { return &Thrown{Kind: Yield} }
