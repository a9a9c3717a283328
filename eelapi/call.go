package eelapi

import (
	"fmt"

	"github.com/eel-lang/eel/builtin"
	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/values"
)

// Call runs a pre-armed call (spec.md §6 "call(VM, function): runs a
// pre-armed call, arguments already pushed"): fn must already have its
// arguments sitting on the machine's argument stack via whatever PUSH
// calls the caller made. For a native function Call returns its result;
// a bytecode function runs to completion but its return value is not
// delivered back, and Call returns nil for it.
func (v *VM) Call(fn *builtin.Function, argc int) (values.Value, error) {
	result, err := v.dispatchCall(fn, argc)
	if err != nil {
		return values.Nil(), err
	}
	return result, nil
}

func (v *VM) dispatchCall(fn *builtin.Function, argc int) (values.Value, error) {
	argv := v.Machine.PopArgsPublic(argc)
	def := fn.Def
	if def.IsNative() {
		result, err := def.Native(v.Machine, argv)
		if err != nil {
			return values.Nil(), wrapEelError(err)
		}
		return result, nil
	}

	f, err := v.Machine.PushFrame(def, argv, -1)
	if err != nil {
		return values.Nil(), wrapEelError(err)
	}
	if err := v.Machine.Run1(f); err != nil {
		return values.Nil(), wrapEelError(err)
	}
	return values.Nil(), nil
}

// CallNamed implements spec.md §6's `callnf` convenience entry point:
// find name in mod's export table, push args per format, and call it
// through Call, returning what Call returns (a native function's
// result; nil for a bytecode function). Format characters mirror the
// spec's table: R (skipped; no result index is captured), n (nil),
// i (int), r (real), b (bool), s (Go string,
// interned through the VM's string pool), o (already-built object
// value), v (raw values.Value passed straight through).
func (v *VM) CallNamed(mod *builtin.Module, name, format string, args ...any) (values.Value, error) {
	exported, ok := mod.Lookup(name)
	if !ok {
		return values.Nil(), exception.New(exception.FunctionNotFound, name)
	}
	if !exported.IsObjRef() {
		return values.Nil(), exception.New(exception.NeedObject, name)
	}
	fn, ok := exported.Object().Payload.(*builtin.Function)
	if !ok {
		return values.Nil(), exception.New(exception.WrongType, name)
	}

	argi := 0
	pushed := 0
	for _, ch := range format {
		switch ch {
		case 'R':
			continue
		case 'n':
			v.Machine.PushArgPublic(values.Nil())
		case 'i':
			i, ok := args[argi].(int)
			if !ok {
				return values.Nil(), fmt.Errorf("eelapi: callnf format 'i' expects int, got %T", args[argi])
			}
			v.Machine.PushArgPublic(values.Integer(int32(i)))
			argi++
		case 'r':
			r, ok := args[argi].(float64)
			if !ok {
				return values.Nil(), fmt.Errorf("eelapi: callnf format 'r' expects float64, got %T", args[argi])
			}
			v.Machine.PushArgPublic(values.Real(r))
			argi++
		case 'b':
			b, ok := args[argi].(bool)
			if !ok {
				return values.Nil(), fmt.Errorf("eelapi: callnf format 'b' expects bool, got %T", args[argi])
			}
			v.Machine.PushArgPublic(values.Bool(b))
			argi++
		case 's':
			s, ok := args[argi].(string)
			if !ok {
				return values.Nil(), fmt.Errorf("eelapi: callnf format 's' expects string, got %T", args[argi])
			}
			v.Machine.PushArgPublic(values.ObjRef(v.internString(s)))
			argi++
		case 'o':
			o, ok := args[argi].(*values.Object)
			if !ok {
				return values.Nil(), fmt.Errorf("eelapi: callnf format 'o' expects *values.Object, got %T", args[argi])
			}
			v.Machine.PushArgPublic(values.ObjRef(o))
			argi++
		case 'v':
			val, ok := args[argi].(values.Value)
			if !ok {
				return values.Nil(), fmt.Errorf("eelapi: callnf format 'v' expects values.Value, got %T", args[argi])
			}
			v.Machine.PushArgPublic(val)
			argi++
		default:
			return values.Nil(), fmt.Errorf("eelapi: unknown callnf format character %q", ch)
		}
		pushed++
	}

	return v.Call(fn, pushed)
}

// internString mints (or reuses) an interned string object for s,
// mirroring the newString closure Open builds for bootstrap.
func (v *VM) internString(s string) *values.Object {
	return v.StringPool.Intern(s, func(hash uint32, text string) *values.Object {
		sid, _ := v.Registry.StringClassID()
		return &values.Object{
			ClassID:  int32(sid),
			Refcount: 0,
			VMOwner:  v.owner,
			Payload:  builtin.NewString(hash, text),
		}
	})
}

func wrapEelError(err error) error {
	if t, ok := err.(*exception.Thrown); ok {
		if t.Kind == exception.Internal {
			return newInternalError(t)
		}
		return t
	}
	return err
}
