package eelapi

import (
	"fmt"

	"github.com/eel-lang/eel/builtin"
	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/memory"
	"github.com/eel-lang/eel/registry"
	"github.com/eel-lang/eel/values"
	"github.com/eel-lang/eel/vm"
)

// CompiledModule is what the excluded compiler/loader collaborator
// hands back across the Load/LoadBuffer boundary: bytecode functions
// plus the class/constant declarations the loaded source registered.
// This is the contract spec.md §1/§6 says the core "exposes ... but
// does not implement" — a ModuleLoader turns source text into one of
// these without this package ever importing a lexer or parser.
type CompiledModule struct {
	Name      string
	Functions []*registry.Function
	Classes   []*registry.ClassDef
	Init      *registry.Function // top-level init body, nil if none
	Exports   map[string]*registry.Function
}

// ModuleLoader is injected by the embedding host, mirroring
// vmfactory.CompilerFactory's injection-to-avoid-cycle pattern: the
// excluded compiler/module-loader lives in a separate module-path-aware
// package the host links in, never a dependency of eelapi itself.
type ModuleLoader interface {
	LoadFile(path string, cfg Config) (*CompiledModule, error)
	LoadBuffer(src []byte, name string, cfg Config) (*CompiledModule, error)
}

// VM is one open runtime instance: its own register heap, class
// registry, string pool and loaded-module table (spec.md §5: "Multiple
// independent VM instances may coexist in one process"). It is not
// reentrant and not goroutine-safe by contract, matching the single
// underlying vm.Machine it wraps.
type VM struct {
	Config Config

	Machine    *vm.Machine
	Registry   *registry.Registry
	StringPool *memory.StringPool
	ClassIDs   builtin.ClassIDs

	Loader  ModuleLoader
	Modules map[string]*builtin.Module

	Log   *Log
	owner uint64
}

var vmOwnerCounter uint64

func nextOwner() uint64 {
	vmOwnerCounter++
	return vmOwnerCounter
}

// Open constructs a registry, bootstraps the built-in classes, and
// returns a ready-to-use VM bound to loader and cfg. This package does
// no flag parsing of its own; cmd/eel is the layer that turns command
// line flags into a Config.
func Open(loader ModuleLoader, cfg Config) (*VM, error) {
	if cfg.StringCacheMax <= 0 {
		cfg.StringCacheMax = DefaultConfig().StringCacheMax
	}
	if cfg.HeapInitial <= 0 {
		cfg.HeapInitial = DefaultConfig().HeapInitial
	}

	reg := registry.NewRegistry()
	pool := memory.NewStringPool(cfg.StringCacheMax)
	owner := nextOwner()

	newString := func(text string) *values.Object {
		return pool.Intern(text, func(hash uint32, t string) *values.Object {
			sid, _ := reg.StringClassID()
			return &values.Object{
				ClassID:  int32(sid),
				Refcount: 0,
				VMOwner:  owner,
				Payload:  builtin.NewString(hash, t),
			}
		})
	}

	ids := builtin.Register(reg, newString)

	m := vm.New(reg, cfg.HeapInitial)

	return &VM{
		Config:     cfg,
		Machine:    m,
		Registry:   reg,
		StringPool: pool,
		ClassIDs:   ids,
		Loader:     loader,
		Modules:    make(map[string]*builtin.Module),
		Log:        NewLog(nil),
		owner:      owner,
	}, nil
}

// Close tears down the VM: it un-straps the class/string bootstrap
// cycle, flushes the string pool's resurrection cache, and retries the
// deadlist once so destructors that only needed their dependents gone
// get a final chance to run (spec.md §3 "deadlist").
func (v *VM) Close() {
	v.Registry.Unstrap(func(val values.Value) { v.Machine.Disown(val) })
	v.StringPool.FlushCache(func(obj *values.Object) {})
	v.Machine.Manager.RetryDeadlist(v.Machine)
}

// Load compiles modname through the injected ModuleLoader, registers
// its declared functions and classes, runs its init body unless
// Config.NoInit is set, and returns the resulting Module object.
func (v *VM) Load(modname string, flags Config) (*builtin.Module, error) {
	if v.Loader == nil {
		return nil, fmt.Errorf("eelapi: Load requires a ModuleLoader (none injected into Open)")
	}
	cm, err := v.Loader.LoadFile(modname, flags)
	if err != nil {
		return nil, err
	}
	return v.installModule(cm, flags)
}

// LoadBuffer is Load's in-memory counterpart, used by cmd/eel-repl to
// compile one entered line at a time.
func (v *VM) LoadBuffer(src []byte, name string, flags Config) (*builtin.Module, error) {
	if v.Loader == nil {
		return nil, fmt.Errorf("eelapi: LoadBuffer requires a ModuleLoader (none injected into Open)")
	}
	cm, err := v.Loader.LoadBuffer(src, name, flags)
	if err != nil {
		return nil, err
	}
	return v.installModule(cm, flags)
}

// classDefName extracts a class-def's name as a plain Go string, where
// it is held as an objref to an interned string instance (spec.md §4.3
// "class" bootstrap).
func classDefName(cd *registry.ClassDef) string {
	if !cd.Name.IsObjRef() {
		return ""
	}
	obj := cd.Name.Object()
	if obj == nil {
		return ""
	}
	if s, ok := obj.Payload.(*builtin.String); ok {
		return s.Text()
	}
	return ""
}

func (v *VM) installModule(cm *CompiledModule, flags Config) (*builtin.Module, error) {
	for _, fn := range cm.Functions {
		if err := v.Registry.RegisterFunction(fn); err != nil {
			return nil, err
		}
	}
	for _, cd := range cm.Classes {
		if _, err := v.Registry.RegisterClass(cd, classDefName(cd)); err != nil {
			return nil, err
		}
	}

	mod := builtin.NewModule(cm.Name)
	for name, fn := range cm.Exports {
		obj := &values.Object{
			ClassID:  int32(v.ClassIDs.Function),
			Refcount: 1,
			VMOwner:  v.owner,
			Payload:  builtin.NewFunction(fn, nil),
		}
		mod.ExportFunction(name, values.ObjRef(obj))
	}
	mod.Snapshot()
	v.Modules[cm.Name] = mod

	if !flags.NoInit && cm.Init != nil {
		if _, err := v.runTopLevel(cm.Init); err != nil {
			return nil, err
		}
	}
	return mod, nil
}

// runTopLevel pushes and drives a module's init body to completion the
// same way execCall drives an ordinary bytecode function, without going
// through the argument-stack calling convention (there is no caller
// frame at module-load time).
func (v *VM) runTopLevel(fn *registry.Function) (values.Value, error) {
	f, err := v.Machine.PushFrame(fn, nil, -1)
	if err != nil {
		return values.Nil(), err
	}
	if err := v.Machine.Run1(f); err != nil {
		if t, ok := err.(*exception.Thrown); ok {
			return values.Nil(), newInternalError(t)
		}
		return values.Nil(), err
	}
	return values.Nil(), nil
}
