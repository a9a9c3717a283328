package registry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/eel-lang/eel/values"
)

// Registry is the per-VM symbol table: the dense classid-indexed class
// vector, the name-keyed function table, and the cast matrix. Grounded
// on the teacher's Registry (sync.RWMutex-guarded maps, case-insensitive
// keyFor lookup, last-registration-wins RegisterFunction) but reshaped
// around a dense classid vector instead of a name-keyed class map, per
// spec.md §4.3.
type Registry struct {
	mu sync.RWMutex

	classes    []*ClassDef       // classes[cid] -> class-def, dense
	classByKey map[string]ClassID

	functions map[string]*Function

	Casts *CastMatrix

	// classClassID and stringClassID are filled in by Bootstrap; they
	// are needed to resolve the bootstrap/un-strap cycle (spec.md §4.3
	// "Bootstrap").
	classClassID  ClassID
	stringClassID ClassID
	bootstrapped  bool
}

// NewRegistry returns an empty registry ready for Bootstrap.
func NewRegistry() *Registry {
	return &Registry{
		classByKey: make(map[string]ClassID),
		functions:  make(map[string]*Function),
		Casts:      NewCastMatrix(),
	}
}

func keyFor(name string) string { return strings.ToLower(name) }

// RegisterClass appends def to the dense class vector, assigning it the
// next available ClassID, and indexes it by name for lookup. def.Name
// must already be a string objref once Bootstrap has run; during
// Bootstrap itself def.Name may be the nil value (see Bootstrap).
func (r *Registry) RegisterClass(def *ClassDef, name string) (ClassID, error) {
	if def == nil {
		return 0, fmt.Errorf("cannot register nil class definition")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	id := ClassID(len(r.classes))
	def.ID = id
	def.registered = true
	r.classes = append(r.classes, def)
	if name != "" {
		r.classByKey[keyFor(name)] = id
	}
	return id, nil
}

// Class retrieves a class-def by its dense id.
func (r *Registry) Class(id ClassID) (*ClassDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id < 0 || int(id) >= len(r.classes) {
		return nil, false
	}
	return r.classes[id], true
}

// ClassByName retrieves a class-def by its registered (case-insensitive)
// name.
func (r *Registry) ClassByName(name string) (*ClassDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.classByKey[keyFor(name)]
	if !ok {
		return nil, false
	}
	return r.classes[id], true
}

// NumClasses reports the size of the dense class vector.
func (r *Registry) NumClasses() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.classes)
}

// UnregisterClass runs def's Unregister hook (if any) and removes its
// name index entry. The class-id slot itself is left in place: the
// vector is dense and append-only, so a removed class's id is simply
// never looked up again by name. (spec.md does not describe compacting
// the class-ids space at runtime; module unload only needs the name to
// stop resolving and any module-held resources released.)
func (r *Registry) UnregisterClass(id ClassID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id < 0 || int(id) >= len(r.classes) {
		return
	}
	def := r.classes[id]
	for k, v := range r.classByKey {
		if v == id {
			delete(r.classByKey, k)
		}
	}
	if def.Unregister != nil {
		def.Unregister()
	}
}

// RegisterFunction installs fn under its own name, last registration
// wins (mirroring the teacher's RegisterFunction semantics, generalized
// from PHP's redeclaration rule to EEL's `register-cfunction`).
func (r *Registry) RegisterFunction(fn *Function) error {
	if fn == nil {
		return fmt.Errorf("cannot register nil function")
	}
	if fn.Name == "" {
		return fmt.Errorf("cannot register function with empty name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions[keyFor(fn.Name)] = fn
	return nil
}

// Function retrieves a function by case-insensitive name.
func (r *Registry) Function(name string) (*Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.functions[keyFor(name)]
	return fn, ok
}

// Bootstrap breaks the class/string cross-reference cycle of spec.md
// §4.3: the `class` class-def needs a name, which is a string instance,
// but the string class-def cannot exist before the class class does.
// The runtime registers both anonymously (name == nil) and back-fills
// the names once both exist, using newString to mint the two name
// instances.
func (r *Registry) Bootstrap(newString func(text string) *values.Object) {
	r.mu.Lock()
	if r.bootstrapped {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	classDef := NewClassDef(values.Nil(), AnyClassID)
	stringDef := NewClassDef(values.Nil(), AnyClassID)

	classID, _ := r.RegisterClass(classDef, "")
	stringID, _ := r.RegisterClass(stringDef, "")

	classNameObj := newString("class")
	stringNameObj := newString("string")

	r.mu.Lock()
	classDef.Name = values.ObjRef(classNameObj)
	stringDef.Name = values.ObjRef(stringNameObj)
	r.classByKey[keyFor("class")] = classID
	r.classByKey[keyFor("string")] = stringID
	r.classClassID = classID
	r.stringClassID = stringID
	r.bootstrapped = true
	r.mu.Unlock()
}

// ClassClassID and StringClassID return the bootstrap-assigned ids, or
// ok=false if Bootstrap has not run yet.
func (r *Registry) ClassClassID() (ClassID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.classClassID, r.bootstrapped
}

func (r *Registry) StringClassID() (ClassID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stringClassID, r.bootstrapped
}

// Unstrap performs the reverse "un-strap" procedure at shutdown
// (spec.md §4.3): the class and string names are disowned in a specific
// order (string first, since it is the dependent of the two — the class
// class-def's Name field is read during that disown if the string class
// itself needs to look up its own class-def) so the cycle does not
// leave either object's refcount artificially pinned.
func (r *Registry) Unstrap(disown func(values.Value)) {
	r.mu.Lock()
	classID, haveClass := r.classClassID, r.bootstrapped
	stringID, haveString := r.stringClassID, r.bootstrapped
	r.mu.Unlock()
	if !haveClass || !haveString {
		return
	}
	cd, _ := r.Class(classID)
	sd, _ := r.Class(stringID)
	if sd != nil {
		name := sd.Name
		sd.Name = values.Nil()
		disown(name)
	}
	if cd != nil {
		name := cd.Name
		cd.Name = values.Nil()
		disown(name)
	}
}
