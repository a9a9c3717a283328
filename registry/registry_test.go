package registry

import (
	"testing"

	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetamethodStringNaming(t *testing.T) {
	assert.Equal(t, "getindex", Getindex.String())
	assert.Equal(t, "add", Add.String())
	assert.Equal(t, "ip-add", IPAdd.String())
	assert.Equal(t, "r-add", RAdd.String())
	assert.Equal(t, "v-add", VAdd.String())
	assert.Equal(t, "ipv-add", IPVAdd.String())
	assert.Equal(t, "rv-add", RVAdd.String())
	assert.Equal(t, "ipvr-add", IPVRAdd.String())
	assert.Equal(t, "power", Power.String())
	assert.Equal(t, "ipvr-power", IPVRPower.String())
}

func TestMetamethodsAreDistinctAndValid(t *testing.T) {
	seen := map[string]bool{}
	for m := Metamethod(0); int(m) < NumMetamethods; m++ {
		assert.True(t, m.Valid())
		name := m.String()
		assert.False(t, seen[name], "duplicate metamethod name %q", name)
		seen[name] = true
	}
}

func TestNoMetamethodTrapThrows(t *testing.T) {
	cd := NewClassDef(values.Nil(), AnyClassID)
	ctx := &stubContext{}
	obj := &values.Object{}
	_, err := cd.Metamethods[Getindex](ctx, obj, nil)
	require.Error(t, err)
	thrown, ok := err.(*exception.Thrown)
	require.True(t, ok)
	assert.Equal(t, exception.NoMetamethod, thrown.Kind)
	require.Len(t, ctx.thrown, 1)
}

func TestSetInstallsAndHasReportsImplemented(t *testing.T) {
	cd := NewClassDef(values.Nil(), AnyClassID)
	assert.False(t, cd.Has(Getindex))
	cd.Set(Getindex, func(ctx CallContext, self *values.Object, args []values.Value) (values.Value, error) {
		return values.Integer(1), nil
	})
	assert.True(t, cd.Has(Getindex))
	v, err := cd.Metamethods[Getindex](nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), v.AsInteger())
}

func TestRegisterClassAssignsDenseIDs(t *testing.T) {
	r := NewRegistry()
	a := NewClassDef(values.Nil(), AnyClassID)
	b := NewClassDef(values.Nil(), AnyClassID)
	idA, err := r.RegisterClass(a, "alpha")
	require.NoError(t, err)
	idB, err := r.RegisterClass(b, "beta")
	require.NoError(t, err)
	assert.Equal(t, ClassID(0), idA)
	assert.Equal(t, ClassID(1), idB)
	assert.Equal(t, 2, r.NumClasses())

	got, ok := r.ClassByName("ALPHA")
	require.True(t, ok)
	assert.Same(t, a, got)
}

func TestRegisterFunctionLastWins(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterFunction(&Function{Name: "f", Required: 1}))
	require.NoError(t, r.RegisterFunction(&Function{Name: "F", Required: 2}))
	fn, ok := r.Function("f")
	require.True(t, ok)
	assert.Equal(t, 2, fn.Required)
}

func TestRegisterFunctionRejectsNilOrEmpty(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.RegisterFunction(nil))
	assert.Error(t, r.RegisterFunction(&Function{}))
}

func TestCastMatrixExactAndBulkRegistration(t *testing.T) {
	m := NewCastMatrix()
	identity := func(ctx CallContext, v values.Value) (values.Value, error) { return v, nil }
	m.Register(ClassID(1), ClassID(2), identity)
	assert.NotNil(t, m.Lookup(1, 2))
	assert.Nil(t, m.Lookup(2, 1))

	fallback := func(ctx CallContext, v values.Value) (values.Value, error) { return values.Nil(), nil }
	m.RegisterAny(ClassID(3), fallback, []ClassID{1, 2, 4})
	// 1->3 and 2->3 and 4->3 should now exist; 1->2 is untouched.
	assert.NotNil(t, m.Lookup(1, 3))
	assert.NotNil(t, m.Lookup(4, 3))
	assert.NotNil(t, m.Lookup(1, 2))
}

func TestBootstrapResolvesClassStringCycle(t *testing.T) {
	r := NewRegistry()
	made := map[string]*values.Object{}
	newString := func(text string) *values.Object {
		o := &values.Object{Refcount: 1}
		made[text] = o
		return o
	}
	r.Bootstrap(newString)

	classID, ok := r.ClassClassID()
	require.True(t, ok)
	stringID, ok := r.StringClassID()
	require.True(t, ok)
	assert.NotEqual(t, classID, stringID)

	cd, ok := r.Class(classID)
	require.True(t, ok)
	assert.Same(t, made["class"], cd.Name.Object())

	sd, ok := r.Class(stringID)
	require.True(t, ok)
	assert.Same(t, made["string"], sd.Name.Object())

	byName, ok := r.ClassByName("class")
	require.True(t, ok)
	assert.Equal(t, classID, byName.ID)
}

func TestBootstrapIsIdempotent(t *testing.T) {
	r := NewRegistry()
	calls := 0
	newString := func(text string) *values.Object {
		calls++
		return &values.Object{}
	}
	r.Bootstrap(newString)
	r.Bootstrap(newString)
	assert.Equal(t, 2, calls, "second Bootstrap call must be a no-op")
}

func TestUnstrapDisownsBothNames(t *testing.T) {
	r := NewRegistry()
	newString := func(text string) *values.Object { return &values.Object{Refcount: 1} }
	r.Bootstrap(newString)

	var disowned []values.Value
	r.Unstrap(func(v values.Value) { disowned = append(disowned, v) })
	assert.Len(t, disowned, 2)

	classID, _ := r.ClassClassID()
	cd, _ := r.Class(classID)
	assert.True(t, cd.Name.IsNil())
}

type stubContext struct {
	thrown []*exception.Thrown
}

func (s *stubContext) Own(obj *values.Object)    {}
func (s *stubContext) Disown(v values.Value)     {}
func (s *stubContext) Receive(obj *values.Object) {}
func (s *stubContext) Registry() *Registry       { return nil }
func (s *stubContext) Throw(t *exception.Thrown)  { s.thrown = append(s.thrown, t) }
