package eelapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eel-lang/eel/builtin"
	"github.com/eel-lang/eel/registry"
	"github.com/eel-lang/eel/values"
)

type fakeLoader struct{}

func (fakeLoader) LoadFile(path string, cfg Config) (*CompiledModule, error) {
	return nil, nil
}

func (fakeLoader) LoadBuffer(src []byte, name string, cfg Config) (*CompiledModule, error) {
	return nil, nil
}

func TestOpenBootstrapsClassesAndClose(t *testing.T) {
	v, err := Open(fakeLoader{}, DefaultConfig())
	require.NoError(t, err)
	defer v.Close()

	assert.Greater(t, v.Registry.NumClasses(), 0)
	_, ok := v.Registry.ClassByName("string")
	assert.True(t, ok)
	_, ok = v.Registry.ClassByName("array")
	assert.True(t, ok)
}

func TestRegisterFunctionAndCallNamed(t *testing.T) {
	v, err := Open(fakeLoader{}, DefaultConfig())
	require.NoError(t, err)
	defer v.Close()

	double := &registry.Function{
		Name:     "double",
		Required: 1,
		Native: func(ctx registry.CallContext, args []values.Value) (values.Value, error) {
			return values.Integer(args[0].AsInteger() * 2), nil
		},
	}
	mod := builtin.NewModule("test")
	v.ExportFunction(mod, "double", double)

	result, err := v.CallNamed(mod, "double", "i", 21)
	require.NoError(t, err)
	assert.Equal(t, int32(42), result.AsInteger())
}

func TestStatsReportsOccupancy(t *testing.T) {
	v, err := Open(fakeLoader{}, DefaultConfig())
	require.NoError(t, err)
	defer v.Close()

	s := v.Stats()
	assert.GreaterOrEqual(t, s.HeapCap, 0)
	assert.NotEmpty(t, s.String())
}

func TestLogColorizesOnlyForTerminalWriter(t *testing.T) {
	var buf fakeWriter
	l := NewLog(&buf)
	l.Info("hello %s", "world")
	assert.Contains(t, buf.String(), "hello world")
	assert.Contains(t, buf.String(), "[info]")
	assert.NotContains(t, buf.String(), "\x1b[")
}

type fakeWriter struct {
	data []byte
}

func (w *fakeWriter) Write(p []byte) (int, error) {
	w.data = append(w.data, p...)
	return len(p), nil
}

func (w *fakeWriter) String() string { return string(w.data) }
