package builtin

import (
	"testing"

	"github.com/eel-lang/eel/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func h(key values.Value) uint64 { return values.Hash(key, nil) }

func TestTableSetGetDelete(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Set(h(values.Integer(1)), values.Integer(1), values.Integer(100), IdentityKeyEqual))
	require.NoError(t, tbl.Set(h(values.Integer(2)), values.Integer(2), values.Integer(200), IdentityKeyEqual))

	v, found, err := tbl.Get(h(values.Integer(1)), values.Integer(1), IdentityKeyEqual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int32(100), v.AsInteger())

	_, found, err = tbl.Get(h(values.Integer(3)), values.Integer(3), IdentityKeyEqual)
	require.NoError(t, err)
	assert.False(t, found)

	removed, found, err := tbl.Delete(h(values.Integer(1)), values.Integer(1), IdentityKeyEqual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int32(100), removed.AsInteger())
	assert.Equal(t, 1, tbl.Len())
}

func TestTableOverwriteExistingKey(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Set(h(values.Integer(1)), values.Integer(1), values.Integer(1), IdentityKeyEqual))
	require.NoError(t, tbl.Set(h(values.Integer(1)), values.Integer(1), values.Integer(2), IdentityKeyEqual))
	assert.Equal(t, 1, tbl.Len())
	v, _, _ := tbl.Get(h(values.Integer(1)), values.Integer(1), IdentityKeyEqual)
	assert.Equal(t, int32(2), v.AsInteger())
}

func TestTableMaintainsHashOrder(t *testing.T) {
	tbl := NewTable()
	keys := []int32{50, 10, 30, 20, 40}
	for _, k := range keys {
		require.NoError(t, tbl.Set(h(values.Integer(k)), values.Integer(k), values.Integer(k), IdentityKeyEqual))
	}
	entries := tbl.Entries()
	for i := 1; i < len(entries); i++ {
		assert.LessOrEqual(t, h(entries[i-1].Key), h(entries[i].Key))
	}
}
