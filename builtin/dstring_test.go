package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDStringWriteInsertDelete(t *testing.T) {
	d := NewDStringFrom("hello")
	assert.Equal(t, "hello", d.String())

	d.Insert(5, " world")
	assert.Equal(t, "hello world", d.String())

	d.Delete(0, 6)
	assert.Equal(t, "world", d.String())
}

func TestDStringWriteGrowsPastCapacity(t *testing.T) {
	d := NewDString()
	for i := 0; i < 200; i++ {
		d.Write("x")
	}
	assert.Equal(t, 200, d.Len())
}

func TestDStringClear(t *testing.T) {
	d := NewDStringFrom("abc")
	d.Clear()
	assert.Equal(t, 0, d.Len())
	assert.Equal(t, "", d.String())
}

func TestDStringInsertAtBoundaries(t *testing.T) {
	d := NewDStringFrom("bc")
	d.Insert(-5, "a") // clamps to 0
	assert.Equal(t, "abc", d.String())
	d.Insert(100, "d") // clamps to end
	assert.Equal(t, "abcd", d.String())
}
