package opcodes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []Instruction{
		{Opcode: OP_NOP, Layout: Layout0},
		{Opcode: OP_CALL, Layout: LayoutA, A: 7},
		{Opcode: OP_JUMP, Layout: LayoutSAx, SAx: -1200},
		{Opcode: OP_ADD, Layout: LayoutABC, A: 1, B: 2, C: 3},
		{Opcode: OP_BOP, Layout: LayoutABCD, A: 1, B: 2, C: 3, D: 4},
		{Opcode: OP_CCALLR, Layout: LayoutABxCx, A: 5, Bx: 1000, Cx: 2000},
		{Opcode: OP_SWITCH, Layout: LayoutABxSCx, A: 9, Bx: 300, SCx: -5},
		{Opcode: OP_BOPI, Layout: LayoutABCSDx, A: 1, B: 2, C: 3, SDx: -42},
	}
	for _, want := range cases {
		buf := Encode(nil, want)
		require.Equal(t, want.Layout.Size(), len(buf))
		got, n, err := Decode(buf, 0)
		require.NoError(t, err)
		assert.Equal(t, len(buf), n)
		assert.Equal(t, want, got)
	}
}

func TestDecodeTruncated(t *testing.T) {
	buf := []byte{byte(OP_ADD), 1, 2} // ABC needs 3 operand bytes, only 2 given
	_, _, err := Decode(buf, 0)
	assert.Error(t, err)
}

func TestDecodeOutOfRange(t *testing.T) {
	_, _, err := Decode([]byte{}, 0)
	assert.Error(t, err)
}

func TestLayoutSizeMatchesFieldWidth(t *testing.T) {
	assert.Equal(t, 1, Layout0.Size())
	assert.Equal(t, 2, LayoutA.Size())
	assert.Equal(t, 3, LayoutAx.Size())
	assert.Equal(t, 3, LayoutAB.Size())
	assert.Equal(t, 4, LayoutABC.Size())
	assert.Equal(t, 5, LayoutABCD.Size())
	assert.Equal(t, 6, LayoutABCDx.Size())
}

func TestOpcodeStringUnknown(t *testing.T) {
	assert.Equal(t, "OP(255)", Opcode(255).String())
	assert.Equal(t, "NOP", OP_NOP.String())
}

func TestSequentialDecode(t *testing.T) {
	var code []byte
	code = Encode(code, Instruction{Opcode: OP_PUSHI, Layout: LayoutSAx, SAx: 42})
	code = Encode(code, Instruction{Opcode: OP_CALL, Layout: LayoutA, A: 3})
	code = Encode(code, Instruction{Opcode: OP_RETURN, Layout: Layout0})

	offset := 0
	var ops []Opcode
	for offset < len(code) {
		inst, n, err := Decode(code, offset)
		require.NoError(t, err)
		ops = append(ops, inst.Opcode)
		offset += n
	}
	assert.Equal(t, []Opcode{OP_PUSHI, OP_CALL, OP_RETURN}, ops)
}
