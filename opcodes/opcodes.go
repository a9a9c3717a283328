// Package opcodes defines the EEL bytecode instruction set: the opcode
// enumeration, the closed set of operand layouts, and the in-memory
// Instruction representation the vm package dispatches over.
package opcodes

import "fmt"

// Opcode identifies a single bytecode instruction. Instruction size is a
// static function of the opcode: every Opcode has exactly one Layout.
type Opcode byte

// Control flow.
const (
	OP_NOP Opcode = iota
	OP_JUMP          // JUMP sAx
	OP_JUMPZ         // JUMPZ A,sBx
	OP_JUMPNZ        // JUMPNZ A,sBx
	OP_SWITCH        // SWITCH A,Bx,sCx
	OP_PRELOOP       // PRELOOP A,B,C (index,limit,step registers)
	OP_LOOP          // LOOP A,sBx
)

// Argument stack.
const (
	OP_PUSH Opcode = iota + 20
	OP_PUSH2
	OP_PUSH3
	OP_PUSH4
	OP_PUSHI   // PUSHI sAx
	OP_PHTRUE  // PHTRUE
	OP_PHFALSE // PHFALSE
	OP_PUSHNIL // PUSHNIL
	OP_PUSHC   // PUSHC Ax
	OP_PHVAR   // PHVAR Ax
	OP_PHUVAL  // PHUVAL A,B
	OP_PHARGS  // PHARGS
	OP_PUSHTUP // PUSHTUP
)

// Calls.
const (
	OP_CALL Opcode = iota + 40
	OP_CALLR
	OP_CCALL
	OP_CCALLR
	OP_RETURN
	OP_RETURNR
)

// Variables.
const (
	OP_INIT Opcode = iota + 60
	OP_INITI
	OP_INITNIL
	OP_INITC
	OP_ASSIGN
	OP_ASSIGNI
	OP_ASNNIL
	OP_ASSIGNC
	OP_CLEAN // CLEAN k (truncate the frame's clean-table to k entries)
)

// Upvalues.
const (
	OP_GETUVAL Opcode = iota + 80
	OP_SETUVAL
)

// Indexing.
const (
	OP_INDGETI Opcode = iota + 90
	OP_INDSETI
	OP_INDGET
	OP_INDSET
	OP_INDGETC
	OP_INDSETC
)

// Arithmetic.
const (
	OP_ADD Opcode = iota + 100
	OP_SUB
	OP_MUL
	OP_DIV
	OP_MOD
	OP_POWER
	OP_PHADD // push-direct ADD
	OP_PHSUB
	OP_PHMUL
	OP_BOP   // BOP A,B,C,D (operator id in C)
	OP_IPBOP // in-place BOP
	OP_BOPS  // BOP with a static operand
	OP_BOPI  // BOP with an immediate operand
	OP_BOPC  // BOP with a constant operand
)

// Casts.
const (
	OP_CASTR Opcode = iota + 130
	OP_CASTI
	OP_CASTB
	OP_CAST // target class-id in register
	OP_TYPEOF
	OP_SIZEOF
	OP_WEAKREF // produce an unwired weakref placeholder
)

// Construction.
const (
	OP_NEW Opcode = iota + 150
	OP_CLONE
)

// Exceptions.
const (
	OP_TRY Opcode = iota + 160
	OP_UNTRY
	OP_THROW
	OP_RETRY
	OP_RETX
	OP_RETXR
)

// Argument introspection (tuple/optional contract, spec.md §4.6).
const (
	OP_ARGC Opcode = iota + 180
	OP_TUPC
	OP_SPEC
	OP_TSPEC
)

// Layout is the closed set of static operand shapes an Opcode may carry.
// Lower-case single letter denotes an 8-bit unsigned field; an appended
// 'x' denotes a 16-bit little-endian field; a prefixed 's' denotes a
// signed field of the field it prefixes.
type Layout byte

const (
	Layout0 Layout = iota
	LayoutA
	LayoutAx
	LayoutAB
	LayoutABC
	LayoutABCD
	LayoutSAx
	LayoutABx
	LayoutASBx
	LayoutAxBx
	LayoutAxSBx
	LayoutABCx
	LayoutABSCx
	LayoutABxCx
	LayoutABxSCx
	LayoutABCDx
	LayoutABCSDx
)

// Size returns the encoded instruction size in bytes: one opcode byte
// plus the operand bytes the layout demands.
func (l Layout) Size() int {
	switch l {
	case Layout0:
		return 1
	case LayoutA:
		return 2
	case LayoutAx, LayoutSAx:
		return 3
	case LayoutAB:
		return 3
	case LayoutABC:
		return 4
	case LayoutABCD:
		return 5
	case LayoutABx, LayoutASBx:
		return 4
	case LayoutAxBx, LayoutAxSBx:
		return 5
	case LayoutABCx, LayoutABSCx:
		return 5
	case LayoutABxCx, LayoutABxSCx:
		return 6
	case LayoutABCDx:
		return 6
	case LayoutABCSDx:
		return 6
	default:
		return 1
	}
}

var opcodeLayouts = map[Opcode]Layout{
	OP_NOP:     Layout0,
	OP_JUMP:    LayoutSAx,
	OP_JUMPZ:   LayoutASBx,
	OP_JUMPNZ:  LayoutASBx,
	OP_SWITCH:  LayoutABxSCx,
	OP_PRELOOP: LayoutABC,
	OP_LOOP:    LayoutASBx,

	OP_PUSH:    Layout0,
	OP_PUSH2:   Layout0,
	OP_PUSH3:   Layout0,
	OP_PUSH4:   Layout0,
	OP_PUSHI:   LayoutSAx,
	OP_PHTRUE:  Layout0,
	OP_PHFALSE: Layout0,
	OP_PUSHNIL: Layout0,
	OP_PUSHC:   LayoutAx,
	OP_PHVAR:   LayoutAx,
	OP_PHUVAL:  LayoutAB,
	OP_PHARGS:  Layout0,
	OP_PUSHTUP: Layout0,

	OP_CALL:    LayoutA,
	OP_CALLR:   LayoutAB,
	OP_CCALL:   LayoutABx,
	OP_CCALLR:  LayoutABxCx,
	OP_RETURN:  Layout0,
	OP_RETURNR: LayoutA,

	OP_INIT:    LayoutA,
	OP_INITI:   LayoutASBx,
	OP_INITNIL: LayoutA,
	OP_INITC:   LayoutAB,
	OP_ASSIGN:  LayoutA,
	OP_ASSIGNI: LayoutASBx,
	OP_ASNNIL:  LayoutA,
	OP_ASSIGNC: LayoutAB,
	OP_CLEAN:   LayoutA,

	OP_GETUVAL: LayoutABC,
	OP_SETUVAL: LayoutABC,

	OP_INDGETI: LayoutABC,
	OP_INDSETI: LayoutABC,
	OP_INDGET:  LayoutAB,
	OP_INDSET:  LayoutABC,
	OP_INDGETC: LayoutABx,
	OP_INDSETC: LayoutABxCx,

	OP_ADD:   LayoutABC,
	OP_SUB:   LayoutABC,
	OP_MUL:   LayoutABC,
	OP_DIV:   LayoutABC,
	OP_MOD:   LayoutABC,
	OP_POWER: LayoutABC,
	OP_PHADD: LayoutAB,
	OP_PHSUB: LayoutAB,
	OP_PHMUL: LayoutAB,
	OP_BOP:   LayoutABCD,
	OP_IPBOP: LayoutABC,
	OP_BOPS:  LayoutABCD,
	OP_BOPI:  LayoutABCSDx,
	OP_BOPC:  LayoutABxCx,

	OP_CASTR:   LayoutA,
	OP_CASTI:   LayoutA,
	OP_CASTB:   LayoutA,
	OP_CAST:    LayoutAB,
	OP_TYPEOF:  LayoutAB,
	OP_SIZEOF:  LayoutAB,
	OP_WEAKREF: LayoutAB,

	OP_NEW:   LayoutAB,
	OP_CLONE: LayoutAB,

	OP_TRY:   LayoutAxBx,
	OP_UNTRY: LayoutAx,
	OP_THROW: LayoutA,
	OP_RETRY: Layout0,
	OP_RETX:  Layout0,
	OP_RETXR: LayoutA,

	OP_ARGC:  LayoutA,
	OP_TUPC:  LayoutA,
	OP_SPEC:  LayoutA,
	OP_TSPEC: LayoutA,
}

// Layout reports the operand layout for op. Opcodes with no registered
// layout default to Layout0 (NOP-shaped); the decoder treats that as a
// decode error rather than a silent no-op unless op is genuinely OP_NOP.
func (op Opcode) Layout() Layout {
	if l, ok := opcodeLayouts[op]; ok {
		return l
	}
	return Layout0
}

// Instruction is the decoded, in-memory form of a single bytecode
// instruction. Only the fields relevant to Opcode.Layout() are
// meaningful; the rest are zero.
type Instruction struct {
	Opcode Opcode
	Layout Layout

	A, B, C, D     uint8
	Ax, Bx, Cx, Dx uint16
	SAx, SBx, SCx  int16
	SDx            int16
}

// Decode reads one instruction from code starting at offset, returning
// the instruction and the number of bytes consumed.
func Decode(code []byte, offset int) (Instruction, int, error) {
	if offset >= len(code) {
		return Instruction{}, 0, fmt.Errorf("opcodes: decode at %d: out of range (len=%d)", offset, len(code))
	}
	op := Opcode(code[offset])
	if _, ok := opcodeLayouts[op]; !ok {
		return Instruction{}, 0, fmt.Errorf("opcodes: decode at %d: unknown opcode %s", offset, op)
	}
	layout := op.Layout()
	size := layout.Size()
	if offset+size > len(code) {
		return Instruction{}, 0, fmt.Errorf("opcodes: decode %s at %d: truncated instruction (need %d bytes)", op, offset, size)
	}
	inst := Instruction{Opcode: op, Layout: layout}
	p := code[offset+1:]
	readU8 := func(i int) uint8 { return p[i] }
	readU16 := func(i int) uint16 { return uint16(p[i]) | uint16(p[i+1])<<8 }
	switch layout {
	case Layout0:
	case LayoutA:
		inst.A = readU8(0)
	case LayoutAx:
		inst.Ax = readU16(0)
	case LayoutSAx:
		inst.SAx = int16(readU16(0))
	case LayoutAB:
		inst.A, inst.B = readU8(0), readU8(1)
	case LayoutABC:
		inst.A, inst.B, inst.C = readU8(0), readU8(1), readU8(2)
	case LayoutABCD:
		inst.A, inst.B, inst.C, inst.D = readU8(0), readU8(1), readU8(2), readU8(3)
	case LayoutABx:
		inst.A = readU8(0)
		inst.Bx = readU16(1)
	case LayoutASBx:
		inst.A = readU8(0)
		inst.SBx = int16(readU16(1))
	case LayoutAxBx:
		inst.Ax = readU16(0)
		inst.Bx = readU16(2)
	case LayoutAxSBx:
		inst.Ax = readU16(0)
		inst.SBx = int16(readU16(2))
	case LayoutABCx:
		inst.A, inst.B = readU8(0), readU8(1)
		inst.Cx = readU16(2)
	case LayoutABSCx:
		inst.A, inst.B = readU8(0), readU8(1)
		inst.SCx = int16(readU16(2))
	case LayoutABxCx:
		inst.A = readU8(0)
		inst.Bx = readU16(1)
		inst.Cx = readU16(3)
	case LayoutABxSCx:
		inst.A = readU8(0)
		inst.Bx = readU16(1)
		inst.SCx = int16(readU16(3))
	case LayoutABCDx:
		inst.A, inst.B, inst.C = readU8(0), readU8(1), readU8(2)
		inst.Dx = readU16(3)
	case LayoutABCSDx:
		inst.A, inst.B, inst.C = readU8(0), readU8(1), readU8(2)
		inst.SDx = int16(readU16(3))
	}
	return inst, size, nil
}

// Encode appends inst's byte-code encoding to buf and returns the result.
func Encode(buf []byte, inst Instruction) []byte {
	buf = append(buf, byte(inst.Opcode))
	writeU16 := func(v uint16) {
		buf = append(buf, byte(v), byte(v>>8))
	}
	switch inst.Layout {
	case Layout0:
	case LayoutA:
		buf = append(buf, inst.A)
	case LayoutAx:
		writeU16(inst.Ax)
	case LayoutSAx:
		writeU16(uint16(inst.SAx))
	case LayoutAB:
		buf = append(buf, inst.A, inst.B)
	case LayoutABC:
		buf = append(buf, inst.A, inst.B, inst.C)
	case LayoutABCD:
		buf = append(buf, inst.A, inst.B, inst.C, inst.D)
	case LayoutABx:
		buf = append(buf, inst.A)
		writeU16(inst.Bx)
	case LayoutASBx:
		buf = append(buf, inst.A)
		writeU16(uint16(inst.SBx))
	case LayoutAxBx:
		writeU16(inst.Ax)
		writeU16(inst.Bx)
	case LayoutAxSBx:
		writeU16(inst.Ax)
		writeU16(uint16(inst.SBx))
	case LayoutABCx:
		buf = append(buf, inst.A, inst.B)
		writeU16(inst.Cx)
	case LayoutABSCx:
		buf = append(buf, inst.A, inst.B)
		writeU16(uint16(inst.SCx))
	case LayoutABxCx:
		buf = append(buf, inst.A)
		writeU16(inst.Bx)
		writeU16(inst.Cx)
	case LayoutABxSCx:
		buf = append(buf, inst.A)
		writeU16(inst.Bx)
		writeU16(uint16(inst.SCx))
	case LayoutABCDx:
		buf = append(buf, inst.A, inst.B, inst.C)
		writeU16(inst.Dx)
	case LayoutABCSDx:
		buf = append(buf, inst.A, inst.B, inst.C)
		writeU16(uint16(inst.SDx))
	}
	return buf
}

var opcodeNames = map[Opcode]string{
	OP_NOP: "NOP", OP_JUMP: "JUMP", OP_JUMPZ: "JUMPZ", OP_JUMPNZ: "JUMPNZ",
	OP_SWITCH: "SWITCH", OP_PRELOOP: "PRELOOP", OP_LOOP: "LOOP",
	OP_PUSH: "PUSH", OP_PUSH2: "PUSH2", OP_PUSH3: "PUSH3", OP_PUSH4: "PUSH4",
	OP_PUSHI: "PUSHI", OP_PHTRUE: "PHTRUE", OP_PHFALSE: "PHFALSE", OP_PUSHNIL: "PUSHNIL",
	OP_PUSHC: "PUSHC", OP_PHVAR: "PHVAR", OP_PHUVAL: "PHUVAL", OP_PHARGS: "PHARGS", OP_PUSHTUP: "PUSHTUP",
	OP_CALL: "CALL", OP_CALLR: "CALLR", OP_CCALL: "CCALL", OP_CCALLR: "CCALLR",
	OP_RETURN: "RETURN", OP_RETURNR: "RETURNR",
	OP_INIT: "INIT", OP_INITI: "INITI", OP_INITNIL: "INITNIL", OP_INITC: "INITC",
	OP_ASSIGN: "ASSIGN", OP_ASSIGNI: "ASSIGNI", OP_ASNNIL: "ASNNIL", OP_ASSIGNC: "ASSIGNC",
	OP_CLEAN: "CLEAN",
	OP_GETUVAL: "GETUVAL", OP_SETUVAL: "SETUVAL",
	OP_INDGETI: "INDGETI", OP_INDSETI: "INDSETI", OP_INDGET: "INDGET", OP_INDSET: "INDSET",
	OP_INDGETC: "INDGETC", OP_INDSETC: "INDSETC",
	OP_ADD: "ADD", OP_SUB: "SUB", OP_MUL: "MUL", OP_DIV: "DIV", OP_MOD: "MOD", OP_POWER: "POWER",
	OP_PHADD: "PHADD", OP_PHSUB: "PHSUB", OP_PHMUL: "PHMUL",
	OP_BOP: "BOP", OP_IPBOP: "IPBOP", OP_BOPS: "BOPS", OP_BOPI: "BOPI", OP_BOPC: "BOPC",
	OP_CASTR: "CASTR", OP_CASTI: "CASTI", OP_CASTB: "CASTB", OP_CAST: "CAST",
	OP_TYPEOF: "TYPEOF", OP_SIZEOF: "SIZEOF", OP_WEAKREF: "WEAKREF",
	OP_NEW: "NEW", OP_CLONE: "CLONE",
	OP_TRY: "TRY", OP_UNTRY: "UNTRY", OP_THROW: "THROW", OP_RETRY: "RETRY", OP_RETX: "RETX", OP_RETXR: "RETXR",
	OP_ARGC: "ARGC", OP_TUPC: "TUPC", OP_SPEC: "SPEC", OP_TSPEC: "TSPEC",
}

// String implements fmt.Stringer for debug rendering (disassembly).
func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OP(%d)", byte(op))
}

func (inst Instruction) String() string {
	switch inst.Layout {
	case Layout0:
		return inst.Opcode.String()
	case LayoutA:
		return fmt.Sprintf("%s %d", inst.Opcode, inst.A)
	case LayoutAx:
		return fmt.Sprintf("%s %d", inst.Opcode, inst.Ax)
	case LayoutSAx:
		return fmt.Sprintf("%s %d", inst.Opcode, inst.SAx)
	case LayoutAB:
		return fmt.Sprintf("%s %d,%d", inst.Opcode, inst.A, inst.B)
	case LayoutABC:
		return fmt.Sprintf("%s %d,%d,%d", inst.Opcode, inst.A, inst.B, inst.C)
	case LayoutABCD:
		return fmt.Sprintf("%s %d,%d,%d,%d", inst.Opcode, inst.A, inst.B, inst.C, inst.D)
	case LayoutABx:
		return fmt.Sprintf("%s %d,%d", inst.Opcode, inst.A, inst.Bx)
	case LayoutASBx:
		return fmt.Sprintf("%s %d,%d", inst.Opcode, inst.A, inst.SBx)
	case LayoutAxBx:
		return fmt.Sprintf("%s %d,%d", inst.Opcode, inst.Ax, inst.Bx)
	case LayoutAxSBx:
		return fmt.Sprintf("%s %d,%d", inst.Opcode, inst.Ax, inst.SBx)
	case LayoutABCx:
		return fmt.Sprintf("%s %d,%d,%d", inst.Opcode, inst.A, inst.B, inst.Cx)
	case LayoutABSCx:
		return fmt.Sprintf("%s %d,%d,%d", inst.Opcode, inst.A, inst.B, inst.SCx)
	case LayoutABxCx:
		return fmt.Sprintf("%s %d,%d,%d", inst.Opcode, inst.A, inst.Bx, inst.Cx)
	case LayoutABxSCx:
		return fmt.Sprintf("%s %d,%d,%d", inst.Opcode, inst.A, inst.Bx, inst.SCx)
	case LayoutABCDx:
		return fmt.Sprintf("%s %d,%d,%d,%d", inst.Opcode, inst.A, inst.B, inst.C, inst.Dx)
	case LayoutABCSDx:
		return fmt.Sprintf("%s %d,%d,%d,%d", inst.Opcode, inst.A, inst.B, inst.C, inst.SDx)
	default:
		return inst.Opcode.String()
	}
}
