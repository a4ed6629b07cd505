package inst

import "fmt"

// Kind identifies the semantics of an opcode-table row. Several rows may share
// a kind (the LD D,S block is split across rows to keep HALT unambiguous) and
// the dispatch table in the controller sequencer is indexed by it.
type Kind uint8

// Kind constants for the Game Boy base instruction set, in table order.
//
// Placeholder letters in the mnemonics name instruction fields:
//
//	D  destination register (bits 5-3)   S  source register (bits 2-0)
//	R  register pair (bits 5-4)          F  condition (bits 4-3)
//	N  immediate operand, or RST vector
const (
	Unknown Kind = iota

	NOP
	LD_N_SP // LD (N),SP
	STOP
	JR
	JR_F
	LD_R_NN // LD R,N with a 16-bit immediate
	ADD_HL_R
	LD_IR_A // LD (R),A
	LD_A_IR // LD A,(R)
	LDI_HL_A
	LDI_A_HL
	LDD_HL_A
	LDD_A_HL
	INC_R
	DEC_R
	INC_D
	DEC_D
	LD_D_N
	RLCA
	RRCA
	RLA
	RRA
	DAA
	CPL
	SCF
	CCF

	LD_D_S
	HALT
	ALU_A_S
	ALU_A_N

	RET_F
	LDH_N_A // LD (FF00+N),A
	ADD_SP_N
	LDH_A_N // LD A,(FF00+N)
	LD_HL_SPN
	POP
	RET
	RETI
	JP_HL
	LD_SP_HL
	JP_F
	LD_C_A // LD (C),A
	LD_NN_A
	LD_A_C // LD A,(C)
	LD_A_NN
	JP
	PREFIX_CB
	DI
	EI
	CALL_F
	PUSH
	CALL
	RST

	KindCount
)

func (k Kind) String() string {
	if k < KindCount && Catalog[k].Mnemonic != "" {
		return Catalog[k].Mnemonic
	}
	return fmt.Sprintf("KIND(%d)", k)
}

// Op is the bus activity of one machine cycle.
type Op uint8

const (
	M1R  Op = iota // opcode fetch
	RD             // operand read at PC
	MR             // data read through an address register
	WR             // data write
	WAIT           // internal, no bus activity
)

var opNames = [...]string{"M1R", "RD", "MR", "WR", "WAIT"}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("OP(%d)", o)
}

// parseOp returns the cycle tag named by s.
func parseOp(s string) (Op, bool) {
	for i, n := range opNames {
		if s == n {
			return Op(i), true
		}
	}
	return 0, false
}

// Decoded is a complete instruction: the matched row and the bytes that make
// it up.
type Decoded struct {
	Row      int
	Kind     Kind
	Mnemonic string
	Opcode   uint8
	Operands []uint8
}

// Dest returns the destination register field (bits 5-3).
func (d Decoded) Dest() uint8 {
	return (d.Opcode >> 3) & 0x07
}

// Src returns the source register field (bits 2-0).
func (d Decoded) Src() uint8 {
	return d.Opcode & 0x07
}

// Pair returns the register pair field (bits 5-4).
func (d Decoded) Pair() uint8 {
	return (d.Opcode >> 4) & 0x03
}

// Cond returns the condition field (bits 4-3).
func (d Decoded) Cond() uint8 {
	return (d.Opcode >> 3) & 0x03
}

// ALU returns the ALU operation field (bits 5-3).
func (d Decoded) ALU() uint8 {
	return (d.Opcode >> 3) & 0x07
}

// Imm8 returns the first operand byte.
func (d Decoded) Imm8() uint8 {
	if len(d.Operands) == 0 {
		return 0
	}
	return d.Operands[0]
}

// Imm16 returns the operand bytes as a little-endian word.
func (d Decoded) Imm16() uint16 {
	switch len(d.Operands) {
	case 0:
		return 0
	case 1:
		return uint16(d.Operands[0])
	}
	return uint16(d.Operands[1])<<8 | uint16(d.Operands[0])
}

// Bytes returns the encoding of the instruction.
func (d Decoded) Bytes() []uint8 {
	return append([]uint8{d.Opcode}, d.Operands...)
}
