package cpu

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRegister is returned for register names the register file cannot
// resolve, including the memory-indirect (HL) slot of the multiplexer.
var ErrUnknownRegister = errors.New("unknown register")

// State is the register file. 8-bit registers are plain bytes; SP and PC are
// 16-bit. W and Z are the internal temporaries of the fetch unit.
type State struct {
	A, F, B, C, D, E, H, L uint8
	W, Z, IR               uint8
	SP, PC                 uint16
}

// Equal returns true if two states are identical.
func (s State) Equal(o State) bool {
	return s == o
}

// Reg names a register or register pair.
type Reg uint8

const (
	RegNone Reg = iota
	RegA
	RegF
	RegB
	RegC
	RegD
	RegE
	RegH
	RegL
	RegW
	RegZ
	RegIR
	RegSP
	RegPC
	RegAF
	RegBC
	RegDE
	RegHL
	RegHLIndirect // (HL): memory, not a register
)

var regNames = [...]string{
	RegNone: "-", RegA: "A", RegF: "F", RegB: "B", RegC: "C", RegD: "D",
	RegE: "E", RegH: "H", RegL: "L", RegW: "W", RegZ: "Z", RegIR: "IR",
	RegSP: "SP", RegPC: "PC", RegAF: "AF", RegBC: "BC", RegDE: "DE",
	RegHL: "HL", RegHLIndirect: "(HL)",
}

func (r Reg) String() string {
	if int(r) < len(regNames) {
		return regNames[r]
	}
	return fmt.Sprintf("REG(%d)", r)
}

// Width returns the register width in bits, or 0 for names that are not
// registers.
func (r Reg) Width() uint {
	switch {
	case r >= RegA && r <= RegIR:
		return 8
	case r >= RegSP && r <= RegHL:
		return 16
	}
	return 0
}

// ParseReg resolves a register name such as "a" or "HL".
func ParseReg(name string) (Reg, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	for i, s := range regNames {
		if s == n && Reg(i).Width() > 0 {
			return Reg(i), nil
		}
	}
	return RegNone, fmt.Errorf("%q: %w", name, ErrUnknownRegister)
}

func (s *State) slot(r Reg) *uint8 {
	switch r {
	case RegA:
		return &s.A
	case RegF:
		return &s.F
	case RegB:
		return &s.B
	case RegC:
		return &s.C
	case RegD:
		return &s.D
	case RegE:
		return &s.E
	case RegH:
		return &s.H
	case RegL:
		return &s.L
	case RegW:
		return &s.W
	case RegZ:
		return &s.Z
	case RegIR:
		return &s.IR
	}
	return nil
}

func (s *State) pair(r Reg) (hi, lo *uint8) {
	switch r {
	case RegAF:
		return &s.A, &s.F
	case RegBC:
		return &s.B, &s.C
	case RegDE:
		return &s.D, &s.E
	case RegHL:
		return &s.H, &s.L
	}
	return nil, nil
}

// Get returns the value of r.
func (s *State) Get(r Reg) (uint16, error) {
	if p := s.slot(r); p != nil {
		return uint16(*p), nil
	}
	switch r {
	case RegSP:
		return s.SP, nil
	case RegPC:
		return s.PC, nil
	}
	if hi, lo := s.pair(r); hi != nil {
		return uint16(*hi)<<8 | uint16(*lo), nil
	}
	return 0, fmt.Errorf("read %s: %w", r, ErrUnknownRegister)
}

// Get8 returns the value of an 8-bit register.
func (s *State) Get8(r Reg) (uint8, error) {
	p := s.slot(r)
	if p == nil {
		return 0, fmt.Errorf("read %s as 8-bit: %w", r, ErrUnknownRegister)
	}
	return *p, nil
}

// Set stores v in r, keeping only the low-order bits that fit. The low
// nibble of F always reads as zero.
func (s *State) Set(r Reg, v uint16) error {
	if p := s.slot(r); p != nil {
		*p = uint8(v)
		if r == RegF {
			s.F &= 0xF0
		}
		return nil
	}
	switch r {
	case RegSP:
		s.SP = v
		return nil
	case RegPC:
		s.PC = v
		return nil
	}
	if hi, lo := s.pair(r); hi != nil {
		*hi, *lo = uint8(v>>8), uint8(v)
		s.F &= 0xF0
		return nil
	}
	return fmt.Errorf("write %s: %w", r, ErrUnknownRegister)
}

// Mux maps a 3-bit register field to its register. The pattern 110 selects
// the memory operand (HL).
func Mux(field uint8) Reg {
	return mux8[field&0x07]
}

var mux8 = [8]Reg{RegB, RegC, RegD, RegE, RegH, RegL, RegHLIndirect, RegA}

// PairMux maps a 2-bit pair field to BC, DE, HL or SP.
func PairMux(field uint8) Reg {
	return mux16[field&0x03]
}

// StackMux maps a 2-bit pair field to BC, DE, HL or AF.
func StackMux(field uint8) Reg {
	return stack16[field&0x03]
}

var (
	mux16   = [4]Reg{RegBC, RegDE, RegHL, RegSP}
	stack16 = [4]Reg{RegBC, RegDE, RegHL, RegAF}
)
