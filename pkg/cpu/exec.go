package cpu

import (
	"errors"
	"fmt"
)

// ErrNotImplemented is returned for instructions that decode but have no
// execution semantics.
var ErrNotImplemented = errors.New("not implemented")

// Operand is the second input of an ALU or load operation. Ref marks a value
// that came from a register or the (HL) memory operand rather than from the
// instruction stream; it selects the carry-save adder in Add.
type Operand struct {
	Value uint8
	Ref   bool
}

// Imm returns an immediate operand.
func Imm(v uint8) Operand {
	return Operand{Value: v}
}

// Ref returns an operand holding the current value of an 8-bit register.
func (s *State) Ref(r Reg) (Operand, error) {
	v, err := s.Get8(r)
	if err != nil {
		return Operand{}, err
	}
	return Operand{Value: v, Ref: true}, nil
}

// CarrySave adds a and b the way a bit-serial adder does: XOR gives the
// partial sum and AND shifted left gives the carries, repeated until no carry
// is left. It returns the sum, whether a carry left bit 7 and the number of
// rounds taken (at most 9).
func CarrySave(a, b uint8) (sum uint8, carry bool, rounds int) {
	x, c := a, b
	for c != 0 {
		gen := x & c
		if gen&0x80 != 0 {
			carry = true
		}
		x ^= c
		c = gen << 1
		rounds++
	}
	return x, carry, rounds
}

// Add adds o to dst. Register operands go through the carry-save adder,
// immediates through ordinary addition. H is always set.
func (s *State) Add(dst Reg, o Operand) error {
	x, err := s.Get8(dst)
	if err != nil {
		return err
	}
	var r uint8
	var carry bool
	if o.Ref {
		r, carry, _ = CarrySave(x, o.Value)
	} else {
		sum := uint16(x) + uint16(o.Value)
		r, carry = uint8(sum), sum > 0xFF
	}
	s.setFlags(r == 0, false, true, carry)
	return s.Set(dst, uint16(r))
}

// sub computes a-b with subtraction flags.
func (s *State) sub(a, b uint8) uint8 {
	r := a - b
	s.setFlags(r == 0, true, a&0x0F < b&0x0F, a < b)
	return r
}

// Sub subtracts o from dst.
func (s *State) Sub(dst Reg, o Operand) error {
	x, err := s.Get8(dst)
	if err != nil {
		return err
	}
	return s.Set(dst, uint16(s.sub(x, o.Value)))
}

// Cp compares dst with o, setting flags as Sub without storing.
func (s *State) Cp(dst Reg, o Operand) error {
	x, err := s.Get8(dst)
	if err != nil {
		return err
	}
	s.sub(x, o.Value)
	return nil
}

// And, Xor and Or are the logical operations. And sets H; all clear C.
func (s *State) And(dst Reg, o Operand) error {
	return s.logic(dst, o, func(a, b uint8) uint8 { return a & b }, true)
}

func (s *State) Xor(dst Reg, o Operand) error {
	return s.logic(dst, o, func(a, b uint8) uint8 { return a ^ b }, false)
}

func (s *State) Or(dst Reg, o Operand) error {
	return s.logic(dst, o, func(a, b uint8) uint8 { return a | b }, false)
}

func (s *State) logic(dst Reg, o Operand, fn func(a, b uint8) uint8, h bool) error {
	x, err := s.Get8(dst)
	if err != nil {
		return err
	}
	r := fn(x, o.Value)
	s.setFlags(r == 0, false, h, false)
	return s.Set(dst, uint16(r))
}

// ALU performs the operation selected by a 3-bit ALU field on A.
func (s *State) ALU(op uint8, o Operand) error {
	switch op & 0x07 {
	case 0:
		return s.Add(RegA, o)
	case 2:
		return s.Sub(RegA, o)
	case 4:
		return s.And(RegA, o)
	case 5:
		return s.Xor(RegA, o)
	case 6:
		return s.Or(RegA, o)
	case 7:
		return s.Cp(RegA, o)
	}
	return fmt.Errorf("ALU op %d: %w", op&0x07, ErrNotImplemented)
}

// Inc increments an 8-bit register. C is unaffected.
func (s *State) Inc(dst Reg) error {
	x, err := s.Get8(dst)
	if err != nil {
		return err
	}
	r := x + 1
	c := s.Flag(FlagC)
	s.setFlags(r == 0, false, x&0x0F == 0x0F, c)
	return s.Set(dst, uint16(r))
}

// Dec decrements an 8-bit register. C is unaffected.
func (s *State) Dec(dst Reg) error {
	x, err := s.Get8(dst)
	if err != nil {
		return err
	}
	r := x - 1
	c := s.Flag(FlagC)
	s.setFlags(r == 0, true, x&0x0F == 0, c)
	return s.Set(dst, uint16(r))
}

// Step adds delta to a 16-bit register without touching flags.
func (s *State) Step(dst Reg, delta int) error {
	if dst.Width() != 16 {
		return fmt.Errorf("step %s: %w", dst, ErrUnknownRegister)
	}
	v, err := s.Get(dst)
	if err != nil {
		return err
	}
	return s.Set(dst, uint16(int(v)+delta))
}

// AddHL adds a 16-bit register to HL. Z is unaffected; H and C come from
// bits 11 and 15.
func (s *State) AddHL(src Reg) error {
	v, err := s.Get(src)
	if err != nil {
		return err
	}
	hl, _ := s.Get(RegHL)
	sum := uint32(hl) + uint32(v)
	z := s.Flag(FlagZ)
	s.setFlags(z, false, (hl&0x0FFF)+(v&0x0FFF) > 0x0FFF, sum > 0xFFFF)
	return s.Set(RegHL, uint16(sum))
}

// Load copies o into dst. Unknown destinations, including (HL), are
// reported rather than ignored.
func (s *State) Load(dst Reg, o Operand) error {
	if dst.Width() != 8 {
		return fmt.Errorf("load %s: %w", dst, ErrUnknownRegister)
	}
	return s.Set(dst, uint16(o.Value))
}

// Scf sets the carry flag.
func (s *State) Scf() {
	s.setFlags(s.Flag(FlagZ), false, false, true)
}

// Ccf complements the carry flag.
func (s *State) Ccf() {
	s.setFlags(s.Flag(FlagZ), false, false, !s.Flag(FlagC))
}

// Cpl complements A.
func (s *State) Cpl() {
	s.A = ^s.A
	s.SetFlag(FlagN|FlagH, true)
}
