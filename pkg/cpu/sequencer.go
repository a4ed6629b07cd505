package cpu

import (
	"errors"
	"fmt"

	"github.com/oisee/gbz80-sim/pkg/inst"
	"github.com/oisee/gbz80-sim/pkg/memory"
)

// Memory is the read side of the backing store, used for the (HL) operand
// and register-indirect loads.
type Memory interface {
	Read(addr uint16) (uint8, error)
}

// Handler executes one decoded instruction.
type Handler func(s *Sequencer, d inst.Decoded) error

// Sequencer dispatches decoded instructions to their handlers.
type Sequencer struct {
	State *State
	Mem   Memory
}

// NewSequencer returns a sequencer acting on st. mem may be nil if no
// instruction reads memory.
func NewSequencer(st *State, mem Memory) *Sequencer {
	return &Sequencer{State: st, Mem: mem}
}

// Execute runs d. Instructions without a handler return an error wrapping
// ErrNotImplemented; the registers are left unchanged.
func (s *Sequencer) Execute(d inst.Decoded) error {
	var h Handler
	if d.Kind < inst.KindCount {
		h = handlers[d.Kind]
	}
	if h == nil {
		return fmt.Errorf("%s (%02Xh): %w", d.Mnemonic, d.Opcode, ErrNotImplemented)
	}
	if err := h(s, d); err != nil {
		return fmt.Errorf("%s (%02Xh): %w", inst.Disassemble(d), d.Opcode, err)
	}
	return nil
}

// Implemented reports whether k has execution semantics.
func Implemented(k inst.Kind) bool {
	return k < inst.KindCount && handlers[k] != nil
}

// Recoverable reports whether err leaves the machine in a state where
// execution can continue with the next instruction.
func Recoverable(err error) bool {
	var ae *memory.AddressError
	return errors.Is(err, ErrNotImplemented) ||
		errors.Is(err, ErrUnknownRegister) ||
		errors.As(err, &ae)
}

// source resolves a 3-bit source field. (HL) reads memory.
func (s *Sequencer) source(field uint8) (Operand, error) {
	r := Mux(field)
	if r != RegHLIndirect {
		return s.State.Ref(r)
	}
	v, err := s.read(RegHL)
	if err != nil {
		return Operand{}, err
	}
	return Operand{Value: v, Ref: true}, nil
}

// read returns the byte addressed by a 16-bit register.
func (s *Sequencer) read(r Reg) (uint8, error) {
	addr, err := s.State.Get(r)
	if err != nil {
		return 0, err
	}
	return s.readAt(addr)
}

func (s *Sequencer) readAt(addr uint16) (uint8, error) {
	if s.Mem == nil {
		return 0, fmt.Errorf("read %04Xh: no memory attached: %w", addr, ErrNotImplemented)
	}
	return s.Mem.Read(addr)
}

var handlers [inst.KindCount]Handler

func init() {
	handlers = [inst.KindCount]Handler{
		inst.NOP: func(*Sequencer, inst.Decoded) error { return nil },

		inst.LD_D_N: func(s *Sequencer, d inst.Decoded) error {
			return s.State.Load(Mux(d.Dest()), Imm(d.Imm8()))
		},
		inst.LD_D_S: func(s *Sequencer, d inst.Decoded) error {
			dst := Mux(d.Dest())
			if dst == RegHLIndirect {
				return fmt.Errorf("store to %s: %w", dst, ErrUnknownRegister)
			}
			o, err := s.source(d.Src())
			if err != nil {
				return err
			}
			return s.State.Load(dst, o)
		},
		inst.LD_R_NN: func(s *Sequencer, d inst.Decoded) error {
			return s.State.Set(PairMux(d.Pair()), d.Imm16())
		},
		inst.LD_A_IR: func(s *Sequencer, d inst.Decoded) error {
			v, err := s.read(PairMux(d.Pair()))
			if err != nil {
				return err
			}
			s.State.A = v
			return nil
		},
		inst.LDI_A_HL: func(s *Sequencer, d inst.Decoded) error {
			return s.loadAHL(1)
		},
		inst.LDD_A_HL: func(s *Sequencer, d inst.Decoded) error {
			return s.loadAHL(-1)
		},
		inst.LD_A_NN: func(s *Sequencer, d inst.Decoded) error {
			v, err := s.readAt(d.Imm16())
			if err != nil {
				return err
			}
			s.State.A = v
			return nil
		},
		inst.LD_SP_HL: func(s *Sequencer, d inst.Decoded) error {
			hl, _ := s.State.Get(RegHL)
			return s.State.Set(RegSP, hl)
		},

		inst.INC_D: func(s *Sequencer, d inst.Decoded) error {
			return s.State.Inc(Mux(d.Dest()))
		},
		inst.DEC_D: func(s *Sequencer, d inst.Decoded) error {
			return s.State.Dec(Mux(d.Dest()))
		},
		inst.INC_R: func(s *Sequencer, d inst.Decoded) error {
			return s.State.Step(PairMux(d.Pair()), 1)
		},
		inst.DEC_R: func(s *Sequencer, d inst.Decoded) error {
			return s.State.Step(PairMux(d.Pair()), -1)
		},
		inst.ADD_HL_R: func(s *Sequencer, d inst.Decoded) error {
			return s.State.AddHL(PairMux(d.Pair()))
		},

		inst.ALU_A_S: func(s *Sequencer, d inst.Decoded) error {
			o, err := s.source(d.Src())
			if err != nil {
				return err
			}
			return s.State.ALU(d.ALU(), o)
		},
		inst.ALU_A_N: func(s *Sequencer, d inst.Decoded) error {
			return s.State.ALU(d.ALU(), Imm(d.Imm8()))
		},

		inst.SCF: func(s *Sequencer, d inst.Decoded) error { s.State.Scf(); return nil },
		inst.CCF: func(s *Sequencer, d inst.Decoded) error { s.State.Ccf(); return nil },
		inst.CPL: func(s *Sequencer, d inst.Decoded) error { s.State.Cpl(); return nil },
	}
}

func (s *Sequencer) loadAHL(delta int) error {
	v, err := s.read(RegHL)
	if err != nil {
		return err
	}
	s.State.A = v
	return s.State.Step(RegHL, delta)
}
