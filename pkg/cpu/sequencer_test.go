package cpu

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/oisee/gbz80-sim/pkg/inst"
	"github.com/oisee/gbz80-sim/pkg/memory"
)

// decode assembles bs with the built-in table.
func decode(t *testing.T, bs ...uint8) inst.Decoded {
	t.Helper()
	d := inst.NewDecoder(inst.Default())
	dec, done, err := d.Parse(bs[0], inst.M1R)
	for _, b := range bs[1:] {
		if err != nil {
			break
		}
		dec, done, err = d.Parse(b, inst.RD)
	}
	if err != nil || !done {
		t.Fatalf("decode % X: done=%v err=%v", bs, done, err)
	}
	return dec
}

func TestMux(t *testing.T) {
	want := []Reg{RegB, RegC, RegD, RegE, RegH, RegL, RegHLIndirect, RegA}
	for field, r := range want {
		if got := Mux(uint8(field)); got != r {
			t.Errorf("Mux(%03b) = %s, want %s", field, got, r)
		}
		if got := Mux(uint8(field) | 0xF8); got != r {
			t.Errorf("Mux ignores high bits: %s", got)
		}
	}
	if PairMux(3) != RegSP || StackMux(3) != RegAF {
		t.Errorf("PairMux(3) = %s, StackMux(3) = %s", PairMux(3), StackMux(3))
	}
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name  string
		bytes []uint8
		init  State
		check func(s State) bool
	}{
		{"LD B,N", []uint8{0x06, 0x05}, State{}, func(s State) bool { return s.B == 5 }},
		{"LD A,N", []uint8{0x3E, 0xFF}, State{}, func(s State) bool { return s.A == 0xFF }},
		{"ADD A,B", []uint8{0x80}, State{A: 2, B: 3}, func(s State) bool { return s.A == 5 && s.F == FlagH }},
		{"ADD A,A", []uint8{0x87}, State{}, func(s State) bool { return s.A == 0 && s.Flag(FlagZ) }},
		{"SUB N", []uint8{0xD6, 0x01}, State{A: 1}, func(s State) bool { return s.A == 0 && s.Flag(FlagZ) && s.Flag(FlagN) }},
		{"LD C,B", []uint8{0x48}, State{B: 9}, func(s State) bool { return s.C == 9 }},
		{"LD DE,NN", []uint8{0x11, 0x34, 0x12}, State{}, func(s State) bool { return s.D == 0x12 && s.E == 0x34 }},
		{"INC E", []uint8{0x1C}, State{E: 0x0F}, func(s State) bool { return s.E == 0x10 && s.Flag(FlagH) }},
		{"DEC SP", []uint8{0x3B}, State{}, func(s State) bool { return s.SP == 0xFFFF }},
		{"ADD HL,HL", []uint8{0x29}, State{H: 0x80}, func(s State) bool { return s.H == 0 && s.Flag(FlagC) }},
		{"LD SP,HL", []uint8{0xF9}, State{H: 0xC0, L: 0x01}, func(s State) bool { return s.SP == 0xC001 }},
		{"CPL", []uint8{0x2F}, State{A: 0x0F}, func(s State) bool { return s.A == 0xF0 }},
		{"NOP", []uint8{0x00}, State{A: 7}, func(s State) bool { return s.A == 7 && s.F == 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st := tc.init
			seq := NewSequencer(&st, nil)
			if err := seq.Execute(decode(t, tc.bytes...)); err != nil {
				t.Fatal(err)
			}
			if !tc.check(st) {
				t.Errorf("unexpected state %+v", st)
			}
		})
	}
}

func TestExecuteMemoryOperand(t *testing.T) {
	mem := memory.New(0)
	mem.Load([]byte{0x86, 0x7E, 0x2A, 0x21})
	st := State{A: 1, H: 0x00, L: 0x03}
	seq := NewSequencer(&st, mem)

	// ADD A,(HL)
	if err := seq.Execute(decode(t, 0x86)); err != nil {
		t.Fatal(err)
	}
	if st.A != 0x22 {
		t.Errorf("ADD A,(HL): A = %02X, want 22", st.A)
	}

	// LDI A,(HL) reads then increments HL
	st.L = 2
	if err := seq.Execute(decode(t, 0x2A)); err != nil {
		t.Fatal(err)
	}
	if st.A != 0x2A || st.L != 3 {
		t.Errorf("LDI A,(HL): A = %02X L = %02X", st.A, st.L)
	}

	// reading past the loaded bytes is reported and recoverable
	st.L = 0x40
	err := seq.Execute(decode(t, 0x7E))
	var ae *memory.AddressError
	if !errors.As(err, &ae) || !Recoverable(err) {
		t.Errorf("LD A,(HL) at 0040h: err = %v", err)
	}
}

func TestNotImplemented(t *testing.T) {
	st := State{A: 3, PC: 0x10}
	seq := NewSequencer(&st, nil)
	before := st

	for _, bs := range [][]uint8{{0xC3, 0x00, 0x01}, {0x76}, {0x8F}, {0xCB, 0x11}} {
		err := seq.Execute(decode(t, bs...))
		if !errors.Is(err, ErrNotImplemented) {
			t.Errorf("% X: err = %v, want ErrNotImplemented", bs, err)
		}
		if !Recoverable(err) {
			t.Errorf("% X: not recoverable", bs)
		}
	}
	if st != before {
		t.Errorf("unimplemented instructions changed state: %+v", st)
	}
	if Implemented(inst.JP) || !Implemented(inst.ALU_A_S) {
		t.Error("Implemented reports wrong kinds")
	}
	if err := seq.Execute(inst.Decoded{Kind: inst.Unknown, Mnemonic: "FROB"}); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("Unknown kind: err = %v", err)
	}
}

func TestStoreToMemoryReported(t *testing.T) {
	st := State{}
	seq := NewSequencer(&st, nil)
	for _, bs := range [][]uint8{{0x36, 0x01}, {0x70}} {
		err := seq.Execute(decode(t, bs...))
		if !errors.Is(err, ErrUnknownRegister) || !Recoverable(err) {
			t.Errorf("% X: err = %v, want ErrUnknownRegister", bs, err)
		}
	}
	if Recoverable(errors.New("boom")) {
		t.Error("arbitrary error classified as recoverable")
	}
}

func TestDump(t *testing.T) {
	st := State{A: 5, F: FlagZ, PC: 3}
	var buf bytes.Buffer
	if err := st.Dump(&buf, nil, false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"A:    5  00000101   0x5  \n",
		"B:    0  00000000   0x0  \n",
		"   ZNHC0000\nF: 10000000\n",
		"PC: 0003",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("escape codes without highlight")
	}

	prev := st
	st.B = 1
	buf.Reset()
	st.Dump(&buf, &prev, true)
	if !strings.Contains(buf.String(), "\x1b[1;33mB:") {
		t.Errorf("changed register not highlighted:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "\x1b[1;33mA:") {
		t.Error("unchanged register highlighted")
	}
}
