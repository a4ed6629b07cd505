package inst

import (
	"errors"
	"testing"
)

func TestDecoderOperandPhases(t *testing.T) {
	d := NewDecoder(Default())

	// LD BC,1234h: one fetch, two operand reads
	if _, done, err := d.Parse(0x01, M1R); err != nil || done {
		t.Fatalf("fetch: done=%v err=%v", done, err)
	}
	if d.Next() != RD || d.Remaining() != 2 {
		t.Fatalf("after fetch: next %s remaining %d", d.Next(), d.Remaining())
	}
	if _, done, _ := d.Parse(0x34, RD); done {
		t.Fatal("complete after one operand")
	}
	if _, _, err := d.Parse(0x00, M1R); !errors.Is(err, ErrPhase) {
		t.Errorf("fetch mid-instruction: err = %v, want ErrPhase", err)
	}
	dec, done, err := d.Parse(0x12, RD)
	if err != nil || !done {
		t.Fatalf("second operand: done=%v err=%v", done, err)
	}
	if dec.Kind != LD_R_NN || dec.Imm16() != 0x1234 {
		t.Errorf("decoded %s %04X", dec.Kind, dec.Imm16())
	}
	if d.Next() != M1R || d.InFlight() {
		t.Errorf("next %s in flight %v, want idle", d.Next(), d.InFlight())
	}
}

func TestDecoderRetire(t *testing.T) {
	d := NewDecoder(Default())

	// JR N: fetch, operand, internal cycle
	d.Parse(0x18, M1R)
	if op := d.Retire(); op != M1R {
		t.Errorf("Retire before operand = %s", op)
	}
	dec, done, err := d.Parse(0xFE, RD)
	if err != nil || !done || dec.Kind != JR {
		t.Fatalf("operand: %v %v %v", dec.Kind, done, err)
	}
	if d.Next() != WAIT {
		t.Fatalf("next = %s, want WAIT", d.Next())
	}
	if _, _, err := d.Parse(0x00, RD); !errors.Is(err, ErrPhase) {
		t.Errorf("RD during WAIT: err = %v", err)
	}
	if op := d.Retire(); op != WAIT {
		t.Errorf("Retire = %s, want WAIT", op)
	}
	if d.InFlight() || d.Next() != M1R {
		t.Error("instruction still in flight")
	}
}

func TestDecoderSingleByte(t *testing.T) {
	d := NewDecoder(Default())
	dec, done, err := d.Parse(0x80, M1R)
	if err != nil || !done {
		t.Fatalf("done=%v err=%v", done, err)
	}
	if dec.Kind != ALU_A_S || len(dec.Operands) != 0 {
		t.Errorf("decoded %+v", dec)
	}

	// a second instruction must not inherit operands
	d.Parse(0x06, M1R)
	dec, _, _ = d.Parse(0x05, RD)
	d.Parse(0x3E, M1R)
	dec2, _, _ := d.Parse(0x07, RD)
	if dec.Imm8() != 0x05 || len(dec2.Operands) != 1 || dec2.Imm8() != 0x07 {
		t.Errorf("operands leaked: %v %v", dec.Operands, dec2.Operands)
	}
}

func TestDecoderFault(t *testing.T) {
	d := NewDecoder(Default())
	_, _, err := d.Parse(0xD3, M1R)
	var de *DecodeError
	if !errors.As(err, &de) || de.Byte != 0xD3 || !errors.Is(err, ErrNoMatch) {
		t.Errorf("Parse(D3h) error = %v", err)
	}
	if _, _, err := d.Parse(0x00, WAIT); !errors.Is(err, ErrPhase) {
		t.Errorf("Parse in WAIT: err = %v", err)
	}
}
