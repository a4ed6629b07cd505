package inst

import (
	"errors"
	"fmt"
)

// ErrPhase is returned when a byte is offered in a phase the decoder is not
// expecting, e.g. a new opcode while operand bytes are still outstanding.
var ErrPhase = errors.New("decoder phase mismatch")

// Decoder assembles instructions one byte at a time. An opcode byte arrives in
// the M1R phase; its row then says how many operand bytes follow in RD
// phases and which internal cycles come after them.
type Decoder struct {
	table *Table

	cur       Decoded
	pending   []Op // machine cycles still to run for the instruction in flight
	remaining int  // operand bytes still to read
}

// NewDecoder returns a decoder for t.
func NewDecoder(t *Table) *Decoder {
	return &Decoder{table: t}
}

// Table returns the opcode table.
func (d *Decoder) Table() *Table {
	return d.table
}

// Parse feeds one byte in the given phase. It returns the instruction and
// true once the last operand byte has been consumed.
func (d *Decoder) Parse(b uint8, phase Op) (Decoded, bool, error) {
	switch phase {
	case M1R:
		if d.remaining > 0 {
			return Decoded{}, false, fmt.Errorf("opcode %02Xh with %d operand bytes outstanding: %w", b, d.remaining, ErrPhase)
		}
		row, err := d.table.Match(b)
		if err != nil {
			return Decoded{}, false, err
		}
		r := &d.table.Rows[row]
		d.cur = Decoded{Row: row, Kind: r.Kind, Mnemonic: r.Mnemonic, Opcode: b}
		d.pending = append(d.pending[:0], r.Cycles[1:]...)
		d.remaining = r.Operands()

	case RD:
		if d.Next() != RD {
			return Decoded{}, false, fmt.Errorf("operand %02Xh during %s: %w", b, d.Next(), ErrPhase)
		}
		d.cur.Operands = append(d.cur.Operands, b)
		d.pending = d.pending[1:]
		d.remaining--

	default:
		return Decoded{}, false, fmt.Errorf("parse in %s: %w", phase, ErrPhase)
	}

	if d.remaining > 0 {
		return Decoded{}, false, nil
	}
	out := d.cur
	out.Operands = append([]uint8(nil), d.cur.Operands...)
	return out, true, nil
}

// Next returns the machine cycle that follows. It is M1R when no instruction
// is in flight.
func (d *Decoder) Next() Op {
	if len(d.pending) == 0 {
		return M1R
	}
	return d.pending[0]
}

// Retire consumes one machine cycle without bus data (MR, WR or WAIT) and
// returns its tag. It returns M1R and does nothing if the next cycle is a fetch
// or an operand read.
func (d *Decoder) Retire() Op {
	op := d.Next()
	if op == M1R || op == RD {
		return M1R
	}
	d.pending = d.pending[1:]
	return op
}

// InFlight reports whether cycles of the current instruction remain.
func (d *Decoder) InFlight() bool {
	return len(d.pending) > 0
}

// Remaining returns the number of operand bytes still expected.
func (d *Decoder) Remaining() int {
	return d.remaining
}

// Current returns the instruction being assembled.
func (d *Decoder) Current() Decoded {
	return d.cur
}

// Reset drops any instruction in flight.
func (d *Decoder) Reset() {
	d.cur = Decoded{}
	d.pending = d.pending[:0]
	d.remaining = 0
}
