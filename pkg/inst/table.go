package inst

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Sentinel decode failures, wrapped by DecodeError.
var (
	ErrNoMatch   = errors.New("no matching opcode row")
	ErrAmbiguous = errors.New("ambiguous opcode")
)

// Bit is one position of a row pattern: '0' or '1' for a literal bit, or the
// letter naming a placeholder field.
type Bit byte

// Literal reports whether the bit must match exactly.
func (b Bit) Literal() bool {
	return b == '0' || b == '1'
}

// Row is one line of an instruction-set description.
type Row struct {
	Line     int    // source line, 1-based
	Pattern  [8]Bit // bit 7 first
	Cycles   []Op   // machine cycles, Cycles[0] is always M1R
	Mnemonic string
	Kind     Kind

	mask  uint8 // literal positions
	value uint8 // literal values
}

// Matches reports whether every literal bit of the row equals the
// corresponding bit of b.
func (r *Row) Matches(b uint8) bool {
	return b&r.mask == r.value
}

// Operands returns the number of operand bytes read after the opcode.
func (r *Row) Operands() int {
	n := 0
	for _, c := range r.Cycles {
		if c == RD {
			n++
		}
	}
	return n
}

// PatternString returns the pattern as written in the source.
func (r *Row) PatternString() string {
	b := make([]byte, 8)
	for i, p := range r.Pattern {
		b[i] = byte(p)
	}
	return string(b)
}

// Table is an immutable set of opcode rows.
type Table struct {
	Rows []Row
}

// ParseError reports a malformed line of an instruction-set description.
type ParseError struct {
	Line int
	Text string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Msg, e.Text)
}

// DecodeError reports a byte that matched zero or several rows.
type DecodeError struct {
	Byte uint8
	Rows []int // indices of the matching rows, if any
	Err  error // ErrNoMatch or ErrAmbiguous
}

func (e *DecodeError) Error() string {
	if len(e.Rows) == 0 {
		return fmt.Sprintf("decode %02Xh: %v", e.Byte, e.Err)
	}
	return fmt.Sprintf("decode %02Xh: %v (rows %v)", e.Byte, e.Err, e.Rows)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Load parses an instruction-set description. Each line has the form
//
//	PATTERN [CYCLES...] MNEMONIC
//
// where PATTERN is eight characters, digits for literal bits and letters for
// placeholder fields. A ';' starts a comment. Blank lines and a column header
// starting with "PATTERN" are skipped. When no cycle tags are given the row is
// a single M1R cycle.
func Load(r io.Reader) (*Table, error) {
	t := &Table{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, ';'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 || strings.EqualFold(fields[0], "PATTERN") {
			continue
		}
		row, err := parseRow(line, fields)
		if err != nil {
			return nil, err
		}
		t.Rows = append(t.Rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading instruction set: %w", err)
	}
	if len(t.Rows) == 0 {
		return nil, errors.New("instruction set has no rows")
	}
	return t, nil
}

func parseRow(line int, fields []string) (Row, error) {
	text := strings.Join(fields, " ")
	fail := func(msg string) (Row, error) {
		return Row{}, &ParseError{Line: line, Text: text, Msg: msg}
	}

	pat := fields[0]
	if len(pat) != 8 {
		return fail("pattern must be 8 characters")
	}
	row := Row{Line: line}
	for i := 0; i < 8; i++ {
		c := pat[i]
		bit := uint8(0x80) >> i
		switch {
		case c == '0':
			row.mask |= bit
		case c == '1':
			row.mask |= bit
			row.value |= bit
		case c >= '2' && c <= '9':
			return fail("pattern digits must be 0 or 1")
		}
		row.Pattern[i] = Bit(c)
	}

	rest := fields[1:]
	for len(rest) > 0 {
		op, ok := parseOp(strings.ToUpper(rest[0]))
		if !ok {
			break
		}
		row.Cycles = append(row.Cycles, op)
		rest = rest[1:]
	}
	if len(row.Cycles) == 0 {
		row.Cycles = []Op{M1R}
	} else if row.Cycles[0] != M1R {
		return fail("first cycle must be M1R")
	}
	for _, c := range row.Cycles[1:] {
		if c == M1R {
			return fail("M1R only allowed as first cycle")
		}
	}
	if len(rest) == 0 {
		return fail("missing mnemonic")
	}
	row.Mnemonic = strings.Join(rest, " ")
	row.Kind = KindOf(row.Mnemonic)
	return row, nil
}

// Match returns the index of the single row matching b.
func (t *Table) Match(b uint8) (int, error) {
	var rows []int
	for i := range t.Rows {
		if t.Rows[i].Matches(b) {
			rows = append(rows, i)
		}
	}
	switch len(rows) {
	case 0:
		return -1, &DecodeError{Byte: b, Err: ErrNoMatch}
	case 1:
		return rows[0], nil
	}
	return -1, &DecodeError{Byte: b, Rows: rows, Err: ErrAmbiguous}
}

// Coverage returns, for every byte value, the number of matching rows.
func (t *Table) Coverage() [256]int {
	var cov [256]int
	for b := 0; b < 256; b++ {
		for i := range t.Rows {
			if t.Rows[i].Matches(uint8(b)) {
				cov[b]++
			}
		}
	}
	return cov
}

// Validate checks that no byte value matches more than one row. Bytes that
// match nothing are unused opcodes and are allowed.
func (t *Table) Validate() error {
	var errs []error
	for b := 0; b < 256; b++ {
		_, err := t.Match(uint8(b))
		if errors.Is(err, ErrAmbiguous) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Legal returns the byte values that match exactly one row.
func (t *Table) Legal() []uint8 {
	var out []uint8
	for b, n := range t.Coverage() {
		if n == 1 {
			out = append(out, uint8(b))
		}
	}
	return out
}
