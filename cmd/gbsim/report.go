package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/oisee/gbz80-sim/pkg/cpu"
	"github.com/oisee/gbz80-sim/pkg/inst"
	"github.com/oisee/gbz80-sim/pkg/trace"
)

// programFrom returns the inline program if one was given, otherwise the
// contents of the single file argument.
func programFrom(args []string, expr string) ([]byte, error) {
	switch {
	case expr != "" && len(args) > 0:
		return nil, fmt.Errorf("give either a file or --exec, not both")
	case expr != "":
		prog, err := parseProgram(expr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse: %w", err)
		}
		return prog, nil
	case len(args) == 1:
		return loadProgram(args[0])
	}
	return nil, fmt.Errorf("no program: pass a file or --exec")
}

// loadTable reads an instruction-set file, or returns the built-in table
// when path is empty.
func loadTable(path string) (*inst.Table, error) {
	if path == "" {
		return inst.Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := inst.Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func writeTrace(path string, rec *trace.Recorder) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := trace.WriteJSON(f, rec.Events()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// disassemble lists program one instruction per line. Unknown bytes are
// printed as data and decoding resumes at the next byte.
func disassemble(w io.Writer, t *inst.Table, program []byte) error {
	dec := inst.NewDecoder(t)
	for pc := 0; pc < len(program); {
		start := pc
		d, done, err := dec.Parse(program[pc], inst.M1R)
		pc++
		for err == nil && !done && pc < len(program) {
			d, done, err = dec.Parse(program[pc], inst.RD)
			pc++
		}

		var text string
		switch {
		case errors.Is(err, inst.ErrNoMatch):
			text = fmt.Sprintf("DB %02Xh", program[start])
		case err != nil:
			return fmt.Errorf("%04Xh: %w", start, err)
		case !done:
			text = fmt.Sprintf("%s (truncated)", dec.Current().Mnemonic)
		default:
			text = inst.Disassemble(d)
		}
		dec.Reset()

		fmt.Fprintf(w, "%04X  %-9s %s\n", start, fmt.Sprintf("% X", program[start:pc]), text)
	}
	return nil
}

// reportCoverage prints how the table's rows cover the 256 byte values.
func reportCoverage(w io.Writer, t *inst.Table) error {
	cov := t.Coverage()
	var unused []string
	for b, n := range cov {
		if n == 0 {
			unused = append(unused, fmt.Sprintf("%02X", b))
		}
	}
	executed := 0
	for _, b := range t.Legal() {
		row, _ := t.Match(b)
		if cpu.Implemented(t.Rows[row].Kind) {
			executed++
		}
	}
	fmt.Fprintf(w, "%d rows, %d legal opcodes (%d executed), %d unused\n", len(t.Rows), len(t.Legal()), executed, len(unused))
	if len(unused) > 0 {
		fmt.Fprintf(w, "Unused: %s\n", strings.Join(unused, " "))
	}
	fmt.Fprintln(w)
	for _, r := range t.Rows {
		cycles := make([]string, len(r.Cycles))
		for i, c := range r.Cycles {
			cycles[i] = c.String()
		}
		mark := " "
		if cpu.Implemented(r.Kind) {
			mark = "*"
		}
		fmt.Fprintf(w, "%4d %s %s  %-20s %s\n", r.Line, mark, r.PatternString(), strings.Join(cycles, ","), r.Mnemonic)
	}
	fmt.Fprintln(w, "\n* rows with execution semantics")
	return t.Validate()
}
