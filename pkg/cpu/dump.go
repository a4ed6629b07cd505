package cpu

import (
	"fmt"
	"io"
)

const (
	highlightOn  = "\x1b[1;33m"
	highlightOff = "\x1b[0m"
)

// Dump writes a human-readable register listing: decimal, binary and hex per
// general register, then the flag byte under a ZNHC0000 header. If prev is
// not nil and highlight is set, registers that differ from prev are marked
// with ANSI bold.
func (s *State) Dump(w io.Writer, prev *State, highlight bool) error {
	mark := func(r Reg) (string, string) {
		if prev == nil || !highlight {
			return "", ""
		}
		a, _ := s.Get(r)
		b, _ := prev.Get(r)
		if a == b {
			return "", ""
		}
		return highlightOn, highlightOff
	}

	for _, r := range []Reg{RegA, RegB, RegC, RegD, RegE, RegH, RegL} {
		v, _ := s.Get8(r)
		on, off := mark(r)
		if _, err := fmt.Fprintf(w, "%s%s: %4d  %08b  %s%s\n", on, r, v, v, center(fmt.Sprintf("%#x", v), 6), off); err != nil {
			return err
		}
	}
	on, off := mark(RegF)
	if _, err := fmt.Fprintf(w, "\n   ZNHC0000\n%sF: %08b%s\n", on, s.F, off); err != nil {
		return err
	}
	spOn, spOff := mark(RegSP)
	pcOn, pcOff := mark(RegPC)
	_, err := fmt.Fprintf(w, "%sSP: %04X%s  %sPC: %04X%s\n", spOn, s.SP, spOff, pcOn, s.PC, pcOff)
	return err
}

// center pads s with spaces to width n, extra space on the right.
func center(s string, n int) string {
	if len(s) >= n {
		return s
	}
	left := (n - len(s)) / 2
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	copy(b[left:], s)
	return string(b)
}
