package bus

import "strings"

// Lines is the set of control signals driven by the control unit.
type Lines uint8

const (
	MREQ Lines = 1 << iota // memory request
	RD                     // read strobe
	WR                     // write strobe
	CE                     // clock enable
)

// Assert raises the given lines.
func (l *Lines) Assert(m Lines) {
	*l |= m
}

// Deassert lowers the given lines.
func (l *Lines) Deassert(m Lines) {
	*l &^= m
}

// Asserted returns true if every line in m is raised.
func (l Lines) Asserted(m Lines) bool {
	return l&m == m
}

func (l Lines) String() string {
	var s []string
	for i, n := range []string{"MREQ", "RD", "WR", "CE"} {
		if l&(1<<i) != 0 {
			s = append(s, n)
		}
	}
	if len(s) == 0 {
		return "-"
	}
	return strings.Join(s, "|")
}
