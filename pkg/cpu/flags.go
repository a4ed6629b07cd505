package cpu

// Flag bit positions in the F register. Bits 3-0 are always zero.
const (
	FlagZ uint8 = 0x80 // Zero
	FlagN uint8 = 0x40 // Subtract
	FlagH uint8 = 0x20 // Half-carry
	FlagC uint8 = 0x10 // Carry
)

// Flag reports whether flag f is set.
func (s *State) Flag(f uint8) bool {
	return s.F&f != 0
}

// SetFlag sets or clears flag f.
func (s *State) SetFlag(f uint8, on bool) {
	if on {
		s.F |= f
	} else {
		s.F &^= f
	}
	s.F &= 0xF0
}

// setFlags replaces all four flags.
func (s *State) setFlags(z, n, h, c bool) {
	var f uint8
	if z {
		f |= FlagZ
	}
	if n {
		f |= FlagN
	}
	if h {
		f |= FlagH
	}
	if c {
		f |= FlagC
	}
	s.F = f
}

// FlagString renders F as "ZNHC" with '-' for clear flags.
func (s *State) FlagString() string {
	b := []byte("----")
	for i, f := range [4]uint8{FlagZ, FlagN, FlagH, FlagC} {
		if s.F&f != 0 {
			b[i] = "ZNHC"[i]
		}
	}
	return string(b)
}
