package inst

import "strings"

// Info holds static metadata for an instruction kind.
type Info struct {
	Mnemonic string // Canonical mnemonic with placeholders (e.g., "LD D,N")
}

// Catalog maps each Kind to its Info.
var Catalog [KindCount]Info

// Register field encodings shared by the multiplexer and the disassembler.
var (
	RegNames      = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
	PairNames     = [4]string{"BC", "DE", "HL", "SP"}
	StackPairs    = [4]string{"BC", "DE", "HL", "AF"}
	CondNames     = [4]string{"NZ", "Z", "NC", "C"}
	ALUNames      = [8]string{"ADD", "ADC", "SUB", "SBC", "AND", "XOR", "OR", "CP"}
	kindByMnemonic map[string]Kind
)

// KindOf returns the kind of a mnemonic. Canonical placeholder forms ("LD D,N")
// and concrete forms ("LD B,N", "ADD A,B") are both recognised. Spacing and
// case are not significant.
func KindOf(mnemonic string) Kind {
	return kindByMnemonic[normalise(mnemonic)]
}

// normalise upper-cases a mnemonic and removes spacing around commas.
func normalise(m string) string {
	fields := strings.Fields(strings.ToUpper(m))
	s := strings.Join(fields, " ")
	s = strings.ReplaceAll(s, ", ", ",")
	s = strings.ReplaceAll(s, " ,", ",")
	return s
}

// Disassemble returns assembly text for a decoded instruction.
func Disassemble(d Decoded) string {
	m := d.Mnemonic
	if m == "" {
		m = Catalog[d.Kind].Mnemonic
	}
	if strings.HasPrefix(m, "ALU ") {
		m = ALUNames[d.ALU()] + m[3:]
	}

	buf := make([]byte, 0, len(m)+8)
	for i := 0; i < len(m); i++ {
		c := m[i]
		if !isPlaceholder(c) || (i > 0 && isLetter(m[i-1])) || (i+1 < len(m) && isLetter(m[i+1])) {
			buf = append(buf, c)
			continue
		}
		switch c {
		case 'D':
			buf = append(buf, RegNames[d.Dest()]...)
		case 'S':
			buf = append(buf, RegNames[d.Src()]...)
		case 'R':
			if d.Kind == POP || d.Kind == PUSH {
				buf = append(buf, StackPairs[d.Pair()]...)
			} else {
				buf = append(buf, PairNames[d.Pair()]...)
			}
		case 'F':
			buf = append(buf, CondNames[d.Cond()]...)
		case 'N':
			switch {
			case d.Kind == RST:
				buf = appendHex8(buf, d.Opcode&0x38)
			case len(d.Operands) >= 2:
				buf = appendHex16(buf, d.Imm16())
			case len(d.Operands) == 1:
				buf = appendHex8(buf, d.Imm8())
			default:
				buf = append(buf, c)
			}
		}
	}
	if d.Kind == PREFIX_CB && len(d.Operands) > 0 {
		buf = append(buf, ' ')
		buf = appendHex8(buf, d.Imm8())
	}
	return string(buf)
}

func isPlaceholder(c byte) bool {
	return c == 'D' || c == 'S' || c == 'R' || c == 'F' || c == 'N'
}

func isLetter(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z'
}

func appendHex8(buf []byte, v uint8) []byte {
	const hex = "0123456789ABCDEF"
	if v >= 0xA0 {
		buf = append(buf, '0')
	}
	buf = append(buf, hex[v>>4], hex[v&0x0F], 'h')
	return buf
}

func appendHex16(buf []byte, v uint16) []byte {
	const hex = "0123456789ABCDEF"
	if v>>12 >= 0xA {
		buf = append(buf, '0')
	}
	buf = append(buf, hex[v>>12], hex[(v>>8)&0x0F], hex[(v>>4)&0x0F], hex[v&0x0F], 'h')
	return buf
}

func init() {
	canonical := []struct {
		kind     Kind
		mnemonic string
	}{
		{NOP, "NOP"}, {LD_N_SP, "LD (N),SP"}, {STOP, "STOP"},
		{JR, "JR N"}, {JR_F, "JR F,N"},
		{LD_R_NN, "LD R,N"}, {ADD_HL_R, "ADD HL,R"},
		{LD_IR_A, "LD (R),A"}, {LD_A_IR, "LD A,(R)"},
		{LDI_HL_A, "LDI (HL),A"}, {LDI_A_HL, "LDI A,(HL)"},
		{LDD_HL_A, "LDD (HL),A"}, {LDD_A_HL, "LDD A,(HL)"},
		{INC_R, "INC R"}, {DEC_R, "DEC R"},
		{INC_D, "INC D"}, {DEC_D, "DEC D"}, {LD_D_N, "LD D,N"},
		{RLCA, "RLCA"}, {RRCA, "RRCA"}, {RLA, "RLA"}, {RRA, "RRA"},
		{DAA, "DAA"}, {CPL, "CPL"}, {SCF, "SCF"}, {CCF, "CCF"},
		{LD_D_S, "LD D,S"}, {HALT, "HALT"},
		{ALU_A_S, "ALU A,S"}, {ALU_A_N, "ALU A,N"},
		{RET_F, "RET F"},
		{LDH_N_A, "LD (FF00+N),A"}, {ADD_SP_N, "ADD SP,N"},
		{LDH_A_N, "LD A,(FF00+N)"}, {LD_HL_SPN, "LD HL,SP+N"},
		{POP, "POP R"}, {RET, "RET"}, {RETI, "RETI"},
		{JP_HL, "JP HL"}, {LD_SP_HL, "LD SP,HL"},
		{JP_F, "JP F,N"}, {LD_C_A, "LD (C),A"}, {LD_NN_A, "LD (N),A"},
		{LD_A_C, "LD A,(C)"}, {LD_A_NN, "LD A,(N)"},
		{JP, "JP N"}, {PREFIX_CB, "PREFIX CB"},
		{DI, "DI"}, {EI, "EI"},
		{CALL_F, "CALL F,N"}, {PUSH, "PUSH R"}, {CALL, "CALL N"},
		{RST, "RST N"},
	}

	kindByMnemonic = make(map[string]Kind)
	alias := func(m string, k Kind) {
		if _, ok := kindByMnemonic[m]; !ok {
			kindByMnemonic[m] = k
		}
	}

	for _, c := range canonical {
		Catalog[c.kind] = Info{Mnemonic: c.mnemonic}
		alias(c.mnemonic, c.kind)
	}

	// concrete register forms
	for _, r := range RegNames {
		alias("LD "+r+",N", LD_D_N)
		alias("INC "+r, INC_D)
		alias("DEC "+r, DEC_D)
		for _, s := range RegNames {
			if r == "(HL)" && s == "(HL)" {
				continue
			}
			alias("LD "+r+","+s, LD_D_S)
		}
		for _, op := range ALUNames {
			alias(op+" A,"+r, ALU_A_S)
			alias(op+" "+r, ALU_A_S)
		}
	}
	for _, op := range ALUNames {
		alias(op+" A,N", ALU_A_N)
		alias(op+" N", ALU_A_N)
	}
	for _, p := range PairNames {
		alias("LD "+p+",N", LD_R_NN)
		alias("INC "+p, INC_R)
		alias("DEC "+p, DEC_R)
		alias("ADD HL,"+p, ADD_HL_R)
	}
	for _, p := range StackPairs {
		alias("POP "+p, POP)
		alias("PUSH "+p, PUSH)
	}
	for _, p := range PairNames[:2] {
		alias("LD ("+p+"),A", LD_IR_A)
		alias("LD A,("+p+")", LD_A_IR)
	}
	for _, c := range CondNames {
		alias("JR "+c+",N", JR_F)
		alias("JP "+c+",N", JP_F)
		alias("CALL "+c+",N", CALL_F)
		alias("RET "+c, RET_F)
	}
}
