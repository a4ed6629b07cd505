// Package gen produces random, well-formed instruction streams for property
// and stress testing.
package gen

import (
	"math/rand/v2"

	"github.com/oisee/gbz80-sim/pkg/inst"
)

// Instr is the encoding of one instruction: the opcode followed by its
// operand bytes.
type Instr []byte

// Generator builds and mutates instruction sequences drawn from a table.
type Generator struct {
	rng      *rand.Rand
	table    *inst.Table
	opcodes  []uint8 // bytes that decode to exactly one row
	operands [256]int
	maxLen   int // maximum sequence length allowed
}

// NewGenerator creates a Generator for the legal opcodes of t.
func NewGenerator(rng *rand.Rand, t *inst.Table, maxLen int) *Generator {
	g := &Generator{
		rng:     rng,
		table:   t,
		opcodes: t.Legal(),
		maxLen:  maxLen,
	}
	for _, b := range g.opcodes {
		row, _ := t.Match(b)
		g.operands[b] = t.Rows[row].Operands()
	}
	return g
}

// Opcodes returns the number of distinct opcodes the generator draws from.
func (g *Generator) Opcodes() int {
	return len(g.opcodes)
}

// Sequence returns n random instructions.
func (g *Generator) Sequence(n int) []Instr {
	seq := make([]Instr, n)
	for i := range seq {
		seq[i] = g.randomInstruction()
	}
	return seq
}

// Mutate applies a random mutation to seq and returns the new sequence.
// The input slice is not modified; a new slice is always returned.
func (g *Generator) Mutate(seq []Instr) []Instr {
	// 40% replace, 20% swap, 20% delete, 10% insert, 10% change operand
	r := g.rng.IntN(100)
	switch {
	case r < 40:
		return g.ReplaceInstruction(seq)
	case r < 60:
		return g.SwapInstructions(seq)
	case r < 80:
		return g.DeleteInstruction(seq)
	case r < 90:
		return g.InsertInstruction(seq)
	default:
		return g.ChangeOperand(seq)
	}
}

// ReplaceInstruction swaps one instruction for a random one.
func (g *Generator) ReplaceInstruction(seq []Instr) []Instr {
	out := copySeq(seq)
	if len(out) == 0 {
		return append(out, g.randomInstruction())
	}
	out[g.rng.IntN(len(out))] = g.randomInstruction()
	return out
}

// SwapInstructions swaps two adjacent instructions.
func (g *Generator) SwapInstructions(seq []Instr) []Instr {
	out := copySeq(seq)
	if len(out) < 2 {
		return out
	}
	pos := g.rng.IntN(len(out) - 1)
	out[pos], out[pos+1] = out[pos+1], out[pos]
	return out
}

// DeleteInstruction removes one instruction (if len > 1).
func (g *Generator) DeleteInstruction(seq []Instr) []Instr {
	if len(seq) <= 1 {
		return copySeq(seq)
	}
	pos := g.rng.IntN(len(seq))
	out := make([]Instr, 0, len(seq)-1)
	out = append(out, seq[:pos]...)
	return append(out, seq[pos+1:]...)
}

// InsertInstruction adds a random instruction at a random position.
func (g *Generator) InsertInstruction(seq []Instr) []Instr {
	if len(seq) >= g.maxLen {
		return g.ReplaceInstruction(seq)
	}
	pos := g.rng.IntN(len(seq) + 1)
	out := make([]Instr, 0, len(seq)+1)
	out = append(out, seq[:pos]...)
	out = append(out, g.randomInstruction())
	return append(out, seq[pos:]...)
}

// ChangeOperand randomizes one operand byte. If no instruction has
// operands, falls back to ReplaceInstruction.
func (g *Generator) ChangeOperand(seq []Instr) []Instr {
	var pos []int
	for i, in := range seq {
		if len(in) > 1 {
			pos = append(pos, i)
		}
	}
	if len(pos) == 0 {
		return g.ReplaceInstruction(seq)
	}
	out := copySeq(seq)
	i := pos[g.rng.IntN(len(pos))]
	in := append(Instr(nil), out[i]...)
	in[1+g.rng.IntN(len(in)-1)] = uint8(g.rng.IntN(256))
	out[i] = in
	return out
}

// Flatten concatenates the encodings of seq.
func Flatten(seq []Instr) []byte {
	var out []byte
	for _, in := range seq {
		out = append(out, in...)
	}
	return out
}

func (g *Generator) randomInstruction() Instr {
	op := g.opcodes[g.rng.IntN(len(g.opcodes))]
	in := make(Instr, 1+g.operands[op])
	in[0] = op
	for i := 1; i < len(in); i++ {
		in[i] = uint8(g.rng.IntN(256))
	}
	return in
}

func copySeq(seq []Instr) []Instr {
	out := make([]Instr, len(seq))
	copy(out, seq)
	return out
}
