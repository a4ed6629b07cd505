package gen

import (
	"context"
	"fmt"

	"github.com/oisee/gbz80-sim/pkg/inst"
	"github.com/oisee/gbz80-sim/pkg/logger"
	"github.com/oisee/gbz80-sim/pkg/machine"
	"github.com/oisee/gbz80-sim/pkg/memory"
	"github.com/oisee/gbz80-sim/pkg/sched"
)

// Check runs seq on a fresh machine and verifies the invariants that hold
// for any well-formed program without control flow:
//
//   - the run ends without a fault and every task has finished
//   - PC stops at the end of the program
//   - every instruction was decoded
//   - the low nibble of F is zero
func Check(ctx context.Context, t *inst.Table, seq []Instr, speed int, log *logger.Logger) error {
	program := Flatten(seq)
	mem := memory.New(0)
	if err := mem.Load(program); err != nil {
		return err
	}
	m := machine.New(mem, machine.Config{Speed: speed, Table: t, Log: log})
	s := sched.New()
	s.Log = log
	m.Start(s)
	if err := s.Run(ctx); err != nil {
		return err
	}

	switch {
	case s.Len() != 0:
		return fmt.Errorf("%d tasks left after run", s.Len())
	case int(m.Regs.PC) != len(program):
		return fmt.Errorf("PC = %04Xh, want %04Xh", m.Regs.PC, len(program))
	case m.Stats().Instructions != uint64(len(seq)):
		return fmt.Errorf("%d instructions decoded, want %d", m.Stats().Instructions, len(seq))
	case m.Regs.F&0x0F != 0:
		return fmt.Errorf("F = %08b has low bits set", m.Regs.F)
	}
	return nil
}
