package machine

import (
	"errors"
	"fmt"

	"github.com/oisee/gbz80-sim/pkg/bus"
	"github.com/oisee/gbz80-sim/pkg/clock"
	"github.com/oisee/gbz80-sim/pkg/cpu"
	"github.com/oisee/gbz80-sim/pkg/inst"
	"github.com/oisee/gbz80-sim/pkg/sched"
)

// errStopped unwinds the control unit when the scheduler terminates it.
var errStopped = errors.New("stopped")

// controlUnit runs the fetch/decode/execute state machine until PC reaches
// the end of the loaded bytes.
func (m *Machine) controlUnit(t *sched.Task, yield func() bool) error {
	defer func() { m.running = false }()
	t.Spawn("memory", m.memoryTask)

	for {
		op := m.Decoder.Next()
		m.phase = op

		var err error
		switch op {
		case inst.M1R, inst.RD:
			if m.wrapped || int(m.Regs.PC) >= m.mem.NumBytes() {
				if op == inst.RD {
					m.log.Logf("cu", "%04Xh: program ends inside %s", m.opAddr, m.Decoder.Current().Mnemonic)
				}
				// the last machine cycle ends on the clock's own T4 to T1 edge
				m.await(1, yield)
				return nil
			}
			err = m.busCycle(op, yield)
		default:
			err = m.idleCycle(op, yield)
		}

		if errors.Is(err, errStopped) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// await yields until the clock reaches T-state n.
func (m *Machine) await(n int, yield func() bool) error {
	for m.Clock.State() != n {
		if !yield() {
			return errStopped
		}
	}
	return nil
}

func step(yield func() bool) error {
	if !yield() {
		return errStopped
	}
	return nil
}

// busCycle reads one byte at PC: the opcode in an M1R cycle, an operand in
// an RD cycle.
func (m *Machine) busCycle(op inst.Op, yield func() bool) error {
	if op == inst.M1R {
		// wait out the rest of the previous machine cycle
		if err := m.await(1, yield); err != nil {
			return err
		}
		m.Clock.Reset()
		m.opAddr = m.Regs.PC
	}

	// T1: address out, memory read requested
	if err := m.await(1, yield); err != nil {
		return err
	}
	m.Addr.Deposit(uint32(m.Regs.PC), bus.CU, bus.Memory)
	m.Lines.Assert(bus.MREQ | bus.RD)
	m.record("cu", "addr", m.Regs.PC)
	if err := step(yield); err != nil {
		return err
	}

	// T2
	if err := m.await(2, yield); err != nil {
		return err
	}
	m.Regs.PC++
	if m.Regs.PC == 0 {
		m.wrapped = true
	}
	m.record("cu", "pc", m.Regs.PC)
	if err := step(yield); err != nil {
		return err
	}

	// T3: one tick of memory latency, then latch the data bus
	if err := m.await(3, yield); err != nil {
		return err
	}
	if err := step(yield); err != nil {
		return err
	}
	for !m.Data.Busy() {
		if err := step(yield); err != nil {
			return err
		}
	}
	b := uint8(m.Data.Read())
	m.Data.Release()
	m.Lines.Deassert(bus.MREQ | bus.RD)

	if op == inst.M1R {
		m.Regs.IR = b
		m.record("cu", "latch", uint16(b))

		// T4: decode and, for single-byte instructions, execute
		if err := m.await(clock.StatesPerCycle, yield); err != nil {
			return err
		}
		if err := m.decode(b, op); err != nil {
			return err
		}
		return step(yield)
	}

	m.Regs.Z = b
	m.record("cu", "operand", uint16(b))
	if err := m.decode(b, op); err != nil {
		return err
	}

	// T4: no bus activity
	if err := m.await(clock.StatesPerCycle, yield); err != nil {
		return err
	}
	return step(yield)
}

// idleCycle spends one machine cycle without bus data.
func (m *Machine) idleCycle(op inst.Op, yield func() bool) error {
	for n := 1; n <= clock.StatesPerCycle; n++ {
		if err := m.await(n, yield); err != nil {
			return err
		}
		m.record("cu", "idle", uint16(n))
		if err := step(yield); err != nil {
			return err
		}
	}
	m.Decoder.Retire()
	return nil
}

// decode hands b to the decoder and runs the instruction once it is
// complete.
func (m *Machine) decode(b uint8, op inst.Op) error {
	d, done, err := m.Decoder.Parse(b, op)
	if err != nil {
		var de *inst.DecodeError
		if errors.As(err, &de) {
			return &DecodeFault{Addr: m.opAddr, Byte: b, Err: err}
		}
		return fmt.Errorf("%04Xh: %w", m.opAddr, err)
	}
	if !done {
		return nil
	}

	m.stats.Instructions++
	m.record("cu", "exec", uint16(d.Opcode))
	if err := m.Seq.Execute(d); err != nil {
		if !cpu.Recoverable(err) {
			return fmt.Errorf("%04Xh: %w", m.opAddr, err)
		}
		m.stats.Skipped++
		m.log.Logf("sequencer", "%04Xh: %v", m.opAddr, err)
	}
	return nil
}
