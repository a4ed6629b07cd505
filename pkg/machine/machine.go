// Package machine wires the register file, buses, clock, decoder and
// sequencer into a CPU whose modules run as cooperative tasks.
package machine

import (
	"context"
	"fmt"

	"github.com/oisee/gbz80-sim/pkg/bus"
	"github.com/oisee/gbz80-sim/pkg/clock"
	"github.com/oisee/gbz80-sim/pkg/cpu"
	"github.com/oisee/gbz80-sim/pkg/inst"
	"github.com/oisee/gbz80-sim/pkg/logger"
	"github.com/oisee/gbz80-sim/pkg/sched"
	"github.com/oisee/gbz80-sim/pkg/trace"
)

// Store is the backing memory as seen by the CPU.
type Store interface {
	Read(addr uint16) (uint8, error)
	NumBytes() int
}

// Config holds machine parameters. Zero values select defaults.
type Config struct {
	Speed int         // sub-ticks per T-state, default 1
	Table *inst.Table // instruction set, default inst.Default()
	Regs  cpu.State   // initial register values

	Trace *trace.Recorder // optional per T-state event log
	Log   *logger.Logger  // default: the central logger
}

// DecodeFault is returned by Run when a fetched byte matches no row, or more
// than one row, of the instruction set.
type DecodeFault struct {
	Addr uint16 // address of the offending byte
	Byte uint8
	Err  error
}

func (e *DecodeFault) Error() string {
	return fmt.Sprintf("decode fault at %04Xh: %v", e.Addr, e.Err)
}

func (e *DecodeFault) Unwrap() error { return e.Err }

// Stats counts what a run did.
type Stats struct {
	Instructions uint64 // instructions decoded to completion
	Skipped      uint64 // of which had no execution semantics
}

// Machine is one simulated CPU.
type Machine struct {
	Regs    cpu.State
	Addr    *bus.Bus // 16-bit address bus
	Data    *bus.Bus // 8-bit data bus
	Lines   bus.Lines
	Clock   *clock.Clock
	Decoder *inst.Decoder
	Seq     *cpu.Sequencer

	mem   Store
	log   *logger.Logger
	trace *trace.Recorder

	running bool
	wrapped bool   // PC has wrapped past FFFFh
	opAddr  uint16 // address of the instruction in flight
	phase   inst.Op
	stats   Stats
}

// New creates a machine reading from mem.
func New(mem Store, cfg Config) *Machine {
	if cfg.Table == nil {
		cfg.Table = inst.Default()
	}
	if cfg.Log == nil {
		cfg.Log = logger.Central()
	}
	m := &Machine{
		Regs:    cfg.Regs,
		Addr:    bus.New("addr", 16),
		Data:    bus.New("data", 8),
		Clock:   clock.New(cfg.Speed),
		Decoder: inst.NewDecoder(cfg.Table),
		mem:     mem,
		log:     cfg.Log,
		trace:   cfg.Trace,
	}
	m.Regs.F &= 0xF0
	m.Seq = cpu.NewSequencer(&m.Regs, mem)
	return m
}

// Start registers the clock and control-unit tasks with s. The control unit
// spawns the memory interface as its child.
func (m *Machine) Start(s *sched.Scheduler) {
	m.running = true
	s.Register("clock", m.clockTask)
	s.Register("cu", m.controlUnit)
}

// Run executes the loaded program to completion on a private scheduler.
// Failures arrive wrapped in a *sched.TaskError.
func (m *Machine) Run(ctx context.Context) error {
	s := sched.New()
	s.Log = m.log
	m.Start(s)
	return s.Run(ctx)
}

// Running reports whether the control unit is still executing.
func (m *Machine) Running() bool {
	return m.running
}

// Stats returns the instruction counters.
func (m *Machine) Stats() Stats {
	return m.stats
}

// Snapshot captures the machine state for saving.
func (m *Machine) Snapshot(program []byte) *trace.Snapshot {
	return &trace.Snapshot{
		Regs:         m.Regs,
		Program:      program,
		Cycles:       m.Clock.Cycles(),
		MCycles:      m.Clock.MCycle(),
		Instructions: m.stats.Instructions,
		Skipped:      m.stats.Skipped,
	}
}

func (m *Machine) record(module, action string, value uint16) {
	if m.trace == nil {
		return
	}
	m.trace.Add(trace.Event{
		Cycle:  m.Clock.Cycles(),
		MCycle: m.Clock.MCycle(),
		T:      m.Clock.State(),
		Module: module,
		Phase:  m.phase.String(),
		Action: action,
		Value:  value,
	})
}

// clockTask advances the clock once per scheduler pass while the control
// unit runs.
func (m *Machine) clockTask(t *sched.Task, yield func() bool) error {
	for m.running {
		if m.Clock.Advance() {
			if m.Clock.Enable() {
				m.Lines.Assert(bus.CE)
			} else {
				m.Lines.Deassert(bus.CE)
			}
		}
		if !yield() {
			return nil
		}
	}
	return nil
}

// memoryTask answers read requests on the address bus with the addressed byte
// on the data bus.
func (m *Machine) memoryTask(t *sched.Task, yield func() bool) error {
	for {
		if m.Addr.Busy() && m.Addr.Destination == bus.Memory && m.Lines.Asserted(bus.MREQ|bus.RD) {
			addr := uint16(m.Addr.Read())
			m.Addr.Release()
			v, err := m.mem.Read(addr)
			if err != nil {
				return err
			}
			m.Data.Deposit(uint32(v), bus.Memory, bus.CU)
			m.record("memory", "respond", uint16(v))
		}
		if !yield() {
			return nil
		}
	}
}
