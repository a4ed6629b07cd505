package bus

import "fmt"

// Module identifies a hardware module as the source or destination of a bus
// transfer.
type Module uint8

const (
	None Module = iota
	CU
	Memory
	ALU
	Registers
	Clock
)

var moduleNames = [...]string{"NONE", "CU", "MEMORY", "ALU", "REGISTERS", "CLOCK"}

func (m Module) String() string {
	if int(m) < len(moduleNames) {
		return moduleNames[m]
	}
	return fmt.Sprintf("MODULE(%d)", m)
}

// Bus carries a single fixed-width value between modules.
//
// Values wider than the bus are truncated and the low-order bits are kept.
type Bus struct {
	Name        string
	Source      Module
	Destination Module

	width uint
	mask  uint32
	value uint32
	busy  bool
}

// New creates a bus of the given width in bits (1-32).
func New(name string, width uint) *Bus {
	if width == 0 || width > 32 {
		panic(fmt.Sprintf("bus %s: unsupported width %d", name, width))
	}
	return &Bus{
		Name:  name,
		width: width,
		mask:  uint32(1<<width - 1),
	}
}

// Deposit replaces the contents of the bus.
func (b *Bus) Deposit(value uint32, src, dst Module) {
	b.value = value & b.mask
	b.Source = src
	b.Destination = dst
	b.busy = true
}

// Read returns the current contents without changing them.
func (b *Bus) Read() uint32 {
	return b.value
}

// Busy returns true between a Deposit() and the matching Release().
func (b *Bus) Busy() bool {
	return b.busy
}

// Release is called by the destination once it has taken the value.
func (b *Bus) Release() {
	b.busy = false
}

// Width returns the width of the bus in bits.
func (b *Bus) Width() uint {
	return b.width
}

func (b *Bus) String() string {
	return fmt.Sprintf("%s=%#0*x %s->%s", b.Name, int(b.width+3)/4+2, b.value, b.Source, b.Destination)
}
