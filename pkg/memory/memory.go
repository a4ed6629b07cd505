package memory

import (
	"errors"
	"fmt"
)

// DefaultSize covers the 16-bit address space.
const DefaultSize = 0x10000

// ErrFull is returned when a load runs past the end of the store.
var ErrFull = errors.New("memory full")

// AddressError is returned by Read for addresses that were never loaded.
type AddressError struct {
	Addr     int
	NumBytes int
}

func (err *AddressError) Error() string {
	return fmt.Sprintf("read at %#04x beyond loaded bytes (%d)", err.Addr, err.NumBytes)
}

// Memory is a flat byte store. It is filled sequentially by a loader and
// then read at random.
type Memory struct {
	data  []byte
	index int
}

// New creates an empty store of the given capacity. A size of zero or less
// gives DefaultSize.
func New(size int) *Memory {
	if size <= 0 {
		size = DefaultSize
	}
	return &Memory{data: make([]byte, size)}
}

// Load stores data at the next sequential addresses.
func (m *Memory) Load(data []byte) error {
	if m.index+len(data) > len(m.data) {
		return fmt.Errorf("loading %d bytes at %#04x: %w", len(data), m.index, ErrFull)
	}
	copy(m.data[m.index:], data)
	m.index += len(data)
	return nil
}

// Read returns the byte at addr.
func (m *Memory) Read(addr uint16) (uint8, error) {
	if int(addr) >= m.index {
		return 0, &AddressError{Addr: int(addr), NumBytes: m.index}
	}
	return m.data[addr], nil
}

// NumBytes returns the number of bytes loaded.
func (m *Memory) NumBytes() int {
	return m.index
}

// Bytes returns a copy of the loaded bytes.
func (m *Memory) Bytes() []byte {
	c := make([]byte, m.index)
	copy(c, m.data)
	return c
}
