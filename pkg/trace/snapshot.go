package trace

import (
	"encoding/gob"
	"os"

	"github.com/oisee/gbz80-sim/pkg/cpu"
)

// Snapshot holds the state of a machine at the end of a run.
type Snapshot struct {
	Regs         cpu.State
	Program      []byte
	Cycles       uint64 // T-states
	MCycles      int
	Instructions uint64
	Skipped      uint64 // instructions without execution semantics
}

func init() {
	gob.Register(cpu.State{})
}

// SaveSnapshot writes a snapshot to a file.
func SaveSnapshot(path string, snap *Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(snap)
}

// LoadSnapshot reads a snapshot from a file.
func LoadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var snap Snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
