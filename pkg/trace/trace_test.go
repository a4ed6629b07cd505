package trace

import (
	"bytes"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/oisee/gbz80-sim/pkg/cpu"
)

func TestRecorderLimit(t *testing.T) {
	r := NewRecorder(2)
	for i := 0; i < 5; i++ {
		r.Add(Event{Cycle: uint64(i), Module: "cu"})
	}
	if r.Len() != 2 || r.Dropped() != 3 {
		t.Errorf("Len = %d, Dropped = %d", r.Len(), r.Dropped())
	}
	ev := r.Events()
	if ev[0].Cycle != 0 || ev[1].Cycle != 1 {
		t.Errorf("kept %v, want the first two events", ev)
	}
}

func TestRecorderConcurrent(t *testing.T) {
	r := NewRecorder(0)
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				r.Add(Event{Module: "memory"})
			}
		}()
	}
	wg.Wait()
	if r.Len() != 400 {
		t.Errorf("Len = %d, want 400", r.Len())
	}
}

func TestFilter(t *testing.T) {
	r := NewRecorder(0)
	r.Add(Event{Module: "cu", Action: "fetch"})
	r.Add(Event{Module: "memory", Action: "respond"})
	r.Add(Event{Module: "cu", Action: "latch"})
	got := r.Filter("cu")
	if len(got) != 2 || got[1].Action != "latch" {
		t.Errorf("Filter(cu) = %v", got)
	}
}

func TestJSON(t *testing.T) {
	in := []Event{
		{Cycle: 1, MCycle: 0, T: 1, Module: "cu", Phase: "M1R", Action: "addr", Value: 0x0100},
		{Cycle: 4, MCycle: 0, T: 4, Module: "cu", Phase: "M1R", Action: "exec", Value: 0x80},
	}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, in); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"phase": "M1R"`) {
		t.Errorf("unexpected JSON:\n%s", buf.String())
	}
	out, err := ReadJSON(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Errorf("ReadJSON = %v", out)
	}
	if _, err := ReadJSON(strings.NewReader("{")); err == nil {
		t.Error("ReadJSON accepted malformed input")
	}
}

func TestSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.gob")
	snap := &Snapshot{
		Regs:         cpu.State{A: 5, B: 5, PC: 3, F: cpu.FlagH},
		Program:      []byte{0x06, 0x05, 0x80},
		Cycles:       12,
		MCycles:      3,
		Instructions: 2,
	}
	if err := SaveSnapshot(path, snap); err != nil {
		t.Fatal(err)
	}
	got, err := LoadSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Regs != snap.Regs || !bytes.Equal(got.Program, snap.Program) || got.Cycles != 12 || got.Instructions != 2 {
		t.Errorf("LoadSnapshot = %+v", got)
	}
	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("LoadSnapshot of missing file succeeded")
	}
}
