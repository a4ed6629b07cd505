package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/oisee/gbz80-sim/pkg/cpu"
	"github.com/oisee/gbz80-sim/pkg/logger"
	"github.com/oisee/gbz80-sim/pkg/machine"
	"github.com/oisee/gbz80-sim/pkg/memory"
)

func TestRunSorted(t *testing.T) {
	var jobs []Job
	for i := 19; i >= 0; i-- {
		jobs = append(jobs, Job{
			Name:    fmt.Sprintf("job%02d", i),
			Program: []byte{0x06, uint8(i), 0x80},
			Regs:    cpu.State{A: 1},
		})
	}
	p := NewPool(Config{NumWorkers: 4, Log: logger.New(8)})
	results, err := p.Run(context.Background(), jobs)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 20 {
		t.Fatalf("%d results, want 20", len(results))
	}
	for i, r := range results {
		if r.Name != fmt.Sprintf("job%02d", i) {
			t.Errorf("result %d is %s", i, r.Name)
		}
		if r.Err != nil {
			t.Errorf("%s: %v", r.Name, r.Err)
		}
		if r.Regs.A != uint8(i+1) || r.Regs.B != uint8(i) {
			t.Errorf("%s: A = %d B = %d", r.Name, r.Regs.A, r.Regs.B)
		}
		if r.Stats.Instructions != 2 || r.Cycles != 12 {
			t.Errorf("%s: stats %+v cycles %d", r.Name, r.Stats, r.Cycles)
		}
	}
	if done, failed := p.Stats(); done != 20 || failed != 0 {
		t.Errorf("Stats = %d, %d", done, failed)
	}
}

func TestFailuresIsolated(t *testing.T) {
	jobs := []Job{
		{Name: "ok", Program: []byte{0x3E, 0x09}},
		{Name: "fault", Program: []byte{0x00, 0xFD}},
		{Name: "toolarge", Program: make([]byte, 32)},
	}
	log := logger.New(8)
	p := NewPool(Config{NumWorkers: 2, MemSize: 16, Verbose: true, Log: log})
	results, err := p.Run(context.Background(), jobs)
	if err != nil {
		t.Fatal(err)
	}

	byName := make(map[string]Result)
	for _, r := range results {
		byName[r.Name] = r
	}
	if r := byName["ok"]; r.Err != nil || r.Regs.A != 9 {
		t.Errorf("ok: %+v", r)
	}
	var df *machine.DecodeFault
	if r := byName["fault"]; !errors.As(r.Err, &df) || df.Byte != 0xFD {
		t.Errorf("fault: %v", r.Err)
	}
	if r := byName["toolarge"]; !errors.Is(r.Err, memory.ErrFull) {
		t.Errorf("toolarge: %v", r.Err)
	}
	if _, failed := p.Stats(); failed != 2 {
		t.Errorf("failed = %d, want 2", failed)
	}
	if len(log.Entries()) == 0 {
		t.Error("verbose pool logged nothing")
	}
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPool(Config{NumWorkers: 1, Log: logger.New(8)})
	_, err := p.Run(ctx, []Job{{Name: "a", Program: []byte{0x00}}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want context.Canceled", err)
	}
}

func TestCyclesIndependentOfSpeed(t *testing.T) {
	jobs := []Job{{Name: "ld-add", Program: []byte{0x06, 0x05, 0x80}}}
	for _, speed := range []int{1, 2, 5} {
		p := NewPool(Config{NumWorkers: 1, Speed: speed, Log: logger.New(8)})
		results, err := p.Run(context.Background(), jobs)
		if err != nil {
			t.Fatal(err)
		}
		if r := results[0]; r.Cycles != 12 || r.Regs.A != 5 {
			t.Errorf("speed %d: %d T-states, A = %d, want 12, 5", speed, r.Cycles, r.Regs.A)
		}
	}
}
