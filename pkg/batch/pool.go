// Package batch runs independent programs on separate machines in parallel.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/oisee/gbz80-sim/pkg/cpu"
	"github.com/oisee/gbz80-sim/pkg/inst"
	"github.com/oisee/gbz80-sim/pkg/logger"
	"github.com/oisee/gbz80-sim/pkg/machine"
	"github.com/oisee/gbz80-sim/pkg/memory"
)

// Config holds batch configuration.
type Config struct {
	NumWorkers int         // parallel machines (defaults to NumCPU)
	Speed      int         // clock divisor passed to every machine
	Table      *inst.Table // instruction set (defaults to the built-in table)
	MemSize    int         // backing store size (defaults to memory.DefaultSize)
	Verbose    bool        // log every finished job
	Log        *logger.Logger
}

// Job is one program to run.
type Job struct {
	Name    string
	Program []byte
	Regs    cpu.State // initial registers
}

// Result is the outcome of one job. Err holds a load or run failure; the
// registers are those at the point the run stopped.
type Result struct {
	Name   string
	Regs   cpu.State
	Stats  machine.Stats
	Cycles uint64
	Err    error
}

// Pool runs jobs on a bounded number of goroutines. Each job gets its own
// memory, machine and scheduler, so nothing is shared between workers but the
// logger.
type Pool struct {
	cfg       Config
	mu        sync.Mutex
	results   []Result
	completed atomic.Int64
	failed    atomic.Int64
}

// NewPool creates a pool.
func NewPool(cfg Config) *Pool {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = runtime.NumCPU()
	}
	if cfg.Table == nil {
		cfg.Table = inst.Default()
	}
	if cfg.Log == nil {
		cfg.Log = logger.Central()
	}
	return &Pool{cfg: cfg}
}

// Stats returns the number of jobs finished and how many of them failed.
func (p *Pool) Stats() (completed, failed int64) {
	return p.completed.Load(), p.failed.Load()
}

// Run executes every job and returns the results sorted by name. A failing
// job does not stop the others; only cancellation of ctx aborts the batch.
func (p *Pool) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.NumWorkers)

	for _, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res := p.runJob(gctx, job)
			p.mu.Lock()
			p.results = append(p.results, res)
			p.mu.Unlock()
			return gctx.Err()
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Result, len(p.results))
	copy(out, p.results)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out, err
}

func (p *Pool) runJob(ctx context.Context, job Job) Result {
	res := Result{Name: job.Name, Regs: job.Regs}
	defer func() {
		p.completed.Add(1)
		if res.Err != nil {
			p.failed.Add(1)
		}
		if p.cfg.Verbose {
			if res.Err != nil {
				p.cfg.Log.Logf("batch", "%s: %v", job.Name, res.Err)
			} else {
				p.cfg.Log.Logf("batch", "%s: %d instructions, %d T-states", job.Name, res.Stats.Instructions, res.Cycles)
			}
		}
	}()

	mem := memory.New(p.cfg.MemSize)
	if err := mem.Load(job.Program); err != nil {
		res.Err = fmt.Errorf("loading %s: %w", job.Name, err)
		return res
	}
	m := machine.New(mem, machine.Config{
		Speed: p.cfg.Speed,
		Table: p.cfg.Table,
		Regs:  job.Regs,
		Log:   p.cfg.Log,
	})
	res.Err = m.Run(ctx)
	res.Regs = m.Regs
	res.Stats = m.Stats()
	res.Cycles = m.Clock.Cycles()
	return res
}
