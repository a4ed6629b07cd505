package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oisee/gbz80-sim/pkg/batch"
	"github.com/oisee/gbz80-sim/pkg/cpu"
	"github.com/oisee/gbz80-sim/pkg/gen"
	"github.com/oisee/gbz80-sim/pkg/inst"
	"github.com/oisee/gbz80-sim/pkg/logger"
	"github.com/oisee/gbz80-sim/pkg/machine"
	"github.com/oisee/gbz80-sim/pkg/memory"
	"github.com/oisee/gbz80-sim/pkg/statsview"
	"github.com/oisee/gbz80-sim/pkg/trace"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := &cobra.Command{
		Use:          "gbsim",
		Short:        "Cycle-level Game Boy CPU simulator",
		SilenceUsage: true,
	}

	var isaPath string
	var speed int
	var verbose, stats bool
	var server *statsview.Server
	rootCmd.PersistentFlags().StringVar(&isaPath, "isa", "", "Instruction-set file (default: built-in Game Boy table)")
	rootCmd.PersistentFlags().IntVar(&speed, "speed", 1, "Clock sub-ticks per T-state")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Echo log entries to stderr")
	rootCmd.PersistentFlags().BoolVar(&stats, "statsview", false, "Serve runtime graphs at "+statsview.DefaultAddress)
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetEcho(os.Stderr)
		}
		if stats {
			server = statsview.Start(statsview.DefaultAddress, statsview.DefaultInterval, logger.Central())
			if statsview.Available() {
				fmt.Fprintf(os.Stderr, "stats server at %s\n", server.URL())
			} else {
				fmt.Fprintln(os.Stderr, "stats server not available: rebuild with -tags statsview")
			}
		}
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if server != nil {
			server.Stop()
		}
	}

	// run command
	var regs regFlag
	var expr, tracePath, savePath string
	var traceMax int

	runCmd := &cobra.Command{
		Use:   "run [program]",
		Short: "Run a program until PC reaches the end of the loaded bytes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := programFrom(args, expr)
			if err != nil {
				return err
			}
			table, err := loadTable(isaPath)
			if err != nil {
				return err
			}

			var preset cpu.State
			if err := regs.apply(&preset); err != nil {
				return err
			}

			mem := memory.New(0)
			if err := mem.Load(program); err != nil {
				return err
			}
			var rec *trace.Recorder
			if tracePath != "" {
				rec = trace.NewRecorder(traceMax)
			}
			m := machine.New(mem, machine.Config{
				Speed: speed,
				Table: table,
				Regs:  preset,
				Trace: rec,
			})

			before := m.Regs
			runErr := m.Run(ctx)

			highlight := term.IsTerminal(int(os.Stdout.Fd()))
			if err := m.Regs.Dump(os.Stdout, &before, highlight); err != nil {
				return err
			}
			st := m.Stats()
			fmt.Printf("\n%d instructions (%d without semantics), %d T-states, %d M-cycles\n",
				st.Instructions, st.Skipped, m.Clock.Cycles(), m.Clock.MCycle())

			if rec != nil {
				if err := writeTrace(tracePath, rec); err != nil {
					return err
				}
				fmt.Printf("Trace: %d events written to %s\n", rec.Len(), tracePath)
			}
			if savePath != "" {
				if err := trace.SaveSnapshot(savePath, m.Snapshot(program)); err != nil {
					return err
				}
				fmt.Printf("Snapshot written to %s\n", savePath)
			}
			if runErr != nil {
				logger.Tail(os.Stderr, 10)
			}
			return runErr
		},
	}
	runCmd.Flags().Var(&regs, "reg", "Register preset NAME=VALUE (repeatable)")
	runCmd.Flags().StringVarP(&expr, "exec", "e", "", "Program bytes given inline, e.g. \"06 05 80\"")
	runCmd.Flags().StringVar(&tracePath, "trace", "", "Write a JSON trace of every T-state action")
	runCmd.Flags().IntVar(&traceMax, "trace-max", 100000, "Maximum trace events kept (0 = unlimited)")
	runCmd.Flags().StringVar(&savePath, "save", "", "Save the final state to a snapshot file")

	// decode command
	decodeCmd := &cobra.Command{
		Use:   "decode [program]",
		Short: "Disassemble a program without running it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := programFrom(args, expr)
			if err != nil {
				return err
			}
			table, err := loadTable(isaPath)
			if err != nil {
				return err
			}
			return disassemble(os.Stdout, table, program)
		},
	}
	decodeCmd.Flags().StringVarP(&expr, "exec", "e", "", "Program bytes given inline")

	// isa command
	var dumpSource bool

	isaCmd := &cobra.Command{
		Use:   "isa",
		Short: "Validate an instruction set and report opcode coverage",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dumpSource {
				fmt.Print(inst.DefaultSource())
				return nil
			}
			table, err := loadTable(isaPath)
			if err != nil {
				return err
			}
			return reportCoverage(os.Stdout, table)
		},
	}
	isaCmd.Flags().BoolVar(&dumpSource, "dump", false, "Print the built-in instruction set")

	// batch command
	var numWorkers int

	batchCmd := &cobra.Command{
		Use:   "batch [programs...]",
		Short: "Run several programs in parallel",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadTable(isaPath)
			if err != nil {
				return err
			}
			var jobs []batch.Job
			for _, path := range args {
				program, err := loadProgram(path)
				if err != nil {
					return err
				}
				job := batch.Job{Name: filepath.Base(path), Program: program}
				if err := regs.apply(&job.Regs); err != nil {
					return err
				}
				jobs = append(jobs, job)
			}

			pool := batch.NewPool(batch.Config{
				NumWorkers: numWorkers,
				Speed:      speed,
				Table:      table,
				Verbose:    verbose,
			})
			results, err := pool.Run(ctx, jobs)
			for _, r := range results {
				status := "ok"
				if r.Err != nil {
					status = r.Err.Error()
				}
				fmt.Printf("%-20s A=%02X F=%s BC=%02X%02X DE=%02X%02X HL=%02X%02X PC=%04X %6d T  %s\n",
					r.Name, r.Regs.A, r.Regs.FlagString(), r.Regs.B, r.Regs.C, r.Regs.D, r.Regs.E,
					r.Regs.H, r.Regs.L, r.Regs.PC, r.Cycles, status)
			}
			done, failed := pool.Stats()
			fmt.Printf("\n%d programs, %d failed\n", done, failed)
			return err
		},
	}
	batchCmd.Flags().IntVar(&numWorkers, "workers", 0, "Number of workers (0 = NumCPU)")
	batchCmd.Flags().Var(&regs, "reg", "Register preset applied to every program")

	// state command
	stateCmd := &cobra.Command{
		Use:   "state [snapshot]",
		Short: "Print a saved snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := trace.LoadSnapshot(args[0])
			if err != nil {
				return err
			}
			if err := snap.Regs.Dump(os.Stdout, nil, false); err != nil {
				return err
			}
			fmt.Printf("\n%d bytes, %d instructions (%d without semantics), %d T-states, %d M-cycles\n",
				len(snap.Program), snap.Instructions, snap.Skipped, snap.Cycles, snap.MCycles)
			return nil
		},
	}

	// stress command
	var seed uint64
	var runs, maxLen int

	stressCmd := &cobra.Command{
		Use:   "stress",
		Short: "Run random programs and check machine invariants",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadTable(isaPath)
			if err != nil {
				return err
			}
			g := gen.NewGenerator(rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)), table, maxLen)
			log := logger.New(64)

			seq := g.Sequence(max(1, maxLen/2))
			for i := 0; i < runs; i++ {
				if err := gen.Check(ctx, table, seq, speed, log); err != nil {
					return fmt.Errorf("run %d, program % X: %w", i, gen.Flatten(seq), err)
				}
				seq = g.Mutate(seq)
			}
			fmt.Printf("%d random programs passed (%d opcodes, seed %d)\n", runs, g.Opcodes(), seed)
			return nil
		},
	}
	stressCmd.Flags().Uint64Var(&seed, "seed", 1, "Random seed")
	stressCmd.Flags().IntVar(&runs, "runs", 1000, "Number of programs")
	stressCmd.Flags().IntVar(&maxLen, "len", 16, "Maximum instructions per program")

	rootCmd.AddCommand(runCmd, decodeCmd, isaCmd, batchCmd, stateCmd, stressCmd)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
