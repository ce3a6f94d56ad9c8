package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roach88/agentsim/internal/modeldef"
	"github.com/roach88/agentsim/internal/sim"
	"github.com/roach88/agentsim/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Hours    float64 // overrides horizon_hours when positive
	Seed     uint64  // overrides seed when the flag is set
	Trace    string  // trace file, "-" for stdout

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs store.RunIDGenerator
}

// RunSummary is the outcome of one run.
type RunSummary struct {
	RunID    string  `json:"run_id"`
	Model    string  `json:"model"`
	Seed     uint64  `json:"seed"`
	Persons  int     `json:"persons"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Executed uint64  `json:"executed"`
	Pending  int     `json:"pending"`
	Starts   uint64  `json:"starts"`
	Skips    uint64  `json:"skips"`
	Reports  int     `json:"reports"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <model-file>",
		Short: "Run a model and record its snapshots",
		Long: `Run a model file up to its horizon on the discrete-event scheduler.

The run is recorded in a SQLite database (created if it doesn't exist):
one row per run plus every periodic and final snapshot. Inspect it with
the report command.

Example:
  agentsim run --db ./runs.db ./town.yaml
  agentsim run --db /tmp/runs.db --hours 168 --seed 7 --trace - ./town.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModel(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().Float64Var(&opts.Hours, "hours", 0, "simulated hours to run (overrides horizon_hours)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed (overrides seed)")
	cmd.Flags().StringVar(&opts.Trace, "trace", "", "write an activity and phase trace to this file (- for stdout)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runModel(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if opts.Hours < 0 {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("--hours must not be negative, got %g", opts.Hours), nil)
	}
	ov := overrides{horizon: opts.Hours}
	if cmd.Flags().Changed("seed") {
		seed := opts.Seed
		ov.seed = &seed
	}

	_, m, err := loadModel(formatter, path, ov)
	if err != nil {
		return err
	}

	var tracer *sim.TextTracer
	if opts.Trace != "" {
		w, closeTrace, err := openTrace(opts.Trace, cmd.OutOrStdout())
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to open trace file", err)
		}
		defer closeTrace()
		tracer = sim.NewTextTracer(w)
	}

	slog.Info("opening database", "path", opts.Database)
	var storeOpts []store.Option
	if opts.RunIDs != nil {
		storeOpts = append(storeOpts, store.WithRunIDGenerator(opts.RunIDs))
	}
	st, err := store.Open(opts.Database, storeOpts...)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, stopping run", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	runID, err := st.BeginRun(ctx, store.RunInfo{
		Model:        m.Name,
		Seed:         m.Seed,
		StartHour:    m.StartHour,
		HorizonHours: m.HorizonHours,
		Persons:      m.Population.Size(),
	})
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to record run", err)
	}
	formatter.VerboseLog("Run %s started", runID)

	simOpts := []sim.Option{sim.WithReporter(st.Reporter(runID))}
	if tracer != nil {
		simOpts = append(simOpts, sim.WithTracer(tracer))
	}

	res, err := execute(ctx, m, simOpts, tracer)
	if finishErr := st.FinishRun(context.WithoutCancel(ctx), runID, res, err); finishErr != nil {
		slog.Error("error finishing run", "run", runID, "error", finishErr)
	}
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeRunFailed, "run "+runID+" failed", err)
	}

	summary := RunSummary{
		RunID:    runID,
		Model:    m.Name,
		Seed:     m.Seed,
		Persons:  m.Population.Size(),
		Start:    res.Start,
		End:      res.End,
		Executed: res.Executed,
		Pending:  res.Pending,
		Starts:   res.Starts,
		Skips:    res.Skips,
		Reports:  res.Reports,
	}
	return formatter.Success(summary, func(w io.Writer) { printRunSummary(w, summary) })
}

func execute(ctx context.Context, m *modeldef.Model, opts []sim.Option, tracer *sim.TextTracer) (*sim.Result, error) {
	s, err := sim.New(m, opts...)
	if err != nil {
		return nil, err
	}
	res, err := s.Run(ctx)
	if err != nil {
		return nil, err
	}
	if tracer != nil {
		if err := tracer.Err(); err != nil {
			return res, fmt.Errorf("writing trace: %w", err)
		}
	}
	return res, nil
}

func openTrace(path string, stdout io.Writer) (io.Writer, func(), error) {
	if path == "-" {
		return stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() {
		if err := f.Close(); err != nil {
			slog.Error("error closing trace file", "path", path, "error", err)
		}
	}, nil
}

func printRunSummary(w io.Writer, s RunSummary) {
	fmt.Fprintf(w, "✓ Run %s finished\n", s.RunID)
	fmt.Fprintf(w, "  Model:      %s (%s person(s), seed %d)\n", s.Model, humanize.Comma(int64(s.Persons)), s.Seed)
	fmt.Fprintf(w, "  Time:       %s h -> %s h\n", humanize.Ftoa(s.Start), humanize.Ftoa(s.End))
	fmt.Fprintf(w, "  Actions:    %s executed, %s pending\n",
		humanize.Comma(int64(s.Executed)), humanize.Comma(int64(s.Pending)))
	fmt.Fprintf(w, "  Activities: %s started, %s skipped\n",
		humanize.Comma(int64(s.Starts)), humanize.Comma(int64(s.Skips)))
	fmt.Fprintf(w, "  Reports:    %d\n", s.Reports)
}
