package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roach88/agentsim/internal/sim"
	"github.com/roach88/agentsim/internal/store"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	Database string
	RunID    string // empty selects the latest run
	List     bool
	Final    bool // only the last snapshot
}

// RunReport is one run with its snapshots.
type RunReport struct {
	Run       store.Run       `json:"run"`
	Snapshots []*sim.Snapshot `json:"snapshots"`
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show recorded runs and their snapshots",
		Long: `Read runs recorded by the run command.

Without --run the most recent run is shown. --list prints one line per
run instead.

Example:
  agentsim report --db ./runs.db
  agentsim report --db ./runs.db --run 0190f1e2-... --final
  agentsim report --db ./runs.db --list`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id (default: latest run)")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list all runs")
	cmd.Flags().BoolVar(&opts.Final, "final", false, "show only the last snapshot")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReport(opts *ReportOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if _, err := os.Stat(opts.Database); errors.Is(err, os.ErrNotExist) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "database not found: "+opts.Database, nil)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	if opts.List {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to list runs", err)
		}
		return formatter.Success(runs, func(w io.Writer) { printRunList(w, runs) })
	}

	var run store.Run
	if opts.RunID != "" {
		run, err = st.ReadRun(ctx, opts.RunID)
	} else {
		run, err = st.LatestRun(ctx)
	}
	if errors.Is(err, store.ErrRunNotFound) {
		msg := "no runs recorded"
		if opts.RunID != "" {
			msg = "run not found: " + opts.RunID
		}
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, msg, nil)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to read run", err)
	}

	snaps, err := st.ReadSnapshots(ctx, run.ID)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to read snapshots", err)
	}
	if opts.Final && len(snaps) > 0 {
		snaps = snaps[len(snaps)-1:]
	}

	report := RunReport{Run: run, Snapshots: snaps}
	return formatter.Success(report, func(w io.Writer) { printRunReport(w, report) })
}

func printRunList(w io.Writer, runs []store.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tMODEL\tSEED\tPERSONS\tSTATUS\tEND\tACTIONS\tSTARTED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Model, r.Seed, humanize.Comma(int64(r.Persons)), r.Status,
			humanize.Ftoa(r.EndTime), humanize.Comma(int64(r.Executed)), startedAt(r.StartedAt))
	}
	tw.Flush()
}

func printRunReport(w io.Writer, rep RunReport) {
	r := rep.Run
	fmt.Fprintf(w, "Run: %s\n", r.ID)
	fmt.Fprintf(w, "Model: %s (seed %d, %s person(s))\n", r.Model, r.Seed, humanize.Comma(int64(r.Persons)))
	fmt.Fprintf(w, "Status: %s\n", r.Status)
	fmt.Fprintf(w, "Started: %s\n", startedAt(r.StartedAt))
	if r.Status != store.StatusRunning {
		fmt.Fprintf(w, "Ended: t=%s h after %s action(s)\n", humanize.Ftoa(r.EndTime), humanize.Comma(int64(r.Executed)))
	}
	if r.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", r.Error)
	}

	if len(rep.Snapshots) == 0 {
		fmt.Fprintln(w, "\n(no snapshots)")
		return
	}
	for _, s := range rep.Snapshots {
		fmt.Fprintln(w)
		final := ""
		if s.Final {
			final = " (final)"
		}
		fmt.Fprintf(w, "=== Snapshot %d t=%s%s ===\n", s.Seq, humanize.Ftoa(s.Time), final)

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  LOCATION\tTYPE\tNOW\tMAX\tSAMPLES\tHOURS")
		for _, l := range s.Locations {
			fmt.Fprintf(tw, "  %s\t%s\t%d\t%d\t%s\t%s\n",
				l.Name, l.Type, l.Occupancy, l.MaxOccupancy, humanize.Comma(l.Samples), humanize.FtoaWithDigits(l.Hours, 2))
		}
		tw.Flush()

		if len(s.Phases) == 0 {
			continue
		}
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  PHASE\tCLASS\tCOUNT")
		for _, p := range s.Phases {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", p.Name, p.Class, humanize.Comma(int64(p.Count)))
		}
		tw.Flush()
	}
}

// startedAt renders a stored RFC 3339 timestamp with its age.
func startedAt(ts string) string {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	return fmt.Sprintf("%s (%s)", ts, humanize.Time(t))
}
