package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/automatizamg/seilist/internal/config"
	"github.com/automatizamg/seilist/internal/database"
	"github.com/automatizamg/seilist/internal/model"
)

// shortIDLen is how many characters of a run ID are shown in tables.
const shortIDLen = 8

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show previous listing runs",
		Long: `History lists the runs recorded in the local history database, newest first.

Examples:
  # Show the last 20 runs
  seilist history

  # Compare the last two runs
  seilist history diff

  # Compare two specific runs (ID prefixes are accepted)
  seilist history diff 3f2a91c0 8b17d5e4`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.PersistentFlags().String("history-dir", config.XDGDataDir(), "Directory of the history database")
	cmd.Flags().IntP("limit", "n", 20, "Number of runs to show (0 for all)")

	cmd.AddCommand(newHistoryDiffCmd())

	return cmd
}

func newHistoryDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff [old] [new]",
		Short: "Compare the processes listed by two runs",
		Long: `Diff reports the processes that appeared, disappeared or changed between two
runs. Without arguments it compares the last two runs; with one argument it
compares that run with the latest one.`,
		Args: cobra.MaximumNArgs(2),
		RunE: runHistoryDiffCmd,
	}
}

// openHistory opens the existing history database named by --history-dir.
func openHistory(cmd *cobra.Command) (*database.HistoryDB, error) {
	dir, err := cmd.Flags().GetString("history-dir")
	if err != nil {
		return nil, err
	}
	db, err := database.Open(dir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return nil, fmt.Errorf("no run history yet: %w", err)
	}
	return db, nil
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	db, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	printRuns(cmd.OutOrStdout(), runs)
	return nil
}

// printRuns renders runs as a table.
func printRuns(w io.Writer, runs []database.RunSummary) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Run", "Started", "Duration", "Unit", model.CategoryReceived.String(), model.CategoryGenerated.String(), "Total", "Status"})
	for _, r := range runs {
		unit := r.ActiveUnit
		if unit == "" {
			unit = r.TargetUnit
		}
		t.AppendRow(table.Row{
			shortID(r.ID),
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Duration().Round(time.Second),
			unit,
			r.Received,
			r.Generated,
			r.RecordCount,
			runStatus(r),
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func runStatus(r database.RunSummary) string {
	switch {
	case r.Canceled:
		return "interrupted"
	case r.Error != "":
		return "failed"
	default:
		return "ok"
	}
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// runHistoryDiffCmd executes the history diff command.
func runHistoryDiffCmd(cmd *cobra.Command, args []string) error {
	db, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	d, err := diffRuns(cmd.Context(), db, args)
	if err != nil {
		return err
	}
	printDiff(cmd.OutOrStdout(), d)
	return nil
}

func diffRuns(ctx context.Context, db *database.HistoryDB, args []string) (*database.RunDiff, error) {
	switch len(args) {
	case 0:
		return db.DiffLatest(ctx)
	case 1:
		latest, err := db.ListRuns(ctx, 1)
		if err != nil {
			return nil, err
		}
		if len(latest) == 0 {
			return nil, database.ErrNotEnoughRuns
		}
		return db.Diff(ctx, args[0], latest[0].ID)
	default:
		return db.Diff(ctx, args[0], args[1])
	}
}

// printDiff renders the differences between two runs.
func printDiff(w io.Writer, d *database.RunDiff) {
	fmt.Fprintf(w, "%s (%s) -> %s (%s)\n",
		shortID(d.Old.ID), d.Old.StartedAt.Local().Format("2006-01-02 15:04"),
		shortID(d.New.ID), d.New.StartedAt.Local().Format("2006-01-02 15:04"),
	)
	fmt.Fprintf(w, "added: %d  removed: %d  changed: %d  unchanged: %d\n",
		len(d.Added), len(d.Removed), len(d.Changed), d.Unchanged)
	if d.Empty() {
		fmt.Fprintln(w, "No differences.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"", "Process", "Group", "Details"})
	for _, r := range d.Added {
		t.AppendRow(table.Row{"+", r.Number, r.Category.String(), r.Title})
	}
	for _, r := range d.Removed {
		t.AppendRow(table.Row{"-", r.Number, r.Category.String(), r.Title})
	}
	for _, c := range d.Changed {
		t.AppendRow(table.Row{"~", c.New.Number, c.New.Category.String(), strings.Join(c.Fields(), ", ")})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
