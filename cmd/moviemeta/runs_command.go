package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"moviemeta/internal/journal"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List journaled fetch runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournal(ctx, func(store *journal.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderRunsTable(runs, time.Now()))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum runs to show (0 for all)")

	cmd.AddCommand(newRunsShowCommand(ctx))
	cmd.AddCommand(newRunsDeleteCommand(ctx))
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run and its unresolved titles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournal(ctx, func(store *journal.Store) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				_, notFound, err := store.LoadState(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run:        %s\n", run.ID)
				fmt.Fprintf(out, "Source:     %s\n", run.Source)
				fmt.Fprintf(out, "Status:     %s\n", run.Status)
				fmt.Fprintf(out, "Started:    %s (%s)\n", run.StartedAt.Local().Format(time.DateTime), humanize.Time(run.StartedAt))
				if !run.FinishedAt.IsZero() {
					fmt.Fprintf(out, "Finished:   %s\n", run.FinishedAt.Local().Format(time.DateTime))
				}
				fmt.Fprintf(out, "Classified: %d of %d (found %d, not found %d)\n", run.Classified(), run.Total, run.Found, run.NotFound)
				fmt.Fprintf(out, "Passes:     %d (restarts %d)\n", run.Passes, run.Restarts)
				fmt.Fprintf(out, "Resumable:  %s\n", yesNo(run.Status != journal.StatusCompleted))
				if run.ErrorMessage != "" {
					fmt.Fprintf(out, "Error:      %s\n", run.ErrorMessage)
				}
				if len(notFound) > 0 {
					fmt.Fprintln(out, "Not found:")
					for _, rec := range notFound {
						fmt.Fprintf(out, "  - %s\n", rec.Candidate())
					}
				}
				return nil
			})
		},
	}
}

func newRunsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Remove a run from the journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournal(ctx, func(store *journal.Store) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := store.DeleteRun(cmd.Context(), run.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", run.ID)
				return nil
			})
		},
	}
}

func withJournal(ctx *commandContext, fn func(*journal.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	store, err := journal.Open(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func renderRunsTable(runs []journal.Run, now time.Time) string {
	headers := []string{"ID", "Status", "Source", "Found", "Not Found", "Restarts", "Started"}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			string(run.Status),
			truncateLeft(run.Source, 40),
			strconv.Itoa(run.Found),
			strconv.Itoa(run.NotFound),
			strconv.Itoa(run.Restarts),
			humanize.RelTime(run.StartedAt, now, "ago", "from now"),
		})
	}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft}
	return renderTable(headers, rows, aligns)
}

// truncateLeft keeps the tail of value, where file names live.
func truncateLeft(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return "…" + string(runes[len(runes)-limit+1:])
}
