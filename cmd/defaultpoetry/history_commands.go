package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"defaultpoetry/internal/history"
)

const (
	shortIDLength = 8
	listTimeFmt   = "2006-01-02 15:04:05"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistoryStrict(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderRunsTable(runs))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show a run and its merge decisions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistoryStrict(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("load run: %w", err)
			}
			printRun(cmd, run)
			return nil
		},
	}
}

func openHistoryStrict(ctx *commandContext) (*history.Store, error) {
	cfg := ctx.configValue()
	store, err := history.Open(cfg.Paths.HistoryDB)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

func renderRunsTable(runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			run.Command,
			string(run.Status),
			run.StartedAt.Local().Format(listTimeFmt),
			formatDuration(run),
			strconv.Itoa(run.DecisionCount),
			strconv.Itoa(len(run.FailedSteps)),
			run.ProjectDir,
		})
	}
	return renderTable(
		[]string{"ID", "Command", "Status", "Started", "Duration", "Decisions", "Failed", "Project"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	)
}

func printRun(cmd *cobra.Command, run *history.Run) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run:       %s\n", run.ID)
	fmt.Fprintf(out, "Command:   %s\n", run.Command)
	fmt.Fprintf(out, "Project:   %s\n", run.ProjectDir)
	fmt.Fprintf(out, "Force:     %s\n", yesNo(run.Force))
	fmt.Fprintf(out, "Status:    %s\n", run.Status)
	fmt.Fprintf(out, "Started:   %s\n", run.StartedAt.Local().Format(time.RFC3339))
	if run.FinishedAt != nil {
		fmt.Fprintf(out, "Duration:  %s\n", formatDuration(*run))
	}
	if run.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:     %s\n", run.ErrorMessage)
	}
	if len(run.FailedSteps) > 0 {
		fmt.Fprintln(out, "Failed steps:")
		for _, step := range run.FailedSteps {
			fmt.Fprintf(out, "  %s\n", step)
		}
	}
	if len(run.Decisions) == 0 {
		fmt.Fprintln(out, "No merge decisions")
		return
	}

	rows := make([][]string, 0, len(run.Decisions))
	for _, d := range run.Decisions {
		rows = append(rows, []string{strconv.Itoa(d.Seq), d.Action, d.Path, d.Value, d.Previous})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Action", "Path", "Value", "Previous"},
		rows,
		[]columnAlignment{alignRight},
	))
}

func shortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}

func formatDuration(run history.Run) string {
	if run.FinishedAt == nil {
		return "-"
	}
	return run.Duration().Round(time.Millisecond).String()
}
