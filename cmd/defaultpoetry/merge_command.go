package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"defaultpoetry/internal/logging"
	"defaultpoetry/internal/merge"
	"defaultpoetry/internal/report"
	"defaultpoetry/internal/tomldoc"
)

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var force bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "merge TARGET SOURCE",
		Short: "Merge the TOML document SOURCE into TARGET, keeping TARGET's formatting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			targetPath, sourcePath := args[0], args[1]
			fsys := afero.NewOsFs()
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}

			original, err := afero.ReadFile(fsys, targetPath)
			if err != nil {
				return fmt.Errorf("read target: %w", err)
			}
			target, err := tomldoc.Parse(original)
			if err != nil {
				return fmt.Errorf("parse %s: %w", targetPath, err)
			}
			source, err := tomldoc.LoadFile(fsys, sourcePath)
			if err != nil {
				return err
			}

			decisions, err := merge.Merge(target.Root(), source.Root(), merge.Options{Force: force})
			if err != nil {
				return fmt.Errorf("merge %s: %w", sourcePath, err)
			}

			printer := ctx.printer(cmd)
			printer.Header(fmt.Sprintf("Merging %s into %s", sourcePath, targetPath))
			printer.Decisions(1, decisions)
			report.LogDecisions(cmd.Context(), logger, decisions)

			summary := report.Summarize(decisions)
			out := cmd.OutOrStdout()
			switch {
			case dryRun:
				if diff := unifiedDiff(targetPath, string(original), target.String()); diff != "" {
					fmt.Fprint(out, diff)
				} else {
					printer.Notice(0, "No changes")
				}
			case summary.Changed():
				if err := tomldoc.WriteFile(fsys, targetPath, target); err != nil {
					return fmt.Errorf("write %s: %w", targetPath, err)
				}
				ctx.recordMerge(cmd.Context(), logger, targetPath, force, decisions)
			default:
				printer.Notice(0, "No changes")
			}
			fmt.Fprintln(out, report.SummaryTable(summary))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing keys and conflicting types")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the resulting changes as a diff instead of writing")
	return cmd
}

// recordMerge journals a standalone merge. Journal failures only warn.
func (c *commandContext) recordMerge(ctx context.Context, logger *slog.Logger, targetPath string, force bool, decisions []merge.Decision) {
	store := c.openHistory(logger)
	if store == nil {
		return
	}
	defer store.Close()

	dir, err := filepath.Abs(targetPath)
	if err != nil {
		dir = targetPath
	}
	run, err := store.BeginRun(ctx, "merge", dir, force)
	if err != nil {
		logger.Warn("record merge failed", logging.Error(err))
		return
	}
	if err := store.RecordDecisions(ctx, run.ID, decisions); err != nil {
		logger.Warn("record merge decisions failed", "run_id", run.ID, logging.Error(err))
	}
	if err := store.FinishRun(ctx, run.ID, nil, nil); err != nil {
		logger.Warn("finish merge run failed", "run_id", run.ID, logging.Error(err))
	}
}
