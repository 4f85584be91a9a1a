package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"defaultpoetry/internal/preflight"
	"defaultpoetry/internal/report"
	"defaultpoetry/internal/workflow"
)

type projectFlags struct {
	templatesDir string
	force        bool
	noGit        bool
	noCommit     bool
}

func newInitCommand(ctx *commandContext) *cobra.Command {
	var flags projectFlags

	cmd := &cobra.Command{
		Use:   "init PATH",
		Short: "Initialize a new poetry project with the default configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := preflight.RequireTools(ctx.configValue(), !flags.noGit); err != nil {
				return err
			}
			fsys := afero.NewOsFs()
			src, err := ctx.templateSource(fsys, flags.templatesDir)
			if err != nil {
				return err
			}
			mgr, closeHistory, err := ctx.newManager(cmd, fsys)
			if err != nil {
				return err
			}
			defer closeHistory()

			result, err := mgr.Init(cmd.Context(), workflow.Options{
				Path:      args[0],
				Templates: src,
				Force:     flags.force,
				NoGit:     flags.noGit,
				NoCommit:  flags.noCommit,
			})
			if err != nil {
				return err
			}
			printRunResult(ctx.printer(cmd), result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.templatesDir, "config", "c", "", "Directory with the default configuration files")
	cmd.Flags().BoolVarP(&flags.noGit, "no-git", "G", false, "Do not initialize a git repository")
	cmd.Flags().BoolVarP(&flags.noCommit, "no-commit", "C", false, "Do not commit the generated files")
	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite existing files and keys")
	return cmd
}

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "update PATH",
		Short: "Update poetry dependencies and pre-commit hooks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := preflight.RequireTools(ctx.configValue(), false); err != nil {
				return err
			}
			mgr, closeHistory, err := ctx.newManager(cmd, afero.NewOsFs())
			if err != nil {
				return err
			}
			defer closeHistory()

			result, err := mgr.Update(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printRunResult(ctx.printer(cmd), result)
			return nil
		},
	}
}

func newInstallCommand(ctx *commandContext) *cobra.Command {
	var flags projectFlags

	cmd := &cobra.Command{
		Use:   "install PATH",
		Short: "Install the default configuration into an existing project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsys := afero.NewOsFs()
			isGit, err := afero.Exists(fsys, filepath.Join(args[0], ".git"))
			if err != nil {
				return fmt.Errorf("check git repository: %w", err)
			}
			if err := preflight.RequireTools(ctx.configValue(), isGit); err != nil {
				return err
			}
			src, err := ctx.templateSource(fsys, flags.templatesDir)
			if err != nil {
				return err
			}
			mgr, closeHistory, err := ctx.newManager(cmd, fsys)
			if err != nil {
				return err
			}
			defer closeHistory()

			result, err := mgr.Install(cmd.Context(), workflow.Options{
				Path:      args[0],
				Templates: src,
				Force:     flags.force,
				NoCommit:  flags.noCommit,
			})
			if err != nil {
				return err
			}
			printRunResult(ctx.printer(cmd), result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.templatesDir, "config", "c", "", "Directory with the default configuration files")
	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite existing files and keys")
	cmd.Flags().BoolVarP(&flags.noCommit, "no-commit", "C", false, "Do not commit the installed files")
	return cmd
}

// printRunResult closes a workflow with its failed steps. Failed steps do
// not change the exit status.
func printRunResult(printer *report.Printer, result *workflow.Result) {
	if result == nil {
		return
	}
	if !result.Succeeded() {
		printer.Warn(0, fmt.Sprintf("%d step(s) failed:", len(result.FailedSteps)))
		for _, step := range result.FailedSteps {
			printer.Line(1, step)
		}
	}
	if summary := report.Summarize(result.Decisions); summary.Total() > 0 {
		printer.Line(0, report.SummaryTable(summary))
	}
	if result.RunID != "" {
		printer.Item(0, "Run: ", result.RunID)
	}
}
