package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"defaultpoetry/internal/deps"
	"defaultpoetry/internal/preflight"
	"defaultpoetry/internal/report"
	"defaultpoetry/internal/runner"
	"defaultpoetry/internal/templates"
)

var errCheckFailed = errors.New("system check failed")

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check external tools and directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := report.ShouldColorize(out)
			failed := false

			writeSection(out, "Configuration", colorize)
			configMessage := ctx.configPath
			if !ctx.configExists {
				configMessage += " (not found, using defaults)"
			}
			fmt.Fprintln(out, renderStatusLine("Settings", statusInfo, configMessage, colorize))
			fmt.Fprintln(out, renderStatusLine("Templates", statusInfo, templates.FromConfig(afero.NewOsFs(), cfg).String(), colorize))

			writeSection(out, "Tools", colorize)
			statuses := preflight.CheckSystemDeps(cfg)
			for _, status := range statuses {
				kind, message := toolStatus(status)
				if kind == statusError {
					failed = true
				}
				fmt.Fprintln(out, renderStatusLine(status.Name, kind, message, colorize))
			}

			probes := preflight.ProbeVersions(
				cmd.Context(),
				statuses,
				time.Duration(cfg.Workflow.ProbeTimeout)*time.Second,
				runner.New(logger, 0).Output,
			)
			var versions []string
			for i, probe := range probes {
				switch {
				case !statuses[i].Available:
				case probe.Err != nil:
					versions = append(versions, renderStatusLine(probe.Name, statusWarn, probe.Err.Error(), colorize))
				default:
					versions = append(versions, renderStatusLine(probe.Name, statusOK, probe.Version, colorize))
				}
			}
			if len(versions) > 0 {
				writeSection(out, "Versions", colorize)
				for _, line := range versions {
					fmt.Fprintln(out, line)
				}
			}

			writeSection(out, "Storage", colorize)
			result := preflight.HistoryDirectory(cfg)
			kind := statusOK
			if !result.Passed {
				kind = statusError
				failed = true
			}
			fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))

			if failed {
				return errCheckFailed
			}
			return nil
		},
	}
}

func toolStatus(status deps.Status) (statusKind, string) {
	switch {
	case status.Available:
		return statusOK, status.Path
	case status.Optional:
		return statusWarn, status.Detail
	default:
		return statusError, status.Detail
	}
}

func writeSection(out io.Writer, title string, colorize bool) {
	for _, line := range renderSectionHeader(title, colorize) {
		fmt.Fprintln(out, line)
	}
}
