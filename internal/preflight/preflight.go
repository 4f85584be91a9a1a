package preflight

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"defaultpoetry/internal/config"
	"defaultpoetry/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// VersionProbe is the outcome of running `<tool> --version`.
type VersionProbe struct {
	Name    string
	Command string
	Version string
	Err     error
}

// OutputFunc runs a command and returns its trimmed stdout.
type OutputFunc func(ctx context.Context, dir, name string, args ...string) (string, error)

// Requirements lists the tools the workflows invoke.
func Requirements(cfg *config.Config) []deps.Requirement {
	return []deps.Requirement{
		{
			Name:        "poetry",
			Command:     cfg.Poetry.Binary,
			Description: "Required to create projects and install dependencies",
		},
		{
			Name:        "git",
			Command:     cfg.Git.Binary,
			Description: "Required for repository setup and commits",
		},
		{
			Name:        "pre-commit",
			Command:     "pre-commit",
			Description: "Installed into each project's virtualenv; a global copy is optional",
			Optional:    true,
		},
	}
}

// CheckSystemDeps evaluates the external tools for the given config.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(Requirements(cfg))
}

// RequireTools fails when a required tool is missing. git is only required
// when the workflow will use it.
func RequireTools(cfg *config.Config, needGit bool) error {
	statuses := CheckSystemDeps(cfg)
	var missing []string
	for _, name := range deps.MissingRequired(statuses) {
		if name == "git" && !needGit {
			continue
		}
		missing = append(missing, name)
	}
	if len(missing) > 0 {
		return fmt.Errorf("required tools not found on PATH: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ProbeVersions runs `--version` for every available status concurrently.
// Results keep the order of statuses; unavailable tools are left unprobed.
func ProbeVersions(ctx context.Context, statuses []deps.Status, timeout time.Duration, output OutputFunc) []VersionProbe {
	probes := make([]VersionProbe, len(statuses))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, status := range statuses {
		probes[i] = VersionProbe{Name: status.Name, Command: status.Command}
		if !status.Available {
			continue
		}
		group.Go(func() error {
			probeCtx := groupCtx
			if timeout > 0 {
				var cancel context.CancelFunc
				probeCtx, cancel = context.WithTimeout(groupCtx, timeout)
				defer cancel()
			}
			version, err := output(probeCtx, "", status.Command, "--version")
			probes[i].Version = firstLine(version)
			probes[i].Err = err
			return nil
		})
	}
	_ = group.Wait()
	return probes
}

// HistoryDirectory checks the directory that holds the history database.
func HistoryDirectory(cfg *config.Config) Result {
	return CheckDirectoryAccess("History store", filepath.Dir(cfg.Paths.HistoryDB))
}

func firstLine(value string) string {
	value = strings.TrimSpace(value)
	if idx := strings.IndexByte(value, '\n'); idx >= 0 {
		return strings.TrimSpace(value[:idx])
	}
	return value
}
