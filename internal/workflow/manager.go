package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"defaultpoetry/internal/config"
	"defaultpoetry/internal/history"
	"defaultpoetry/internal/install"
	"defaultpoetry/internal/logging"
	"defaultpoetry/internal/merge"
	"defaultpoetry/internal/report"
	"defaultpoetry/internal/runner"
	"defaultpoetry/internal/templates"
)

var (
	// ErrPathExists is returned by Init when the project path already exists.
	ErrPathExists = errors.New("path already exists")
	// ErrPathMissing is returned by Install and Update when the project path does not exist.
	ErrPathMissing = errors.New("path does not exist")
)

// Runner executes external commands.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) error
	Succeeds(ctx context.Context, dir, name string, args ...string) bool
}

// Recorder journals runs. *history.Store satisfies it.
type Recorder interface {
	BeginRun(ctx context.Context, command, projectDir string, force bool) (*history.Run, error)
	RecordDecisions(ctx context.Context, runID string, decisions []merge.Decision) error
	FinishRun(ctx context.Context, runID string, failedSteps []string, runErr error) error
}

// Options select the project and behaviour of a run.
type Options struct {
	Path      string
	Templates *templates.Source
	Force     bool
	NoGit     bool
	NoCommit  bool
}

// Result summarizes a finished run.
type Result struct {
	RunID       string
	FailedSteps []string
	Decisions   []merge.Decision
	Installed   *install.Outcome
	Created     []string
}

// Succeeded reports whether every step succeeded.
func (r *Result) Succeeded() bool {
	return r != nil && len(r.FailedSteps) == 0
}

// Manager coordinates project workflows.
type Manager struct {
	cfg       *config.Config
	fs        afero.Fs
	runner    Runner
	printer   *report.Printer
	logger    *slog.Logger
	history   Recorder
	installer *install.Installer
	lockDir   string
}

// NewManager constructs a workflow manager. history may be nil to skip
// journaling.
func NewManager(cfg *config.Config, fs afero.Fs, r Runner, printer *report.Printer, logger *slog.Logger, history Recorder) *Manager {
	return &Manager{
		cfg:       cfg,
		fs:        fs,
		runner:    r,
		printer:   printer,
		logger:    logging.NewComponentLogger(logger, "workflow"),
		history:   history,
		installer: install.New(fs, printer, logger),
		lockDir:   filepath.Join(filepath.Dir(cfg.Paths.HistoryDB), "locks"),
	}
}

// execution carries the state of one workflow run.
type execution struct {
	m      *Manager
	ctx    context.Context
	dir    string
	result *Result
	logger *slog.Logger
}

// start resolves the project path, takes the project lock and opens a
// history run. The returned finish function must be called with the run
// error.
func (m *Manager) start(ctx context.Context, command, path string, force bool) (*execution, func(error), error) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	lock, err := acquireProjectLock(m.lockDir, dir)
	if err != nil {
		return nil, nil, err
	}

	result := &Result{}
	ctx = logging.WithProject(ctx, dir)
	if m.history != nil {
		run, err := m.history.BeginRun(ctx, command, dir, force)
		if err != nil {
			m.logger.Warn("history unavailable; run will not be journaled", logging.Error(err))
		} else {
			result.RunID = run.ID
			ctx = logging.WithRunID(ctx, result.RunID)
		}
	}

	exec := &execution{
		m:      m,
		ctx:    ctx,
		dir:    dir,
		result: result,
		logger: logging.WithContext(ctx, m.logger),
	}
	exec.logger.Info("workflow started", "command", command, "force", force)

	finish := func(runErr error) {
		if m.history != nil && result.RunID != "" {
			// The journal write must survive a cancelled run context.
			histCtx := context.WithoutCancel(ctx)
			if err := m.history.RecordDecisions(histCtx, result.RunID, result.Decisions); err != nil {
				exec.logger.Warn("record decisions failed", logging.Error(err))
			}
			if err := m.history.FinishRun(histCtx, result.RunID, result.FailedSteps, runErr); err != nil {
				exec.logger.Warn("finish run failed", logging.Error(err))
			}
		}
		if err := lock.Unlock(); err != nil {
			exec.logger.Warn("release project lock failed", logging.Error(err))
		}
		if runErr != nil {
			exec.logger.Error("workflow aborted", logging.Error(runErr))
			return
		}
		exec.logger.Info("workflow finished", "failed_steps", len(result.FailedSteps))
	}
	return exec, finish, nil
}

// command runs one external command, printing it the way the user would
// type it. A failure is reported and recorded; the run continues.
func (e *execution) command(name string, args ...string) bool {
	display := runner.Display(name, args...)
	e.m.printer.Item(1, "Running command: ", display)
	if err := e.m.runner.Run(e.ctx, e.dir, name, args...); err != nil {
		e.m.printer.Error(1, fmt.Sprintf("Failed to run %q: %v", display, err))
		e.result.FailedSteps = append(e.result.FailedSteps, display)
		return false
	}
	return true
}

// probe runs a command whose failure is an expected answer.
func (e *execution) probe(name string, args ...string) bool {
	e.m.printer.Item(1, "Running command: ", runner.Display(name, args...))
	return e.m.runner.Succeeds(e.ctx, e.dir, name, args...)
}

func (e *execution) poetry(args ...string) bool {
	return e.command(e.m.cfg.Poetry.Binary, args...)
}

func (e *execution) git(args ...string) bool {
	return e.command(e.m.cfg.Git.Binary, args...)
}

func (e *execution) exists(path string) (bool, error) {
	ok, err := afero.Exists(e.m.fs, path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return ok, nil
}
