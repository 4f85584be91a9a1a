// Package runner executes the external tools (poetry, git) that the project
// workflows drive, streaming their output and reporting failures as
// *CommandError values.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"mvdan.cc/sh/v3/syntax"

	"defaultpoetry/internal/logging"
)

var commandContext = exec.CommandContext

// CommandError reports a command that could not start or exited non-zero.
type CommandError struct {
	Command  string
	Dir      string
	ExitCode int
	Err      error
}

func (e *CommandError) Error() string {
	if e.ExitCode > 0 {
		return fmt.Sprintf("command %s failed with exit code %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Runner launches commands. The zero value writes child output to the
// process stdout/stderr and never times out.
type Runner struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Timeout time.Duration
	// Env entries are appended to the inherited environment.
	Env []string
}

// New returns a runner with the given logger and per-command timeout.
func New(logger *slog.Logger, timeout time.Duration) *Runner {
	return &Runner{
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Logger:  logging.NewComponentLogger(logger, "runner"),
		Timeout: timeout,
	}
}

// Run executes name with args in dir and waits for it to finish.
func (r *Runner) Run(ctx context.Context, dir, name string, args ...string) error {
	display := Display(name, args...)
	logger := r.logger(ctx)
	logger.Info("running command", "command", display, "dir", dir)

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := commandContext(ctx, name, args...) //nolint:gosec
	cmd.Dir = dir
	cmd.Stdout = r.stdout()
	cmd.Stderr = r.stderr()
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	started := time.Now()
	err := cmd.Run()
	if err == nil {
		logger.Debug("command finished", "command", display, "duration", time.Since(started))
		return nil
	}

	cmdErr := &CommandError{Command: display, Dir: dir, Err: err}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cmdErr.ExitCode = exitErr.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		cmdErr.Err = fmt.Errorf("%w: %w", ctxErr, err)
	}
	logger.Warn("command failed",
		"command", display,
		"exit_code", cmdErr.ExitCode,
		logging.Error(err),
	)
	return cmdErr
}

// Succeeds runs the command quietly and reports whether it exited zero.
// It suits probes whose failure is an expected answer.
func (r *Runner) Succeeds(ctx context.Context, dir, name string, args ...string) bool {
	quiet := *r
	quiet.Stdout = io.Discard
	quiet.Stderr = io.Discard
	return quiet.Run(ctx, dir, name, args...) == nil
}

// Output runs the command and returns its trimmed stdout.
func (r *Runner) Output(ctx context.Context, dir, name string, args ...string) (string, error) {
	var buf strings.Builder
	capture := *r
	capture.Stdout = &buf
	capture.Stderr = io.Discard
	if err := capture.Run(ctx, dir, name, args...); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// Display renders a command line the way a user would type it in bash.
func Display(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	for _, word := range append([]string{name}, args...) {
		quoted, err := syntax.Quote(word, syntax.LangBash)
		if err != nil {
			quoted = fmt.Sprintf("%q", word)
		}
		parts = append(parts, quoted)
	}
	return strings.Join(parts, " ")
}

func (r *Runner) logger(ctx context.Context) *slog.Logger {
	return logging.WithContext(ctx, r.Logger)
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout == nil {
		return os.Stdout
	}
	return r.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr == nil {
		return os.Stderr
	}
	return r.Stderr
}
