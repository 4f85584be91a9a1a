package workflow

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Init creates a new project at opts.Path and installs the default
// configuration into it.
func (m *Manager) Init(ctx context.Context, opts Options) (result *Result, err error) {
	m.printer.Header("Initializing project")

	exists, err := afero.Exists(m.fs, opts.Path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", opts.Path, err)
	}
	if exists {
		return nil, fmt.Errorf("path %s already exists, use install command to install default configuration: %w", opts.Path, ErrPathExists)
	}

	exec, finish, err := m.start(ctx, "init", opts.Path, opts.Force)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	if err := m.fs.MkdirAll(exec.dir, 0o755); err != nil {
		return exec.result, fmt.Errorf("create %s: %w", exec.dir, err)
	}

	m.printer.Step("Initializing poetry")
	exec.poetry("init", "--no-interaction")

	if err := exec.installConfiguration(opts); err != nil {
		return exec.result, err
	}
	if err := exec.scaffold(); err != nil {
		return exec.result, err
	}
	exec.installTooling()

	if !opts.NoGit {
		m.printer.Step("Initializing git")
		exec.git("init")
	}
	if !opts.NoGit && !opts.NoCommit {
		exec.commit(m.cfg.Git.InitialCommitMessage)
	}
	return exec.result, nil
}

// Install applies the default configuration to the existing project at
// opts.Path. Git repositories have their changes stashed around the run.
func (m *Manager) Install(ctx context.Context, opts Options) (result *Result, err error) {
	m.printer.Header("Installing default configuration")

	exists, err := afero.DirExists(m.fs, opts.Path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", opts.Path, err)
	}
	if !exists {
		return nil, fmt.Errorf("path %s does not exist, use init command to initialize the project: %w", opts.Path, ErrPathMissing)
	}

	exec, finish, err := m.start(ctx, "install", opts.Path, opts.Force)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	isGit, err := exec.exists(filepath.Join(exec.dir, ".git"))
	if err != nil {
		return exec.result, err
	}
	if isGit {
		exec.git("stash", "--all")
		defer exec.git("stash", "pop")
	}

	if err := exec.installConfiguration(opts); err != nil {
		return exec.result, err
	}
	if err := exec.scaffold(); err != nil {
		return exec.result, err
	}
	exec.installTooling()

	if isGit && !opts.NoCommit {
		exec.commit(m.cfg.Git.InstallCommitMessage)
	}
	return exec.result, nil
}

// Update upgrades the project's dependencies and pre-commit hooks.
func (m *Manager) Update(ctx context.Context, path string) (result *Result, err error) {
	m.printer.Header("Updating project")

	exists, err := afero.DirExists(m.fs, path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !exists {
		return nil, fmt.Errorf("path %s: %w", path, ErrPathMissing)
	}

	exec, finish, err := m.start(ctx, "update", path, false)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	exec.poetry("update")
	exec.poetry("run", "pre-commit", "autoupdate")
	return exec.result, nil
}

func (e *execution) installConfiguration(opts Options) error {
	outcome, err := e.m.installer.InstallConfiguration(e.ctx, opts.Templates, e.dir, opts.Force)
	if outcome != nil {
		e.result.Installed = outcome
		e.result.Decisions = append(e.result.Decisions, outcome.Decisions...)
	}
	if err != nil {
		return fmt.Errorf("install configuration: %w", err)
	}
	return nil
}

func (e *execution) scaffold() error {
	created, err := e.m.installer.CreateProjectStructure(e.dir)
	e.result.Created = append(e.result.Created, created...)
	if err != nil {
		return fmt.Errorf("create project structure: %w", err)
	}
	return nil
}

// installTooling adds the development dependencies and sets up pre-commit.
func (e *execution) installTooling() {
	if deps := e.m.cfg.Poetry.DevDependencies; len(deps) > 0 {
		e.m.printer.Step("Installing default dev dependencies")
		args := append([]string{"add", "--group", e.m.cfg.Poetry.DevGroup}, deps...)
		e.poetry(args...)
	}

	e.m.printer.Step("Running poetry install")
	e.poetry("install")

	e.m.printer.Step("Initializing pre-commit")
	e.poetry("run", "pre-commit", "install")

	e.m.printer.Step("Installing pre-commit hooks")
	e.poetry("run", "pre-commit", "install-hooks")
}

// commit stages everything and commits when the index differs from HEAD.
func (e *execution) commit(message string) {
	e.m.printer.Step("Committing files")
	e.git("add", ".")
	if !e.probe(e.m.cfg.Git.Binary, "diff", "--cached", "--exit-code", "--quiet") {
		e.git("commit", "-m", message)
		return
	}
	e.m.printer.Warn(1, "No changes to commit")
}
