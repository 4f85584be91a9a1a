package install

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"defaultpoetry/internal/fileutil"
	"defaultpoetry/internal/logging"
	"defaultpoetry/internal/merge"
	"defaultpoetry/internal/report"
	"defaultpoetry/internal/templates"
	"defaultpoetry/internal/tomldoc"
)

// Installer writes templates into project directories.
type Installer struct {
	FS      afero.Fs
	Printer *report.Printer
	Logger  *slog.Logger
}

// New returns an installer bound to fsys.
func New(fsys afero.Fs, printer *report.Printer, logger *slog.Logger) *Installer {
	return &Installer{
		FS:      fsys,
		Printer: printer,
		Logger:  logging.NewComponentLogger(logger, "install"),
	}
}

// Outcome lists what InstallConfiguration did.
type Outcome struct {
	Decisions   []merge.Decision
	Installed   []string
	Overwritten []string
	Skipped     []string
}

// InstallConfiguration applies every template of src to projectDir.
func (i *Installer) InstallConfiguration(ctx context.Context, src *templates.Source, projectDir string, force bool) (*Outcome, error) {
	i.Printer.Step("Installing default configuration")
	logger := logging.WithContext(ctx, i.Logger)

	names, err := src.List()
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}
		data, err := src.ReadFile(name)
		if err != nil {
			return outcome, err
		}
		target := filepath.Join(projectDir, name)

		if name == templates.PyProject {
			if err := i.installPyProject(ctx, data, target, force, outcome); err != nil {
				return outcome, err
			}
			continue
		}

		if err := validateTemplate(name, data); err != nil {
			return outcome, err
		}

		exists, err := afero.Exists(i.FS, target)
		if err != nil {
			return outcome, fmt.Errorf("stat %s: %w", target, err)
		}
		switch {
		case exists && !force:
			i.Printer.Warn(1, fmt.Sprintf("File %s already exists, skipping. Use --force to overwrite", target))
			outcome.Skipped = append(outcome.Skipped, name)
			logger.Info("template skipped", "file", name, "reason", "exists")
			continue
		case exists:
			i.Printer.WarnItem(1, "Overwriting ", name)
			outcome.Overwritten = append(outcome.Overwritten, name)
		default:
			i.Printer.Item(1, "Installing ", name)
			outcome.Installed = append(outcome.Installed, name)
		}
		if err := fileutil.WriteFileMode(i.FS, target, data, src.Mode(name)); err != nil {
			return outcome, fmt.Errorf("install %s: %w", name, err)
		}
		logger.Debug("template written", "file", name, "overwrite", exists)
	}
	return outcome, nil
}

func (i *Installer) installPyProject(ctx context.Context, data []byte, target string, force bool, outcome *Outcome) error {
	defaults, err := tomldoc.Parse(data)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", templates.PyProject, err)
	}

	current, err := tomldoc.LoadFile(i.FS, target)
	if errors.Is(err, fs.ErrNotExist) {
		i.Printer.Item(1, "Installing ", templates.PyProject)
		outcome.Installed = append(outcome.Installed, templates.PyProject)
		return tomldoc.WriteFile(i.FS, target, defaults)
	}
	if err != nil {
		return err
	}

	i.Printer.Line(1, "Merging "+templates.PyProject)
	decisions, err := merge.Merge(current.Root(), defaults.Root(), merge.Options{Force: force})
	if err != nil {
		return fmt.Errorf("merge %s: %w", target, err)
	}
	i.Printer.Decisions(2, decisions)
	report.LogDecisions(ctx, i.Logger, decisions)
	outcome.Decisions = append(outcome.Decisions, decisions...)

	if err := tomldoc.WriteFile(i.FS, target, current); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}

func validateTemplate(name string, data []byte) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return fmt.Errorf("template %s is not valid YAML: %w", name, err)
		}
	case ".toml":
		if _, err := tomldoc.Parse(data); err != nil {
			return fmt.Errorf("template %s is not valid TOML: %w", name, err)
		}
	}
	return nil
}
