package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validatePoetry(); err != nil {
		return err
	}
	if err := c.validateGit(); err != nil {
		return err
	}
	if err := c.validateTemplates(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.TemplatesDir != "" {
		info, err := os.Stat(c.Paths.TemplatesDir)
		if err != nil {
			return fmt.Errorf("paths.templates_dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("paths.templates_dir: %s is not a directory", c.Paths.TemplatesDir)
		}
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		return errors.New("paths.history_db must be set")
	}
	return nil
}

func (c *Config) validatePoetry() error {
	if strings.ContainsAny(c.Poetry.DevGroup, " \t") {
		return fmt.Errorf("poetry.dev_group %q must not contain whitespace", c.Poetry.DevGroup)
	}
	for _, dep := range c.Poetry.DevDependencies {
		if strings.HasPrefix(dep, "-") {
			return fmt.Errorf("poetry.dev_dependencies entry %q looks like a flag", dep)
		}
	}
	return nil
}

func (c *Config) validateGit() error {
	if c.Git.InitialCommitMessage == "" {
		return errors.New("git.initial_commit_message must be set")
	}
	if c.Git.InstallCommitMessage == "" {
		return errors.New("git.install_commit_message must be set")
	}
	return nil
}

func (c *Config) validateTemplates() error {
	if !doublestar.ValidatePattern(c.Templates.Include) {
		return fmt.Errorf("templates.include %q is not a valid glob", c.Templates.Include)
	}
	for _, pattern := range c.Templates.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("templates.exclude %q is not a valid glob", pattern)
		}
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.CommandTimeout < 0 {
		return errors.New("workflow.command_timeout must be >= 0")
	}
	return ensurePositiveMap(map[string]int{
		"workflow.probe_timeout": c.Workflow.ProbeTimeout,
	})
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
