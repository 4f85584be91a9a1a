package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePoetry()
	c.normalizeGit()
	c.normalizeTemplates()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv(TemplatesEnv); ok && strings.TrimSpace(value) != "" {
		c.Paths.TemplatesDir = strings.TrimSpace(value)
	}

	var err error
	if c.Paths.TemplatesDir, err = expandPath(strings.TrimSpace(c.Paths.TemplatesDir)); err != nil {
		return fmt.Errorf("paths.templates_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryDB()
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

func (c *Config) normalizePoetry() {
	c.Poetry.Binary = strings.TrimSpace(c.Poetry.Binary)
	if c.Poetry.Binary == "" {
		c.Poetry.Binary = defaultPoetryBinary
	}
	c.Poetry.DevGroup = strings.TrimSpace(c.Poetry.DevGroup)
	if c.Poetry.DevGroup == "" {
		c.Poetry.DevGroup = defaultDevGroup
	}
	c.Poetry.DevDependencies = cleanList(c.Poetry.DevDependencies)
}

func (c *Config) normalizeGit() {
	c.Git.Binary = strings.TrimSpace(c.Git.Binary)
	if c.Git.Binary == "" {
		c.Git.Binary = defaultGitBinary
	}
	c.Git.InitialCommitMessage = strings.TrimSpace(c.Git.InitialCommitMessage)
	if c.Git.InitialCommitMessage == "" {
		c.Git.InitialCommitMessage = defaultInitialCommitMessage
	}
	c.Git.InstallCommitMessage = strings.TrimSpace(c.Git.InstallCommitMessage)
	if c.Git.InstallCommitMessage == "" {
		c.Git.InstallCommitMessage = defaultInstallCommitMessage
	}
}

func (c *Config) normalizeTemplates() {
	c.Templates.Include = strings.TrimSpace(c.Templates.Include)
	if c.Templates.Include == "" {
		c.Templates.Include = defaultTemplatesInclude
	}
	c.Templates.Exclude = cleanList(c.Templates.Exclude)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// cleanList trims entries and drops empty ones and duplicates, keeping order.
func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
