package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"defaultpoetry/internal/config"
	"defaultpoetry/internal/history"
	"defaultpoetry/internal/logging"
	"defaultpoetry/internal/report"
	"defaultpoetry/internal/runner"
	"defaultpoetry/internal/templates"
	"defaultpoetry/internal/workflow"
)

type commandContext struct {
	settingsFlag string
	logLevelFlag string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(strings.TrimSpace(c.settingsFlag))
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		if level := strings.ToLower(strings.TrimSpace(c.logLevelFlag)); level != "" {
			cfg.Logging.Level = level
			if err := cfg.Validate(); err != nil {
				c.configErr = fmt.Errorf("--log-level: %w", err)
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = fmt.Errorf("ensure directories: %w", err)
			return
		}
		c.config = cfg
		c.configPath = path
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// logger writes to the command's stderr so progress output on stdout stays
// readable.
func (c *commandContext) logger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg := c.configValue()
	if cfg == nil {
		return logging.NewNop(), nil
	}
	logger, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

func (c *commandContext) printer(cmd *cobra.Command) *report.Printer {
	return report.NewPrinter(cmd.OutOrStdout())
}

// openHistory opens the run journal. A journal that cannot be opened is
// logged and reported as nil; commands carry on without it.
func (c *commandContext) openHistory(logger *slog.Logger) *history.Store {
	cfg := c.configValue()
	if cfg == nil {
		return nil
	}
	store, err := history.Open(cfg.Paths.HistoryDB)
	if err != nil {
		logger.Warn("history store unavailable", "path", cfg.Paths.HistoryDB, logging.Error(err))
		return nil
	}
	return store
}

// templateSource resolves the -c flag, falling back to the configured
// templates.
func (c *commandContext) templateSource(fsys afero.Fs, dir string) (*templates.Source, error) {
	cfg := c.configValue()
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return templates.FromConfig(fsys, cfg), nil
	}
	expanded, err := config.ExpandPath(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve templates directory: %w", err)
	}
	ok, err := afero.DirExists(fsys, expanded)
	if err != nil {
		return nil, fmt.Errorf("check templates directory: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("templates directory %s does not exist", expanded)
	}
	return templates.FromDir(fsys, expanded).WithFilter(cfg.Templates.Include, cfg.Templates.Exclude), nil
}

// newManager wires a workflow manager for one command. The returned close
// function releases the history store.
func (c *commandContext) newManager(cmd *cobra.Command, fsys afero.Fs) (*workflow.Manager, func(), error) {
	cfg := c.configValue()
	logger, err := c.logger(cmd)
	if err != nil {
		return nil, nil, err
	}

	r := runner.New(logger, time.Duration(cfg.Workflow.CommandTimeout)*time.Second)
	r.Stdout = cmd.OutOrStdout()
	r.Stderr = cmd.ErrOrStderr()

	store := c.openHistory(logger)
	var recorder workflow.Recorder
	closeFn := func() {}
	if store != nil {
		recorder = store
		closeFn = func() {
			if err := store.Close(); err != nil {
				logger.Warn("close history store failed", logging.Error(err))
			}
		}
	}
	return workflow.NewManager(cfg, fsys, r, c.printer(cmd), logger, recorder), closeFn, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for current := cmd; current != nil; current = current.Parent() {
		if current.Annotations != nil && current.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
