package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"defaultpoetry/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations.
type Paths struct {
	// TemplatesDir holds the default project files. Empty selects the
	// templates built into the binary.
	TemplatesDir string `toml:"templates_dir"`
	HistoryDB    string `toml:"history_db"`
}

// Poetry contains settings for the Poetry package manager.
type Poetry struct {
	Binary          string   `toml:"binary"`
	DevGroup        string   `toml:"dev_group"`
	DevDependencies []string `toml:"dev_dependencies"`
}

// Git contains settings for repository initialization and commits.
type Git struct {
	Binary               string `toml:"binary"`
	InitialCommitMessage string `toml:"initial_commit_message"`
	InstallCommitMessage string `toml:"install_commit_message"`
}

// Templates selects which files of the templates directory are installed.
type Templates struct {
	Include string   `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// Workflow contains timing settings for external commands.
type Workflow struct {
	// CommandTimeout bounds every poetry/git invocation in seconds. Zero
	// disables the limit.
	CommandTimeout int `toml:"command_timeout"`
	// ProbeTimeout bounds each `--version` probe run by the check command.
	ProbeTimeout int `toml:"probe_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for defaultpoetry.
//
// Configuration sections:
//   - Paths: template directory and run history database
//   - Poetry: binary and the default development dependencies
//   - Git: binary and commit messages
//   - Templates: include glob and exclusions for installed files
//   - Workflow: command and probe timeouts
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Poetry    Poetry    `toml:"poetry"`
	Git       Git       `toml:"git"`
	Templates Templates `toml:"templates"`
	Workflow  Workflow  `toml:"workflow"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directory holding the history database.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		return nil
	}
	dir := filepath.Dir(c.Paths.HistoryDB)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}

// UsesEmbeddedTemplates reports whether no templates directory is configured.
func (c *Config) UsesEmbeddedTemplates() bool {
	return strings.TrimSpace(c.Paths.TemplatesDir) == ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultHistoryDB() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "defaultpoetry", "history.db")
	}
	return defaultHistoryPath
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	fsys := afero.NewOsFs()
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := fileutil.WriteFile(fsys, path, []byte(sampleConfig)); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
