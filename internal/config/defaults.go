package config

const (
	defaultConfigPath           = "~/.config/defaultpoetry/config.toml"
	projectConfigName           = "defaultpoetry.toml"
	defaultHistoryPath          = "~/.local/share/defaultpoetry/history.db"
	defaultPoetryBinary         = "poetry"
	defaultDevGroup             = "dev"
	defaultGitBinary            = "git"
	defaultInitialCommitMessage = "Initial commit"
	defaultInstallCommitMessage = "Install python poetry default configuration"
	defaultTemplatesInclude     = "*"
	defaultCommandTimeout       = 0
	defaultProbeTimeout         = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"

	// TemplatesEnv overrides paths.templates_dir.
	TemplatesEnv = "DEFAULTPOETRY_TEMPLATES"
)

var defaultDevDependencies = []string{
	"black",
	"ruff",
	"ruff-lsp",
	"mypy",
	"isort",
	"ipdb",
	"pre-commit",
	"pytest",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			HistoryDB: defaultHistoryDB(),
		},
		Poetry: Poetry{
			Binary:          defaultPoetryBinary,
			DevGroup:        defaultDevGroup,
			DevDependencies: append([]string(nil), defaultDevDependencies...),
		},
		Git: Git{
			Binary:               defaultGitBinary,
			InitialCommitMessage: defaultInitialCommitMessage,
			InstallCommitMessage: defaultInstallCommitMessage,
		},
		Templates: Templates{
			Include: defaultTemplatesInclude,
		},
		Workflow: Workflow{
			CommandTimeout: defaultCommandTimeout,
			ProbeTimeout:   defaultProbeTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
