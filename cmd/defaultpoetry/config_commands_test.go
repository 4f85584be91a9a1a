package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.cfg.Paths.HistoryDB)
	requireContains(t, out, "Templates: built-in")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, env, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, env, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config already exists")
	}
	if _, _, err := runCLI(t, env, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidateRejectsBadSettings(t *testing.T) {
	env := setupCLITestEnv(t)
	writeFile(t, env.settingsPath, "[logging]\nlevel = \"chatty\"\n")

	_, _, err := runCLI(t, env, "config", "validate")
	if err == nil {
		t.Fatal("expected validation error")
	}
	requireContains(t, err.Error(), "logging.level")
}

func TestLogLevelFlagIsValidated(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env, "--log-level", "loud", "history")
	if err == nil {
		t.Fatal("expected error for unknown log level")
	}
	requireContains(t, err.Error(), "--log-level")
}
