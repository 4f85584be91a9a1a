package main

import (
	"errors"
	"testing"

	"defaultpoetry/internal/history"
)

func TestHistoryEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded")
}

func TestHistoryShowUnknownRun(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env, "history", "show", "deadbeef")
	if !errors.Is(err, history.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}
