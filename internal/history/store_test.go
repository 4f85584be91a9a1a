package history_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"defaultpoetry/internal/history"
	"defaultpoetry/internal/merge"
	"defaultpoetry/internal/testsupport"
	"defaultpoetry/internal/tomldoc"
)

func mergeDecisions(t *testing.T) []merge.Decision {
	t.Helper()
	target, err := tomldoc.Parse([]byte("[tool.black]\nline-length = 88\nexclude = [\"a\"]\n"))
	if err != nil {
		t.Fatal(err)
	}
	source, err := tomldoc.Parse([]byte("[tool.black]\nline-length = 120\nexclude = [\"a\", \"b\"]\n[tool.isort]\nprofile = \"black\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	decisions, err := merge.Merge(target.Root(), source.Root(), merge.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(decisions) != 3 {
		t.Fatalf("expected 3 decisions, got %d", len(decisions))
	}
	return decisions
}

func TestRunLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	run, err := store.BeginRun(ctx, "install", "/work/demo", true)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if run.ID == "" || run.Status != history.StatusRunning {
		t.Fatalf("unexpected run %+v", run)
	}

	decisions := mergeDecisions(t)
	if err := store.RecordDecisions(ctx, run.ID, decisions[:1]); err != nil {
		t.Fatalf("RecordDecisions failed: %v", err)
	}
	if err := store.RecordDecisions(ctx, run.ID, decisions[1:]); err != nil {
		t.Fatalf("RecordDecisions failed: %v", err)
	}
	if err := store.FinishRun(ctx, run.ID, []string{"poetry install"}, nil); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	fetched, err := store.GetRun(ctx, run.ID[:8])
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if fetched.ID != run.ID || fetched.Command != "install" || !fetched.Force {
		t.Fatalf("unexpected fetched run %+v", fetched)
	}
	if fetched.Status != history.StatusPartial {
		t.Fatalf("expected partial status, got %s", fetched.Status)
	}
	if len(fetched.FailedSteps) != 1 || fetched.FailedSteps[0] != "poetry install" {
		t.Fatalf("unexpected failed steps %v", fetched.FailedSteps)
	}
	if fetched.FinishedAt == nil || fetched.Duration() < 0 {
		t.Fatalf("expected finished timestamp, got %+v", fetched.FinishedAt)
	}
	if fetched.DecisionCount != 3 || len(fetched.Decisions) != 3 {
		t.Fatalf("expected 3 decisions, got count=%d len=%d", fetched.DecisionCount, len(fetched.Decisions))
	}

	first := fetched.Decisions[0]
	if first.Seq != 1 || first.Action != "skipped-key-exists" || first.Path != "tool.black.line-length" {
		t.Fatalf("unexpected first decision %+v", first)
	}
	if first.Value != "120" || first.Previous != "88" || first.TargetKind != "integer" {
		t.Fatalf("unexpected first decision values %+v", first)
	}
	second := fetched.Decisions[1]
	if second.Seq != 2 || second.Action != "appended" || second.Value != `"b"` || second.Previous != "" {
		t.Fatalf("unexpected second decision %+v", second)
	}
	if fetched.Decisions[2].Action != "merged" || fetched.Decisions[2].Path != "tool.isort" {
		t.Fatalf("unexpected third decision %+v", fetched.Decisions[2])
	}
}

func TestFinishRunStatuses(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	ok, err := store.BeginRun(ctx, "update", "/work/a", false)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.FinishRun(ctx, ok.ID, nil, nil); err != nil {
		t.Fatal(err)
	}
	failed, err := store.BeginRun(ctx, "init", "/work/b", false)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.FinishRun(ctx, failed.ID, nil, errors.New("path exists")); err != nil {
		t.Fatal(err)
	}
	if _, err := store.BeginRun(ctx, "install", "/work/c", false); err != nil {
		t.Fatal(err)
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	byCommand := map[string]history.Run{}
	for _, run := range runs {
		byCommand[run.Command] = run
	}
	if byCommand["update"].Status != history.StatusSucceeded {
		t.Fatalf("unexpected update status %s", byCommand["update"].Status)
	}
	if byCommand["init"].Status != history.StatusFailed || byCommand["init"].ErrorMessage != "path exists" {
		t.Fatalf("unexpected init run %+v", byCommand["init"])
	}
	if byCommand["install"].Status != history.StatusRunning || byCommand["install"].FinishedAt != nil {
		t.Fatalf("unexpected install run %+v", byCommand["install"])
	}
	if runs[0].Command != "install" {
		t.Fatalf("expected newest run first, got %s", runs[0].Command)
	}

	limited, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}

	if err := store.FinishRun(ctx, "missing", nil, nil); !errors.Is(err, history.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestGetRunErrors(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	if _, err := store.GetRun(ctx, "nope"); !errors.Is(err, history.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := store.GetRun(ctx, " "); !errors.Is(err, history.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound for blank id, got %v", err)
	}
	for i := 0; i < 40; i++ {
		if _, err := store.BeginRun(ctx, "update", "/work", false); err != nil {
			t.Fatal(err)
		}
	}
	// 40 random ids over 16 leading hex digits guarantee a shared first digit.
	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	counts := map[byte]int{}
	var shared byte
	for _, run := range runs {
		counts[run.ID[0]]++
		if counts[run.ID[0]] == 2 {
			shared = run.ID[0]
		}
	}
	if _, err := store.GetRun(ctx, string(shared)); !errors.Is(err, history.ErrAmbiguousRunID) {
		t.Fatalf("expected ErrAmbiguousRunID, got %v", err)
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	run, err := store.BeginRun(context.Background(), "merge", "/work", false)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := history.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	if reopened.Path() != path {
		t.Fatalf("unexpected path %q", reopened.Path())
	}
	if _, err := reopened.GetRun(context.Background(), run.ID); err != nil {
		t.Fatalf("GetRun after reopen failed: %v", err)
	}
}
