package install

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"defaultpoetry/internal/logging"
	"defaultpoetry/internal/merge"
	"defaultpoetry/internal/report"
	"defaultpoetry/internal/templates"
	"defaultpoetry/internal/testsupport"
)

const projectDir = "/work/demo"

func newInstaller(t *testing.T) (*Installer, afero.Fs, *bytes.Buffer) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll(projectDir, 0o755); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	return New(fsys, report.NewPrinterWithColor(&out, false), logging.NewNop()), fsys, &out
}

func TestInstallConfigurationMergesAndCopies(t *testing.T) {
	inst, fsys, out := newInstaller(t)
	testsupport.WriteFiles(t, fsys, "/templates", map[string]string{
		"pyproject.toml": "[tool.black]\nline-length = 120\n\n[tool.isort]\nprofile = \"black\"\n",
		".editorconfig":  "root = true\n",
		".gitignore":     ".venv/\n",
	})
	testsupport.WriteFiles(t, fsys, projectDir, map[string]string{
		"pyproject.toml": "[tool.poetry]\nname = \"demo\" # the name\n\n[tool.black]\nline-length = 88\n",
		".gitignore":     "custom\n",
	})

	outcome, err := inst.InstallConfiguration(context.Background(), templates.FromDir(fsys, "/templates"), projectDir, false)
	if err != nil {
		t.Fatalf("InstallConfiguration returned error: %v", err)
	}

	want := "[tool.poetry]\nname = \"demo\" # the name\n\n[tool.black]\nline-length = 88\n\n[tool.isort]\nprofile = \"black\"\n"
	if got := testsupport.ReadFile(t, fsys, filepath.Join(projectDir, "pyproject.toml")); got != want {
		t.Fatalf("unexpected merged pyproject:\n%s", got)
	}
	if got := testsupport.ReadFile(t, fsys, filepath.Join(projectDir, ".gitignore")); got != "custom\n" {
		t.Fatalf("expected existing .gitignore to be kept, got %q", got)
	}
	if got := testsupport.ReadFile(t, fsys, filepath.Join(projectDir, ".editorconfig")); got != "root = true\n" {
		t.Fatalf("expected .editorconfig to be installed, got %q", got)
	}

	if len(outcome.Installed) != 1 || outcome.Installed[0] != ".editorconfig" {
		t.Fatalf("unexpected installed list %v", outcome.Installed)
	}
	if len(outcome.Skipped) != 1 || outcome.Skipped[0] != ".gitignore" {
		t.Fatalf("unexpected skipped list %v", outcome.Skipped)
	}
	actions := map[merge.Action]int{}
	for _, d := range outcome.Decisions {
		actions[d.Action]++
	}
	if actions[merge.SkippedKeyExists] != 1 || actions[merge.Merged] != 1 {
		t.Fatalf("unexpected decisions %+v", outcome.Decisions)
	}

	text := out.String()
	for _, fragment := range []string{
		"Installing default configuration\n",
		"  Merging pyproject.toml\n",
		"    Key tool.black.line-length already exists, use --force to overwrite\n",
		"  Installing .editorconfig\n",
		"File /work/demo/.gitignore already exists, skipping. Use --force to overwrite",
	} {
		if !strings.Contains(text, fragment) {
			t.Fatalf("output missing %q:\n%s", fragment, text)
		}
	}
}

func TestInstallConfigurationForceOverwrites(t *testing.T) {
	inst, fsys, out := newInstaller(t)
	testsupport.WriteFiles(t, fsys, "/templates", map[string]string{
		"pyproject.toml": "[tool.black]\nline-length = 120\n",
		".gitignore":     ".venv/\n",
	})
	testsupport.WriteFiles(t, fsys, projectDir, map[string]string{
		"pyproject.toml": "[tool.black]\nline-length = 88\n",
		".gitignore":     "custom\n",
	})

	outcome, err := inst.InstallConfiguration(context.Background(), templates.FromDir(fsys, "/templates"), projectDir, true)
	if err != nil {
		t.Fatalf("InstallConfiguration returned error: %v", err)
	}
	if got := testsupport.ReadFile(t, fsys, filepath.Join(projectDir, ".gitignore")); got != ".venv/\n" {
		t.Fatalf("expected .gitignore overwrite, got %q", got)
	}
	if got := testsupport.ReadFile(t, fsys, filepath.Join(projectDir, "pyproject.toml")); got != "[tool.black]\nline-length = 120\n" {
		t.Fatalf("expected forced merge, got %q", got)
	}
	if len(outcome.Overwritten) != 1 {
		t.Fatalf("unexpected overwritten list %v", outcome.Overwritten)
	}
	if !strings.Contains(out.String(), "  Overwriting .gitignore\n") {
		t.Fatalf("expected overwrite notice:\n%s", out.String())
	}
}

func TestInstallConfigurationWritesMissingPyProject(t *testing.T) {
	inst, fsys, _ := newInstaller(t)
	testsupport.WriteFiles(t, fsys, "/templates", map[string]string{
		"pyproject.toml": "# defaults\n[tool.black]\nline-length = 120\n",
	})
	outcome, err := inst.InstallConfiguration(context.Background(), templates.FromDir(fsys, "/templates"), projectDir, false)
	if err != nil {
		t.Fatalf("InstallConfiguration returned error: %v", err)
	}
	if got := testsupport.ReadFile(t, fsys, filepath.Join(projectDir, "pyproject.toml")); got != "# defaults\n[tool.black]\nline-length = 120\n" {
		t.Fatalf("unexpected pyproject %q", got)
	}
	if len(outcome.Decisions) != 0 || len(outcome.Installed) != 1 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
}

func TestInstallConfigurationRejectsInvalidYAML(t *testing.T) {
	inst, fsys, _ := newInstaller(t)
	testsupport.WriteFiles(t, fsys, "/templates", map[string]string{
		".pre-commit-config.yaml": "repos: [\n",
	})
	_, err := inst.InstallConfiguration(context.Background(), templates.FromDir(fsys, "/templates"), projectDir, false)
	if err == nil || !strings.Contains(err.Error(), "not valid YAML") {
		t.Fatalf("expected YAML validation error, got %v", err)
	}
	if exists, _ := afero.Exists(fsys, filepath.Join(projectDir, ".pre-commit-config.yaml")); exists {
		t.Fatal("invalid template must not be written")
	}
}

func TestInstallConfigurationReportsParseErrors(t *testing.T) {
	inst, fsys, _ := newInstaller(t)
	testsupport.WriteFiles(t, fsys, "/templates", map[string]string{"pyproject.toml": "a = 1\n"})
	testsupport.WriteFiles(t, fsys, projectDir, map[string]string{"pyproject.toml": "a = 1\na = 2\n"})
	_, err := inst.InstallConfiguration(context.Background(), templates.FromDir(fsys, "/templates"), projectDir, false)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected parse error with line, got %v", err)
	}
}

func TestInstallConfigurationEmbeddedTemplates(t *testing.T) {
	inst, fsys, _ := newInstaller(t)
	testsupport.WriteFiles(t, fsys, projectDir, map[string]string{
		"pyproject.toml": "[tool.poetry]\nname = \"demo\"\n",
	})
	outcome, err := inst.InstallConfiguration(context.Background(), templates.Embedded(), projectDir, false)
	if err != nil {
		t.Fatalf("InstallConfiguration returned error: %v", err)
	}
	if len(outcome.Installed) != 3 {
		t.Fatalf("expected three copied templates, got %v", outcome.Installed)
	}
	merged := testsupport.ReadFile(t, fsys, filepath.Join(projectDir, "pyproject.toml"))
	if !strings.HasPrefix(merged, "[tool.poetry]\nname = \"demo\"\n") || !strings.Contains(merged, "[tool.ruff.lint]") {
		t.Fatalf("unexpected merged pyproject:\n%s", merged)
	}
}

func TestCreateProjectStructure(t *testing.T) {
	inst, fsys, out := newInstaller(t)
	testsupport.WriteFiles(t, fsys, projectDir, map[string]string{
		"pyproject.toml": "[tool.poetry]\nname = \"my-demo\"\n",
	})

	created, err := inst.CreateProjectStructure(projectDir)
	if err != nil {
		t.Fatalf("CreateProjectStructure returned error: %v", err)
	}
	want := []string{"README.md", "my_demo", filepath.Join("my_demo", "__init__.py"), "tests"}
	if strings.Join(created, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected created list %v", created)
	}
	if got := testsupport.ReadFile(t, fsys, filepath.Join(projectDir, "README.md")); got != "# My Demo\n" {
		t.Fatalf("unexpected README %q", got)
	}
	if !strings.Contains(out.String(), "  Creating code directory my_demo\n") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}

	again, err := inst.CreateProjectStructure(projectDir)
	if err != nil {
		t.Fatalf("second CreateProjectStructure returned error: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected nothing to be created twice, got %v", again)
	}
}

func TestCreateProjectStructureUsesProjectTable(t *testing.T) {
	inst, fsys, _ := newInstaller(t)
	testsupport.WriteFiles(t, fsys, projectDir, map[string]string{
		"pyproject.toml": "[project]\nname = \"pep621\"\n",
		"README.md":      "keep me\n",
	})
	created, err := inst.CreateProjectStructure(projectDir)
	if err != nil {
		t.Fatalf("CreateProjectStructure returned error: %v", err)
	}
	if created[0] != "pep621" {
		t.Fatalf("expected README to be kept, created %v", created)
	}
	if got := testsupport.ReadFile(t, fsys, filepath.Join(projectDir, "README.md")); got != "keep me\n" {
		t.Fatalf("README was modified: %q", got)
	}
}

func TestCreateProjectStructureMissingName(t *testing.T) {
	inst, fsys, _ := newInstaller(t)
	testsupport.WriteFiles(t, fsys, projectDir, map[string]string{
		"pyproject.toml": "[tool.poetry]\nversion = \"0.1.0\"\n",
	})
	if _, err := inst.CreateProjectStructure(projectDir); !errors.Is(err, ErrMissingProjectName) {
		t.Fatalf("expected ErrMissingProjectName, got %v", err)
	}
}
