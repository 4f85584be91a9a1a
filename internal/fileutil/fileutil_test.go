package fileutil

import (
	"testing"

	"github.com/spf13/afero"
)

func TestWriteFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/project", 0o755); err != nil {
		t.Fatal(err)
	}

	content := []byte("hello world")
	if err := WriteFile(fs, "/project/out.txt", content); err != nil {
		t.Fatal(err)
	}

	got, err := afero.ReadFile(fs, "/project/out.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}

	entries, err := afero.ReadDir(fs, "/project")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp file to be renamed away, found %d entries", len(entries))
	}
}

func TestWriteFileModeKeepsExistingPermissions(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/run.sh", []byte("old"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := WriteFileMode(fs, "/run.sh", []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}

	info, err := fs.Stat("/run.sh")
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Fatalf("expected 0755 to be kept, got %o", info.Mode().Perm())
	}
	got, _ := afero.ReadFile(fs, "/run.sh")
	if string(got) != "new" {
		t.Fatalf("content mismatch: got %q", got)
	}
}
