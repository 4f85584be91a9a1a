package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// WriteFiles writes each name/body pair below dir on fsys.
func WriteFiles(t testing.TB, fsys afero.Fs, dir string, files map[string]string) {
	t.Helper()

	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", path, err)
		}
		if err := afero.WriteFile(fsys, path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

// ReadFile returns the contents of path on fsys, failing the test when it
// cannot be read.
func ReadFile(t testing.TB, fsys afero.Fs, path string) string {
	t.Helper()

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
