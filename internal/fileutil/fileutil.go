// Package fileutil holds small filesystem helpers shared by the installer
// and the TOML document writer.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// WriteFile writes data to path with the default mode (0o644), replacing any
// existing file atomically.
func WriteFile(fs afero.Fs, path string, data []byte) error {
	return WriteFileMode(fs, path, data, 0o644)
}

// WriteFileMode writes data to a temporary sibling of path and renames it into
// place, so readers never observe a partially written file. An existing file
// keeps its permissions.
func WriteFileMode(fs afero.Fs, path string, data []byte, mode os.FileMode) error {
	if info, err := fs.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = fs.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := fs.Chmod(tmpName, mode); err != nil {
		cleanup()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
