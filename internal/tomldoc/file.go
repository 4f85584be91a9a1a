package tomldoc

import (
	"fmt"

	"github.com/spf13/afero"

	"defaultpoetry/internal/fileutil"
)

// LoadFile reads and parses the TOML document at path.
func LoadFile(fs afero.Fs, path string) (*Document, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// WriteFile renders doc and atomically replaces the file at path.
func WriteFile(fs afero.Fs, path string, doc *Document) error {
	return fileutil.WriteFile(fs, path, doc.Render())
}
