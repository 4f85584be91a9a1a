// Package templates exposes the default project files installed into Python
// projects, either from the set built into the binary or from a directory.
package templates

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"defaultpoetry/internal/config"
)

//go:embed all:defaults
var embedded embed.FS

const embeddedDir = "defaults"

// PyProject is the template merged into the project's pyproject.toml
// instead of being copied.
const PyProject = "pyproject.toml"

// ErrNoTemplates is returned when a source yields no files.
var ErrNoTemplates = errors.New("no template files found")

// Source lists and reads template files from one directory. Listing is
// non-recursive.
type Source struct {
	fs      afero.Fs
	dir     string
	label   string
	include string
	exclude []string
}

// Embedded returns the templates compiled into the binary.
func Embedded() *Source {
	return &Source{
		fs:      afero.FromIOFS{FS: embedded},
		dir:     embeddedDir,
		label:   "built-in templates",
		include: "*",
	}
}

// FromDir returns templates stored in dir on fsys.
func FromDir(fsys afero.Fs, dir string) *Source {
	return &Source{fs: fsys, dir: dir, label: dir, include: "*"}
}

// FromConfig selects the configured directory or the embedded set, and
// applies the configured include/exclude filters.
func FromConfig(fsys afero.Fs, cfg *config.Config) *Source {
	var src *Source
	if cfg.UsesEmbeddedTemplates() {
		src = Embedded()
	} else {
		src = FromDir(fsys, cfg.Paths.TemplatesDir)
	}
	return src.WithFilter(cfg.Templates.Include, cfg.Templates.Exclude)
}

// WithFilter returns a copy of s restricted to names matching include and
// none of exclude. An empty include matches everything.
func (s *Source) WithFilter(include string, exclude []string) *Source {
	clone := *s
	if include == "" {
		include = "*"
	}
	clone.include = include
	clone.exclude = append([]string(nil), exclude...)
	return &clone
}

// String names the source for messages.
func (s *Source) String() string {
	return s.label
}

// List returns the matching regular file names, sorted.
func (s *Source) List() ([]string, error) {
	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("read templates %s: %w", s.label, err)
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if !info.Mode().IsRegular() {
			continue
		}
		ok, err := s.matches(info.Name())
		if err != nil {
			return nil, err
		}
		if ok {
			names = append(names, info.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: %w", s.label, ErrNoTemplates)
	}
	sort.Strings(names)
	return names, nil
}

// ReadFile returns the contents of the named template.
func (s *Source) ReadFile(name string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.join(name))
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", name, err)
	}
	return data, nil
}

// Mode returns the permission bits of the named template, falling back to
// 0o644 for sources without meaningful modes.
func (s *Source) Mode(name string) fs.FileMode {
	info, err := s.fs.Stat(s.join(name))
	if err != nil {
		return 0o644
	}
	mode := info.Mode().Perm()
	if mode&0o200 == 0 {
		mode |= 0o644
	}
	return mode
}

func (s *Source) matches(name string) (bool, error) {
	ok, err := doublestar.Match(s.include, name)
	if err != nil {
		return false, fmt.Errorf("templates.include %q: %w", s.include, err)
	}
	if !ok {
		return false, nil
	}
	for _, pattern := range s.exclude {
		excluded, err := doublestar.Match(pattern, name)
		if err != nil {
			return false, fmt.Errorf("templates.exclude %q: %w", pattern, err)
		}
		if excluded {
			return false, nil
		}
	}
	return true, nil
}

func (s *Source) join(name string) string {
	if _, ok := s.fs.(afero.FromIOFS); ok {
		return path.Join(s.dir, name)
	}
	return filepath.Join(s.dir, name)
}
