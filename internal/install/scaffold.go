package install

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"defaultpoetry/internal/fileutil"
	"defaultpoetry/internal/templates"
	"defaultpoetry/internal/textutil"
	"defaultpoetry/internal/tomldoc"
)

// ErrMissingProjectName is returned when pyproject.toml names no project.
var ErrMissingProjectName = errors.New("pyproject.toml has no tool.poetry.name or project.name")

// CreateProjectStructure creates README.md, the code package with its
// __init__.py, and tests/ when absent. It returns the created paths
// relative to projectDir.
func (i *Installer) CreateProjectStructure(projectDir string) ([]string, error) {
	i.Printer.Step("Creating default project structure")

	doc, err := tomldoc.LoadFile(i.FS, filepath.Join(projectDir, templates.PyProject))
	if err != nil {
		return nil, err
	}
	name := ProjectName(doc)
	if name == "" {
		return nil, ErrMissingProjectName
	}
	pkg := textutil.PackageName(name)
	if pkg == "" {
		return nil, fmt.Errorf("project name %q does not yield a package name", name)
	}

	var created []string
	readme := filepath.Join(projectDir, "README.md")
	ok, err := i.createFile(readme, []byte("# "+textutil.ProjectTitle(name)+"\n"))
	if err != nil {
		return created, err
	}
	if ok {
		i.Printer.Item(1, "Creating ", "README.md")
		created = append(created, "README.md")
	}

	codeDir := filepath.Join(projectDir, pkg)
	if ok, err = i.createDir(codeDir); err != nil {
		return created, err
	}
	if ok {
		i.Printer.Item(1, "Creating code directory ", pkg)
		created = append(created, pkg)
	}

	initFile := filepath.Join(codeDir, "__init__.py")
	if ok, err = i.createFile(initFile, nil); err != nil {
		return created, err
	}
	if ok {
		i.Printer.Item(1, "Creating ", pkg+"/__init__.py")
		created = append(created, filepath.Join(pkg, "__init__.py"))
	}

	testsDir := filepath.Join(projectDir, "tests")
	if ok, err = i.createDir(testsDir); err != nil {
		return created, err
	}
	if ok {
		i.Printer.Item(1, "Creating test directory ", "tests")
		created = append(created, "tests")
	}
	return created, nil
}

// ProjectName returns tool.poetry.name, falling back to project.name.
func ProjectName(doc *tomldoc.Document) string {
	if name := lookupString(doc.Root(), "tool", "poetry", "name"); name != "" {
		return name
	}
	return lookupString(doc.Root(), "project", "name")
}

func lookupString(table *tomldoc.Table, keys ...string) string {
	for idx, key := range keys {
		node := table.Get(key)
		if node == nil {
			return ""
		}
		if idx == len(keys)-1 {
			if node.Kind() != tomldoc.KindString {
				return ""
			}
			value, _ := node.Unwrap().(string)
			return value
		}
		next, ok := node.(*tomldoc.Table)
		if !ok {
			return ""
		}
		table = next
	}
	return ""
}

func (i *Installer) createFile(path string, data []byte) (bool, error) {
	exists, err := afero.Exists(i.FS, path)
	if err != nil || exists {
		return false, err
	}
	if err := fileutil.WriteFile(i.FS, path, data); err != nil {
		return false, fmt.Errorf("create %s: %w", path, err)
	}
	return true, nil
}

func (i *Installer) createDir(path string) (bool, error) {
	exists, err := afero.Exists(i.FS, path)
	if err != nil || exists {
		return false, err
	}
	if err := i.FS.MkdirAll(path, 0o755); err != nil {
		return false, fmt.Errorf("create %s: %w", path, err)
	}
	return true, nil
}
