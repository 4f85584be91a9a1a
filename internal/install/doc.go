// Package install applies the default configuration to a Python project
// directory and creates the expected project layout.
//
// InstallConfiguration merges the pyproject.toml template into the project's
// own file through the merge engine and copies the remaining templates,
// honouring the force flag. CreateProjectStructure adds README.md, the code
// package and the tests directory when they are missing. Both report every
// action through a report.Printer and operate on an afero filesystem so
// tests can run them in memory.
package install
