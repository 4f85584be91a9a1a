// Package history journals workflow runs and the merge decisions they made
// in SQLite.
//
// Every init, install, update and merge run gets a row in runs with its
// command, project directory, timing, outcome and failed steps; the merge
// decisions taken while installing pyproject.toml are stored in decisions.
// The journal is append-only from the workflow's point of view and is read
// back by the history CLI command. Schema changes bump schemaVersion in
// schema.go; users delete the database to adopt a new schema.
package history
