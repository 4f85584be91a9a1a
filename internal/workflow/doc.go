// Package workflow drives the init, install and update sequences for a
// Python project.
//
// A Manager runs each sequence step by step: poetry and git commands go
// through a Runner, template installation and scaffolding through
// install.Installer, and every run is journaled in the history store with
// its failed steps and merge decisions. A failing command is reported and
// the sequence moves on; only precondition violations (path exists or is
// missing, project locked, unreadable templates, parse errors) abort a run
// with an error. Runs on the same project are serialized with a file lock
// kept in the state directory.
package workflow
