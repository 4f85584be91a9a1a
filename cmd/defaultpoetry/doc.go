// Package main hosts the defaultpoetry CLI entrypoint and command graph.
//
// The Cobra command tree maps terminal invocations onto the project
// workflows (init, install, update), the standalone TOML merge, the run
// history journal, environment checks and configuration scaffolding. It
// resolves settings once per invocation and builds the logger, printer and
// history store that the workflow manager needs.
//
// Keep this package lean: add behaviour to the internal packages first and
// surface it here through commands or flags.
package main
