// Package logging assembles structured slog loggers for defaultpoetry.
//
// It owns the console and JSON handlers, maps configured level strings to
// slog levels, and exposes context helpers so workflow code tags every line
// with the run identifier and project directory. A no-op logger is provided
// for tests and for library callers that do not care about diagnostics.
package logging
