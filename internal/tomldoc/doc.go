// Package tomldoc models TOML documents as format-preserving trees.
//
// A Document is parsed with the go-toml unstable AST parser and kept as a tree
// of Table, Array and Scalar nodes. Every node remembers enough of its
// original spelling (comments, blank lines, quoting, number notation,
// multi-line arrays) to be written back untouched, while still exposing a
// plain value view through Unwrap and Kind for code that only cares about
// data. Entries that are replaced or extended after parsing are re-rendered
// canonically; everything else is emitted byte for byte.
//
// The merge engine operates exclusively on this model. Callers own the
// documents they parse and are responsible for rendering them back to disk.
package tomldoc
