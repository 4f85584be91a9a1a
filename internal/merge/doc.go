// Package merge folds a template TOML document into an existing one.
//
// The merge walks the source table in key order and resolves every key
// against the target independently:
//   - absent keys are inserted as deep clones of the source value
//   - tables are merged recursively
//   - arrays (inline arrays and arrays of tables alike) are unioned by value,
//     appending only items the target does not hold yet
//   - existing scalars are kept unless Options.Force is set
//   - values whose kinds differ are skipped unless Options.Force is set
//
// Merge never prints. Every outcome is returned as a Decision so callers can
// present, log or persist them; see the report package.
package merge
