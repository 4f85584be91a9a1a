// Package preflight provides readiness checks for the external tools and
// filesystem paths defaultpoetry depends on.
//
// The CLI "check" command uses CheckSystemDeps and ProbeVersions to show which
// tools are installed and CheckDirectoryAccess to verify the history store
// location. Workflows call RequireTools before touching a project so a
// missing poetry or git binary fails fast instead of midway through a run.
package preflight
