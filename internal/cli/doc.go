// Package cli implements the trackstats command tree.
//
// Every command loads the configuration in the root PersistentPreRunE, so
// --config and --log-level apply to all of them. Reports go to stdout, logs
// and progress notes go to stderr. Errors carry an exit code (see ExitError):
// 1 when the pipeline rejects the input, 2 for usage, file and config errors.
package cli
