// Package logging wraps log/slog with the attribute helpers and handler
// construction used across the dfs pipeline. Console output is a compact
// single-line format for interactive runs; json output is intended for
// scheduled runs whose logs land in files.
package logging
