// Package history keeps a durable audit trail of pipeline runs in SQLite:
// one row per pass plus per-category outcomes, queryable from the CLI.
package history
