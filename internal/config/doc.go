// Package config loads, validates, and normalizes the TOML configuration for
// the dfs pipeline. Unknown keys are ignored so older configs keep working;
// missing keys fall back to documented defaults.
package config
