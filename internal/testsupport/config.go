package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/SrWildman/dfs/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ManifestPath = filepath.Join(base, "data", "upload_manifest.json")
	cfg.Sheets.BaseURL = "https://sheets.test"
	cfg.Sheets.APIToken = "test-token"
	cfg.Sheets.SpreadsheetID = "sheet-test"

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("create config directories: %v", err)
	}
	MkdirAll(t, cfg.Paths.StagingDir)

	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}
