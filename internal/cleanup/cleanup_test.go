package cleanup_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/SrWildman/dfs/internal/category"
	"github.com/SrWildman/dfs/internal/cleanup"
	"github.com/SrWildman/dfs/internal/logging"
	"github.com/SrWildman/dfs/internal/testsupport"
)

func TestClearOldCSVsRemovesOnlyCSVs(t *testing.T) {
	dataDir := t.TempDir()

	root := testsupport.WriteCSV(t, dataDir, "stray.csv", "a,b\n")
	latest := testsupport.WriteCSV(t, category.Projections.Dir(dataDir),
		category.Projections.LatestFilename(), "a,b\n")
	snapshot := testsupport.WriteCSV(t, category.Projections.Dir(dataDir),
		"projections_20250901_0900.csv", "a,b\n")
	manifest := testsupport.WriteCSV(t, dataDir, "upload_manifest.json", "[]")

	result := cleanup.ClearOldCSVs(dataDir, logging.NewNop())
	if !result.OK() {
		t.Fatalf("errors: %v", result.Errors)
	}
	if result.Removed != 3 {
		t.Fatalf("expected 3 removed, got %d", result.Removed)
	}

	for _, gone := range []string{root, latest, snapshot} {
		if _, err := os.Stat(gone); !os.IsNotExist(err) {
			t.Fatalf("%s should be removed", gone)
		}
	}
	if _, err := os.Stat(manifest); err != nil {
		t.Fatalf("manifest must survive cleanup: %v", err)
	}
}

func TestClearOldCSVsMissingDataDir(t *testing.T) {
	result := cleanup.ClearOldCSVs(filepath.Join(t.TempDir(), "absent"), logging.NewNop())
	if !result.OK() || result.Removed != 0 {
		t.Fatalf("missing tree should be a no-op: %+v", result)
	}
}

func TestClearOldCSVsIgnoresUnknownSubdirectories(t *testing.T) {
	dataDir := t.TempDir()
	other := testsupport.WriteCSV(t, filepath.Join(dataDir, "archive"), "keep.csv", "a,b\n")

	result := cleanup.ClearOldCSVs(dataDir, logging.NewNop())
	if !result.OK() || result.Removed != 0 {
		t.Fatalf("unexpected removals: %+v", result)
	}
	if _, err := os.Stat(other); err != nil {
		t.Fatalf("files outside category dirs must survive: %v", err)
	}
}
