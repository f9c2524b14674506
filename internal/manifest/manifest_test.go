package manifest_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SrWildman/dfs/internal/category"
	"github.com/SrWildman/dfs/internal/logging"
	"github.com/SrWildman/dfs/internal/manifest"
)

func TestLoadMissingManifestStartsEmpty(t *testing.T) {
	m := manifest.Load(filepath.Join(t.TempDir(), "absent.json"), logging.NewNop())
	if m.Len() != 0 {
		t.Fatalf("expected empty manifest, got %d entries", m.Len())
	}
	entry := m.Entry(category.Projections)
	if entry.UploadStatus != manifest.StatusNever {
		t.Fatalf("expected implicit never, got %q", entry.UploadStatus)
	}
}

func TestLoadCorruptManifestReinitializes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upload_manifest.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt: %v", err)
	}
	m := manifest.Load(path, logging.NewNop())
	if m.Len() != 0 {
		t.Fatalf("expected empty manifest after corruption, got %d", m.Len())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upload_manifest.json")
	m := manifest.Load(path, logging.NewNop())

	now := time.Date(2025, 9, 4, 12, 0, 0, 0, time.UTC)
	id := manifest.FileIdentity{Path: "/data/projections/projections_latest.csv", Size: 1234, ModTime: now}
	m.Set(manifest.Entry{
		Category:     category.Projections,
		Latest:       &id,
		OrganizedAt:  now,
		UploadStatus: manifest.StatusSuccess,
		UploadedAt:   now,
	})
	m.Set(manifest.Entry{
		Category:     category.NFLOdds,
		UploadStatus: manifest.StatusSkipped,
		LastError:    "no file",
	})
	if err := m.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded := manifest.Load(path, logging.NewNop())
	if reloaded.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", reloaded.Len())
	}
	entry := reloaded.Entry(category.Projections)
	if entry.UploadStatus != manifest.StatusSuccess || entry.Latest == nil || !entry.Latest.Equal(id) {
		t.Fatalf("round trip mismatch: %+v", entry)
	}
	odds := reloaded.Entry(category.NFLOdds)
	if odds.UploadStatus != manifest.StatusSkipped || odds.LastError != "no file" {
		t.Fatalf("round trip mismatch: %+v", odds)
	}
}

func TestSaveIsHumanInspectableJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upload_manifest.json")
	m := manifest.Load(path, logging.NewNop())
	m.Set(manifest.Entry{Category: category.DraftKings, UploadStatus: manifest.StatusFailure, LastError: "429"})
	if err := m.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var entries []map[string]any
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("manifest is not valid json: %v", err)
	}
	if len(entries) != 1 || entries[0]["category"] != "draftkings" {
		t.Fatalf("unexpected document: %s", data)
	}
}

func TestEffectiveStatusGoesStaleWhenLatestChanges(t *testing.T) {
	now := time.Now()
	recorded := manifest.FileIdentity{Path: "/d/p/projections_latest.csv", Size: 10, ModTime: now}
	entry := manifest.Entry{
		Category:     category.Projections,
		Latest:       &recorded,
		UploadStatus: manifest.StatusSuccess,
	}

	same := recorded
	if got := entry.EffectiveStatus(&same); got != manifest.StatusSuccess {
		t.Fatalf("expected success for matching identity, got %q", got)
	}

	changed := manifest.FileIdentity{Path: recorded.Path, Size: 11, ModTime: now.Add(time.Minute)}
	if got := entry.EffectiveStatus(&changed); got != manifest.StatusNever {
		t.Fatalf("expected never for changed identity, got %q", got)
	}
}

func TestRecordOrganizedPreservesUploadFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upload_manifest.json")
	m := manifest.Load(path, logging.NewNop())
	m.Set(manifest.Entry{Category: category.Projections, UploadStatus: manifest.StatusSuccess})

	now := time.Now()
	id := manifest.FileIdentity{Path: "/d/p/projections_latest.csv", Size: 99, ModTime: now}
	m.RecordOrganized(category.Projections, id, now)

	entry := m.Entry(category.Projections)
	if entry.UploadStatus != manifest.StatusSuccess {
		t.Fatalf("organize must not touch upload status, got %q", entry.UploadStatus)
	}
	if entry.Latest == nil || !entry.Latest.Equal(id) || !entry.OrganizedAt.Equal(now) {
		t.Fatalf("organize fields not recorded: %+v", entry)
	}
}
