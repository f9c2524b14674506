package organizer_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/SrWildman/dfs/internal/category"
	"github.com/SrWildman/dfs/internal/config"
	"github.com/SrWildman/dfs/internal/logging"
	"github.com/SrWildman/dfs/internal/manifest"
	"github.com/SrWildman/dfs/internal/organizer"
	"github.com/SrWildman/dfs/internal/testsupport"
)

const projectionsCSV = "Name,ProjPts,ProjOwn\nJosh Allen,24.1,18%\n"
const salariesCSV = "Name,Roster Position,Salary\nJosh Allen,QB,8200\n"
const oddsCSV = "Team,Spread,Moneyline,Total\nBUF,-3.5,-180,47.5\n"

func newManifest(t *testing.T, cfg *config.Config) *manifest.Manifest {
	t.Helper()
	return manifest.Load(cfg.Paths.ManifestPath, logging.NewNop())
}

func TestOrganizePromotesClassifiedDownloads(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	now := time.Now()

	testsupport.WriteCSV(t, cfg.Paths.StagingDir, "weekly projections (3).csv", projectionsCSV)
	testsupport.WriteCSV(t, cfg.Paths.StagingDir, "DKSalaries.csv", salariesCSV)
	testsupport.WriteCSV(t, cfg.Paths.StagingDir, "export.csv", oddsCSV)
	testsupport.WriteCSV(t, cfg.Paths.StagingDir, "notes.csv", "a,b\n1,2\n")

	m := newManifest(t, cfg)
	report := organizer.New(cfg, logging.NewNop()).Organize(context.Background(), m, now)

	if !report.OK() {
		t.Fatalf("expected clean pass: %+v", report)
	}
	if report.Moved() != 3 {
		t.Fatalf("expected 3 categories moved, got %d", report.Moved())
	}
	if report.Unclassified != 1 {
		t.Fatalf("expected 1 unclassified, got %d", report.Unclassified)
	}

	for _, cat := range []category.Category{category.Projections, category.DraftKings, category.NFLOdds} {
		latest := cat.LatestPath(cfg.Paths.DataDir)
		if _, err := os.Stat(latest); err != nil {
			t.Fatalf("missing latest for %s: %v", cat, err)
		}
		entry := m.Entry(cat)
		if entry.Latest == nil || entry.Latest.Path != latest {
			t.Fatalf("manifest not updated for %s: %+v", cat, entry)
		}
		if entry.UploadStatus != manifest.StatusNever {
			t.Fatalf("organize must not set upload status, got %q", entry.UploadStatus)
		}
	}

	// Unclassified file stays put.
	if _, err := os.Stat(filepath.Join(cfg.Paths.StagingDir, "notes.csv")); err != nil {
		t.Fatalf("unclassified file should remain in staging: %v", err)
	}
}

func TestOrganizeNewerDuplicateWinsAndOldLatestBecomesSnapshot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	now := time.Now()

	// An earlier pass already promoted a latest file.
	prior := testsupport.WriteCSV(t, category.Projections.Dir(cfg.Paths.DataDir),
		category.Projections.LatestFilename(), "Name,ProjPts\nOld Row,1.0\n")
	priorTime := now.Add(-2 * time.Hour)
	testsupport.Touch(t, prior, priorTime)

	older := testsupport.WriteCSV(t, cfg.Paths.StagingDir, "projections (1).csv", projectionsCSV)
	newer := testsupport.WriteCSV(t, cfg.Paths.StagingDir, "projections (2).csv",
		"Name,ProjPts,ProjOwn\nCMC,22.9,30%\n")
	testsupport.Touch(t, older, now.Add(-10*time.Minute))
	testsupport.Touch(t, newer, now.Add(-1*time.Minute))

	m := newManifest(t, cfg)
	report := organizer.New(cfg, logging.NewNop()).Organize(context.Background(), m, now)
	if !report.OK() {
		t.Fatalf("expected clean pass: %+v", report)
	}

	result := report.Results[category.Projections]
	if result.ChosenFile != newer {
		t.Fatalf("expected newer file chosen, got %s", result.ChosenFile)
	}

	latest := category.Projections.LatestPath(cfg.Paths.DataDir)
	data, err := os.ReadFile(latest)
	if err != nil {
		t.Fatalf("read latest: %v", err)
	}
	if !strings.Contains(string(data), "CMC") {
		t.Fatalf("latest does not hold newest content: %s", data)
	}

	// Exactly one latest file; the replaced one carries its own mtime stamp.
	expectedSnapshot := filepath.Join(category.Projections.Dir(cfg.Paths.DataDir),
		category.Projections.SnapshotFilename(priorTime))
	if _, err := os.Stat(expectedSnapshot); err != nil {
		t.Fatalf("expected snapshot of replaced latest: %v", err)
	}
	entries, err := os.ReadDir(category.Projections.Dir(cfg.Paths.DataDir))
	if err != nil {
		t.Fatalf("read category dir: %v", err)
	}
	latestCount := 0
	for _, entry := range entries {
		if entry.Name() == category.Projections.LatestFilename() {
			latestCount++
		}
	}
	if latestCount != 1 {
		t.Fatalf("expected exactly one latest file, got %d", latestCount)
	}

	// The superseded staging duplicate is retained too, not left in staging.
	if _, err := os.Stat(older); !os.IsNotExist(err) {
		t.Fatalf("superseded duplicate should have left staging: %v", err)
	}
}

func TestOrganizeDiscardsReplacedFilesWithoutRetention(t *testing.T) {
	cfg := testsupport.NewConfig(t, func(c *config.Config) {
		c.Organize.KeepSnapshots = false
	})
	now := time.Now()

	prior := testsupport.WriteCSV(t, category.Projections.Dir(cfg.Paths.DataDir),
		category.Projections.LatestFilename(), "Name,ProjPts\nOld Row,1.0\n")
	testsupport.Touch(t, prior, now.Add(-time.Hour))
	testsupport.WriteCSV(t, cfg.Paths.StagingDir, "projections.csv", projectionsCSV)

	m := newManifest(t, cfg)
	report := organizer.New(cfg, logging.NewNop()).Organize(context.Background(), m, now)
	if !report.OK() {
		t.Fatalf("expected clean pass: %+v", report)
	}

	entries, err := os.ReadDir(category.Projections.Dir(cfg.Paths.DataDir))
	if err != nil {
		t.Fatalf("read category dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != category.Projections.LatestFilename() {
		t.Fatalf("expected only the latest file, got %v", entries)
	}
}

func TestOrganizeIgnoresStaleAndNonCSVFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	now := time.Now()

	stale := testsupport.WriteCSV(t, cfg.Paths.StagingDir, "projections.csv", projectionsCSV)
	testsupport.Touch(t, stale, now.Add(-time.Duration(cfg.Organize.MaxAgeMinutes+5)*time.Minute))
	testsupport.WriteCSV(t, cfg.Paths.StagingDir, "projections.txt", projectionsCSV)

	m := newManifest(t, cfg)
	report := organizer.New(cfg, logging.NewNop()).Organize(context.Background(), m, now)

	if len(report.Results) != 0 {
		t.Fatalf("expected nothing organized: %+v", report.Results)
	}
	if _, err := os.Stat(stale); err != nil {
		t.Fatalf("stale file must remain in staging: %v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("manifest must be untouched, got %d entries", m.Len())
	}
}

func TestOrganizeEqualTimestampsBreakLexically(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	now := time.Now().Truncate(time.Second)

	first := testsupport.WriteCSV(t, cfg.Paths.StagingDir, "projections (1).csv", projectionsCSV)
	second := testsupport.WriteCSV(t, cfg.Paths.StagingDir, "projections (2).csv", projectionsCSV)
	testsupport.Touch(t, first, now)
	testsupport.Touch(t, second, now)

	m := newManifest(t, cfg)
	report := organizer.New(cfg, logging.NewNop()).Organize(context.Background(), m, now)
	if got := report.Results[category.Projections].ChosenFile; got != second {
		t.Fatalf("expected lexically last path to win, got %s", got)
	}
}

func TestOrganizeIsolatesCategoryFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	now := time.Now()

	testsupport.WriteCSV(t, cfg.Paths.StagingDir, "projections.csv", projectionsCSV)
	testsupport.WriteCSV(t, cfg.Paths.StagingDir, "DKSalaries.csv", salariesCSV)

	// Make the draftkings category dir unusable by occupying its path with a file.
	testsupport.MkdirAll(t, cfg.Paths.DataDir)
	if err := os.WriteFile(category.DraftKings.Dir(cfg.Paths.DataDir), []byte("x"), 0o644); err != nil {
		t.Fatalf("block category dir: %v", err)
	}

	m := newManifest(t, cfg)
	report := organizer.New(cfg, logging.NewNop()).Organize(context.Background(), m, now)

	if report.Results[category.DraftKings].Err == "" {
		t.Fatal("expected draftkings failure")
	}
	if !report.Results[category.Projections].Moved {
		t.Fatal("projections should succeed despite draftkings failure")
	}
	if report.OK() {
		t.Fatal("report should flag the failure")
	}
}

func TestOrganizeMissingStagingDirIsReported(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.RemoveAll(cfg.Paths.StagingDir); err != nil {
		t.Fatalf("remove staging: %v", err)
	}

	m := newManifest(t, cfg)
	report := organizer.New(cfg, logging.NewNop()).Organize(context.Background(), m, time.Now())
	if report.ScanError == nil {
		t.Fatal("expected scan error")
	}
	if report.OK() {
		t.Fatal("report should not be OK")
	}
}
