package organizer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/SrWildman/dfs/internal/category"
	"github.com/SrWildman/dfs/internal/config"
	"github.com/SrWildman/dfs/internal/csvfile"
	"github.com/SrWildman/dfs/internal/fileutil"
	"github.com/SrWildman/dfs/internal/logging"
	"github.com/SrWildman/dfs/internal/manifest"
)

// Organizer moves classified CSVs from the staging directory into the
// per-category layout and promotes the newest file per category to Latest.
type Organizer struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New constructs an organizer.
func New(cfg *config.Config, logger *slog.Logger) *Organizer {
	return &Organizer{cfg: cfg, logger: logging.NewComponentLogger(logger, "organizer")}
}

// Organize runs one pass: scan, classify, select, promote. Failures are
// isolated per category; one unmovable file never blocks the rest. The
// manifest records each promoted file's identity but upload status is never
// touched here.
func (o *Organizer) Organize(ctx context.Context, m *manifest.Manifest, now time.Time) Report {
	logger := logging.WithContext(ctx, o.logger)
	report := NewReport()

	candidates, scanned, err := o.scanStaging(now)
	if err != nil {
		report.ScanError = err
		logger.Warn("staging scan failed",
			logging.String("staging_dir", o.cfg.Paths.StagingDir),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check staging_dir exists and is readable"))
		return report
	}
	report.Scanned = scanned

	grouped := make(map[category.Category][]category.RawFile)
	for _, raw := range candidates {
		cat, ok := category.Classify(raw)
		if !ok {
			report.Unclassified++
			logger.Debug("leaving unclassified file in staging", logging.String("file", raw.Name))
			continue
		}
		grouped[cat] = append(grouped[cat], raw)
	}

	for cat, files := range grouped {
		result := o.organizeCategory(cat, files, m, now)
		report.Results[cat] = result
		if result.Err != "" {
			logger.Warn("category organize failed",
				logging.String(logging.FieldCategory, string(cat)),
				logging.String("error", result.Err),
				logging.String(logging.FieldErrorHint, "file may be locked; it stays in staging for the next pass"))
			continue
		}
		logger.Info("promoted latest file",
			logging.String(logging.FieldCategory, string(cat)),
			logging.String("source", filepath.Base(result.ChosenFile)),
			logging.Int("considered", result.SourceCount))
	}

	return report
}

// organizeCategory promotes the newest candidate for one category. The
// replaced Latest becomes a snapshot when retention is enabled; superseded
// same-run duplicates follow the same retention rule.
func (o *Organizer) organizeCategory(cat category.Category, files []category.RawFile, m *manifest.Manifest, now time.Time) CategoryResult {
	result := CategoryResult{SourceCount: len(files)}

	chosen, rest := selectNewest(files)
	result.ChosenFile = chosen.Path

	destDir := cat.Dir(o.cfg.Paths.DataDir)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		result.Err = fmt.Sprintf("create category dir: %v", err)
		return result
	}

	latestPath := cat.LatestPath(o.cfg.Paths.DataDir)
	if info, err := os.Stat(latestPath); err == nil {
		if o.cfg.Organize.KeepSnapshots {
			snapshot := filepath.Join(destDir, cat.SnapshotFilename(info.ModTime()))
			if err := fileutil.MoveFile(latestPath, snapshot); err != nil {
				result.Err = fmt.Sprintf("retire previous latest: %v", err)
				return result
			}
			result.SnapshotPath = snapshot
		} else if err := os.Remove(latestPath); err != nil {
			result.Err = fmt.Sprintf("remove previous latest: %v", err)
			return result
		}
	}

	if err := fileutil.MoveFile(chosen.Path, latestPath); err != nil {
		result.Err = fmt.Sprintf("promote latest: %v", err)
		return result
	}
	result.Moved = true
	result.LatestPath = latestPath

	// Superseded duplicates from the same run: retained as snapshots, or
	// removed once a newer file has replaced them.
	for _, stale := range rest {
		if o.cfg.Organize.KeepSnapshots {
			snapshot := filepath.Join(destDir, cat.SnapshotFilename(stale.ModTime))
			if err := fileutil.MoveFile(stale.Path, snapshot); err != nil {
				result.Err = fmt.Sprintf("retire duplicate %s: %v", filepath.Base(stale.Path), err)
				return result
			}
		} else if err := os.Remove(stale.Path); err != nil {
			result.Err = fmt.Sprintf("remove duplicate %s: %v", filepath.Base(stale.Path), err)
			return result
		}
	}

	if id, err := manifest.Identify(latestPath); err == nil {
		m.RecordOrganized(cat, id, now)
	} else {
		result.Err = fmt.Sprintf("stat promoted latest: %v", err)
	}
	return result
}

// scanStaging lists CSV files in the staging directory newer than the age
// cutoff, with a bounded content sample attached for classification.
func (o *Organizer) scanStaging(now time.Time) ([]category.RawFile, int, error) {
	cutoff := now.Add(-time.Duration(o.cfg.Organize.MaxAgeMinutes) * time.Minute)

	entries, err := os.ReadDir(o.cfg.Paths.StagingDir)
	if err != nil {
		return nil, 0, err
	}

	var files []category.RawFile
	scanned := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		scanned++
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(o.cfg.Paths.StagingDir, entry.Name())
		sample, err := csvfile.ReadSample(path, o.cfg.Organize.ContentSampleSize)
		if err != nil {
			// Unreadable now; leave it for a later pass.
			continue
		}
		files = append(files, category.RawFile{
			Path:    path,
			Name:    entry.Name(),
			Sample:  sample,
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}
	return files, scanned, nil
}

// selectNewest picks the file with the greatest modification time; equal
// timestamps break toward the lexically last path so selection is
// reproducible.
func selectNewest(files []category.RawFile) (category.RawFile, []category.RawFile) {
	sorted := make([]category.RawFile, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].ModTime.Equal(sorted[j].ModTime) {
			return sorted[i].ModTime.After(sorted[j].ModTime)
		}
		return sorted[i].Path > sorted[j].Path
	})
	return sorted[0], sorted[1:]
}
