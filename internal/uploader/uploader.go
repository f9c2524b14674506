package uploader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/SrWildman/dfs/internal/category"
	"github.com/SrWildman/dfs/internal/config"
	"github.com/SrWildman/dfs/internal/csvfile"
	"github.com/SrWildman/dfs/internal/logging"
	"github.com/SrWildman/dfs/internal/manifest"
	"github.com/SrWildman/dfs/internal/services"
	"github.com/SrWildman/dfs/internal/services/tabstore"
)

const component = "uploader"

// Uploader pushes each category's Latest file to its mapped remote tab.
type Uploader struct {
	cfg    *config.Config
	client tabstore.Client
	logger *slog.Logger
	sleep  func(time.Duration)
}

// New constructs an uploader around a tab client.
func New(cfg *config.Config, client tabstore.Client, logger *slog.Logger) *Uploader {
	return &Uploader{
		cfg:    cfg,
		client: client,
		logger: logging.NewComponentLogger(logger, component),
		sleep:  time.Sleep,
	}
}

// Sync uploads every requested category. Each category fails or succeeds on
// its own and the manifest records every outcome. The returned error is
// non-nil only when the whole pass is pointless to continue: every category
// that actually attempted an upload failed authentication.
func (u *Uploader) Sync(ctx context.Context, cats []category.Category, m *manifest.Manifest) (Report, error) {
	logger := logging.WithContext(ctx, u.logger)
	report := NewReport()
	now := time.Now()

	attempted := 0
	authFailures := 0

	for _, cat := range cats {
		outcome := u.syncCategory(ctx, cat, logger)
		report.Outcomes[cat] = outcome

		entry := m.Entry(cat)
		switch outcome.Status {
		case manifest.StatusSuccess:
			if id, err := manifest.Identify(cat.LatestPath(u.cfg.Paths.DataDir)); err == nil {
				entry.Latest = &id
			}
			entry.UploadStatus = manifest.StatusSuccess
			entry.UploadedAt = now
			entry.LastError = ""
		case manifest.StatusFailure:
			entry.UploadStatus = manifest.StatusFailure
			entry.LastError = outcome.Err.Error()
		case manifest.StatusSkipped:
			entry.UploadStatus = manifest.StatusSkipped
			entry.LastError = outcome.Reason
		}
		m.Set(entry)

		if outcome.Status != manifest.StatusSkipped {
			attempted++
			if outcome.Err != nil && errors.Is(outcome.Err, services.ErrAuthentication) {
				authFailures++
			}
		}
	}

	if attempted > 0 && authFailures == attempted {
		return report, services.Wrap(services.ErrAuthentication, component, "sync",
			"all uploads failed authentication; check api_token", nil)
	}
	return report, nil
}

// syncCategory uploads one category's Latest file with the configured retry
// budget. Missing files and unmapped categories are skips, not failures.
func (u *Uploader) syncCategory(ctx context.Context, cat category.Category, logger *slog.Logger) CategoryOutcome {
	if u.cfg.Sheets.BaseURL == "" || u.cfg.Sheets.APIToken == "" {
		return CategoryOutcome{Status: manifest.StatusSkipped, Reason: "sheets not configured"}
	}

	latestPath := cat.LatestPath(u.cfg.Paths.DataDir)
	if _, err := os.Stat(latestPath); err != nil {
		reason := "no latest file"
		if !errors.Is(err, fs.ErrNotExist) {
			reason = fmt.Sprintf("latest file unreadable: %v", err)
		}
		logger.Info("skipping category",
			logging.String(logging.FieldCategory, string(cat)),
			logging.String("reason", reason))
		return CategoryOutcome{Status: manifest.StatusSkipped, Reason: reason}
	}

	tab, ok := u.cfg.TabName(string(cat))
	if !ok {
		logger.Info("skipping category",
			logging.String(logging.FieldCategory, string(cat)),
			logging.String("reason", "no tab mapping"))
		return CategoryOutcome{Status: manifest.StatusSkipped, Reason: "no tab mapping"}
	}

	attempts := u.cfg.Sheets.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := time.Duration(u.cfg.Sheets.RetryDelaySeconds) * time.Second

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		rows, err := u.uploadOnce(ctx, latestPath, tab)
		if err == nil {
			logger.Info("uploaded category",
				logging.String(logging.FieldCategory, string(cat)),
				logging.String("tab", tab),
				logging.Int("rows", rows),
				logging.Int("attempt", attempt))
			return CategoryOutcome{Status: manifest.StatusSuccess, Tab: tab, Attempts: attempt, Rows: rows}
		}
		lastErr = err
		if !services.Retryable(err) {
			logger.Warn("upload failed, not retryable",
				logging.String(logging.FieldCategory, string(cat)),
				logging.String("tab", tab),
				logging.Error(err))
			return CategoryOutcome{Status: manifest.StatusFailure, Tab: tab, Attempts: attempt, Err: err}
		}
		logger.Warn("upload attempt failed",
			logging.String(logging.FieldCategory, string(cat)),
			logging.String("tab", tab),
			logging.Int("attempt", attempt),
			logging.Error(err))
		if attempt < attempts {
			u.sleep(delay)
		}
	}
	return CategoryOutcome{Status: manifest.StatusFailure, Tab: tab, Attempts: attempts, Err: lastErr}
}

// uploadOnce performs a single full attempt: parse, clean, ensure, clear,
// write. The clear happens inside the attempt so a retried upload always
// lands on an empty tab, never on top of a half-written one.
func (u *Uploader) uploadOnce(ctx context.Context, path, tab string) (int, error) {
	table, err := csvfile.Read(path)
	if err != nil {
		return 0, services.Wrap(services.ErrParse, component, "upload", "parse csv", err)
	}
	table.CleanRows()

	if u.cfg.Sheets.CreateMissingTabs {
		if err := u.client.EnsureTab(ctx, tab); err != nil {
			return 0, err
		}
	}
	if u.cfg.Sheets.ClearBeforeUpload {
		if err := u.client.ClearTab(ctx, tab); err != nil {
			return 0, err
		}
	}
	if err := u.client.WriteRows(ctx, tab, table.Header, table.Rows); err != nil {
		return 0, err
	}
	return len(table.Rows), nil
}
