package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/SrWildman/dfs/internal/category"
	"github.com/SrWildman/dfs/internal/cleanup"
	"github.com/SrWildman/dfs/internal/config"
	"github.com/SrWildman/dfs/internal/history"
	"github.com/SrWildman/dfs/internal/logging"
	"github.com/SrWildman/dfs/internal/manifest"
	"github.com/SrWildman/dfs/internal/notifications"
	"github.com/SrWildman/dfs/internal/organizer"
	"github.com/SrWildman/dfs/internal/services/tabstore"
	"github.com/SrWildman/dfs/internal/uploader"
)

// PassOptions selects which stages a pass runs.
type PassOptions struct {
	// Kind labels the pass for history and notifications: "organize",
	// "upload", or "run".
	Kind string
	// Cleanup wipes organized CSVs before organizing (new-week reset).
	Cleanup bool
	// Organize moves staged downloads into the category layout.
	Organize bool
	// Upload syncs Latest files to the remote store.
	Upload bool
	// Categories restricts the upload stage; empty means all.
	Categories []category.Category
}

// PassResult aggregates what one pass did.
type PassResult struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Success  bool

	Cleanup  *cleanup.Result
	Organize *organizer.Report
	Upload   *uploader.Report
	// FatalErr is set when the pass aborted early, e.g. every upload
	// failed authentication.
	FatalErr error
}

// Workflow wires the pipeline stages together: cleanup, organize, upload,
// manifest persistence, run history, notifications.
type Workflow struct {
	cfg      *config.Config
	logger   *slog.Logger
	notifier notifications.Service
	store    *history.Store
	client   tabstore.Client
}

// New assembles a workflow. The history store may be nil; runs are then not
// recorded.
func New(cfg *config.Config, logger *slog.Logger, notifier notifications.Service, store *history.Store, client tabstore.Client) *Workflow {
	return &Workflow{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		notifier: notifier,
		store:    store,
		client:   client,
	}
}

// Run executes one pass. Stage failures are carried in the result; the
// returned error is reserved for infrastructure problems such as an
// unsaveable manifest.
func (w *Workflow) Run(ctx context.Context, opts PassOptions) (PassResult, error) {
	logger := logging.WithContext(ctx, w.logger)
	result := PassResult{
		RunID:   history.NewRunID(),
		Started: time.Now(),
		Success: true,
	}

	if err := w.cfg.EnsureDirectories(); err != nil {
		return result, err
	}
	if err := w.notifier.NotifyRunStarted(ctx, opts.Kind); err != nil {
		logger.Warn("run-started notification failed", logging.Error(err))
	}

	if opts.Cleanup {
		cleanupResult := cleanup.ClearOldCSVs(w.cfg.Paths.DataDir, w.logger)
		result.Cleanup = &cleanupResult
		if !cleanupResult.OK() {
			result.Success = false
		}
	}

	m := manifest.Load(w.cfg.Paths.ManifestPath, w.logger)

	if opts.Organize {
		report := organizer.New(w.cfg, w.logger).Organize(ctx, m, time.Now())
		result.Organize = &report
		if !report.OK() {
			result.Success = false
		}
	}

	if opts.Upload {
		cats := opts.Categories
		if len(cats) == 0 {
			cats = category.All()
		}
		report, err := uploader.New(w.cfg, w.client, w.logger).Sync(ctx, cats, m)
		result.Upload = &report
		if err != nil {
			result.FatalErr = err
			result.Success = false
			if notifyErr := w.notifier.NotifyError(ctx, err, "upload"); notifyErr != nil {
				logger.Warn("error notification failed", logging.Error(notifyErr))
			}
		} else if !report.AllSucceeded() {
			result.Success = false
		}
	}

	if err := m.Save(); err != nil {
		result.Success = false
		result.Finished = time.Now()
		return result, err
	}

	result.Finished = time.Now()
	w.recordRun(ctx, opts, &result, logger)
	w.notifyCompletion(ctx, opts, result, logger)
	return result, nil
}

func (w *Workflow) recordRun(ctx context.Context, opts PassOptions, result *PassResult, logger *slog.Logger) {
	if w.store == nil {
		return
	}
	run := history.Run{
		ID:         result.RunID,
		Kind:       opts.Kind,
		StartedAt:  result.Started,
		FinishedAt: result.Finished,
		Success:    result.Success,
	}

	var outcomes []history.Outcome
	if result.Organize != nil {
		for cat, categoryResult := range result.Organize.Results {
			status := "success"
			detail := categoryResult.ChosenFile
			if categoryResult.Err != "" {
				status = "failure"
				detail = categoryResult.Err
			}
			outcomes = append(outcomes, history.Outcome{
				RunID:    run.ID,
				Category: string(cat),
				Stage:    "organize",
				Status:   status,
				Detail:   detail,
			})
		}
	}
	if result.Upload != nil {
		for cat, outcome := range result.Upload.Outcomes {
			detail := outcome.Reason
			if outcome.Err != nil {
				detail = outcome.Err.Error()
			}
			outcomes = append(outcomes, history.Outcome{
				RunID:    run.ID,
				Category: string(cat),
				Stage:    "upload",
				Status:   string(outcome.Status),
				Detail:   detail,
			})
		}
	}

	if err := w.store.RecordRun(ctx, run, outcomes); err != nil {
		logger.Warn("failed to record run history", logging.Error(err))
	}
}

func (w *Workflow) notifyCompletion(ctx context.Context, opts PassOptions, result PassResult, logger *slog.Logger) {
	succeeded, failed, skipped := 0, 0, 0
	if result.Upload != nil {
		succeeded, failed, skipped = result.Upload.Counts()
	}
	if result.Organize != nil && !result.Organize.OK() {
		failed += len(result.Organize.Failures())
	}
	duration := result.Finished.Sub(result.Started)
	if err := w.notifier.NotifyRunCompleted(ctx, opts.Kind, succeeded, failed, skipped, duration); err != nil {
		logger.Warn("run-completed notification failed", logging.Error(err))
	}
}
