package uploader

import (
	"github.com/SrWildman/dfs/internal/category"
	"github.com/SrWildman/dfs/internal/manifest"
)

// CategoryOutcome records one category's sync result.
type CategoryOutcome struct {
	Status   manifest.UploadStatus
	Tab      string
	Reason   string
	Err      error
	Attempts int
	Rows     int
}

// Report summarizes one sync pass.
type Report struct {
	Outcomes map[category.Category]CategoryOutcome
}

// NewReport returns an empty report ready to collect outcomes.
func NewReport() Report {
	return Report{Outcomes: make(map[category.Category]CategoryOutcome)}
}

// Counts tallies outcomes by status.
func (r Report) Counts() (succeeded, failed, skipped int) {
	for _, outcome := range r.Outcomes {
		switch outcome.Status {
		case manifest.StatusSuccess:
			succeeded++
		case manifest.StatusFailure:
			failed++
		case manifest.StatusSkipped:
			skipped++
		}
	}
	return succeeded, failed, skipped
}

// AllSucceeded reports whether no category failed. Skips do not count
// against success; a category with nothing to upload is not a failure.
func (r Report) AllSucceeded() bool {
	_, failed, _ := r.Counts()
	return failed == 0
}
