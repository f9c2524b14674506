package organizer

import "github.com/SrWildman/dfs/internal/category"

// CategoryResult describes what happened to one category during a pass.
type CategoryResult struct {
	Moved        bool
	SourceCount  int
	ChosenFile   string
	LatestPath   string
	SnapshotPath string
	Err          string
}

// Report summarizes one organize pass.
type Report struct {
	Scanned      int
	Unclassified int
	Results      map[category.Category]CategoryResult
	ScanError    error
}

// NewReport returns an empty report ready to collect results.
func NewReport() Report {
	return Report{Results: make(map[category.Category]CategoryResult)}
}

// Moved counts categories that received a new Latest file.
func (r Report) Moved() int {
	count := 0
	for _, result := range r.Results {
		if result.Moved {
			count++
		}
	}
	return count
}

// Failures returns the categories whose organize step failed, in no
// particular order.
func (r Report) Failures() []category.Category {
	var failed []category.Category
	for cat, result := range r.Results {
		if result.Err != "" {
			failed = append(failed, cat)
		}
	}
	return failed
}

// OK reports whether the pass completed without any scan or category error.
func (r Report) OK() bool {
	return r.ScanError == nil && len(r.Failures()) == 0
}
