// Package cleanup resets the organized data tree between weeks. It removes
// the CSV files the pipeline wrote while leaving the directory structure,
// manifest, and anything that is not a CSV untouched.
package cleanup

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/SrWildman/dfs/internal/category"
	"github.com/SrWildman/dfs/internal/logging"
)

// Result summarizes one cleanup pass.
type Result struct {
	Removed int
	Errors  []string
}

// OK reports whether every removal succeeded.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

// ClearOldCSVs deletes CSV files from the data directory root and each
// category subdirectory. Failures are isolated per file so one stuck file
// does not leave the rest of the tree stale.
func ClearOldCSVs(dataDir string, logger *slog.Logger) Result {
	logger = logging.NewComponentLogger(logger, "cleanup")
	result := Result{}

	dirs := []string{dataDir}
	for _, cat := range category.All() {
		dirs = append(dirs, cat.Dir(dataDir))
	}

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				result.Errors = append(result.Errors, err.Error())
				logger.Warn("failed to remove file",
					logging.String("path", path),
					logging.Error(err))
				continue
			}
			result.Removed++
		}
	}

	logger.Info("cleanup complete",
		logging.Int("removed", result.Removed),
		logging.Int("errors", len(result.Errors)))
	return result
}
