package category

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category identifies one recognized data source. The set of valid categories
// is fixed at startup; files that match none of them stay unclassified.
type Category string

const (
	Projections Category = "projections"
	DraftKings  Category = "draftkings"
	NFLOdds     Category = "nfl_odds"
	SOS         Category = "sos"
	SOSQB       Category = "sos-qb"
	SOSRB       Category = "sos-rb"
	SOSWR       Category = "sos-wr"
	SOSTE       Category = "sos-te"
	SOSDST      Category = "sos-dst"
)

// snapshotTimestampFormat stamps snapshot filenames, e.g. projections_20250904_1200.csv.
const snapshotTimestampFormat = "20060102_1504"

var all = []Category{
	Projections,
	DraftKings,
	NFLOdds,
	SOS,
	SOSQB,
	SOSRB,
	SOSWR,
	SOSTE,
	SOSDST,
}

// All returns every valid category in stable declaration order.
func All() []Category {
	out := make([]Category, len(all))
	copy(out, all)
	return out
}

// Parse maps a string to a known category.
func Parse(value string) (Category, error) {
	candidate := Category(strings.ToLower(strings.TrimSpace(value)))
	for _, c := range all {
		if c == candidate {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", value)
}

var titleCaser = cases.Title(language.Und)

// DisplayName renders the category for human-readable output,
// e.g. "nfl_odds" becomes "Nfl Odds".
func (c Category) DisplayName() string {
	cleaned := strings.NewReplacer("_", " ", "-", " ").Replace(string(c))
	return titleCaser.String(cleaned)
}

// Dir returns the category's directory under the organized data root.
func (c Category) Dir(dataDir string) string {
	return filepath.Join(dataDir, string(c))
}

// LatestFilename is the stable name downstream readers always find,
// e.g. projections_latest.csv.
func (c Category) LatestFilename() string {
	return string(c) + "_latest.csv"
}

// LatestPath returns the full path of the category's Latest file.
func (c Category) LatestPath(dataDir string) string {
	return filepath.Join(c.Dir(dataDir), c.LatestFilename())
}

// SnapshotFilename names a retained historical copy stamped with the
// source file's own modification time.
func (c Category) SnapshotFilename(modTime time.Time) string {
	return fmt.Sprintf("%s_%s.csv", c, modTime.Format(snapshotTimestampFormat))
}
