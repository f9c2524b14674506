package category

import (
	"strings"
	"time"
)

// RawFile carries the inputs classification is allowed to look at: the file
// name and a bounded content sample. Classification never reads whole files.
type RawFile struct {
	Path    string
	Name    string
	Sample  string
	ModTime time.Time
	Size    int64
}

// rule pairs a predicate with the category it selects. Rules are evaluated in
// declaration order and the first match wins; the order is a deliberate
// priority because some categories' markers are substrings of others'
// (strength-of-schedule files mention "fantasy" too).
type rule struct {
	category Category
	match    func(f RawFile) bool
}

// Filename rules run before content rules so an unambiguous name short-circuits
// without touching the sample.
var rules = []rule{
	{SOS, matchSOSFilename},
	{Projections, filenameAny("projection", "fantasy", "footballers")},
	{DraftKings, filenameAny("draftkings", "dk", "salaries")},
	{NFLOdds, filenameAny("odds", "lines", "betting")},
	{SOS, matchSOSContent},
	{Projections, contentAny("projpts", "projown", "fantasy", "footballers")},
	{DraftKings, contentAny("draftkings", "salary", "roster position")},
	{NFLOdds, matchOddsContent},
}

// Classify assigns a raw file to a category, or reports false when nothing
// matches. An unmatched file is a normal outcome, not an error.
func Classify(f RawFile) (Category, bool) {
	for _, r := range rules {
		if !r.match(f) {
			continue
		}
		if r.category == SOS {
			return sosVariant(f.Name), true
		}
		return r.category, true
	}
	return "", false
}

func filenameAny(markers ...string) func(RawFile) bool {
	return func(f RawFile) bool {
		name := strings.ToLower(f.Name)
		for _, marker := range markers {
			if strings.Contains(name, marker) {
				return true
			}
		}
		return false
	}
}

func contentAny(markers ...string) func(RawFile) bool {
	return func(f RawFile) bool {
		sample := strings.ToLower(f.Sample)
		if sample == "" {
			return false
		}
		for _, marker := range markers {
			if strings.Contains(sample, marker) {
				return true
			}
		}
		return false
	}
}

func matchSOSFilename(f RawFile) bool {
	name := strings.ToLower(f.Name)
	return strings.Contains(name, "strength of schedule") && strings.Contains(name, "fantasy")
}

func matchSOSContent(f RawFile) bool {
	sample := strings.ToLower(f.Sample)
	if sample == "" {
		return false
	}
	if strings.Contains(sample, "strength of schedule") {
		return true
	}
	return strings.Contains(sample, "opp avg") && strings.Contains(sample, "fpa")
}

func matchOddsContent(f RawFile) bool {
	sample := strings.ToLower(f.Sample)
	if sample == "" {
		return false
	}
	if strings.Contains(sample, "spread") || strings.Contains(sample, "moneyline") {
		return true
	}
	if !strings.Contains(sample, "total") {
		return false
	}
	for _, marker := range []string{"odds", "line", "bet"} {
		if strings.Contains(sample, marker) {
			return true
		}
	}
	return false
}

// sosVariant refines a strength-of-schedule match into its per-position
// category based on the filename. Files naming no position land in the base
// sos category.
func sosVariant(name string) Category {
	upper := strings.ToUpper(name)
	switch {
	case strings.Contains(upper, "SOS_QB_"), strings.Contains(upper, "_QB_"):
		return SOSQB
	case strings.Contains(upper, "SOS_RB_"), strings.Contains(upper, "_RB_"):
		return SOSRB
	case strings.Contains(upper, "SOS_WR_"), strings.Contains(upper, "_WR_"):
		return SOSWR
	case strings.Contains(upper, "SOS_TE_"), strings.Contains(upper, "_TE_"):
		return SOSTE
	case strings.Contains(upper, "SOS_D/ST_"), strings.Contains(upper, "_DST_"), strings.Contains(upper, "D%2FST"):
		return SOSDST
	default:
		return SOS
	}
}
