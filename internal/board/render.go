// Package board implements the filter-transform pipeline that turns the
// loaded achievement table into display-ready leaderboard rows.
//
// Render is a pure function of (table, criteria): it never mutates the
// table and produces a fresh row set on every invocation, so repeated
// filtering is idempotent and order-independent.
package board

import (
	"fmt"
	"sort"

	"github.com/AdrianWisniewskiKaggle/Country-Specific-User-Ranking-Dashboard/internal/dataset"
	"github.com/AdrianWisniewskiKaggle/Country-Specific-User-Ranking-Dashboard/internal/logger"
)

// NA is the placeholder for absent informational values.
const NA = "N/A"

// Columns is the fixed projection order of the display fields.
var Columns = []string{
	"No.",
	"DisplayName",
	"CurrentRanking",
	"HighestRanking",
	"Country",
	"Tier",
	"Medals",
	"Profile",
}

// tierLabels maps known tier codes to their display names. Codes outside
// the map pass through unchanged.
var tierLabels = map[uint8]string{
	0: "Novice",
	1: "Contributor",
	2: "Expert",
	3: "Master",
	4: "Grandmaster",
}

// DisplayRow is one formatted output row, serialized as a field-to-value
// mapping for table rendering. Keys are exactly the Columns entries.
type DisplayRow map[string]interface{}

// Criteria selects the subset of the table to render. Empty strings mean
// "no constraint", not "match empty".
type Criteria struct {
	// Country is an exact-match country filter.
	Country string

	// AchievementType is an exact-match achievement type filter.
	AchievementType string

	// Where is an optional expression predicate applied after the
	// exact-match filters (e.g. "TotalGold > 0 && CurrentRanking <= 100").
	Where string
}

// Render produces the ordered display rows for the given criteria.
//
// Steps, in order: filter, empty-result sentinel, stable sort by
// CurrentRanking ascending, 1-based numbering, medal and profile
// formatting, tier relabeling, projection to the fixed column set.
//
// The only error condition is an invalid Where expression; unknown filter
// values are not errors and simply produce the sentinel row.
func Render(table *dataset.Table, c Criteria) ([]DisplayRow, error) {
	var pred *Predicate
	if c.Where != "" {
		var err error
		pred, err = CompileWhere(c.Where)
		if err != nil {
			return nil, err
		}
	}

	matched := make([]dataset.Record, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		r := table.Record(i)
		if c.Country != "" && (r.Country == nil || *r.Country != c.Country) {
			continue
		}
		if c.AchievementType != "" && r.AchievementType != c.AchievementType {
			continue
		}
		if pred != nil {
			ok, err := pred.Match(r)
			if err != nil {
				// A record the expression cannot evaluate against is
				// excluded, not fatal.
				logger.Debug("where predicate failed for record",
					"record_index", i, "error", err.Error())
				continue
			}
			if !ok {
				continue
			}
		}
		matched = append(matched, r)
	}

	if len(matched) == 0 {
		return []DisplayRow{sentinelRow()}, nil
	}

	// Stable: records with equal rankings keep their table order.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CurrentRanking < matched[j].CurrentRanking
	})

	rows := make([]DisplayRow, 0, len(matched))
	for i, r := range matched {
		rows = append(rows, DisplayRow{
			"No.":            i + 1,
			"DisplayName":    r.DisplayName,
			"CurrentRanking": int(r.CurrentRanking),
			"HighestRanking": int(r.HighestRanking),
			"Country":        countryValue(r),
			"Tier":           tierValue(r.Tier),
			"Medals":         formatMedals(r),
			"Profile":        formatProfile(r.Profile),
		})
	}
	return rows, nil
}

// sentinelRow is the single row emitted when a filter yields no matches,
// so the presentation layer never has to special-case emptiness.
func sentinelRow() DisplayRow {
	return DisplayRow{
		"No.":            NA,
		"DisplayName":    "No Data",
		"CurrentRanking": NA,
		"HighestRanking": NA,
		"Country":        NA,
		"Tier":           NA,
		"Medals":         NA,
		"Profile":        NA,
	}
}

// countryValue returns the record's country or "" when not reported.
func countryValue(r dataset.Record) string {
	if r.Country == nil {
		return ""
	}
	return *r.Country
}

// tierValue relabels known tier codes; unknown codes pass through as numbers.
func tierValue(tier uint8) interface{} {
	if label, ok := tierLabels[tier]; ok {
		return label
	}
	return int(tier)
}

// formatMedals builds the medal display string with counts in fixed
// gold, silver, bronze order. Absent counts normalize to 0.
func formatMedals(r dataset.Record) string {
	return fmt.Sprintf("🏅 %d 🥈 %d 🥉 %d",
		medalCount(r.TotalGold),
		medalCount(r.TotalSilver),
		medalCount(r.TotalBronze))
}

func medalCount(v *uint16) int {
	if v == nil {
		return 0
	}
	return int(*v)
}

// formatProfile builds the markdown profile link, or NA when no URL exists.
func formatProfile(url string) string {
	if url == "" {
		return NA
	}
	return fmt.Sprintf("[View Profile](%s)", url)
}
