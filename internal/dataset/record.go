// Package dataset provides the loaded achievement table and its accessors.
// The table is read once at process start from a persisted parquet file and
// is immutable afterwards; every reader shares it without locking.
package dataset

import (
	"sort"
	"sync"
)

// Record is one joined (user, achievement-type) row of the persisted table.
// Field names and types mirror the parquet schema produced by the refresh step.
type Record struct {
	// Id is the user table key; equals UserId after the join.
	Id uint32 `parquet:"Id"`

	// UserName is the Kaggle handle the profile URL is derived from.
	UserName string `parquet:"UserName"`

	// DisplayName is the user's display name.
	DisplayName string `parquet:"DisplayName"`

	// PerformanceTier is the user's overall tier.
	PerformanceTier uint8 `parquet:"PerformanceTier"`

	// Country is optional; nil means not reported.
	Country *string `parquet:"Country,optional"`

	// UserId is the join key; present and non-zero on every record.
	UserId uint32 `parquet:"UserId"`

	// AchievementType is the achievement category (e.g. "Competitions").
	AchievementType string `parquet:"AchievementType"`

	// Tier is the per-achievement skill level, 0-4 for known tiers.
	// Values outside that range are preserved as-is.
	Tier uint8 `parquet:"Tier"`

	// CurrentRanking and HighestRanking are positive; rows missing either
	// are excluded at refresh time and never reach the loaded table.
	CurrentRanking uint16 `parquet:"CurrentRanking"`
	HighestRanking uint16 `parquet:"HighestRanking"`

	// Medal counts are optional in the stored table; nil normalizes to 0
	// at display time.
	TotalGold   *uint16 `parquet:"TotalGold,optional"`
	TotalSilver *uint16 `parquet:"TotalSilver,optional"`
	TotalBronze *uint16 `parquet:"TotalBronze,optional"`

	// Profile is the derived profile URL ("" when absent).
	Profile string `parquet:"Profile,optional"`
}

// Table is an immutable set of records. Accessors hand out value copies;
// the backing slice is never exposed, so renders cannot mutate shared state.
type Table struct {
	records []Record

	countriesOnce sync.Once
	countries     []string

	typesOnce        sync.Once
	achievementTypes []string
}

// NewTable creates a table over the given records. The caller must not
// retain or modify the slice after handing it over.
func NewTable(records []Record) *Table {
	return &Table{records: records}
}

// Len returns the number of records in the table.
func (t *Table) Len() int {
	return len(t.records)
}

// Record returns a copy of the record at index i.
func (t *Table) Record(i int) Record {
	return t.records[i]
}

// Countries returns the sorted distinct non-null countries in the table.
// The result is memoized; callers receive a fresh copy on every call.
func (t *Table) Countries() []string {
	t.countriesOnce.Do(func() {
		t.countries = distinct(t.records, func(r Record) (string, bool) {
			if r.Country == nil || *r.Country == "" {
				return "", false
			}
			return *r.Country, true
		})
	})
	return append([]string(nil), t.countries...)
}

// AchievementTypes returns the sorted distinct non-null achievement types.
// The result is memoized; callers receive a fresh copy on every call.
func (t *Table) AchievementTypes() []string {
	t.typesOnce.Do(func() {
		t.achievementTypes = distinct(t.records, func(r Record) (string, bool) {
			if r.AchievementType == "" {
				return "", false
			}
			return r.AchievementType, true
		})
	})
	return append([]string(nil), t.achievementTypes...)
}

// distinct collects the sorted set of values extracted from records.
func distinct(records []Record, extract func(Record) (string, bool)) []string {
	seen := make(map[string]bool)
	values := make([]string, 0)
	for _, r := range records {
		v, ok := extract(r)
		if !ok || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
