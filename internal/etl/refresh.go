// Package etl implements the metadata refresh step: it joins the raw
// Users and UserAchievements CSV tables into the denormalized parquet
// table the dashboard loads at startup.
//
// Downloading the raw CSVs (and authenticating against the upstream
// provider) is outside this package; it consumes files already on disk.
package etl

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/parquet-go/parquet-go"

	"github.com/AdrianWisniewskiKaggle/Country-Specific-User-Ranking-Dashboard/internal/dataset"
	"github.com/AdrianWisniewskiKaggle/Country-Specific-User-Ranking-Dashboard/internal/logger"
)

// ProfileBaseURL is the prefix profile links are derived from.
const ProfileBaseURL = "https://www.kaggle.com/"

// Common errors
var (
	// ErrMissingColumn is returned when a required CSV column is absent.
	ErrMissingColumn = errors.New("missing required column")
)

// Required columns per source file.
var (
	userColumns        = []string{"Id", "UserName", "DisplayName", "PerformanceTier", "Country"}
	achievementColumns = []string{"UserId", "AchievementType", "Tier", "CurrentRanking", "HighestRanking", "TotalGold", "TotalSilver", "TotalBronze"}
)

// Options configures a refresh run.
type Options struct {
	// UsersCSV is the path to Users.csv.
	UsersCSV string
	// AchievementsCSV is the path to UserAchievements.csv.
	AchievementsCSV string
	// OutputPath is where the joined parquet table is written.
	OutputPath string
}

// Summary reports what a refresh run produced.
type Summary struct {
	// Users is the number of user rows read.
	Users int
	// Achievements is the number of achievement rows read, kept or not.
	Achievements int
	// Dropped is the number of achievement rows excluded for missing
	// or non-positive ranking values.
	Dropped int
	// Records is the number of joined records written.
	Records int
}

// user is one row of Users.csv.
type user struct {
	id              uint32
	userName        string
	displayName     string
	performanceTier uint8
	country         *string
}

// Refresh reads both CSV sources, joins them on Id == UserId, derives the
// profile URL, and writes the result as a parquet table at OutputPath.
func Refresh(opts Options) (*Summary, error) {
	users, err := readUsers(opts.UsersCSV)
	if err != nil {
		return nil, fmt.Errorf("reading users: %w", err)
	}

	records, summary, err := readAndJoinAchievements(opts.AchievementsCSV, users)
	if err != nil {
		return nil, fmt.Errorf("reading achievements: %w", err)
	}
	summary.Users = len(users)

	if dir := filepath.Dir(opts.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := parquet.WriteFile(opts.OutputPath, records); err != nil {
		return nil, fmt.Errorf("writing parquet table: %w", err)
	}

	logger.Info("metadata refresh completed",
		"users", summary.Users,
		"achievements", summary.Achievements,
		"dropped", summary.Dropped,
		"records", summary.Records,
		"output", opts.OutputPath,
	)
	return summary, nil
}

// readUsers loads Users.csv into a map keyed by user Id.
func readUsers(path string) (map[uint32]user, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols, err := headerIndex(header, userColumns)
	if err != nil {
		return nil, err
	}

	users := make(map[uint32]user)
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		id, err := strconv.ParseUint(row[cols["Id"]], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid Id %q", line, row[cols["Id"]])
		}
		tier, err := strconv.ParseUint(row[cols["PerformanceTier"]], 10, 8)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid PerformanceTier %q", line, row[cols["PerformanceTier"]])
		}

		u := user{
			id:              uint32(id),
			userName:        row[cols["UserName"]],
			displayName:     row[cols["DisplayName"]],
			performanceTier: uint8(tier),
		}
		if c := row[cols["Country"]]; c != "" {
			u.country = &c
		}
		users[u.id] = u
	}
	return users, nil
}

// readAndJoinAchievements streams UserAchievements.csv, drops rows without
// usable ranking values, and joins the rest against the user map.
func readAndJoinAchievements(path string, users map[uint32]user) ([]dataset.Record, *Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}
	cols, err := headerIndex(header, achievementColumns)
	if err != nil {
		return nil, nil, err
	}

	summary := &Summary{}
	records := make([]dataset.Record, 0)
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		summary.Achievements++

		current, okCurrent := parseRanking(row[cols["CurrentRanking"]])
		highest, okHighest := parseRanking(row[cols["HighestRanking"]])
		if !okCurrent || !okHighest {
			summary.Dropped++
			continue
		}

		userID, err := strconv.ParseUint(row[cols["UserId"]], 10, 32)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: invalid UserId %q", line, row[cols["UserId"]])
		}
		u, ok := users[uint32(userID)]
		if !ok {
			// Inner join: achievements without a matching user are skipped.
			continue
		}

		tier, err := strconv.ParseUint(row[cols["Tier"]], 10, 8)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: invalid Tier %q", line, row[cols["Tier"]])
		}

		records = append(records, dataset.Record{
			Id:              u.id,
			UserName:        u.userName,
			DisplayName:     u.displayName,
			PerformanceTier: u.performanceTier,
			Country:         u.country,
			UserId:          uint32(userID),
			AchievementType: row[cols["AchievementType"]],
			Tier:            uint8(tier),
			CurrentRanking:  current,
			HighestRanking:  highest,
			TotalGold:       parseMedal(row[cols["TotalGold"]]),
			TotalSilver:     parseMedal(row[cols["TotalSilver"]]),
			TotalBronze:     parseMedal(row[cols["TotalBronze"]]),
			Profile:         ProfileBaseURL + u.userName,
		})
		summary.Records++
	}
	return records, summary, nil
}

// parseRanking parses a ranking cell. The raw export stores rankings as
// floats ("42.0") with blanks for unranked rows; blanks, unparseable
// values, and non-positive values all disqualify the row.
func parseRanking(raw string) (uint16, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 || v > 65535 {
		return 0, false
	}
	return uint16(v), true
}

// parseMedal parses a medal count cell; absent or unparseable cells stay nil
// and normalize to 0 at display time.
func parseMedal(raw string) *uint16 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 65535 {
		return nil
	}
	n := uint16(v)
	return &n
}

// headerIndex maps required column names to their positions in the header.
func headerIndex(header []string, required []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}
	return idx, nil
}
