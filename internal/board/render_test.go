package board

import (
	"reflect"
	"testing"

	"github.com/AdrianWisniewskiKaggle/Country-Specific-User-Ranking-Dashboard/internal/dataset"
)

func strPtr(s string) *string { return &s }

func u16Ptr(v uint16) *uint16 { return &v }

// usTable builds the end-to-end scenario table: three US records with
// CurrentRanking 50, 10, 30 plus one FR record.
func usTable() *dataset.Table {
	return dataset.NewTable([]dataset.Record{
		{
			Id: 1, UserId: 1, UserName: "alice", DisplayName: "Alice",
			Country: strPtr("US"), AchievementType: "Competitions", Tier: 2,
			CurrentRanking: 50, HighestRanking: 10,
			TotalGold: u16Ptr(3), TotalSilver: u16Ptr(0),
			Profile: "https://www.kaggle.com/alice",
		},
		{
			Id: 2, UserId: 2, UserName: "bob", DisplayName: "Bob",
			Country: strPtr("US"), AchievementType: "Competitions", Tier: 4,
			CurrentRanking: 10, HighestRanking: 5,
			TotalGold: u16Ptr(7), TotalSilver: u16Ptr(2), TotalBronze: u16Ptr(1),
			Profile: "https://www.kaggle.com/bob",
		},
		{
			Id: 3, UserId: 3, UserName: "carol", DisplayName: "Carol",
			Country: strPtr("US"), AchievementType: "Datasets", Tier: 9,
			CurrentRanking: 30, HighestRanking: 30,
		},
		{
			Id: 4, UserId: 4, UserName: "dave", DisplayName: "Dave",
			Country: strPtr("FR"), AchievementType: "Competitions", Tier: 0,
			CurrentRanking: 20, HighestRanking: 15,
			Profile: "https://www.kaggle.com/dave",
		},
	})
}

func TestRender_EndToEndScenario(t *testing.T) {
	rows, err := Render(usTable(), Criteria{Country: "US"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	wantRankings := []int{10, 30, 50}
	for i, row := range rows {
		if row["No."] != i+1 {
			t.Errorf("row %d: expected No. %d, got %v", i, i+1, row["No."])
		}
		if row["CurrentRanking"] != wantRankings[i] {
			t.Errorf("row %d: expected ranking %d, got %v", i, wantRankings[i], row["CurrentRanking"])
		}
		if row["Country"] != "US" {
			t.Errorf("row %d: expected country US, got %v", i, row["Country"])
		}
	}
}

func TestRender_FilterCorrectness(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		wantLen  int
	}{
		{"no constraint", Criteria{}, 4},
		{"country only", Criteria{Country: "FR"}, 1},
		{"achievement type only", Criteria{AchievementType: "Competitions"}, 3},
		{"both filters", Criteria{Country: "US", AchievementType: "Competitions"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Render(usTable(), tt.criteria)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(rows) != tt.wantLen {
				t.Fatalf("expected %d rows, got %d", tt.wantLen, len(rows))
			}
			for i, row := range rows {
				if tt.criteria.Country != "" && row["Country"] != tt.criteria.Country {
					t.Errorf("row %d: country %v violates filter %q", i, row["Country"], tt.criteria.Country)
				}
				if row["No."] != i+1 {
					t.Errorf("row %d: expected No. %d, got %v", i, i+1, row["No."])
				}
			}
		})
	}
}

func TestRender_EmptySentinel(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
	}{
		{"unknown country", Criteria{Country: "Atlantis"}},
		{"unknown achievement type", Criteria{AchievementType: "Spelunking"}},
		{"zero-match combination", Criteria{Country: "FR", AchievementType: "Datasets"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Render(usTable(), tt.criteria)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(rows) != 1 {
				t.Fatalf("expected exactly one sentinel row, got %d", len(rows))
			}
			row := rows[0]
			if row["DisplayName"] != "No Data" {
				t.Errorf("expected DisplayName %q, got %v", "No Data", row["DisplayName"])
			}
			for _, col := range []string{"No.", "CurrentRanking", "HighestRanking", "Country", "Tier", "Medals", "Profile"} {
				if row[col] != NA {
					t.Errorf("expected %s = %q, got %v", col, NA, row[col])
				}
			}
		})
	}
}

func TestRender_EmptyTableSentinel(t *testing.T) {
	rows, err := Render(dataset.NewTable(nil), Criteria{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0]["DisplayName"] != "No Data" {
		t.Errorf("expected sentinel row for empty table, got %v", rows)
	}
}

func TestRender_StableSortPreservesTies(t *testing.T) {
	table := dataset.NewTable([]dataset.Record{
		{Id: 1, UserId: 1, DisplayName: "First", AchievementType: "Competitions", CurrentRanking: 7, HighestRanking: 1},
		{Id: 2, UserId: 2, DisplayName: "Second", AchievementType: "Competitions", CurrentRanking: 7, HighestRanking: 2},
		{Id: 3, UserId: 3, DisplayName: "Ahead", AchievementType: "Competitions", CurrentRanking: 3, HighestRanking: 3},
		{Id: 4, UserId: 4, DisplayName: "Third", AchievementType: "Competitions", CurrentRanking: 7, HighestRanking: 4},
	})

	rows, err := Render(table, Criteria{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantOrder := []string{"Ahead", "First", "Second", "Third"}
	for i, want := range wantOrder {
		if rows[i]["DisplayName"] != want {
			t.Errorf("row %d: expected %q, got %v", i, want, rows[i]["DisplayName"])
		}
	}
}

func TestRender_SortOrderAdjacent(t *testing.T) {
	rows, err := Render(usTable(), Criteria{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(rows); i++ {
		prev := rows[i-1]["CurrentRanking"].(int)
		curr := rows[i]["CurrentRanking"].(int)
		if prev > curr {
			t.Errorf("rows %d,%d out of order: %d > %d", i-1, i, prev, curr)
		}
	}
}

func TestRender_Idempotence(t *testing.T) {
	table := usTable()
	first, err := Render(table, Criteria{Country: "US"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Render(table, Criteria{Country: "US"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated render with identical criteria diverged:\nfirst:  %v\nsecond: %v", first, second)
	}
}

func TestRender_NoMutation(t *testing.T) {
	table := usTable()
	countriesBefore := table.Countries()
	typesBefore := table.AchievementTypes()

	for _, c := range []Criteria{{}, {Country: "US"}, {AchievementType: "Datasets"}, {Country: "Atlantis"}} {
		if _, err := Render(table, c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if !reflect.DeepEqual(table.Countries(), countriesBefore) {
		t.Errorf("countries changed after renders: %v != %v", table.Countries(), countriesBefore)
	}
	if !reflect.DeepEqual(table.AchievementTypes(), typesBefore) {
		t.Errorf("achievement types changed after renders: %v != %v", table.AchievementTypes(), typesBefore)
	}

	// The table itself must be untouched record by record
	want := usTable()
	for i := 0; i < table.Len(); i++ {
		if !reflect.DeepEqual(table.Record(i), want.Record(i)) {
			t.Errorf("record %d mutated: %+v", i, table.Record(i))
		}
	}
}

func TestRender_MedalFormatting(t *testing.T) {
	// TotalGold=3, TotalSilver=0, TotalBronze=nil must show 3, 0, 0
	rows, err := Render(usTable(), Criteria{Country: "US", AchievementType: "Competitions"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Alice sorts second (ranking 50 vs Bob's 10)
	if got := rows[1]["Medals"]; got != "🏅 3 🥈 0 🥉 0" {
		t.Errorf("expected medal string %q, got %v", "🏅 3 🥈 0 🥉 0", got)
	}
	if got := rows[0]["Medals"]; got != "🏅 7 🥈 2 🥉 1" {
		t.Errorf("expected medal string %q, got %v", "🏅 7 🥈 2 🥉 1", got)
	}
}

func TestRender_TierRelabeling(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		rowIdx   int
		want     interface{}
	}{
		{"mapped tier 2", Criteria{Country: "US", AchievementType: "Competitions"}, 1, "Expert"},
		{"mapped tier 4", Criteria{Country: "US", AchievementType: "Competitions"}, 0, "Grandmaster"},
		{"mapped tier 0", Criteria{Country: "FR"}, 0, "Novice"},
		{"out-of-range tier 9 passes through", Criteria{AchievementType: "Datasets"}, 0, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Render(usTable(), tt.criteria)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := rows[tt.rowIdx]["Tier"]; got != tt.want {
				t.Errorf("expected tier %v (%T), got %v (%T)", tt.want, tt.want, got, got)
			}
		})
	}
}

func TestRender_ProfileFormatting(t *testing.T) {
	rows, err := Render(usTable(), Criteria{AchievementType: "Datasets"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Carol has no profile URL
	if got := rows[0]["Profile"]; got != NA {
		t.Errorf("expected %q for missing profile, got %v", NA, got)
	}

	rows, err = Render(usTable(), Criteria{Country: "FR"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "[View Profile](https://www.kaggle.com/dave)"
	if got := rows[0]["Profile"]; got != want {
		t.Errorf("expected %q, got %v", want, got)
	}
}

func TestRender_ProjectionColumns(t *testing.T) {
	rows, err := Render(usTable(), Criteria{Country: "US"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, row := range rows {
		if len(row) != len(Columns) {
			t.Errorf("row %d: expected %d fields, got %d", i, len(Columns), len(row))
		}
		for _, col := range Columns {
			if _, ok := row[col]; !ok {
				t.Errorf("row %d: missing column %q", i, col)
			}
		}
	}
}
