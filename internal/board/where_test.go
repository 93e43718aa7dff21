package board

import (
	"errors"
	"testing"

	"github.com/AdrianWisniewskiKaggle/Country-Specific-User-Ranking-Dashboard/internal/dataset"
)

func TestCompileWhere_Validation(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantErr bool
	}{
		{"simple comparison", "CurrentRanking < 100", false},
		{"compound expression", `TotalGold > 0 && Country == "US"`, false},
		{"string operation", `AchievementType startsWith "Comp"`, false},
		{"syntax error", "CurrentRanking <", true},
		{"unbalanced parens", "(TotalGold > 0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileWhere(tt.source)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected compile error, got nil")
				}
				if !errors.Is(err, ErrInvalidExpression) {
					t.Errorf("expected ErrInvalidExpression in chain, got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCompileWhere_CacheReturnsSameProgram(t *testing.T) {
	first, err := CompileWhere("TotalSilver >= 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := CompileWhere("TotalSilver >= 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Error("expected cached predicate to be reused")
	}
}

func TestPredicate_Match(t *testing.T) {
	record := dataset.Record{
		Id: 1, UserId: 1, UserName: "alice", DisplayName: "Alice",
		Country: strPtr("US"), AchievementType: "Competitions", Tier: 2,
		CurrentRanking: 50, HighestRanking: 10,
		TotalGold: u16Ptr(3),
		Profile:   "https://www.kaggle.com/alice",
	}

	tests := []struct {
		name    string
		source  string
		want    bool
		wantErr bool
	}{
		{"ranking threshold true", "CurrentRanking <= 50", true, false},
		{"ranking threshold false", "CurrentRanking < 50", false, false},
		{"absent medal normalizes to zero", "TotalBronze == 0", true, false},
		{"country equality", `Country == "US"`, true, false},
		{"tier comparison", "Tier == 2", true, false},
		{"non-boolean result", "CurrentRanking + 1", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := CompileWhere(tt.source)
			if err != nil {
				t.Fatalf("compile failed: %v", err)
			}
			got, err := p.Match(record)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected evaluation error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPredicate_NilCountryEvaluatesAsEmpty(t *testing.T) {
	record := dataset.Record{Id: 1, UserId: 1, AchievementType: "Datasets", CurrentRanking: 1, HighestRanking: 1}

	p, err := CompileWhere(`Country == ""`)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	got, err := p.Match(record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Error("expected nil country to evaluate as empty string")
	}
}

func TestRender_WherePredicate(t *testing.T) {
	rows, err := Render(usTable(), Criteria{Where: "TotalGold >= 3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0]["DisplayName"] != "Bob" || rows[1]["DisplayName"] != "Alice" {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestRender_WhereExcludingAllYieldsSentinel(t *testing.T) {
	rows, err := Render(usTable(), Criteria{Where: "CurrentRanking > 1000"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0]["DisplayName"] != "No Data" {
		t.Errorf("expected sentinel row, got %v", rows)
	}
}

func TestRender_InvalidWhereIsError(t *testing.T) {
	_, err := Render(usTable(), Criteria{Where: "CurrentRanking <"})
	if err == nil {
		t.Fatal("expected error for invalid where expression")
	}
	if !errors.Is(err, ErrInvalidExpression) {
		t.Errorf("expected ErrInvalidExpression in chain, got %v", err)
	}
}
