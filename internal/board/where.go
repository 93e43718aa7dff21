// Package board implements the filter-transform pipeline.
// This file implements the optional "where" expression predicate evaluated
// against individual records after the exact-match filters.
package board

import (
	"errors"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/AdrianWisniewskiKaggle/Country-Specific-User-Ranking-Dashboard/internal/dataset"
)

// Error codes for where predicate failures
const (
	ErrCodeInvalidExpression = "INVALID_EXPRESSION"
	ErrCodeEvaluationFailed  = "EVALUATION_FAILED"
)

// Common errors
var (
	// ErrInvalidExpression is returned when the expression syntax is invalid
	ErrInvalidExpression = errors.New("invalid where expression")

	// ErrNotBoolean is returned when the expression does not evaluate to a boolean
	ErrNotBoolean = errors.New("where expression must evaluate to a boolean")
)

// maxCachedPredicates bounds the compile cache; expressions beyond the cap
// are still compiled, just not retained.
const maxCachedPredicates = 128

var (
	predicateMu    sync.RWMutex
	predicateCache = make(map[string]*Predicate)
)

// Predicate is a compiled where expression.
type Predicate struct {
	source  string
	program *vm.Program
}

// CompileWhere compiles the expression source into a Predicate.
// Compiled programs are cached by source string; recompiling the same
// expression on every filter-change event would dominate render cost.
// AllowUndefinedVariables() keeps unknown field references from being
// compile errors; they surface as evaluation failures per record instead.
func CompileWhere(source string) (*Predicate, error) {
	predicateMu.RLock()
	cached, ok := predicateCache[source]
	predicateMu.RUnlock()
	if ok {
		return cached, nil
	}

	program, err := expr.Compile(source, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}

	p := &Predicate{source: source, program: program}

	predicateMu.Lock()
	if len(predicateCache) < maxCachedPredicates {
		predicateCache[source] = p
	}
	predicateMu.Unlock()

	return p, nil
}

// Source returns the original expression source.
func (p *Predicate) Source() string {
	return p.source
}

// Match evaluates the predicate against a single record.
// Returns an error when evaluation fails or the result is not a boolean.
func (p *Predicate) Match(r dataset.Record) (bool, error) {
	output, err := expr.Run(p.program, environment(r))
	if err != nil {
		return false, fmt.Errorf("evaluating %q: %w", p.source, err)
	}
	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("%w: got %T", ErrNotBoolean, output)
	}
	return result, nil
}

// environment flattens a record into the expression evaluation environment.
// Optional fields appear with their normalized display semantics: absent
// country as "", absent medal counts as 0.
func environment(r dataset.Record) map[string]interface{} {
	country := ""
	if r.Country != nil {
		country = *r.Country
	}
	return map[string]interface{}{
		"Id":              int(r.Id),
		"UserName":        r.UserName,
		"DisplayName":     r.DisplayName,
		"PerformanceTier": int(r.PerformanceTier),
		"Country":         country,
		"UserId":          int(r.UserId),
		"AchievementType": r.AchievementType,
		"Tier":            int(r.Tier),
		"CurrentRanking":  int(r.CurrentRanking),
		"HighestRanking":  int(r.HighestRanking),
		"TotalGold":       medalCount(r.TotalGold),
		"TotalSilver":     medalCount(r.TotalSilver),
		"TotalBronze":     medalCount(r.TotalBronze),
		"Profile":         r.Profile,
	}
}
