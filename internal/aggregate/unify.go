// Package aggregate combines the per-run results of one metric family into
// a single averaged result: axis unification, padding, and averaging.
package aggregate

import (
	"fmt"
	"slices"

	"github.com/nvandessel/reportsummary/internal/models"
)

// checkArity verifies the set is non-empty and every run has the arity of
// the first. A run with no positions at all is a shape error.
func checkArity(runs []models.RunResult) (int, error) {
	if len(runs) == 0 {
		return 0, ErrEmptyInput
	}
	arity := runs[0].Arity()
	if arity == 0 {
		return 0, seedError(runs[0].Seed, fmt.Errorf("run has no time axis: %w", ErrShapeMismatch))
	}
	for _, r := range runs[1:] {
		if r.Arity() != arity {
			return 0, seedError(r.Seed, fmt.Errorf("arity %d, want %d: %w", r.Arity(), arity, ErrShapeMismatch))
		}
	}
	return arity, nil
}

// longestAxis returns the index of the run with the most axis samples.
// The earliest run wins ties.
func longestAxis(runs []models.RunResult) int {
	best := 0
	for i, r := range runs {
		if len(r.Axis()) > len(runs[best].Axis()) {
			best = i
		}
	}
	return best
}

// Unify returns a copy of set in which every run carries the longest axis
// in the set. Non-axis series keep their length and values.
func Unify(set models.RunResultSet) (models.RunResultSet, error) {
	if _, err := checkArity(set.Runs); err != nil {
		return models.RunResultSet{}, withFamily(set.Family, err)
	}

	axis := set.Runs[longestAxis(set.Runs)].Axis()

	out := models.RunResultSet{Family: set.Family, Runs: make([]models.RunResult, len(set.Runs))}
	for i, r := range set.Runs {
		c := r.Clone()
		c.Values[0] = slices.Clone(axis)
		out.Runs[i] = c
	}
	return out, nil
}

// CanonicalSeed returns the seed whose axis Unify would select.
func CanonicalSeed(set models.RunResultSet) string {
	if len(set.Runs) == 0 {
		return ""
	}
	return set.Runs[longestAxis(set.Runs)].Seed
}
