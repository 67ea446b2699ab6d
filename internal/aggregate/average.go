package aggregate

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/nvandessel/reportsummary/internal/models"
)

// AverageScalarTuples returns the per-position arithmetic mean of tuples.
// Every tuple must have the arity of the first.
func AverageScalarTuples(runs []models.ScalarRun) (models.ScalarTuple, error) {
	if len(runs) == 0 {
		return nil, ErrEmptyInput
	}
	arity := len(runs[0].Tuple)
	for _, r := range runs[1:] {
		if len(r.Tuple) != arity {
			return nil, seedError(r.Seed, fmt.Errorf("arity %d, want %d: %w", len(r.Tuple), arity, ErrShapeMismatch))
		}
	}

	acc := make([]float64, arity)
	for _, r := range runs {
		floats.Add(acc, r.Tuple)
	}
	floats.Scale(1/float64(len(runs)), acc)
	return models.ScalarTuple(acc), nil
}

// AverageSeriesTuples returns, per position and per index, the mean across
// runs. Lengths at each position must agree across runs; nothing is padded.
func AverageSeriesTuples(runs []models.RunResult) ([]models.Series, error) {
	arity, err := checkArity(runs)
	if err != nil {
		return nil, err
	}
	first := runs[0]
	for _, r := range runs[1:] {
		for pos := 0; pos < arity; pos++ {
			if len(r.Values[pos]) != len(first.Values[pos]) {
				return nil, seedError(r.Seed, fmt.Errorf("position %d has %d samples, want %d: %w",
					pos, len(r.Values[pos]), len(first.Values[pos]), ErrShapeMismatch))
			}
		}
	}

	acc := make([]models.Series, arity)
	for pos := range acc {
		acc[pos] = make(models.Series, len(first.Values[pos]))
	}
	for _, r := range runs {
		for pos, s := range r.Values {
			floats.Add(acc[pos], s)
		}
	}
	scale := 1 / float64(len(runs))
	for pos := range acc {
		floats.Scale(scale, acc[pos])
	}
	// The axis is shared by value after unification; keep it exact.
	if sameAxis(runs) {
		acc[0] = slices.Clone(first.Values[0])
	}
	return acc, nil
}

func sameAxis(runs []models.RunResult) bool {
	for _, r := range runs[1:] {
		if !slices.Equal(r.Values[0], runs[0].Values[0]) {
			return false
		}
	}
	return true
}
