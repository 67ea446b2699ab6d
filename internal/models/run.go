package models

import "slices"

// Series is an ordered sequence of samples indexed 0..len-1.
type Series []float64

// Last returns the final sample and whether the series has one.
func (s Series) Last() (float64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	return s[len(s)-1], true
}

// RunResult is the tuple extracted from one simulation run.
// Values[0] is the time axis; Values[1:] are data series aligned
// index-for-index with the axis but possibly shorter.
type RunResult struct {
	// Seed identifies the run the tuple was parsed from
	Seed string `json:"seed" yaml:"seed"`

	Values []Series `json:"values" yaml:"values"`
}

// NewRunResult builds a RunResult from an axis and its data series.
func NewRunResult(seed string, axis Series, series ...Series) RunResult {
	values := make([]Series, 0, len(series)+1)
	values = append(values, axis)
	values = append(values, series...)
	return RunResult{Seed: seed, Values: values}
}

// Arity returns the number of positions in the tuple, axis included.
func (r RunResult) Arity() int {
	return len(r.Values)
}

// Axis returns the time axis, or nil for an empty tuple.
func (r RunResult) Axis() Series {
	if len(r.Values) == 0 {
		return nil
	}
	return r.Values[0]
}

// Clone returns a deep copy of the tuple.
func (r RunResult) Clone() RunResult {
	out := RunResult{Seed: r.Seed, Values: make([]Series, len(r.Values))}
	for i, s := range r.Values {
		out.Values[i] = slices.Clone(s)
	}
	return out
}

// RunResultSet holds one RunResult per seed for a single metric family.
type RunResultSet struct {
	Family string      `json:"family" yaml:"family"`
	Runs   []RunResult `json:"runs" yaml:"runs"`
}

// Seeds returns the seed of every run in set order.
func (s RunResultSet) Seeds() []string {
	seeds := make([]string, len(s.Runs))
	for i, r := range s.Runs {
		seeds[i] = r.Seed
	}
	return seeds
}

// ScalarTuple is a fixed-arity tuple of numbers, such as
// (created, delivered, delivery probability).
type ScalarTuple []float64

// ScalarRun pairs a ScalarTuple with the seed it was parsed from.
type ScalarRun struct {
	Seed  string      `json:"seed" yaml:"seed"`
	Tuple ScalarTuple `json:"tuple" yaml:"tuple"`
}
