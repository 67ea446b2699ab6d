package models

// ResultKind distinguishes time-series families from scalar families.
type ResultKind string

const (
	ResultKindSeries ResultKind = "series" // axis plus aligned series
	ResultKindScalar ResultKind = "scalar" // one number per position
)

// AveragedResult is the per-family mean across all runs.
// For series families every entry of Values has the length of Values[0];
// for scalar families Scalars holds the averaged tuple and Values is nil.
type AveragedResult struct {
	Family  string      `json:"family" yaml:"family"`
	Kind    ResultKind  `json:"kind" yaml:"kind"`
	Seeds   []string    `json:"seeds" yaml:"seeds"`
	Labels  []string    `json:"labels,omitempty" yaml:"labels,omitempty"`
	Values  []Series    `json:"values,omitempty" yaml:"values,omitempty"`
	Scalars ScalarTuple `json:"scalars,omitempty" yaml:"scalars,omitempty"`
}

// Axis returns the unified time axis of a series result.
func (r AveragedResult) Axis() Series {
	if len(r.Values) == 0 {
		return nil
	}
	return r.Values[0]
}

// Positions returns the tuple arity of the result.
func (r AveragedResult) Positions() int {
	if r.Kind == ResultKindScalar {
		return len(r.Scalars)
	}
	return len(r.Values)
}

// Label returns the label for position i, or "" when none was recorded.
func (r AveragedResult) Label(i int) string {
	if i < 0 || i >= len(r.Labels) {
		return ""
	}
	return r.Labels[i]
}

// Column returns position i as a series; scalar positions become a
// single-sample series.
func (r AveragedResult) Column(i int) Series {
	if r.Kind == ResultKindScalar {
		if i < 0 || i >= len(r.Scalars) {
			return nil
		}
		return Series{r.Scalars[i]}
	}
	if i < 0 || i >= len(r.Values) {
		return nil
	}
	return r.Values[i]
}
