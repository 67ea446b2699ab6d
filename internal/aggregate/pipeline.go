package aggregate

import (
	"github.com/nvandessel/reportsummary/internal/models"
)

// Report describes what the pipeline did to one family.
type Report struct {
	Family        string
	Runs          int
	CanonicalSeed string
	AxisLength    int
	Appended      []int
}

// Pipeline unifies, pads and averages a set of series runs.
// The input set is not modified.
func Pipeline(set models.RunResultSet, policy []Padding) (models.AveragedResult, Report, error) {
	report := Report{Family: set.Family, Runs: len(set.Runs)}

	unified, err := Unify(set)
	if err != nil {
		return models.AveragedResult{}, report, err
	}
	report.CanonicalSeed = CanonicalSeed(set)
	report.AxisLength = len(unified.Runs[0].Axis())

	stats, err := PadSet(unified, policy)
	if err != nil {
		return models.AveragedResult{}, report, err
	}
	report.Appended = stats.Appended

	values, err := AverageSeriesTuples(unified.Runs)
	if err != nil {
		return models.AveragedResult{}, report, withFamily(set.Family, err)
	}

	return models.AveragedResult{
		Family: set.Family,
		Kind:   models.ResultKindSeries,
		Seeds:  set.Seeds(),
		Values: values,
	}, report, nil
}

// ScalarPipeline averages the scalar tuples of one family.
func ScalarPipeline(family string, runs []models.ScalarRun) (models.AveragedResult, Report, error) {
	report := Report{Family: family, Runs: len(runs)}

	mean, err := AverageScalarTuples(runs)
	if err != nil {
		return models.AveragedResult{}, report, withFamily(family, err)
	}

	seeds := make([]string, len(runs))
	for i, r := range runs {
		seeds[i] = r.Seed
	}
	return models.AveragedResult{
		Family:  family,
		Kind:    models.ResultKindScalar,
		Seeds:   seeds,
		Scalars: mean,
	}, report, nil
}
