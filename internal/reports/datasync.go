package reports

import (
	"fmt"
	"io"
	"regexp"

	"github.com/nvandessel/reportsummary/internal/models"
)

const metresPerKilometre = 1000

var (
	dataSyncRow = regexp.MustCompile(`sim_time: (\d+\.\d+), ` +
		`avg_used_mem: (\d+\.\d+)%, min_used_mem: (\d+\.\d+)%,\s*max_used_mem: (\d+\.\d+)%, ` +
		`med_avg_data_util: (\d+\.\d+), avg_data_util: (\d+\.\d+), ` +
		`med_avg_data_age: (\d+\.\d+), avg_data_age: (\d+\.\d+), med_max_data_age: (\d+\.\d+), ` +
		`med_avg_data_dist: (\d+\.\d+), avg_data_dist: (\d+\.\d+), med_max_data_dist: (\d+\.\d+)`)

	dataRatioRow = regexp.MustCompile(`avg_ratio_map: (\d+\.\d+)%, avg_ratio_marker: (\d+\.\d+)%, ` +
		`avg_ratio_skill: (\d+\.\d+)%, avg_ratio_res: (\d+\.\d+)%`)
)

// DataSyncSeries names the positions of a data sync tuple after the axis.
var DataSyncSeries = []string{
	"avg used mem", "min used mem", "max used mem",
	"median avg utility", "avg utility",
	"median avg age", "avg age", "median max age",
	"median avg distance", "avg distance", "median max distance",
}

// ParseDataSync reads the periodic data sync statistics. Rows closer than
// opts.SampleInterval to the previously kept row are skipped. Ages are
// converted with the time divisor, distances to kilometres.
func ParseDataSync(r io.Reader, opts Options) (models.RunResult, error) {
	lines, err := readLines(r)
	if err != nil {
		return models.RunResult{}, err
	}

	cols := make([]models.Series, 1+len(DataSyncSeries))
	var next float64
	for _, line := range lines {
		m := dataSyncRow.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := parseFloats(m[1:])
		if err != nil {
			return models.RunResult{}, err
		}
		t := v[0] / opts.divisor()
		if t < next {
			continue
		}
		next = t + opts.SampleInterval

		v[0] = t
		for i := 6; i <= 8; i++ {
			v[i] /= opts.divisor()
		}
		for i := 9; i <= 11; i++ {
			v[i] /= metresPerKilometre
		}
		for i := range cols {
			cols[i] = append(cols[i], v[i])
		}
	}
	if len(cols[0]) == 0 {
		return models.RunResult{}, fmt.Errorf("no data sync rows: %w", ErrMalformedReport)
	}
	return models.RunResult{Values: cols}, nil
}

// ParseDataDistribution returns the final (marker, skill, resource) share
// of the local databases, taken from the last ratio line of a data sync
// report.
func ParseDataDistribution(r io.Reader) (models.ScalarTuple, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	for i := len(lines) - 1; i >= 0; i-- {
		m := dataRatioRow.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		v, err := parseFloats(m[2:])
		if err != nil {
			return nil, err
		}
		return models.ScalarTuple(v), nil
	}
	return nil, fmt.Errorf("no data distribution line: %w", ErrMalformedReport)
}
