package reports

import (
	"fmt"
	"io"
	"regexp"

	"github.com/nvandessel/reportsummary/internal/models"
)

// [time] [avg occupancy %] [variance] [min] [max]
var bufferRow = regexp.MustCompile(`^(\d+\.\d+)\s+(\d+\.\d+)\s+(\d+\.\d+)\s+(\d+\.\d+)\s+(\d+\.\d+)`)

// ParseBufferOccupancy returns (axis, average, variance, minimum, maximum)
// buffer occupancy over simulation time.
func ParseBufferOccupancy(r io.Reader, opts Options) (models.RunResult, error) {
	lines, err := readLines(r)
	if err != nil {
		return models.RunResult{}, err
	}

	cols := make([]models.Series, 5)
	for _, line := range lines {
		m := bufferRow.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := parseFloats(m[1:])
		if err != nil {
			return models.RunResult{}, err
		}
		v[0] /= opts.divisor()
		for i := range cols {
			cols[i] = append(cols[i], v[i])
		}
	}
	if len(cols[0]) == 0 {
		return models.RunResult{}, fmt.Errorf("no buffer occupancy rows: %w", ErrMalformedReport)
	}
	return models.RunResult{Values: cols}, nil
}
