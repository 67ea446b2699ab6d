package reports

import (
	"fmt"
	"io"
	"regexp"

	"github.com/nvandessel/reportsummary/internal/models"
)

// Delay class rows look like "Delay  300 <= x <  600:   5.80% (Total: 4077)".
var delayRow = regexp.MustCompile(`<\s*(\d+):\s*(\d+\.\d+)%`)

// ParseDelayAnalysis extracts the delay distribution of delivered messages
// of one type and priority. The axis holds the upper bound of each delay
// class, the first series the share of messages in the class, the second
// the running cumulative share.
func ParseDelayAnalysis(r io.Reader, messageType string, priority int, opts Options) (models.RunResult, error) {
	lines, err := readLines(r)
	if err != nil {
		return models.RunResult{}, err
	}

	typed, err := section(lines, fmt.Sprintf("Delay distribution for delivered messages of type %s:", messageType), "Delay distribution")
	if err != nil {
		return models.RunResult{}, err
	}
	prio, err := section(typed, fmt.Sprintf("For priority %d:", priority), "priority")
	if err != nil {
		return models.RunResult{}, fmt.Errorf("type %s: %w", messageType, err)
	}

	var axis, share, cumulative models.Series
	var sum float64
	for _, line := range prio {
		m := delayRow.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := parseFloats(m[1:])
		if err != nil {
			return models.RunResult{}, err
		}
		sum += v[1]
		axis = append(axis, v[0]/opts.divisor())
		share = append(share, v[1])
		cumulative = append(cumulative, sum)
	}
	if len(axis) == 0 {
		return models.RunResult{}, fmt.Errorf("no delay classes for type %s priority %d: %w", messageType, priority, ErrMalformedReport)
	}
	return models.NewRunResult("", axis, share, cumulative), nil
}
