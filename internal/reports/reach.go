package reports

import (
	"fmt"
	"io"
	"regexp"

	"github.com/nvandessel/reportsummary/internal/models"
)

var (
	// time, min ratio, avg ratio
	multicastRow = regexp.MustCompile(`^(\d+)\s+(\d+\.\d+)\s+(\d+(?:\.\d*)?)`)
	// time, avg reached, min reached
	broadcastRow = regexp.MustCompile(`^(\d+)\s+(\d+\.\d+)\s+(\d+)`)
)

// ParseMulticastAnalysis reads the multicast delivery ratio table
//
//	#timeAfterMessageCreation	MinRatio	AvgRatio
//	300	0.0	0.00444165511837884
//
// and returns (axis, minimum ratio, average ratio).
func ParseMulticastAnalysis(r io.Reader, opts Options) (models.RunResult, error) {
	lines, err := readLines(r)
	if err != nil {
		return models.RunResult{}, err
	}
	if len(lines) > 0 {
		lines = lines[1:]
	}

	var axis, minimum, average models.Series
	for _, line := range lines {
		m := multicastRow.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := parseFloats(m[1:])
		if err != nil {
			return models.RunResult{}, err
		}
		axis = append(axis, v[0]/opts.divisor())
		minimum = append(minimum, v[1])
		average = append(average, v[2])
	}
	if len(axis) == 0 {
		return models.RunResult{}, fmt.Errorf("no multicast rows: %w", ErrMalformedReport)
	}
	return models.NewRunResult("", axis, minimum, average), nil
}

// ParseBroadcastAnalysis reads the section for one broadcast priority
//
//	Reached people by broadcasts of prio 5 by time after creation:
//	time	 avg	 min
//	300		22.75		0
//
// and returns (axis, minimum reached, average reached).
func ParseBroadcastAnalysis(r io.Reader, priority int, opts Options) (models.RunResult, error) {
	lines, err := readLines(r)
	if err != nil {
		return models.RunResult{}, err
	}

	prio, err := section(lines, fmt.Sprintf("Reached people by broadcasts of prio %d by time after creation:", priority), "prio")
	if err != nil {
		return models.RunResult{}, err
	}

	var axis, minimum, average models.Series
	for _, line := range prio {
		m := broadcastRow.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := parseFloats(m[1:])
		if err != nil {
			return models.RunResult{}, err
		}
		axis = append(axis, v[0]/opts.divisor())
		average = append(average, v[1])
		minimum = append(minimum, v[2])
	}
	if len(axis) == 0 {
		return models.RunResult{}, fmt.Errorf("no broadcast rows for priority %d: %w", priority, ErrMalformedReport)
	}
	return models.NewRunResult("", axis, minimum, average), nil
}
