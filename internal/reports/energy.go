package reports

import (
	"fmt"
	"io"
	"regexp"

	"github.com/nvandessel/reportsummary/internal/models"
)

const lowEnergyThreshold = 0.1

var (
	energyTimeHeader = regexp.MustCompile(`^\[(\d+)\]`)
	energyRow        = regexp.MustCompile(`^\d+,\D+\d+,(\d+\.\d+)`)
)

// energyAccumulator summarizes host energy levels bucket by bucket.
// Its lifetime is a single parse.
type energyAccumulator struct {
	axis, low, empty models.Series

	open       bool
	time       float64
	hosts      int
	lowHosts   int
	emptyHosts int
}

// start flushes the open bucket, if any, and opens a new one at t.
func (a *energyAccumulator) start(t float64) error {
	if err := a.flush(); err != nil {
		return err
	}
	a.open = true
	a.time = t
	a.hosts, a.lowHosts, a.emptyHosts = 0, 0, 0
	return nil
}

func (a *energyAccumulator) add(level float64) error {
	if !a.open {
		return fmt.Errorf("energy level before first time header: %w", ErrMalformedReport)
	}
	a.hosts++
	switch {
	case level == 0:
		a.emptyHosts++
	case level < lowEnergyThreshold:
		a.lowHosts++
	}
	return nil
}

func (a *energyAccumulator) flush() error {
	if !a.open {
		return nil
	}
	if a.hosts == 0 {
		return fmt.Errorf("no hosts at time %v: %w", a.time, ErrMalformedReport)
	}
	n := float64(a.hosts)
	a.axis = append(a.axis, a.time)
	a.low = append(a.low, float64(a.lowHosts)/n)
	a.empty = append(a.empty, float64(a.emptyHosts)/n)
	a.open = false
	return nil
}

// ParseEnergyLevel reads an energy level report
//
//	[600]
//	600,p0,0.8116
//	600,c2999,0.4448
//	[1200]
//	...
//
// and returns (axis, fraction of hosts below 10% but not empty, fraction
// of hosts with no energy left). Every bucket, the last included, must
// list at least one host.
func ParseEnergyLevel(r io.Reader, opts Options) (models.RunResult, error) {
	lines, err := readLines(r)
	if err != nil {
		return models.RunResult{}, err
	}

	var acc energyAccumulator
	for _, line := range lines {
		if m := energyTimeHeader.FindStringSubmatch(line); m != nil {
			t, err := parseFloat(m[1])
			if err != nil {
				return models.RunResult{}, err
			}
			if err := acc.start(t / opts.divisor()); err != nil {
				return models.RunResult{}, err
			}
			continue
		}
		if m := energyRow.FindStringSubmatch(line); m != nil {
			level, err := parseFloat(m[1])
			if err != nil {
				return models.RunResult{}, err
			}
			if err := acc.add(level); err != nil {
				return models.RunResult{}, err
			}
		}
	}
	if err := acc.flush(); err != nil {
		return models.RunResult{}, err
	}
	if len(acc.axis) == 0 {
		return models.RunResult{}, fmt.Errorf("no energy buckets: %w", ErrMalformedReport)
	}
	return models.NewRunResult("", acc.axis, acc.low, acc.empty), nil
}
