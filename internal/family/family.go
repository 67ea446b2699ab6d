// Package family holds the compiled-in registry of metric families: which
// report each family is parsed from, its tuple layout, the padding applied
// before averaging, and how it is charted.
package family

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/nvandessel/reportsummary/internal/aggregate"
	"github.com/nvandessel/reportsummary/internal/models"
	"github.com/nvandessel/reportsummary/internal/reports"
)

// ErrUnknownFamily is returned by Lookup for names not in the registry.
var ErrUnknownFamily = errors.New("unknown metric family")

// ChartKind selects how a family is drawn.
type ChartKind string

const (
	ChartLine          ChartKind = "line"           // one line per series over the axis
	ChartBarCumulative ChartKind = "bar-cumulative" // bar chart above a cumulative line
	ChartPanels        ChartKind = "panels"         // several line charts sharing the axis
	ChartPie           ChartKind = "pie"            // scalar shares
)

// Panel groups tuple positions drawn on one chart of a ChartPanels family.
type Panel struct {
	Title     string
	YLabel    string
	Positions []int
}

// SeriesParser parses one run's report into a series tuple.
type SeriesParser func(r io.Reader, opts reports.Options) (models.RunResult, error)

// ScalarParser parses one run's report into a scalar tuple.
type ScalarParser func(r io.Reader) (models.ScalarTuple, error)

// Family describes one metric family.
type Family struct {
	Name  string
	Title string

	// Report is the report file name inside a run directory. A %s verb is
	// replaced by the scenario name.
	Report string

	Kind   models.ResultKind
	Labels []string

	// Padding holds one policy per tuple position; position 0 is the axis.
	// Nil for scalar families.
	Padding []aggregate.Padding

	Chart   ChartKind
	Output  string
	XLabel  string
	YLabel  string
	Panels  []Panel
	YMax    float64
	Legends []string

	ParseSeries SeriesParser
	ParseScalar ScalarParser
}

// Arity returns the number of tuple positions, axis included.
func (f Family) Arity() int {
	return len(f.Labels)
}

// ReportPath returns the path of this family's report for one run.
func (f Family) ReportPath(reportsDir, seed, scenario string) string {
	name := f.Report
	if strings.Contains(name, "%s") {
		name = fmt.Sprintf(name, scenario)
	}
	return filepath.Join(reportsDir, seed, name)
}

// Parse reads a report and returns the result tagged with seed. Exactly one
// of the returned values is meaningful, depending on Kind.
func (f Family) Parse(r io.Reader, seed string, opts reports.Options) (models.RunResult, models.ScalarRun, error) {
	switch f.Kind {
	case models.ResultKindScalar:
		tuple, err := f.ParseScalar(r)
		if err != nil {
			return models.RunResult{}, models.ScalarRun{}, err
		}
		if len(tuple) != f.Arity() {
			return models.RunResult{}, models.ScalarRun{}, fmt.Errorf("tuple has %d positions, want %d: %w",
				len(tuple), f.Arity(), reports.ErrMalformedReport)
		}
		return models.RunResult{}, models.ScalarRun{Seed: seed, Tuple: tuple}, nil
	default:
		run, err := f.ParseSeries(r, opts)
		if err != nil {
			return models.RunResult{}, models.ScalarRun{}, err
		}
		if run.Arity() != f.Arity() {
			return models.RunResult{}, models.ScalarRun{}, fmt.Errorf("tuple has %d positions, want %d: %w",
				run.Arity(), f.Arity(), reports.ErrMalformedReport)
		}
		run.Seed = seed
		return run, models.ScalarRun{}, nil
	}
}

// PaddingSummary renders the padding policy as "zero,replicate" for the
// non-axis positions.
func (f Family) PaddingSummary() string {
	if f.Kind == models.ResultKindScalar {
		return "-"
	}
	parts := make([]string, 0, len(f.Padding))
	for _, p := range f.Padding[1:] {
		parts = append(parts, p.String())
	}
	return strings.Join(parts, ",")
}
