// Package summary drives the per-family aggregation: parse every run's
// report, unify and pad the series, average them, then hand the result to a
// renderer and an optional archive.
package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nvandessel/reportsummary/internal/aggregate"
	"github.com/nvandessel/reportsummary/internal/constants"
	"github.com/nvandessel/reportsummary/internal/family"
	"github.com/nvandessel/reportsummary/internal/logging"
	"github.com/nvandessel/reportsummary/internal/models"
	"github.com/nvandessel/reportsummary/internal/render"
	"github.com/nvandessel/reportsummary/internal/reports"
	"github.com/nvandessel/reportsummary/internal/store"
)

// ErrInvalidSeed is returned by ParseSeeds for seeds that cannot name a
// run directory.
var ErrInvalidSeed = errors.New("invalid seed")

// Renderer draws one averaged family and returns the written file path.
type Renderer interface {
	Render(fam family.Family, result models.AveragedResult, outDir string) (string, error)
}

// Options configures a Run.
type Options struct {
	// ReportsDir holds one sub-directory per seed.
	ReportsDir string
	Seeds      []string

	// Families to aggregate. Empty selects the default families.
	Families []family.Family

	Scenario      string
	ReportOptions reports.Options

	// Workers bounds concurrent report parsing per family.
	Workers int

	Logger *slog.Logger
	Trace  *logging.TraceLogger

	// Renderer is optional. Charts are written to ReportsDir/graphics.
	Renderer Renderer

	// Store is optional. Each averaged result is archived when set.
	Store store.SummaryStore
}

// FamilyResult is the outcome of aggregating one family.
type FamilyResult struct {
	Family  family.Family
	Result  models.AveragedResult
	Report  aggregate.Report
	Outputs []string

	// ArchiveID is set when the result was saved to a store.
	ArchiveID string
}

// OutputDir returns the directory charts are written to.
func OutputDir(reportsDir string) string {
	return filepath.Join(reportsDir, constants.GraphicsDir)
}

// Charts returns the results that produced a chart, in run order.
func Charts(results []FamilyResult) []render.Chart {
	var charts []render.Chart
	for _, fr := range results {
		if len(fr.Outputs) > 0 {
			charts = append(charts, render.Chart{Family: fr.Family, Result: fr.Result})
		}
	}
	return charts
}

func (o Options) withDefaults() Options {
	if len(o.Families) == 0 {
		o.Families = family.Default()
	}
	if o.Scenario == "" {
		o.Scenario = constants.DefaultScenario
	}
	if o.ReportOptions.TimeDivisor == 0 {
		o.ReportOptions = reports.DefaultOptions()
	}
	if o.Workers <= 0 {
		o.Workers = constants.DefaultParseWorkers
	}
	if o.Workers > constants.MaxParseWorkers {
		o.Workers = constants.MaxParseWorkers
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return o
}

// Run aggregates every family in order and stops at the first failure.
// Results for families completed before the failure are returned with the
// error.
func Run(ctx context.Context, opts Options) ([]FamilyResult, error) {
	opts = opts.withDefaults()
	if len(opts.Seeds) == 0 {
		return nil, fmt.Errorf("no seeds: %w", aggregate.ErrEmptyInput)
	}

	results := make([]FamilyResult, 0, len(opts.Families))
	for _, fam := range opts.Families {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		start := time.Now()
		fr, err := Average(ctx, fam, opts)
		if err != nil {
			opts.Logger.Error("family failed", "family", fam.Name, "error", err)
			opts.Trace.Log(map[string]any{
				"event":  "family_failed",
				"family": fam.Name,
				"error":  err.Error(),
			})
			return results, err
		}

		if opts.Renderer != nil {
			path, err := opts.Renderer.Render(fam, fr.Result, OutputDir(opts.ReportsDir))
			switch {
			case errors.Is(err, render.ErrNothingToDraw):
				opts.Logger.Warn("chart skipped", "family", fam.Name, "error", err)
			case err != nil:
				return results, fmt.Errorf("rendering %s: %w", fam.Name, err)
			default:
				fr.Outputs = append(fr.Outputs, path)
			}
		}

		if opts.Store != nil {
			id, err := opts.Store.Save(ctx, store.NewSummary(opts.ReportsDir, fr.Result, time.Now()))
			if err != nil {
				return results, fmt.Errorf("archiving %s: %w", fam.Name, err)
			}
			fr.ArchiveID = id
		}

		opts.Logger.Info("family averaged",
			"family", fam.Name,
			"runs", fr.Report.Runs,
			"axis", fr.Report.AxisLength,
			"duration", time.Since(start))
		opts.Trace.Log(map[string]any{
			"event":          "family_averaged",
			"family":         fam.Name,
			"runs":           fr.Report.Runs,
			"canonical_seed": fr.Report.CanonicalSeed,
			"axis_length":    fr.Report.AxisLength,
			"appended":       fr.Report.Appended,
			"outputs":        fr.Outputs,
			"duration_ms":    time.Since(start).Milliseconds(),
		})
		results = append(results, fr)
	}
	return results, nil
}

// Average parses every seed's report for fam and averages them. It does not
// render or archive.
func Average(ctx context.Context, fam family.Family, opts Options) (FamilyResult, error) {
	opts = opts.withDefaults()
	if len(opts.Seeds) == 0 {
		return FamilyResult{}, &aggregate.FamilyError{Family: fam.Name, Err: aggregate.ErrEmptyInput}
	}

	series, scalars, err := parseAll(ctx, fam, opts)
	if err != nil {
		return FamilyResult{}, err
	}

	var (
		result models.AveragedResult
		report aggregate.Report
	)
	if fam.Kind == models.ResultKindScalar {
		result, report, err = aggregate.ScalarPipeline(fam.Name, scalars)
	} else {
		result, report, err = aggregate.Pipeline(models.RunResultSet{Family: fam.Name, Runs: series}, fam.Padding)
	}
	if err != nil {
		return FamilyResult{}, err
	}
	result.Labels = fam.Labels

	return FamilyResult{Family: fam, Result: result, Report: report}, nil
}

// parseAll reads every seed concurrently. Results are indexed by seed
// position so the reduce step sees runs in seed order.
func parseAll(ctx context.Context, fam family.Family, opts Options) ([]models.RunResult, []models.ScalarRun, error) {
	series := make([]models.RunResult, len(opts.Seeds))
	scalars := make([]models.ScalarRun, len(opts.Seeds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i, seed := range opts.Seeds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			run, scalar, err := parseOne(fam, seed, opts)
			if err != nil {
				return &aggregate.FamilyError{
					Family: fam.Name,
					Seed:   seed,
					Err:    fmt.Errorf("%w: %w", aggregate.ErrUpstreamParse, err),
				}
			}
			series[i] = run
			scalars[i] = scalar
			if opts.Trace.Verbose() {
				opts.Trace.Log(map[string]any{
					"event":   "run_parsed",
					"family":  fam.Name,
					"seed":    seed,
					"samples": len(run.Axis()),
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return series, scalars, nil
}

func parseOne(fam family.Family, seed string, opts Options) (models.RunResult, models.ScalarRun, error) {
	path := fam.ReportPath(opts.ReportsDir, seed, opts.Scenario)
	rc, err := reports.Open(path)
	if err != nil {
		return models.RunResult{}, models.ScalarRun{}, err
	}
	defer rc.Close()

	run, scalar, err := fam.Parse(rc, seed, opts.ReportOptions)
	if err != nil {
		return models.RunResult{}, models.ScalarRun{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return run, scalar, nil
}

// ParseSeeds splits a whitespace or comma separated seed list. Seeds name
// run directories, so path separators and duplicates are rejected.
func ParseSeeds(s string) ([]string, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("no seeds given: %w", aggregate.ErrEmptyInput)
	}

	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f == "." || f == ".." || strings.ContainsAny(f, `/\`) {
			return nil, fmt.Errorf("%q: %w", f, ErrInvalidSeed)
		}
		if seen[f] {
			return nil, fmt.Errorf("%q listed twice: %w", f, ErrInvalidSeed)
		}
		seen[f] = true
	}
	return fields, nil
}
