package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nvandessel/reportsummary/internal/config"
	"github.com/nvandessel/reportsummary/internal/constants"
	"github.com/nvandessel/reportsummary/internal/family"
	"github.com/nvandessel/reportsummary/internal/logging"
	"github.com/nvandessel/reportsummary/internal/models"
	"github.com/nvandessel/reportsummary/internal/render"
	"github.com/nvandessel/reportsummary/internal/summary"
	"github.com/spf13/cobra"
)

func newAverageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "average <reports-dir> <seeds>...",
		Short: "Average the reports of several runs and render charts",
		Long: `Average every selected metric family over the given runs.

Each seed names a run directory under <reports-dir>. Seeds may be given as
separate arguments or as one space- or comma-separated argument. Charts are
written to <reports-dir>/graphics, together with allGraphics.pdf holding
every chart on its own page.

Examples:
  reportsummary average ./reports "1 2 4 5"
  reportsummary average ./reports 1 2 3 --family multicast --family delivery
  reportsummary average ./reports 1,2 --format svg --pdf=false
  reportsummary average ./reports 1 2 --no-render --store --json`,
		Args: cobra.MinimumNArgs(2),
		RunE: runAverage,
	}

	cmd.Flags().StringSlice("family", nil, "Metric family to average (repeatable, default: the standard set)")
	cmd.Flags().String("format", "", "Chart format: png, svg or pdf (default from config)")
	cmd.Flags().Bool("pdf", true, "Write allGraphics.pdf with every chart (default from config)")
	cmd.Flags().Bool("no-render", false, "Average only, write no charts")
	cmd.Flags().Bool("store", false, "Archive each averaged result")
	cmd.Flags().Int("workers", 0, "Reports parsed concurrently per family (default from config)")

	return cmd
}

// applyAverageFlags layers the average command's flags over cfg.
func applyAverageFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("format") {
		format, _ := cmd.Flags().GetString("format")
		cfg.Render.Format = format
	}
	if cmd.Flags().Changed("pdf") {
		cfg.Render.PDF, _ = cmd.Flags().GetBool("pdf")
	}
	if storeFlag, _ := cmd.Flags().GetBool("store"); storeFlag {
		cfg.Store.Enabled = true
	}
	if cmd.Flags().Changed("workers") {
		cfg.Parse.Workers, _ = cmd.Flags().GetInt("workers")
	}
}

type averageEntry struct {
	Family        string   `json:"family"`
	Kind          string   `json:"kind"`
	Runs          int      `json:"runs"`
	CanonicalSeed string   `json:"canonical_seed,omitempty"`
	AxisLength    int      `json:"axis_length,omitempty"`
	Appended      []int    `json:"appended,omitempty"`
	Outputs       []string `json:"outputs,omitempty"`
	ArchiveID     string   `json:"archive_id,omitempty"`
}

func runAverage(cmd *cobra.Command, args []string) error {
	root, _ := cmd.Flags().GetString("root")
	jsonOut, _ := cmd.Flags().GetBool("json")
	names, _ := cmd.Flags().GetStringSlice("family")
	noRender, _ := cmd.Flags().GetBool("no-render")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyAverageFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	reportsDir := args[0]
	seeds, err := summary.ParseSeeds(strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	families, err := family.Select(names)
	if err != nil {
		return err
	}

	logger := newLogger(cmd, cfg)
	trace := logging.NewTraceLogger(filepath.Join(root, constants.DataDir), cfg.Logging.Level)
	defer trace.Close()

	opts := summary.Options{
		ReportsDir:    reportsDir,
		Seeds:         seeds,
		Families:      families,
		Scenario:      cfg.Reports.Scenario,
		ReportOptions: cfg.ReportOptions(),
		Workers:       cfg.Parse.Workers,
		Logger:        logger,
		Trace:         trace,
	}

	var renderer *render.PlotRenderer
	if !noRender {
		renderer = render.NewPlotRenderer(constants.ChartFormat(cfg.Render.Format), cfg.Render.Width, cfg.Render.Height)
		opts.Renderer = renderer
	}

	if cfg.Store.Enabled {
		st, err := openStore(root, cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		opts.Store = st
	}

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	results, runErr := summary.Run(ctx, opts)

	var pdfPath string
	if charts := summary.Charts(results); runErr == nil && renderer != nil && cfg.Render.PDF && len(charts) > 0 {
		pdfPath = filepath.Join(summary.OutputDir(reportsDir), constants.SummaryPDF)
		if err := renderer.WritePDF(pdfPath, charts); err != nil {
			return fmt.Errorf("writing %s: %w", constants.SummaryPDF, err)
		}
	}

	entries := make([]averageEntry, len(results))
	for i, fr := range results {
		entries[i] = averageEntry{
			Family:        fr.Family.Name,
			Kind:          string(fr.Result.Kind),
			Runs:          fr.Report.Runs,
			CanonicalSeed: fr.Report.CanonicalSeed,
			AxisLength:    fr.Report.AxisLength,
			Appended:      fr.Report.Appended,
			Outputs:       fr.Outputs,
			ArchiveID:     fr.ArchiveID,
		}
	}

	if jsonOut {
		out := map[string]any{
			"reports_dir": reportsDir,
			"seeds":       seeds,
			"results":     entries,
		}
		if pdfPath != "" {
			out["pdf"] = pdfPath
		}
		if runErr != nil {
			out["error"] = runErr.Error()
		}
		if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
			return err
		}
		return runErr
	}

	p := newPrinter(cmd.OutOrStdout())
	for _, e := range entries {
		if e.Kind == string(models.ResultKindScalar) {
			p.ok("%s: %d runs", e.Family, e.Runs)
		} else {
			p.ok("%s: %d runs, axis %d (from seed %s)", e.Family, e.Runs, e.AxisLength, e.CanonicalSeed)
		}
		for _, o := range e.Outputs {
			p.detail("%s", o)
		}
		if e.ArchiveID != "" {
			p.detail("archived as %s", e.ArchiveID)
		}
	}
	if pdfPath != "" {
		p.ok("all charts: %s", pdfPath)
	}
	if runErr != nil && len(entries) > 0 {
		p.warn("stopped after %d of %d families", len(entries), len(families))
	}
	return runErr
}
