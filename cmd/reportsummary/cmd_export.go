package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/nvandessel/reportsummary/internal/constants"
	"github.com/nvandessel/reportsummary/internal/export"
	"github.com/nvandessel/reportsummary/internal/family"
	"github.com/nvandessel/reportsummary/internal/summary"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <reports-dir> <seeds>...",
		Short: "Average one metric family and write it as a table",
		Long: `Average one metric family over the given runs and write the result as
CSV, Arrow IPC or Parquet. The format is taken from --format, then from the
output file extension, then from the config.

Examples:
  reportsummary export ./reports "1 2 3" --family multicast -o multicast.csv
  reportsummary export ./reports 1 2 --family energy -o energy.arrow
  reportsummary export ./reports 1,2 --family buffer-occupancy -o buf.parquet --compression snappy`,
		Args: cobra.MinimumNArgs(2),
		RunE: runExport,
	}

	cmd.Flags().String("family", "", "Metric family to export (required)")
	cmd.Flags().String("format", "", "csv, arrow or parquet")
	cmd.Flags().StringP("output", "o", "", "Output file (required)")
	cmd.Flags().String("compression", "", "Parquet compression: zstd, snappy, gzip or none (default from config)")
	_ = cmd.MarkFlagRequired("family")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	jsonOut, _ := cmd.Flags().GetBool("json")
	name, _ := cmd.Flags().GetString("family")
	formatFlag, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	compression, _ := cmd.Flags().GetString("compression")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if compression != "" {
		cfg.Export.Compression = compression
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	format := constants.ExportFormat(formatFlag)
	if formatFlag == "" {
		if f, err := export.FormatForPath(outputPath); err == nil {
			format = f
		} else {
			format = constants.ExportFormat(cfg.Export.Format)
		}
	}
	if !format.Valid() {
		return fmt.Errorf("%q: %w", format, export.ErrUnsupportedFormat)
	}

	fam, err := family.Lookup(name)
	if err != nil {
		return err
	}
	seeds, err := summary.ParseSeeds(strings.Join(args[1:], " "))
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	fr, err := summary.Average(ctx, fam, summary.Options{
		ReportsDir:    args[0],
		Seeds:         seeds,
		Scenario:      cfg.Reports.Scenario,
		ReportOptions: cfg.ReportOptions(),
		Workers:       cfg.Parse.Workers,
		Logger:        newLogger(cmd, cfg),
	})
	if err != nil {
		return err
	}

	if err := export.WriteFile(outputPath, format, fr.Result, export.Options{Compression: cfg.Export.Compression}); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	var size int64
	if info, err := os.Stat(outputPath); err == nil {
		size = info.Size()
	}

	if jsonOut {
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"family":     fam.Name,
			"format":     format.String(),
			"path":       outputPath,
			"runs":       len(seeds),
			"size_bytes": size,
		})
	}
	newPrinter(cmd.OutOrStdout()).ok("Exported %s (%d runs) as %s: %s (%s)", fam.Name, len(seeds), format, outputPath, formatBytes(size))
	return nil
}
