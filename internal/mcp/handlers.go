package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/reportsummary/internal/backup"
	"github.com/nvandessel/reportsummary/internal/constants"
	"github.com/nvandessel/reportsummary/internal/export"
	"github.com/nvandessel/reportsummary/internal/family"
	"github.com/nvandessel/reportsummary/internal/pathutil"
	"github.com/nvandessel/reportsummary/internal/ratelimit"
	"github.com/nvandessel/reportsummary/internal/render"
	"github.com/nvandessel/reportsummary/internal/store"
	"github.com/nvandessel/reportsummary/internal/summary"
)

const defaultHistoryLimit = 20

// registerTools registers all summary MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "summary_families",
		Description: "List the metric families that can be averaged, with their tuple labels and padding",
	}, s.handleFamilies)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "summary_average",
		Description: "Average the reports of several simulation runs per metric family, optionally rendering charts and archiving results",
	}, s.handleAverage)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "summary_export",
		Description: "Average one metric family and write it as CSV, Arrow IPC or Parquet",
	}, s.handleExport)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "summary_history",
		Description: "List archived averaged results, or fetch one by ID",
	}, s.handleHistory)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "summary_backup",
		Description: "Write the summary archive to a checksummed backup file",
	}, s.handleBackup)
}

// handleFamilies implements the summary_families tool.
func (s *Server) handleFamilies(ctx context.Context, req *sdk.CallToolRequest, _ FamiliesInput) (_ *sdk.CallToolResult, _ FamiliesOutput, retErr error) {
	start := time.Now()
	defer func() { s.auditTool("summary_families", start, retErr, map[string]any{}) }()

	if err := ratelimit.CheckLimit(s.toolLimiters, "summary_families"); err != nil {
		return nil, FamiliesOutput{}, err
	}

	defaults := make(map[string]bool)
	for _, f := range family.Default() {
		defaults[f.Name] = true
	}

	var out FamiliesOutput
	for _, f := range family.All() {
		out.Families = append(out.Families, FamilyInfo{
			Name:    f.Name,
			Title:   f.Title,
			Kind:    string(f.Kind),
			Labels:  f.Labels,
			Padding: f.PaddingSummary(),
			Chart:   string(f.Chart),
			Output:  f.Output,
			Default: defaults[f.Name],
		})
	}
	out.Count = len(out.Families)
	return nil, out, nil
}

// summaryOptions validates the reports directory and seeds shared by the
// averaging tools.
func (s *Server) summaryOptions(reportsDir, seeds string) (summary.Options, error) {
	if reportsDir == "" {
		return summary.Options{}, fmt.Errorf("'reports_dir' parameter is required")
	}
	if err := pathutil.ValidateDir(reportsDir, s.allowedDirs); err != nil {
		return summary.Options{}, fmt.Errorf("reports directory rejected: %w", err)
	}
	seedList, err := summary.ParseSeeds(seeds)
	if err != nil {
		return summary.Options{}, err
	}
	return summary.Options{
		ReportsDir:    reportsDir,
		Seeds:         seedList,
		Scenario:      s.settings.Reports.Scenario,
		ReportOptions: s.settings.ReportOptions(),
		Workers:       s.settings.Parse.Workers,
		Logger:        s.logger,
	}, nil
}

func (s *Server) newRenderer() *render.PlotRenderer {
	return render.NewPlotRenderer(constants.ChartFormat(s.settings.Render.Format),
		s.settings.Render.Width, s.settings.Render.Height)
}

// handleAverage implements the summary_average tool.
func (s *Server) handleAverage(ctx context.Context, req *sdk.CallToolRequest, args AverageInput) (_ *sdk.CallToolResult, _ AverageOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("summary_average", start, retErr, map[string]any{
			"reports_dir": args.ReportsDir, "seeds": args.Seeds, "families": args.Families,
			"render": args.Render, "archive": args.Archive, "include_values": args.IncludeValues,
		})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "summary_average"); err != nil {
		return nil, AverageOutput{}, err
	}

	opts, err := s.summaryOptions(args.ReportsDir, args.Seeds)
	if err != nil {
		return nil, AverageOutput{}, err
	}
	opts.Families, err = family.Select(args.Families)
	if err != nil {
		return nil, AverageOutput{}, err
	}

	var renderer *render.PlotRenderer
	if args.Render {
		renderer = s.newRenderer()
		opts.Renderer = renderer
	}
	if args.Archive {
		opts.Store = s.store
	}

	results, err := summary.Run(ctx, opts)
	if err != nil {
		return nil, AverageOutput{}, fmt.Errorf("averaging failed: %w", err)
	}

	if charts := summary.Charts(results); renderer != nil && s.settings.Render.PDF && len(charts) > 0 {
		pdf := filepath.Join(summary.OutputDir(opts.ReportsDir), constants.SummaryPDF)
		if err := renderer.WritePDF(pdf, charts); err != nil {
			return nil, AverageOutput{}, fmt.Errorf("writing %s: %w", constants.SummaryPDF, err)
		}
	}

	out := AverageOutput{Results: make([]FamilySummary, len(results))}
	for i, fr := range results {
		out.Results[i] = toFamilySummary(fr, args.IncludeValues)
	}
	out.Message = fmt.Sprintf("Averaged %d families over %d runs", len(results), len(opts.Seeds))
	return nil, out, nil
}

func toFamilySummary(fr summary.FamilyResult, includeValues bool) FamilySummary {
	fs := FamilySummary{
		Family:        fr.Family.Name,
		Kind:          string(fr.Result.Kind),
		Runs:          fr.Report.Runs,
		CanonicalSeed: fr.Report.CanonicalSeed,
		AxisLength:    fr.Report.AxisLength,
		Labels:        fr.Result.Labels,
		Outputs:       fr.Outputs,
		ArchiveID:     fr.ArchiveID,
	}
	if includeValues {
		fs.Values = fr.Result.Values
		fs.Scalars = fr.Result.Scalars
	}
	return fs
}

// handleExport implements the summary_export tool.
func (s *Server) handleExport(ctx context.Context, req *sdk.CallToolRequest, args ExportInput) (_ *sdk.CallToolResult, _ ExportOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("summary_export", start, retErr, map[string]any{
			"reports_dir": args.ReportsDir, "seeds": args.Seeds, "family": args.Family,
			"format": args.Format, "output_path": args.OutputPath, "compression": args.Compression,
		})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "summary_export"); err != nil {
		return nil, ExportOutput{}, err
	}

	if args.OutputPath == "" {
		return nil, ExportOutput{}, fmt.Errorf("'output_path' parameter is required")
	}
	if err := pathutil.ValidatePath(args.OutputPath, s.allowedDirs); err != nil {
		return nil, ExportOutput{}, fmt.Errorf("export path rejected: %w", err)
	}

	format := constants.ExportFormat(args.Format)
	if args.Format == "" {
		f, err := export.FormatForPath(args.OutputPath)
		if err != nil {
			return nil, ExportOutput{}, err
		}
		format = f
	}
	if !format.Valid() {
		return nil, ExportOutput{}, fmt.Errorf("%q: %w", args.Format, export.ErrUnsupportedFormat)
	}

	fam, err := family.Lookup(args.Family)
	if err != nil {
		return nil, ExportOutput{}, err
	}
	opts, err := s.summaryOptions(args.ReportsDir, args.Seeds)
	if err != nil {
		return nil, ExportOutput{}, err
	}

	fr, err := summary.Average(ctx, fam, opts)
	if err != nil {
		return nil, ExportOutput{}, fmt.Errorf("averaging failed: %w", err)
	}

	exportOpts := export.Options{Compression: s.settings.Export.Compression}
	if args.Compression != "" {
		exportOpts.Compression = args.Compression
	}
	if err := export.WriteFile(args.OutputPath, format, fr.Result, exportOpts); err != nil {
		return nil, ExportOutput{}, fmt.Errorf("export failed: %w", err)
	}

	var size int64
	if info, err := os.Stat(args.OutputPath); err == nil {
		size = info.Size()
	}
	return nil, ExportOutput{
		Path:      args.OutputPath,
		Format:    format.String(),
		SizeBytes: size,
		Message:   fmt.Sprintf("Exported %s (%d runs) as %s", fam.Name, len(opts.Seeds), format),
	}, nil
}

// handleHistory implements the summary_history tool.
func (s *Server) handleHistory(ctx context.Context, req *sdk.CallToolRequest, args HistoryInput) (_ *sdk.CallToolResult, _ HistoryOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("summary_history", start, retErr, map[string]any{
			"id": args.ID, "family": args.Family, "limit": args.Limit,
		})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "summary_history"); err != nil {
		return nil, HistoryOutput{}, err
	}

	if args.ID != "" {
		sum, err := s.store.Get(ctx, args.ID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, HistoryOutput{}, fmt.Errorf("no archived summary with ID %q", args.ID)
		}
		if err != nil {
			return nil, HistoryOutput{}, fmt.Errorf("failed to read archive: %w", err)
		}
		res := sum.Result()
		return nil, HistoryOutput{
			Summary: &FamilySummary{
				Family:    res.Family,
				Kind:      string(res.Kind),
				Runs:      len(res.Seeds),
				Labels:    res.Labels,
				Values:    res.Values,
				Scalars:   res.Scalars,
				ArchiveID: sum.ID,
			},
			Count: 1,
		}, nil
	}

	limit := args.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	sums, err := s.store.List(ctx, store.ListFilter{Family: args.Family, Limit: limit})
	if err != nil {
		return nil, HistoryOutput{}, fmt.Errorf("failed to list archive: %w", err)
	}

	out := HistoryOutput{Summaries: make([]HistoryItem, len(sums)), Count: len(sums)}
	for i, sum := range sums {
		out.Summaries[i] = HistoryItem{
			ID:         sum.ID,
			Family:     sum.Family,
			Kind:       sum.Kind,
			ReportsDir: pathutil.RedactPath(sum.ReportsDir),
			Seeds:      slices.Clone(sum.Seeds),
			CreatedAt:  sum.CreatedAt,
		}
	}
	return nil, out, nil
}

// handleBackup implements the summary_backup tool.
func (s *Server) handleBackup(ctx context.Context, req *sdk.CallToolRequest, args BackupInput) (_ *sdk.CallToolResult, _ BackupOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("summary_backup", start, retErr, map[string]any{"output_path": args.OutputPath})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "summary_backup"); err != nil {
		return nil, BackupOutput{}, err
	}

	outputPath := args.OutputPath
	if outputPath == "" {
		outputPath = backup.GenerateBackupPath(backup.DefaultBackupDir(s.root), time.Now())
	} else if err := pathutil.ValidatePath(outputPath, s.allowedDirs); err != nil {
		return nil, BackupOutput{}, fmt.Errorf("backup path rejected: %w", err)
	}

	header, err := backup.Backup(ctx, s.store, outputPath)
	if err != nil {
		return nil, BackupOutput{}, fmt.Errorf("backup failed: %w", err)
	}

	pruned, err := backup.ApplyRetention(filepath.Dir(outputPath), s.retentionPolicy)
	if err != nil {
		s.logger.Warn("failed to apply backup retention", "error", err)
	}

	var size int64
	if info, err := os.Stat(outputPath); err == nil {
		size = info.Size()
	}
	return nil, BackupOutput{
		Path:         outputPath,
		SummaryCount: header.SummaryCount,
		Families:     header.Families,
		SizeBytes:    size,
		Pruned:       len(pruned),
		Message:      fmt.Sprintf("Backup created: %d summaries -> %s", header.SummaryCount, pathutil.RedactPath(outputPath)),
	}, nil
}
