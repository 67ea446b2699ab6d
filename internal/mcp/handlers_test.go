package mcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/reportsummary/internal/backup"
	"github.com/nvandessel/reportsummary/internal/ratelimit"
)

func writeRun(t *testing.T, dir, seed, name, content string) {
	t.Helper()
	runDir := filepath.Join(dir, seed)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(runDir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// setupReports writes delivery and multicast reports for seeds 1 and 2
// under <root>/runs.
func setupReports(t *testing.T, root string) string {
	t.Helper()
	dir := filepath.Join(root, "runs")
	writeRun(t, dir, "1", "realisticScenario_DeliveryProbabilityReport.txt", "created: 10\ndelivered: 5\ndelivery_prob: 0.5\n")
	writeRun(t, dir, "2", "realisticScenario_DeliveryProbabilityReport.txt", "created: 20\ndelivered: 5\ndelivery_prob: 0.25\n")
	writeRun(t, dir, "1", "multicastMessageAnalysis.txt", "#t\tmin\tavg\n300\t0.0\t0.25\n600\t0.1\t0.5\n900\t0.2\t1\n")
	writeRun(t, dir, "2", "multicastMessageAnalysis.txt", "#t\tmin\tavg\n300\t0.5\t0.5\n")
	return dir
}

func TestHandleFamilies(t *testing.T) {
	server, _ := setupTestServer(t)

	_, out, err := server.handleFamilies(context.Background(), nil, FamiliesInput{})
	if err != nil {
		t.Fatalf("handleFamilies error = %v", err)
	}
	if out.Count != len(out.Families) || out.Count < 5 {
		t.Fatalf("Count = %d, families = %d", out.Count, len(out.Families))
	}
	if out.Families[0].Name != "delivery" || !out.Families[0].Default {
		t.Errorf("first family = %+v", out.Families[0])
	}

	var multicast *FamilyInfo
	for i := range out.Families {
		if out.Families[i].Name == "multicast" {
			multicast = &out.Families[i]
		}
	}
	if multicast == nil {
		t.Fatal("multicast family not listed")
	}
	if multicast.Padding != "replicate,replicate" {
		t.Errorf("multicast padding = %q", multicast.Padding)
	}
}

func TestHandleAverage(t *testing.T) {
	server, root := setupTestServer(t)
	dir := setupReports(t, root)

	_, out, err := server.handleAverage(context.Background(), nil, AverageInput{
		ReportsDir:    dir,
		Seeds:         "1 2",
		Families:      []string{"multicast", "delivery"},
		Archive:       true,
		IncludeValues: true,
	})
	if err != nil {
		t.Fatalf("handleAverage error = %v", err)
	}
	if len(out.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(out.Results))
	}

	delivery, multicast := out.Results[0], out.Results[1]
	if delivery.Family != "delivery" || len(delivery.Scalars) != 3 || delivery.Scalars[0] != 15 {
		t.Errorf("delivery = %+v", delivery)
	}
	if multicast.AxisLength != 3 || multicast.CanonicalSeed != "1" {
		t.Errorf("multicast = %+v", multicast)
	}
	if multicast.Values[2][2] != 0.75 {
		t.Errorf("multicast avg = %v", multicast.Values[2])
	}
	if multicast.ArchiveID == "" {
		t.Error("expected archive ID")
	}

	_, hist, err := server.handleHistory(context.Background(), nil, HistoryInput{})
	if err != nil {
		t.Fatalf("handleHistory error = %v", err)
	}
	if hist.Count != 2 {
		t.Errorf("history count = %d, want 2", hist.Count)
	}

	_, one, err := server.handleHistory(context.Background(), nil, HistoryInput{ID: multicast.ArchiveID})
	if err != nil {
		t.Fatalf("handleHistory(id) error = %v", err)
	}
	if one.Summary == nil || one.Summary.Family != "multicast" || len(one.Summary.Values) != 3 {
		t.Errorf("history summary = %+v", one.Summary)
	}
}

func TestHandleAverage_RendersCharts(t *testing.T) {
	server, root := setupTestServer(t)
	dir := setupReports(t, root)

	_, out, err := server.handleAverage(context.Background(), nil, AverageInput{
		ReportsDir: dir,
		Seeds:      "1,2",
		Families:   []string{"multicast"},
		Render:     true,
	})
	if err != nil {
		t.Fatalf("handleAverage error = %v", err)
	}
	if len(out.Results[0].Outputs) != 1 {
		t.Fatalf("outputs = %v", out.Results[0].Outputs)
	}
	for _, name := range []string{"MulticastMessageAnalysis.png", "allGraphics.pdf"} {
		if _, err := os.Stat(filepath.Join(dir, "graphics", name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestHandleAverage_Validation(t *testing.T) {
	server, root := setupTestServer(t)
	dir := setupReports(t, root)
	ctx := context.Background()

	tests := []struct {
		name string
		args AverageInput
		want string
	}{
		{"missing dir", AverageInput{Seeds: "1"}, "reports_dir"},
		{"outside allowed", AverageInput{ReportsDir: t.TempDir(), Seeds: "1"}, "rejected"},
		{"no seeds", AverageInput{ReportsDir: dir, Seeds: " "}, "no seeds"},
		{"unknown family", AverageInput{ReportsDir: dir, Seeds: "1", Families: []string{"latency"}}, "unknown metric family"},
		{"missing run", AverageInput{ReportsDir: dir, Seeds: "1 7", Families: []string{"multicast"}}, "seed 7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server.toolLimiters = ratelimit.ToolLimiters{}
			_, _, err := server.handleAverage(ctx, nil, tt.args)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestHandleAverage_RateLimited(t *testing.T) {
	server, root := setupTestServer(t)
	dir := setupReports(t, root)
	server.toolLimiters = ratelimit.ToolLimiters{"summary_average": ratelimit.NewLimiter(0, 1)}

	args := AverageInput{ReportsDir: dir, Seeds: "1 2", Families: []string{"delivery"}}
	if _, _, err := server.handleAverage(context.Background(), nil, args); err != nil {
		t.Fatalf("first call error = %v", err)
	}
	_, _, err := server.handleAverage(context.Background(), nil, args)
	if !errors.Is(err, ratelimit.ErrRateLimited) {
		t.Errorf("second call error = %v, want ErrRateLimited", err)
	}
}

func TestHandleExport(t *testing.T) {
	server, root := setupTestServer(t)
	dir := setupReports(t, root)

	for _, name := range []string{"multicast.csv", "multicast.arrow", "multicast.parquet"} {
		t.Run(name, func(t *testing.T) {
			server.toolLimiters = ratelimit.ToolLimiters{}
			path := filepath.Join(root, "exports", name)
			_, out, err := server.handleExport(context.Background(), nil, ExportInput{
				ReportsDir: dir,
				Seeds:      "1 2",
				Family:     "multicast",
				OutputPath: path,
			})
			if err != nil {
				t.Fatalf("handleExport error = %v", err)
			}
			if out.SizeBytes == 0 {
				t.Error("export file is empty")
			}
			if out.Format != strings.TrimPrefix(filepath.Ext(name), ".") {
				t.Errorf("Format = %q", out.Format)
			}
		})
	}
}

func TestHandleExport_Validation(t *testing.T) {
	server, root := setupTestServer(t)
	dir := setupReports(t, root)
	ctx := context.Background()
	server.toolLimiters = ratelimit.ToolLimiters{}

	if _, _, err := server.handleExport(ctx, nil, ExportInput{ReportsDir: dir, Seeds: "1", Family: "multicast"}); err == nil {
		t.Error("expected error for missing output_path")
	}
	if _, _, err := server.handleExport(ctx, nil, ExportInput{
		ReportsDir: dir, Seeds: "1", Family: "multicast", OutputPath: filepath.Join(t.TempDir(), "x.csv"),
	}); err == nil || !strings.Contains(err.Error(), "rejected") {
		t.Errorf("error = %v, want path rejection", err)
	}
	if _, _, err := server.handleExport(ctx, nil, ExportInput{
		ReportsDir: dir, Seeds: "1", Family: "multicast", OutputPath: filepath.Join(root, "x.txt"),
	}); err == nil {
		t.Error("expected error for unknown extension")
	}
}

func TestHandleHistory_UnknownID(t *testing.T) {
	server, _ := setupTestServer(t)
	_, _, err := server.handleHistory(context.Background(), nil, HistoryInput{ID: "deadbeef"})
	if err == nil || !strings.Contains(err.Error(), "deadbeef") {
		t.Errorf("error = %v", err)
	}
}

func TestHandleBackup(t *testing.T) {
	server, root := setupTestServer(t)
	dir := setupReports(t, root)
	ctx := context.Background()

	if _, _, err := server.handleAverage(ctx, nil, AverageInput{
		ReportsDir: dir, Seeds: "1 2", Families: []string{"delivery"}, Archive: true,
	}); err != nil {
		t.Fatalf("handleAverage error = %v", err)
	}

	_, out, err := server.handleBackup(ctx, nil, BackupInput{})
	if err != nil {
		t.Fatalf("handleBackup error = %v", err)
	}
	if out.SummaryCount != 1 {
		t.Errorf("SummaryCount = %d, want 1", out.SummaryCount)
	}
	if filepath.Dir(out.Path) != backup.DefaultBackupDir(root) {
		t.Errorf("Path = %s", out.Path)
	}
	if err := backup.Verify(out.Path); err != nil {
		t.Errorf("Verify() error = %v", err)
	}

	server.toolLimiters = ratelimit.ToolLimiters{}
	if _, _, err := server.handleBackup(ctx, nil, BackupInput{OutputPath: filepath.Join(t.TempDir(), "b.bak")}); err == nil {
		t.Error("expected rejection for path outside allowed dirs")
	}
}
