package mcp

import (
	"time"

	"github.com/nvandessel/reportsummary/internal/models"
)

// FamiliesInput defines the input for the summary_families tool.
type FamiliesInput struct{}

// FamiliesOutput defines the output for the summary_families tool.
type FamiliesOutput struct {
	Families []FamilyInfo `json:"families" jsonschema:"Registered metric families in registry order"`
	Count    int          `json:"count" jsonschema:"Number of families"`
}

// FamilyInfo describes one metric family.
type FamilyInfo struct {
	Name    string   `json:"name"`
	Title   string   `json:"title"`
	Kind    string   `json:"kind"`
	Labels  []string `json:"labels"`
	Padding string   `json:"padding"`
	Chart   string   `json:"chart"`
	Output  string   `json:"output"`
	Default bool     `json:"default"`
}

// AverageInput defines the input for the summary_average tool.
type AverageInput struct {
	ReportsDir    string   `json:"reports_dir" jsonschema:"Directory holding one sub-directory per seed"`
	Seeds         string   `json:"seeds" jsonschema:"Seed directory names separated by spaces or commas"`
	Families      []string `json:"families,omitempty" jsonschema:"Families to average (default: the standard set)"`
	Render        bool     `json:"render,omitempty" jsonschema:"Write charts to <reports_dir>/graphics"`
	Archive       bool     `json:"archive,omitempty" jsonschema:"Save each averaged result to the summary archive"`
	IncludeValues bool     `json:"include_values,omitempty" jsonschema:"Include the averaged numbers in the response"`
}

// AverageOutput defines the output for the summary_average tool.
type AverageOutput struct {
	Results []FamilySummary `json:"results" jsonschema:"One entry per averaged family"`
	Message string          `json:"message" jsonschema:"Human-readable result message"`
}

// FamilySummary reports one averaged family.
type FamilySummary struct {
	Family        string          `json:"family"`
	Kind          string          `json:"kind"`
	Runs          int             `json:"runs"`
	CanonicalSeed string          `json:"canonical_seed,omitempty"`
	AxisLength    int             `json:"axis_length,omitempty"`
	Labels        []string        `json:"labels,omitempty"`
	Values        []models.Series `json:"values,omitempty"`
	Scalars       []float64       `json:"scalars,omitempty"`
	Outputs       []string        `json:"outputs,omitempty"`
	ArchiveID     string          `json:"archive_id,omitempty"`
}

// ExportInput defines the input for the summary_export tool.
type ExportInput struct {
	ReportsDir  string `json:"reports_dir" jsonschema:"Directory holding one sub-directory per seed"`
	Seeds       string `json:"seeds" jsonschema:"Seed directory names separated by spaces or commas"`
	Family      string `json:"family" jsonschema:"Family to average and export"`
	Format      string `json:"format,omitempty" jsonschema:"csv, arrow or parquet (default: inferred from output_path)"`
	OutputPath  string `json:"output_path" jsonschema:"File to write, inside an allowed directory"`
	Compression string `json:"compression,omitempty" jsonschema:"Parquet compression: zstd, snappy, gzip or none"`
}

// ExportOutput defines the output for the summary_export tool.
type ExportOutput struct {
	Path      string `json:"path"`
	Format    string `json:"format"`
	SizeBytes int64  `json:"size_bytes"`
	Message   string `json:"message"`
}

// HistoryInput defines the input for the summary_history tool.
type HistoryInput struct {
	ID     string `json:"id,omitempty" jsonschema:"Return a single archived summary with its values"`
	Family string `json:"family,omitempty" jsonschema:"Only list summaries of this family"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of summaries to list (default: 20)"`
}

// HistoryOutput defines the output for the summary_history tool.
type HistoryOutput struct {
	Summaries []HistoryItem  `json:"summaries,omitempty"`
	Summary   *FamilySummary `json:"summary,omitempty"`
	Count     int            `json:"count"`
}

// HistoryItem is the list view of an archived summary.
type HistoryItem struct {
	ID         string    `json:"id"`
	Family     string    `json:"family"`
	Kind       string    `json:"kind"`
	ReportsDir string    `json:"reports_dir"`
	Seeds      []string  `json:"seeds"`
	CreatedAt  time.Time `json:"created_at"`
}

// BackupInput defines the input for the summary_backup tool.
type BackupInput struct {
	OutputPath string `json:"output_path,omitempty" jsonschema:"Backup file path (default: .reportsummary/backups under the workspace)"`
}

// BackupOutput defines the output for the summary_backup tool.
type BackupOutput struct {
	Path         string   `json:"path"`
	SummaryCount int      `json:"summary_count"`
	Families     []string `json:"families,omitempty"`
	SizeBytes    int64    `json:"size_bytes"`
	Pruned       int      `json:"pruned"`
	Message      string   `json:"message"`
}
