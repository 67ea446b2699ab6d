package constants

import "testing"

func TestChartFormat_Valid(t *testing.T) {
	tests := []struct {
		name   string
		format ChartFormat
		want   bool
	}{
		{
			name:   "png is valid",
			format: ChartPNG,
			want:   true,
		},
		{
			name:   "svg is valid",
			format: ChartSVG,
			want:   true,
		},
		{
			name:   "pdf is valid",
			format: ChartPDF,
			want:   true,
		},
		{
			name:   "empty string is invalid",
			format: ChartFormat(""),
			want:   false,
		},
		{
			name:   "PNG uppercase is invalid",
			format: ChartFormat("PNG"),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format.Valid(); got != tt.want {
				t.Errorf("ChartFormat(%q).Valid() = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}

func TestExportFormat_Valid(t *testing.T) {
	tests := []struct {
		format ExportFormat
		want   bool
	}{
		{ExportCSV, true},
		{ExportArrow, true},
		{ExportParquet, true},
		{ExportFormat("xlsx"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			if got := tt.format.Valid(); got != tt.want {
				t.Errorf("ExportFormat(%q).Valid() = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}

func TestFormat_String(t *testing.T) {
	if ChartSVG.String() != "svg" {
		t.Errorf("ChartSVG.String() = %q", ChartSVG.String())
	}
	if ExportParquet.String() != "parquet" {
		t.Errorf("ExportParquet.String() = %q", ExportParquet.String())
	}
}
