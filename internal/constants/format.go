package constants

// ChartFormat is the image format charts are written in.
type ChartFormat string

const (
	ChartPNG ChartFormat = "png"
	ChartSVG ChartFormat = "svg"
	ChartPDF ChartFormat = "pdf"
)

// Valid returns true if the format is a recognized value.
func (f ChartFormat) Valid() bool {
	switch f {
	case ChartPNG, ChartSVG, ChartPDF:
		return true
	}
	return false
}

// String returns the string representation of the format.
func (f ChartFormat) String() string {
	return string(f)
}

// ExportFormat is the tabular format averaged results are exported in.
type ExportFormat string

const (
	ExportCSV     ExportFormat = "csv"
	ExportArrow   ExportFormat = "arrow"
	ExportParquet ExportFormat = "parquet"
)

// Valid returns true if the format is a recognized value.
func (f ExportFormat) Valid() bool {
	switch f {
	case ExportCSV, ExportArrow, ExportParquet:
		return true
	}
	return false
}

// String returns the string representation of the format.
func (f ExportFormat) String() string {
	return string(f)
}
