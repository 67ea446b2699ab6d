// Package export writes averaged results as CSV, Arrow IPC or Parquet files.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nvandessel/reportsummary/internal/constants"
	"github.com/nvandessel/reportsummary/internal/models"
)

// ErrUnsupportedFormat is returned for formats other than csv, arrow and parquet.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Options tunes the columnar writers.
type Options struct {
	// Compression applies to Parquet pages: zstd, snappy, gzip or none.
	Compression string
}

// DefaultOptions returns zstd-compressed output.
func DefaultOptions() Options {
	return Options{Compression: "zstd"}
}

// Write encodes result to w in the given format.
func Write(w io.Writer, format constants.ExportFormat, result models.AveragedResult, opts Options) error {
	if result.Positions() == 0 {
		return fmt.Errorf("export %s: result has no positions", result.Family)
	}
	switch format {
	case constants.ExportCSV:
		return writeCSV(w, result)
	case constants.ExportArrow:
		return writeArrow(w, result)
	case constants.ExportParquet:
		return writeParquet(w, result, opts)
	default:
		return fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}
}

// WriteFile writes result to path, creating parent directories.
func WriteFile(path string, format constants.ExportFormat, result models.AveragedResult, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	if err := Write(f, format, result, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// FormatForPath infers the format from a file extension.
func FormatForPath(path string) (constants.ExportFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return constants.ExportCSV, nil
	case ".arrow", ".ipc", ".feather":
		return constants.ExportArrow, nil
	case ".parquet", ".pq":
		return constants.ExportParquet, nil
	default:
		return "", fmt.Errorf("cannot infer format from %q: %w", filepath.Base(path), ErrUnsupportedFormat)
	}
}

// columnNames returns the labels of result, filling gaps with p<i>.
func columnNames(result models.AveragedResult) []string {
	names := make([]string, result.Positions())
	for i := range names {
		names[i] = result.Label(i)
		if names[i] == "" {
			names[i] = fmt.Sprintf("p%d", i)
		}
	}
	return names
}

// rowCount is the number of samples per column.
func rowCount(result models.AveragedResult) int {
	if result.Kind == models.ResultKindScalar {
		return 1
	}
	return len(result.Axis())
}
