package export

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"

	"github.com/nvandessel/reportsummary/internal/models"
)

// Row is the long-format Parquet record: one value of one position.
type Row struct {
	Family   string  `parquet:"family,dict"`
	Position int32   `parquet:"position"`
	Label    string  `parquet:"label,dict"`
	Index    int32   `parquet:"index"`
	Value    float64 `parquet:"value"`
}

// Rows flattens result into long format, position-major.
func Rows(result models.AveragedResult) []Row {
	names := columnNames(result)
	var rows []Row
	for i := 0; i < result.Positions(); i++ {
		for j, v := range result.Column(i) {
			rows = append(rows, Row{
				Family:   result.Family,
				Position: int32(i),
				Label:    names[i],
				Index:    int32(j),
				Value:    v,
			})
		}
	}
	return rows
}

// codec returns the parquet-go compression codec by name.
func codec(name string) (compress.Codec, error) {
	switch name {
	case "zstd", "":
		return &parquet.Zstd, nil
	case "snappy":
		return &parquet.Snappy, nil
	case "gzip":
		return &parquet.Gzip, nil
	case "none":
		return &parquet.Uncompressed, nil
	default:
		return nil, fmt.Errorf("unknown parquet compression %q", name)
	}
}

func writeParquet(w io.Writer, result models.AveragedResult, opts Options) error {
	c, err := codec(opts.Compression)
	if err != nil {
		return err
	}

	pw := parquet.NewGenericWriter[Row](w, parquet.Compression(c))
	if _, err := pw.Write(Rows(result)); err != nil {
		pw.Close()
		return fmt.Errorf("writing parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("closing parquet writer: %w", err)
	}
	return nil
}
