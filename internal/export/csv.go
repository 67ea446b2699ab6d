package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/nvandessel/reportsummary/internal/models"
)

// writeCSV writes a header of position labels followed by one record per
// sample.
func writeCSV(w io.Writer, result models.AveragedResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columnNames(result)); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	record := make([]string, result.Positions())
	for row := 0; row < rowCount(result); row++ {
		for i := range record {
			col := result.Column(i)
			if row < len(col) {
				record[i] = strconv.FormatFloat(col[row], 'g', -1, 64)
			} else {
				record[i] = ""
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row %d: %w", row, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
