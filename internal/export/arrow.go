package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/nvandessel/reportsummary/internal/models"
)

// arrowSchema has one nullable float64 column per position. Family, kind
// and seeds travel as schema metadata.
func arrowSchema(result models.AveragedResult) *arrow.Schema {
	names := columnNames(result)
	fields := make([]arrow.Field, len(names))
	for i, name := range names {
		fields[i] = arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Float64, Nullable: true}
	}
	md := arrow.NewMetadata(
		[]string{"family", "kind", "seeds"},
		[]string{result.Family, string(result.Kind), strings.Join(result.Seeds, " ")},
	)
	return arrow.NewSchema(fields, &md)
}

// writeArrow writes a single-record Arrow IPC file.
func writeArrow(w io.Writer, result models.AveragedResult) error {
	mem := memory.DefaultAllocator
	schema := arrowSchema(result)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	rows := rowCount(result)
	for i := 0; i < result.Positions(); i++ {
		fb := b.Field(i).(*array.Float64Builder)
		col := result.Column(i)
		fb.Reserve(rows)
		for row := 0; row < rows; row++ {
			if row < len(col) {
				fb.Append(col[row])
			} else {
				fb.AppendNull()
			}
		}
	}

	rec := b.NewRecord()
	defer rec.Release()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err != nil {
		return fmt.Errorf("creating arrow writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return fmt.Errorf("writing arrow record: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("closing arrow writer: %w", err)
	}
	return nil
}
