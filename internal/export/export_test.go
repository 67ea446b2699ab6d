package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/reportsummary/internal/constants"
	"github.com/nvandessel/reportsummary/internal/models"
)

func multicastResult() models.AveragedResult {
	return models.AveragedResult{
		Family: "multicast",
		Kind:   models.ResultKindSeries,
		Seeds:  []string{"1", "2"},
		Labels: []string{"minutes", "min", "avg"},
		Values: []models.Series{{5, 10, 15}, {0.25, 0.3, 0.35}, {0.375, 0.5, 0.75}},
	}
}

func deliveryResult() models.AveragedResult {
	return models.AveragedResult{
		Family:  "delivery",
		Kind:    models.ResultKindScalar,
		Seeds:   []string{"1", "2"},
		Labels:  []string{"created", "delivered", "delivery_prob"},
		Scalars: models.ScalarTuple{15, 5, 0.375},
	}
}

func TestWrite_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, constants.ExportCSV, multicastResult(), DefaultOptions()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"minutes", "min", "avg"}, records[0])
	assert.Equal(t, []string{"5", "0.25", "0.375"}, records[1])
	assert.Equal(t, []string{"15", "0.35", "0.75"}, records[3])
}

func TestWrite_CSVScalar(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, constants.ExportCSV, deliveryResult(), DefaultOptions()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"15", "5", "0.375"}, records[1])
}

func TestWrite_CSVUnlabelled(t *testing.T) {
	res := multicastResult()
	res.Labels = nil

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, constants.ExportCSV, res, DefaultOptions()))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"p0", "p1", "p2"}, records[0])
}

func TestWrite_Arrow(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, constants.ExportArrow, multicastResult(), DefaultOptions()))

	r, err := ipc.NewFileReader(bytes.NewReader(buf.Bytes()), ipc.WithAllocator(memory.DefaultAllocator))
	require.NoError(t, err)
	defer r.Close()

	schema := r.Schema()
	require.Equal(t, 3, schema.NumFields())
	assert.Equal(t, "avg", schema.Field(2).Name)

	md := schema.Metadata()
	idx := md.FindKey("family")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, "multicast", md.Values()[idx])

	require.Equal(t, 1, r.NumRecords())
	rec, err := r.Record(0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, rec.NumRows())

	avg := rec.Column(2).(*array.Float64)
	assert.Equal(t, []float64{0.375, 0.5, 0.75}, avg.Float64Values())
}

func TestWrite_ArrowScalar(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, constants.ExportArrow, deliveryResult(), DefaultOptions()))

	r, err := ipc.NewFileReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer r.Close()

	rec, err := r.Record(0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rec.NumRows())
	assert.Equal(t, 0.375, rec.Column(2).(*array.Float64).Value(0))
}

func TestWrite_Parquet(t *testing.T) {
	for _, compression := range []string{"zstd", "snappy", "gzip", "none"} {
		t.Run(compression, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, constants.ExportParquet, multicastResult(), Options{Compression: compression}))

			rows, err := parquet.Read[Row](bytes.NewReader(buf.Bytes()), int64(buf.Len()))
			require.NoError(t, err)
			require.Len(t, rows, 9)
			assert.Equal(t, Row{Family: "multicast", Position: 2, Label: "avg", Index: 2, Value: 0.75}, rows[8])
		})
	}
}

func TestWrite_ParquetUnknownCompression(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, constants.ExportParquet, multicastResult(), Options{Compression: "brotli9000"})
	assert.ErrorContains(t, err, "unknown parquet compression")
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, "xlsx", multicastResult(), DefaultOptions())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestWrite_EmptyResult(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, constants.ExportCSV, models.AveragedResult{Family: "x"}, DefaultOptions())
	assert.Error(t, err)
}

func TestRows_ScalarIsOneRowPerPosition(t *testing.T) {
	rows := Rows(deliveryResult())
	require.Len(t, rows, 3)
	for i, r := range rows {
		assert.EqualValues(t, i, r.Position)
		assert.EqualValues(t, 0, r.Index)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "multicast.csv")
	require.NoError(t, WriteFile(path, constants.ExportCSV, multicastResult(), DefaultOptions()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "minutes,min,avg")
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]constants.ExportFormat{
		"a.csv":     constants.ExportCSV,
		"a.arrow":   constants.ExportArrow,
		"a.PARQUET": constants.ExportParquet,
	}
	for path, want := range tests {
		got, err := FormatForPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatForPath("a.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
