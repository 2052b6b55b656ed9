package export_test

import (
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tobsdb/tabq/internal/export"
	"github.com/tobsdb/tabq/internal/query"
	"github.com/tobsdb/tabq/pkg"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/golden"
)

type row = pkg.Map[string, any]

var columns = query.Columns{
	{Field: "name", Label: "Name"},
	{Field: "stock", Label: "Stock"},
	{Field: "expires", Label: "Expiry"},
	{Field: "notes", Label: "Notes"},
}

var rows = []row{
	{"name": "Amoxicillin 250mg", "stock": 12, "expires": time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "notes": `A, B "C"`},
	{"name": "Paracetamol", "stock": 0.5, "expires": nil, "notes": "line1\nline2"},
	{"name": "Ibuprofen", "expires": "2025-01-01", "notes": ""},
}

func TestCSVGolden(t *testing.T) {
	a, err := export.BuildCSV("Inventory", rows, columns, query.MapAccessor, export.CSVOptions{})
	assert.NilError(t, err)
	assert.Equal(t, a.Name, "inventory.csv")
	assert.Equal(t, a.ContentType, export.CSV_CONTENT_TYPE)
	golden.Assert(t, string(a.Data), "inventory.csv.golden")
}

func TestCSVQuoting(t *testing.T) {
	out, err := export.CSV([]string{"v"}, [][]any{{`A, B "C"`}}, export.CSVOptions{})
	assert.NilError(t, err)
	assert.Equal(t, string(out), "v\n\"A, B \"\"C\"\"\"\n")

	t.Run("custom delimiter", func(t *testing.T) {
		out, err := export.CSV([]string{"a", "b"}, [][]any{{"x;y", "x,y"}}, export.CSVOptions{Delimiter: ';', CRLF: true})
		assert.NilError(t, err)
		assert.Equal(t, string(out), "a;b\r\n\"x;y\";x,y\r\n")
	})

	t.Run("header only", func(t *testing.T) {
		out, err := export.CSV([]string{"a", "b"}, nil, export.CSVOptions{})
		assert.NilError(t, err)
		assert.Equal(t, string(out), "a,b\n")
	})
}

func TestCSVRoundTrip(t *testing.T) {
	out, err := export.CSV(columns.Labels(), export.Cells(rows, columns, query.MapAccessor), export.CSVOptions{})
	assert.NilError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	assert.NilError(t, err)
	assert.Equal(t, len(records), len(rows)+1)
	assert.DeepEqual(t, records[0], []string{"Name", "Stock", "Expiry", "Notes"})

	for i, r := range rows {
		for j, c := range columns {
			want, err := query.Text(r[c.Field])
			assert.NilError(t, err)
			assert.Equal(t, records[i+1][j], want)
		}
	}
}

func TestCSVAllOrNothing(t *testing.T) {
	bad := [][]any{{"ok"}, {map[string]any{"nested": true}}}
	out, err := export.CSV([]string{"value"}, bad, export.CSVOptions{})
	assert.Assert(t, out == nil)

	var export_err *export.Error
	assert.Assert(t, errors.As(err, &export_err))
	assert.Equal(t, export_err.Row, 1)
	assert.Equal(t, export_err.Column, "value")
	assert.ErrorContains(t, err, "export failed at row 1 column value")
}

func TestFilename(t *testing.T) {
	assert.Equal(t, export.Filename("Inventory Report", "csv"), "inventory-report.csv")
	assert.Equal(t, export.Filename("  Low\tStock  Items ", ".csv"), "low-stock-items.csv")
	assert.Equal(t, export.Filename("", "csv"), "export.csv")
	assert.Equal(t, export.Filename("a/b", ""), "ab")
}
