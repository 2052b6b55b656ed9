package builder_test

import (
	"testing"

	. "github.com/tobsdb/tabq/internal/builder"
	"github.com/tobsdb/tabq/internal/query"
	"github.com/tobsdb/tabq/internal/types"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/fs"
)

const inventory_schema = `
// pharmacy stock
$TABLE inventory {
    name     String label("Name") sortable(true)
    stock    Number label("Stock")
    expires  Date   label("Expiry Date")
    rx       Bool   label("Prescription")
    category Select label("Category") options(antibiotic, analgesic) optional(true)
    notes    String searchable(false) sortable(false)
}

$TABLE suppliers {
    name String
}
`

func TestParseSchema(t *testing.T) {
	s, err := ParseSchema("$TABLE a {\n a Number\n }")
	assert.NilError(t, err)
	assert.Equal(t, s.Tables.Len(), 1, "expected only one table")
}

func TestParseSchemaColumns(t *testing.T) {
	s, err := ParseSchema(inventory_schema)
	assert.NilError(t, err)
	assert.DeepEqual(t, s.Tables.Sorted, []string{"inventory", "suppliers"})

	table, ok := s.Table("inventory")
	assert.Assert(t, ok)
	assert.DeepEqual(t, table.Columns(), query.Columns{
		{Field: "name", Label: "Name", Type: types.FieldTypeString, Sortable: true, Filterable: true, Searchable: true},
		{Field: "stock", Label: "Stock", Type: types.FieldTypeNumber, Sortable: true, Filterable: true},
		{Field: "expires", Label: "Expiry Date", Type: types.FieldTypeDate, Sortable: true, Filterable: true},
		{Field: "rx", Label: "Prescription", Type: types.FieldTypeBool, Sortable: true, Filterable: true},
		{Field: "category", Label: "Category", Type: types.FieldTypeSelect, Sortable: true, Filterable: true,
			Options: []string{"antibiotic", "analgesic"}},
		{Field: "notes", Label: "notes", Type: types.FieldTypeString, Filterable: true},
	})
	assert.DeepEqual(t, table.Columns().SearchFields(), []string{"name"})

	_, ok = s.Table("orders")
	assert.Assert(t, !ok)
}

func TestDuplicateTable(t *testing.T) {
	_, err := ParseSchema(`
$TABLE a {
    a Number
}

$TABLE a {
    b Number
}
        `)

	assert.ErrorContains(t, err, "Duplicate table a")
}

func TestDuplicateField(t *testing.T) {
	_, err := ParseSchema(`
$TABLE a {
    a Number
    a String
}
        `)

	assert.ErrorContains(t, err, "Duplicate field a")
}

func TestSchemaStructure(t *testing.T) {
	t.Run("unclosed table", func(t *testing.T) {
		_, err := ParseSchema("$TABLE a {\n a Number\n$TABLE b {\n b Number\n}")
		assert.ErrorContains(t, err, "Error parsing line 3: Table a is not closed")
	})

	t.Run("unclosed at end", func(t *testing.T) {
		_, err := ParseSchema("$TABLE a {\n a Number\n")
		assert.ErrorContains(t, err, "Table a is not closed")
	})

	t.Run("empty table", func(t *testing.T) {
		_, err := ParseSchema("$TABLE a {\n}")
		assert.ErrorContains(t, err, "Table a has no fields")
	})

	t.Run("field outside table", func(t *testing.T) {
		_, err := ParseSchema("a Number")
		assert.ErrorContains(t, err, "Field declared outside of a table")
	})

	t.Run("no tables", func(t *testing.T) {
		_, err := ParseSchema("// nothing here")
		assert.ErrorContains(t, err, "Schema has no tables")
	})
}

func TestNewSchemaFromPath(t *testing.T) {
	dir := fs.NewDir(t, "tabq-schema", fs.WithFile("tables.tdb", inventory_schema))
	defer dir.Remove()

	s, err := NewSchemaFromPath(dir.Join("tables.tdb"))
	assert.NilError(t, err)
	assert.Equal(t, s.Tables.Len(), 2)

	_, err = NewSchemaFromPath(dir.Join("missing.tdb"))
	assert.ErrorContains(t, err, "reading schema")
}

func TestCheckRows(t *testing.T) {
	s, err := ParseSchema(inventory_schema)
	assert.NilError(t, err)
	table, _ := s.Table("inventory")

	problems := table.CheckRows([]Row{
		{"name": "a", "stock": 1, "expires": "2024-01-01", "rx": true, "category": "antibiotic", "notes": ""},
		{"name": "b", "stock": 1, "expires": "2024-01-01", "rx": false, "category": "vitamin", "notes": ""},
		{"name": "c", "expires": "2024-01-01", "rx": false, "notes": ""},
	})
	assert.Equal(t, len(problems), 2)
	assert.ErrorContains(t, problems[0], `row 1: value "vitamin" of field category`)
	assert.ErrorContains(t, problems[1], "row 2: missing value for field stock")
}
