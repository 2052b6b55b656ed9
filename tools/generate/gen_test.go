package generate_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/tobsdb/tabq/internal/builder"
	gen "github.com/tobsdb/tabq/tools/generate"
	"gotest.tools/v3/assert"
)

func createSimpleSchema() *builder.Schema {
	schema, err := builder.ParseSchema(`
$TABLE stock_item {
    name     String
    qty      Number optional(true)
    expires  Date
    rx       Bool
    category Select options(a, b)
}`)
	if err != nil {
		panic(err)
	}
	return schema
}

func TestSimpleSchemaToTypescript(t *testing.T) {
	res, err := gen.SchemaToLang(createSimpleSchema(), "ts")
	assert.NilError(t, err)

	assert.Equal(t, string(res), fmt.Sprint(
		"export type StockItem = {\n",
		"\tname: string;\n",
		"\tqty?: number;\n",
		"\texpires: Date;\n",
		"\trx: boolean;\n",
		"\tcategory: \"a\" | \"b\";\n",
		"};\n",
		"\nexport const StockItemColumns = [\"name\", \"qty\", \"expires\", \"rx\", \"category\"] as const;\n"))
}

func TestSimpleSchemaToRust(t *testing.T) {
	res, err := gen.SchemaToLang(createSimpleSchema(), "rs")
	assert.NilError(t, err)

	assert.Equal(t, string(res), fmt.Sprint(
		"use serde::{Deserialize, Serialize};\n",
		"\n#[derive(Debug, Clone, Serialize, Deserialize)]\npub struct StockItem {\n",
		"\tpub name: String,\n",
		"\tpub qty: Option<f64>,\n",
		"\tpub expires: String,\n",
		"\tpub rx: bool,\n",
		"\tpub category: String,\n",
		"}\n",
		"\npub const STOCK_ITEM_COLUMNS: [&str; 5] = [\"name\", \"qty\", \"expires\", \"rx\", \"category\"];\n"))
}

func TestSimpleSchemaToGo(t *testing.T) {
	res, err := gen.SchemaToLang(createSimpleSchema(), "go")
	assert.NilError(t, err)

	assert.Equal(t, string(res), fmt.Sprint(
		"package schema\n",
		"\nimport \"time\"\n",
		"\ntype StockItem struct {\n",
		"\tName string `json:\"name\"`\n",
		"\tQty *float64 `json:\"qty,omitempty\"`\n",
		"\tExpires time.Time `json:\"expires\"`\n",
		"\tRx bool `json:\"rx\"`\n",
		"\tCategory string `json:\"category\"`\n",
		"}\n",
		"\nvar StockItemColumns = []string{\"name\", \"qty\", \"expires\", \"rx\", \"category\"}\n"))
}

func TestSchemaToJson(t *testing.T) {
	res, err := gen.SchemaToLang(createSimpleSchema(), "json")
	assert.NilError(t, err)

	var tables []struct {
		Name    string `json:"name"`
		Columns []struct {
			Field   string   `json:"field"`
			Type    string   `json:"type"`
			Options []string `json:"options"`
		} `json:"columns"`
	}
	assert.NilError(t, json.Unmarshal(res, &tables))
	assert.Equal(t, len(tables), 1)
	assert.Equal(t, tables[0].Name, "stock_item")
	assert.Equal(t, len(tables[0].Columns), 5)
	assert.Equal(t, tables[0].Columns[3].Type, "boolean")
	assert.DeepEqual(t, tables[0].Columns[4].Options, []string{"a", "b"})
}

func TestUnsupportedLang(t *testing.T) {
	_, err := gen.SchemaToLang(createSimpleSchema(), "cobol")
	assert.Error(t, err, "Unsupported Language: cobol")
}
