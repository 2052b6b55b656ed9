package generate

import (
	"encoding/json"
	"strings"

	"github.com/tobsdb/tabq/internal/builder"
	"github.com/tobsdb/tabq/internal/query"
	"github.com/tobsdb/tabq/internal/types"
)

func toPascalCase(t string) string {
	res := ""
	for _, v := range strings.Split(t, "_") {
		if len(v) == 0 {
			continue
		}
		res += strings.ToUpper(v[0:1]) + v[1:]
	}
	return res
}

type (
	ParsedTable struct {
		Name    string        `json:"name"`
		Fields  []ParsedField `json:"-"`
		Columns query.Columns `json:"columns"`
	}

	ParsedField struct {
		Name        string
		BuiltinType types.FieldType
		Optional    bool
		Options     []string
	}
)

func schemaDestructure(s *builder.Schema) []ParsedTable {
	res := []ParsedTable{}
	for _, t := range s.Tables.Values() {
		fields := []ParsedField{}
		for _, f := range t.Fields.Values() {
			fields = append(fields, ParsedField{f.Name, f.BuiltinType, f.Optional(), f.Options()})
		}
		res = append(res, ParsedTable{t.Name, fields, t.Columns()})
	}
	return res
}

// SchemaToJson emits the column descriptors of every table.
func SchemaToJson(s []ParsedTable) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
