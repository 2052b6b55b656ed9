package generate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tobsdb/tabq/internal/types"
)

func SchemaToGo(s []ParsedTable) []byte {
	res := "package schema\n"

	uses_time := slices.ContainsFunc(s, func(t ParsedTable) bool {
		return slices.ContainsFunc(t.Fields, func(f ParsedField) bool {
			return f.BuiltinType == types.FieldTypeDate
		})
	})
	if uses_time {
		res += "\nimport \"time\"\n"
	}

	for _, t := range s {
		name := toPascalCase(t.Name)
		res += fmt.Sprintf("\ntype %s struct {\n%s\n}\n", name, fieldsToGo(t.Fields))
		res += fmt.Sprintf("\nvar %sColumns = []string{%s}\n", name, quoteFields(t.Fields))
	}
	return []byte(res)
}

func fieldsToGo(fields []ParsedField) string {
	lines := make([]string, len(fields))
	for i, f := range fields {
		tag := f.Name
		if f.Optional {
			tag += ",omitempty"
		}
		lines[i] = fmt.Sprintf("\t%s %s `json:\"%s\"`", toPascalCase(f.Name), typeToGo(f), tag)
	}
	return strings.Join(lines, "\n")
}

func typeToGo(f ParsedField) string {
	res := "string"
	switch f.BuiltinType {
	case types.FieldTypeNumber:
		res = "float64"
	case types.FieldTypeBool:
		res = "bool"
	case types.FieldTypeDate:
		res = "time.Time"
	}
	if f.Optional {
		res = "*" + res
	}
	return res
}
