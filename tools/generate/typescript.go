package generate

import (
	"fmt"
	"strings"

	"github.com/tobsdb/tabq/internal/types"
)

func SchemaToTypescript(s []ParsedTable) []byte {
	res := ""
	for i, t := range s {
		if i > 0 {
			res += "\n"
		}
		name := toPascalCase(t.Name)
		res += fmt.Sprintf("export type %s = {\n%s\n};\n", name, fieldsToTypescript(t.Fields))
		res += fmt.Sprintf("\nexport const %sColumns = [%s] as const;\n", name, quoteFields(t.Fields))
	}
	return []byte(res)
}

func fieldsToTypescript(fields []ParsedField) string {
	lines := make([]string, len(fields))
	for i, f := range fields {
		optional := ""
		if f.Optional {
			optional = "?"
		}
		lines[i] = fmt.Sprintf("\t%s%s: %s;", f.Name, optional, typeToTypescript(f))
	}
	return strings.Join(lines, "\n")
}

func typeToTypescript(f ParsedField) string {
	switch f.BuiltinType {
	case types.FieldTypeNumber:
		return "number"
	case types.FieldTypeBool:
		return "boolean"
	case types.FieldTypeDate:
		return "Date"
	case types.FieldTypeSelect:
		opts := make([]string, len(f.Options))
		for i, o := range f.Options {
			opts[i] = fmt.Sprintf("%q", o)
		}
		return strings.Join(opts, " | ")
	}
	return "string"
}

func quoteFields(fields []ParsedField) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = fmt.Sprintf("%q", f.Name)
	}
	return strings.Join(names, ", ")
}
