package generate

import (
	"fmt"
	"strings"

	"github.com/tobsdb/tabq/internal/builder"
)

var SUPPORTED_LANGS = []string{"json", "typescript", "go", "rust"}

// SchemaToLang renders record types and column lists for every table in
// schema.
func SchemaToLang(schema *builder.Schema, lang string) ([]byte, error) {
	s := schemaDestructure(schema)
	switch strings.ToLower(lang) {
	case "json":
		return SchemaToJson(s)
	case "typescript", "ts":
		return SchemaToTypescript(s), nil
	case "rust", "rs":
		return SchemaToRust(s), nil
	case "golang", "go":
		return SchemaToGo(s), nil
	default:
		return nil, fmt.Errorf("Unsupported Language: %s", lang)
	}
}
