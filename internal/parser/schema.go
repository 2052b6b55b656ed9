package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tobsdb/tabq/internal/props"
	"github.com/tobsdb/tabq/internal/types"
	"github.com/tobsdb/tabq/pkg"
)

type LineParserState int

const (
	ParserStateTableStart LineParserState = iota
	ParserStateTableEnd
	ParserStateNewField
	ParserStateIdle
)

type ParserData struct {
	Name         string
	Builtin_type types.FieldType
	Properties   pkg.Map[props.FieldProp, string]
}

const (
	table_prefix     = "$TABLE "
	table_prefix_len = len(table_prefix)
)

var (
	name_regex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	prop_regex = regexp.MustCompile(`(\w+)\(([^)]*)\)`)
)

// LineParser parses one trimmed, non-empty, non-comment line of a table
// descriptor file.
func LineParser(line string) (LineParserState, *ParserData, error) {
	if line == "}" {
		return ParserStateTableEnd, nil, nil
	}

	if strings.HasPrefix(line, table_prefix) {
		return parseTableStart(line[table_prefix_len:])
	}

	splits := pkg.Filter(strings.Split(line, " "), func(s string) bool { return len(s) > 0 })
	if len(splits) == 0 {
		return ParserStateIdle, nil, errors.New("Invalid line")
	}
	if !name_regex.MatchString(splits[0]) {
		return ParserStateIdle, nil, fmt.Errorf("Field name contains invalid characters: %s", splits[0])
	}
	if len(splits) < 2 {
		return ParserStateIdle, nil, fmt.Errorf("Field %s does not have a type", splits[0])
	}

	builtin_type, err := types.ParseFieldType(splits[1])
	if err != nil {
		return ParserStateIdle, nil, err
	}

	field_props, err := parseRawFieldProps(strings.Join(splits[2:], " "))
	if err != nil {
		return ParserStateIdle, nil, err
	}

	return ParserStateNewField, &ParserData{
		Name:         splits[0],
		Builtin_type: builtin_type,
		Properties:   field_props,
	}, nil
}

func parseTableStart(line string) (LineParserState, *ParserData, error) {
	line = strings.TrimSpace(line)
	if !strings.HasSuffix(line, "{") {
		return ParserStateIdle, nil, errors.New("Invalid line")
	}
	name := strings.TrimSpace(strings.TrimSuffix(line, "{"))
	if len(name) == 0 {
		return ParserStateIdle, nil, errors.New("Invalid line")
	}
	if strings.ContainsAny(name, " \t") {
		return ParserStateIdle, nil, errors.New("Table name cannot include space")
	}
	if !name_regex.MatchString(name) {
		return ParserStateIdle, nil, fmt.Errorf("Table name contains invalid characters: %s", name)
	}
	return ParserStateTableStart, &ParserData{Name: name}, nil
}

func parseRawFieldProps(raw string) (pkg.Map[props.FieldProp, string], error) {
	field_props := pkg.Map[props.FieldProp, string]{}

	rest := raw
	for _, match := range prop_regex.FindAllStringSubmatch(raw, -1) {
		prop, value := props.FieldProp(match[1]), strings.TrimSpace(match[2])
		if !prop.IsValid() {
			return nil, fmt.Errorf("Invalid field prop: %s", prop)
		}
		if field_props.Has(prop) {
			return nil, fmt.Errorf("Duplicate field prop: %s", prop)
		}
		field_props.Set(prop, value)
		rest = strings.Replace(rest, match[0], "", 1)
	}

	if rest = strings.TrimSpace(rest); len(rest) > 0 {
		return nil, fmt.Errorf("Invalid field props: %s", rest)
	}

	return field_props, nil
}
