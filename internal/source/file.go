package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/tobsdb/tabq/internal/builder"
	"github.com/tobsdb/tabq/internal/types"
	"gopkg.in/yaml.v3"
)

func loadJSON(_ context.Context, cfg Config, _ *builder.Table) ([]builder.Row, error) {
	data, err := readFile(cfg.Path)
	if err != nil {
		return nil, err
	}
	rows := []builder.Row{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrap(err, "decoding json records")
	}
	return rows, nil
}

func loadYAML(_ context.Context, cfg Config, _ *builder.Table) ([]builder.Row, error) {
	data, err := readFile(cfg.Path)
	if err != nil {
		return nil, err
	}
	rows := []builder.Row{}
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrap(err, "decoding yaml records")
	}
	return rows, nil
}

func loadCSV(_ context.Context, cfg Config, table *builder.Table) ([]builder.Row, error) {
	data, err := readFile(cfg.Path)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	if len(cfg.Delimiter) > 0 {
		d, _ := utf8.DecodeRuneInString(cfg.Delimiter)
		r.Comma = d
	} else if strings.HasSuffix(cfg.Path, ".tsv") {
		r.Comma = '\t'
	}

	header, err := r.Read()
	if err == io.EOF {
		return []builder.Row{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading csv header")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows := []builder.Row{}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading csv row %d", len(rows)+1)
		}
		row := builder.Row{}
		for i, name := range header {
			if i < len(record) {
				row[name] = csvValue(table, name, record[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// csvValue keeps the text of String and Select fields and infers the type
// of every other cell.
func csvValue(table *builder.Table, name, raw string) any {
	if table != nil && table.Fields.Has(name) {
		switch table.Fields.Get(name).BuiltinType {
		case types.FieldTypeString, types.FieldTypeSelect:
			if s := strings.TrimSpace(raw); len(s) > 0 {
				return s
			}
			return nil
		}
	}
	return inferCSVValue(raw)
}

// inferCSVValue turns empty cells into nil and numeric or boolean text into
// numbers and bools.
func inferCSVValue(s string) any {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
		return b
	}
	return s
}
