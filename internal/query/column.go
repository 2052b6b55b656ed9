package query

import (
	"github.com/tobsdb/tabq/internal/types"
	"github.com/tobsdb/tabq/pkg"
)

// Accessor reads a named field from a record. present is false when the
// record has no such field.
type Accessor[R any] func(record R, field string) (value any, present bool)

// MapAccessor reads fields of map shaped records.
func MapAccessor(record pkg.Map[string, any], field string) (any, bool) {
	v, ok := record[field]
	return v, ok
}

// Column describes one field of a table for the pipeline and for renderers.
type Column struct {
	Field      string          `json:"field"`
	Label      string          `json:"label"`
	Type       types.FieldType `json:"type"`
	Sortable   bool            `json:"sortable"`
	Filterable bool            `json:"filterable"`
	Searchable bool            `json:"searchable"`
	Options    []string        `json:"options,omitempty"`
}

type Columns []Column

func (cols Columns) Find(field string) (Column, bool) {
	for _, c := range cols {
		if c.Field == field {
			return c, true
		}
	}
	return Column{}, false
}

// TypeOf is shaped for ParseCriterion.
func (cols Columns) TypeOf(field string) (types.FieldType, bool) {
	c, ok := cols.Find(field)
	return c.Type, ok
}

// SearchFields lists the fields marked searchable, in column order.
func (cols Columns) SearchFields() []string {
	fields := []string{}
	for _, c := range cols {
		if c.Searchable {
			fields = append(fields, c.Field)
		}
	}
	return fields
}

func (cols Columns) Fields() []string {
	fields := make([]string, len(cols))
	for i, c := range cols {
		fields[i] = c.Field
	}
	return fields
}

func (cols Columns) Labels() []string {
	labels := make([]string, len(cols))
	for i, c := range cols {
		labels[i] = c.Label
		if len(labels[i]) == 0 {
			labels[i] = c.Field
		}
	}
	return labels
}
