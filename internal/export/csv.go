package export

import (
	"bytes"
	"strings"

	"github.com/tobsdb/tabq/internal/query"
)

type CSVOptions struct {
	// Delimiter defaults to ','.
	Delimiter rune
	// CRLF ends rows with \r\n instead of \n.
	CRLF bool
}

func (o CSVOptions) delimiter() string {
	if o.Delimiter == 0 {
		return ","
	}
	return string(o.Delimiter)
}

// Cells extracts the values of columns from each record, in column order.
func Cells[R any](records []R, columns query.Columns, get query.Accessor[R]) [][]any {
	rows := make([][]any, len(records))
	for i, r := range records {
		row := make([]any, len(columns))
		for j, c := range columns {
			row[j], _ = get(r, c.Field)
		}
		rows[i] = row
	}
	return rows
}

// CSV serializes a header row and one line per row. Either every cell is
// rendered or nothing is returned.
func CSV(headers []string, rows [][]any, opts CSVOptions) ([]byte, error) {
	delim := opts.delimiter()
	eol := "\n"
	if opts.CRLF {
		eol = "\r\n"
	}

	var buf bytes.Buffer
	for i, h := range headers {
		if i > 0 {
			buf.WriteString(delim)
		}
		buf.WriteString(escapeCSV(h, delim))
	}
	buf.WriteString(eol)

	for row_idx, row := range rows {
		for col_idx, cell := range row {
			s, err := query.Text(cell)
			if err != nil {
				return nil, &Error{Row: row_idx, Column: columnName(headers, col_idx), Err: err}
			}
			if col_idx > 0 {
				buf.WriteString(delim)
			}
			buf.WriteString(escapeCSV(s, delim))
		}
		buf.WriteString(eol)
	}
	return buf.Bytes(), nil
}

func columnName(headers []string, idx int) string {
	if idx < len(headers) {
		return headers[idx]
	}
	return ""
}

// escapeCSV quotes values holding the delimiter, a quote or a line break,
// doubling inner quotes.
func escapeCSV(s, delim string) string {
	if strings.Contains(s, delim) || strings.ContainsAny(s, "\"\r\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
