package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/tobsdb/tabq/internal/builder"
	"github.com/tobsdb/tabq/internal/conn"
	"github.com/tobsdb/tabq/internal/export"
	"github.com/tobsdb/tabq/internal/query"
)

type queryOptions struct {
	search   string
	filters  []string
	sorts    []string
	page     int
	per_page int
	format   string
	out      string
}

func newQueryCommand(a *app) *cobra.Command {
	opts := &queryOptions{}
	cmd := &cobra.Command{
		Use:   "query <table>",
		Short: "Search, filter, sort and page a configured table",
		Example: `  tabq query inventory --search amox --filter stock:lessThan:10 --sort name:asc
  tabq query inventory --filter expires:between:2024-01-01..2024-12-31 --format json
  tabq query inventory --sort stock:desc --out ./exports/low-stock.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.search, "search", "", "free text search term")
	cmd.Flags().StringArrayVar(&opts.filters, "filter", nil, "field:operator:value filter (repeatable)")
	cmd.Flags().StringArrayVar(&opts.sorts, "sort", nil, "field[:asc|desc] sort key (repeatable)")
	cmd.Flags().IntVar(&opts.page, "page", 1, "page to show")
	cmd.Flags().IntVar(&opts.per_page, "per-page", 0, "rows per page (default: items_per_page)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "table", "output format (table|csv|json)")
	cmd.Flags().StringVar(&opts.out, "out", "", "write every matching row as csv to this file")
	return cmd
}

func (a *app) runQuery(cmd *cobra.Command, name string, opts *queryOptions) error {
	ctx := cmd.Context()
	schema, err := a.loadSchema(nil)
	if err != nil {
		return err
	}
	dataset, err := a.loadDataset(ctx, schema, name, false)
	if err != nil {
		return err
	}

	t, err := conn.BuildTable(dataset, opts.search, opts.filters, opts.sorts)
	if err != nil {
		return err
	}

	if len(opts.out) > 0 {
		title := strings.TrimSuffix(filepath.Base(opts.out), filepath.Ext(opts.out))
		artifact, err := export.ExportCSV(ctx, export.FileWriter{Dir: filepath.Dir(opts.out)}, title,
			t.Filtered(), t.Columns(), query.MapAccessor, export.CSVOptions{})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n",
			len(t.Filtered()), filepath.Join(filepath.Dir(opts.out), artifact.Name))
		return nil
	}

	per_page := opts.per_page
	if per_page == 0 {
		per_page = a.cfg.ItemsPerPage
	}
	if err := t.SetItemsPerPage(per_page); err != nil {
		return err
	}
	t.SetCurrentPage(opts.page)

	return renderView(cmd.OutOrStdout(), t.Columns(), t.View(), opts.format)
}

func renderView(w io.Writer, cols query.Columns, v query.View[builder.Row], format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "csv":
		data, err := export.CSV(cols.Labels(), export.Cells(v.Rows, cols, query.MapAccessor), export.CSVOptions{})
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "table", "":
		return renderTable(w, cols, v)
	}
	return fmt.Errorf("unknown format %q; expected table, csv or json", format)
}

func renderTable(w io.Writer, cols query.Columns, v query.View[builder.Row]) error {
	if v.FilteredCount == 0 {
		fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(cols))
	for i, label := range cols.Labels() {
		header[i] = label
	}
	t.AppendHeader(header)

	for _, cells := range export.Cells(v.Rows, cols, query.MapAccessor) {
		row := make(table.Row, len(cells))
		for i, c := range cells {
			s, err := query.Text(c)
			if err != nil {
				s = fmt.Sprint(c)
			}
			row[i] = s
		}
		t.AppendRow(row)
	}

	t.Render()
	fmt.Fprintf(w, "page %d of %d (%d of %d rows)\n", v.CurrentPage, v.TotalPages, v.FilteredCount, v.TotalItems)
	return nil
}
