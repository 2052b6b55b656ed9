package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [schema]",
		Short: "Check a schema and the rows of its configured tables",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := a.loadSchema(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Schema is valid: %d tables\n", schema.Tables.Len())

			invalid := 0
			for _, table := range schema.Tables.Values() {
				if _, ok := a.cfg.Tables[table.Name]; !ok {
					continue
				}
				d, err := a.loadDataset(cmd.Context(), schema, table.Name, false)
				if err != nil {
					return err
				}
				errs := table.CheckRows(d.Rows)
				for _, err := range errs {
					fmt.Fprintln(out, err)
				}
				fmt.Fprintf(out, "%s: %d rows, %d problems\n", table.Name, len(d.Rows), len(errs))
				invalid += len(errs)
			}
			if invalid > 0 {
				return fmt.Errorf("%d rows do not match the schema", invalid)
			}
			return nil
		},
	}
}
