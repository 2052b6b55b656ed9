package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tobsdb/tabq/tools/generate"
)

func newGenerateCommand(a *app) *cobra.Command {
	var lang, out string
	cmd := &cobra.Command{
		Use:   "generate [schema]",
		Short: "Generate record types and column lists from a schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := a.loadSchema(args)
			if err != nil {
				return err
			}
			data, err := generate.SchemaToLang(schema, lang)
			if err != nil {
				return err
			}
			if len(out) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			return os.WriteFile(out, data, 0644)
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "json",
		"output language. Options: "+strings.Join(generate.SUPPORTED_LANGS, ", "))
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	return cmd
}
