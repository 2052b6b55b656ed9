// Package cli provides the tabq command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tobsdb/tabq/internal/config"
)

var Version = "0.1.0"

type app struct {
	cfg_file string
	cfg      *config.Config
}

func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "tabq",
		Short: "TabQ - search, filter, sort, page and export tabular data",
		Long: `TabQ serves tables described by a $TABLE schema over a websocket session
protocol, and runs the same search, filter, sort and pagination pipeline from
the command line.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			cfg, err := config.Load(a.cfg_file, cmd.Flags())
			if err != nil {
				return err
			}
			cfg.ApplyLogging()
			a.cfg = cfg
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.cfg_file, "config", "", "config file (default: ./tabq.yaml)")
	root.PersistentFlags().String("schema", "", "path to the $TABLE schema file")
	root.PersistentFlags().String("log-level", "", "log level (none|error|warn|info|debug)")
	root.PersistentFlags().String("log-file", "", "also write logs to this rotating file")

	root.AddCommand(
		newServeCommand(a),
		newQueryCommand(a),
		newValidateCommand(a),
		newGenerateCommand(a),
	)
	return root
}

func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
