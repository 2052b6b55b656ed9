package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tobsdb/tabq/internal/conn"
	"github.com/tobsdb/tabq/pkg"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the configured tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server, err := a.buildServer(ctx)
			if err != nil {
				return err
			}
			return server.Listen(ctx, a.cfg.Port)
		},
	}
	cmd.Flags().Int("port", 0, "listening port")
	cmd.Flags().Int("items-per-page", 0, "default page size of new sessions")
	cmd.Flags().Int("remote-debounce-ms", 0, "delay before a remote search is sent")
	return cmd
}

func (a *app) buildServer(ctx context.Context) (*conn.Server, error) {
	schema, err := a.loadSchema(nil)
	if err != nil {
		return nil, err
	}
	users, err := a.cfg.BuildUsers()
	if err != nil {
		return nil, err
	}
	if !users.Enabled() {
		pkg.WarnLog("no users configured; authentication is disabled")
	}

	server := conn.NewServer(users, conn.Settings{
		ItemsPerPage: a.cfg.ItemsPerPage,
		RemoteDelay:  time.Duration(a.cfg.RemoteDebounceMs) * time.Millisecond,
	})

	for _, table := range schema.Tables.Values() {
		if _, ok := a.cfg.Tables[table.Name]; !ok {
			pkg.WarnLog("table", table.Name, "has no configured source; not serving it")
			continue
		}
		d, err := a.loadDataset(ctx, schema, table.Name, true)
		if err != nil {
			return nil, err
		}
		server.AddDataset(d)
		pkg.InfoLog("serving table", d.Name(), "with", len(d.Rows), "rows")
	}
	return server, nil
}
