package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Mykel-Eze/tcn-invite/cmd/internal/app"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/dbschema"
)

func newServeCommand() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and live check-in feed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			log, err := app.NewLogger(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			stores, err := app.OpenStores(ctx, cfg, log)
			if err != nil {
				log.Errorw("db.open.fail", "err", err)
				return err
			}
			if migrate && stores.DBEnabled() {
				if err := dbschema.Apply(ctx, stores.Pool, cfg.DBSchema); err != nil {
					stores.Close()
					return err
				}
				log.Infow("db.migrated", "schema", cfg.DBSchema)
			}

			a, err := app.New(cfg, log, stores)
			if err != nil {
				stores.Close()
				return err
			}
			return a.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving")
	return cmd
}
