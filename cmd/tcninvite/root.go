package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mykel-Eze/tcn-invite/cmd/internal/app"
)

// rootOptions holds global flags.
type rootOptions struct {
	Format string // "text" | "json"
}

var validFormats = []string{"text", "json"}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "tcninvite",
		Short:         "TCN Invite: invitation flyers and attendance check-in",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			for _, f := range validFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newSeedCommand())
	cmd.AddCommand(newStatsCommand(opts))
	cmd.AddCommand(newRoleCommand())
	return cmd
}

// operatorEnv is the config, logger and Postgres-backed stores every
// operator command shares.
type operatorEnv struct {
	cfg    app.Config
	log    app.Logger
	stores *app.Stores
}

func (e *operatorEnv) Close() {
	e.stores.Close()
	_ = e.log.Sync()
}

var errNoDatabase = errors.New("TCN_DATABASE_URL is required for this command")

func openOperatorEnv(ctx context.Context) (*operatorEnv, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.DBEnabled() {
		return nil, errNoDatabase
	}
	log, err := app.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	stores, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &operatorEnv{cfg: cfg, log: log, stores: stores}, nil
}
