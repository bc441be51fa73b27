package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mykel-Eze/tcn-invite/cmd/internal/app"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/dbschema"
)

func newMigrateCommand() *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the Postgres schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if printOnly {
				_, err := fmt.Fprint(cmd.OutOrStdout(), dbschema.SQL())
				return err
			}

			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			if !cfg.DBEnabled() {
				return errNoDatabase
			}
			pool, err := app.NewDBPool(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := dbschema.Apply(cmd.Context(), pool, cfg.DBSchema); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema %q is up to date\n", cfg.DBSchema)
			return err
		},
	}
	cmd.Flags().BoolVar(&printOnly, "print", false, "print the schema SQL instead of applying it")
	return cmd
}
