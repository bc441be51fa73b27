package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mykel-Eze/tcn-invite/cmd/internal/app"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/campus"
)

func newSeedCommand() *cobra.Command {
	var adminEmail, adminName string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert the default campuses and optionally an admin account",
		Long: "Upserts the built-in campus list. With --admin-email an admin account is " +
			"created (or promoted) using the password in TCN_BOOTSTRAP_ADMIN_PASSWORD.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openOperatorEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			cs := campus.DefaultCampuses()
			if err := env.stores.Campuses.Upsert(cmd.Context(), cs...); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "seeded %d campuses\n", len(cs))

			if adminEmail == "" {
				return nil
			}
			pw := os.Getenv("TCN_BOOTSTRAP_ADMIN_PASSWORD")
			if pw == "" {
				return fmt.Errorf("TCN_BOOTSTRAP_ADMIN_PASSWORD must be set with --admin-email")
			}
			u, created, err := app.EnsureAdmin(cmd.Context(), env.stores.Users, adminEmail, adminName, pw)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(out, "admin %s ready (%s)\n", u.Email, u.ID)
			} else {
				fmt.Fprintf(out, "admin %s already exists\n", u.Email)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&adminEmail, "admin-email", "", "email of the admin account to ensure")
	cmd.Flags().StringVar(&adminName, "admin-name", "TCN Admin", "full name for a new admin account")
	return cmd
}
