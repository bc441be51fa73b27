package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mykel-Eze/tcn-invite/cmd/identity"
)

// newRoleCommand changes roles from the shell. Unlike the HTTP API it may
// grant and revoke admin.
func newRoleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "role EMAIL ROLE",
		Short: "Set a user's role (inviter, pcu_host, admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := identity.ParseRole(args[1])
			if err != nil {
				return err
			}

			env, err := openOperatorEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			ua, err := env.stores.Users.GetUserAuthByEmail(cmd.Context(), identity.NormalizeEmail(args[0]))
			if err != nil {
				return err
			}
			u, err := env.stores.Users.UpdateRole(cmd.Context(), ua.User.ID, role)
			if err != nil {
				return err
			}
			env.log.Infow("admin.role.updated", "user_id", u.ID, "from", ua.User.Role, "to", u.Role, "actor", "cli")
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.Email, u.Role)
			return err
		},
	}
}
