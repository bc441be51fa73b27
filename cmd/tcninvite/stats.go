package main

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/Mykel-Eze/tcn-invite/cmd/internal/admin"
)

func newStatsCommand(opts *rootOptions) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print invitation totals and the top inviters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openOperatorEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			snap, err := admin.Loader{
				Invitations: env.stores.Invitations,
				Users:       env.stores.Users,
				Campuses:    env.stores.Campuses,
			}.Load(cmd.Context())
			if err != nil {
				return err
			}

			if opts.Format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(snap.Stats)
			}
			writeStats(cmd.OutOrStdout(), snap, top)
			return nil
		},
	}
	cmd.Flags().IntVar(&top, "top", 10, "number of inviters to list")
	return cmd
}

func writeStats(w io.Writer, snap admin.Snapshot, top int) {
	s := snap.Stats

	summary := tablewriter.NewWriter(w)
	summary.SetHeader([]string{"Metric", "Value"})
	summary.SetAutoWrapText(false)
	summary.Append([]string{"Invitations", humanize.Comma(int64(s.TotalInvitations))})
	summary.Append([]string{"Attended", humanize.Comma(int64(s.AttendedInvitations))})
	summary.Append([]string{"Users", humanize.Comma(int64(s.TotalUsers))})
	summary.Append([]string{"Conversion", s.ConversionLabel})
	summary.Render()

	users := admin.SortUsers(snap.Users, admin.SortInvites, s.InviteCounts)
	if top > 0 && len(users) > top {
		users = users[:top]
	}

	inviters := tablewriter.NewWriter(w)
	inviters.SetHeader([]string{"#", "Inviter", "Email", "Role", "Invites"})
	inviters.SetAutoWrapText(false)
	for i, u := range users {
		inviters.Append([]string{
			strconv.Itoa(i + 1),
			u.FullName,
			u.Email,
			string(u.Role),
			strconv.Itoa(s.InviteCounts[u.ID]),
		})
	}
	inviters.Render()
}
